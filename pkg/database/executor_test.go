package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMockExecutor returns an executor whose open step yields a sqlmock
// connection regardless of the store name.
func newMockExecutor(t *testing.T) (*Executor, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	exec := NewExecutor(NewDirLocator(t.TempDir()))
	exec.open = func(string) (*sql.DB, error) { return db, nil }
	return exec, mock
}

// failHandler always fails, for verifying handler errors propagate unwrapped.
type failHandler struct{ err error }

func (h failHandler) HandleRows(*sql.Rows) (*Result, error)       { return nil, h.err }
func (h failHandler) HandleScalar(int64, string) (*Result, error) { return nil, h.err }

func TestExecute_MutatingStatements(t *testing.T) {
	tests := []struct {
		name  string
		query string
		count int64
	}{
		{
			name:  "update",
			query: "UPDATE users SET name = 'ada' WHERE id = 1",
			count: 1,
		},
		{
			name:  "delete",
			query: "DELETE FROM users WHERE id = 5",
			count: 3,
		},
		{
			name:  "lowercase with leading whitespace",
			query: "  delete from users",
			count: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec, mock := newMockExecutor(t)
			mock.ExpectExec(tt.query).WillReturnResult(sqlmock.NewResult(0, tt.count))
			mock.ExpectClose()

			res, err := Execute(context.Background(), exec, "app.db", tt.query, Collect{})
			require.NoError(t, err)
			require.NotNil(t, res.Scalar)
			assert.Nil(t, res.RowSet)
			assert.Equal(t, tt.count, res.Scalar.Value)
			assert.Equal(t, "Rows Modified", res.Scalar.Label)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestExecute_Insert(t *testing.T) {
	exec, mock := newMockExecutor(t)

	query := "INSERT INTO users (name) VALUES ('ada')"
	mock.ExpectExec(query).WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectClose()

	res, err := Execute(context.Background(), exec, "app.db", query, Collect{})
	require.NoError(t, err)
	require.NotNil(t, res.Scalar)
	assert.Equal(t, int64(42), res.Scalar.Value)
	assert.Equal(t, "ID Of last inserted row", res.Scalar.Label)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_RawRead(t *testing.T) {
	exec, mock := newMockExecutor(t)

	// The original query text goes to the engine untrimmed.
	query := "  select id, name from users"
	mock.ExpectQuery(query).WillReturnRows(
		sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "ada").
			AddRow(int64(2), "grace"))
	mock.ExpectClose()

	res, err := Execute(context.Background(), exec, "app.db", query, Collect{})
	require.NoError(t, err)
	require.NotNil(t, res.RowSet)
	assert.Nil(t, res.Scalar)
	assert.Equal(t, []string{"id", "name"}, res.RowSet.Columns)
	require.Len(t, res.RowSet.Rows, 2)
	assert.Equal(t, int64(1), res.RowSet.Rows[0][0])
	assert.Equal(t, "ada", res.RowSet.Rows[0][1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_ShortQueryIsRawRead(t *testing.T) {
	exec, mock := newMockExecutor(t)

	// Fewer than three characters cannot match any statement prefix.
	mock.ExpectQuery("up").WillReturnRows(sqlmock.NewRows([]string{"x"}))
	mock.ExpectClose()

	res, err := Execute(context.Background(), exec, "app.db", "up", Collect{})
	require.NoError(t, err)
	require.NotNil(t, res.RowSet)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_EngineRejection(t *testing.T) {
	exec, mock := newMockExecutor(t)

	boom := errors.New("near \"selec\": syntax error")
	mock.ExpectQuery("selec * from users").WillReturnError(boom)
	mock.ExpectClose()

	_, err := Execute(context.Background(), exec, "app.db", "selec * from users", Collect{})
	require.Error(t, err)

	var qerr *QueryError
	require.ErrorAs(t, err, &qerr)
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_HandlerErrorPropagates(t *testing.T) {
	exec, mock := newMockExecutor(t)

	boom := errors.New("handler exploded")
	mock.ExpectExec("UPDATE t SET x = 1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectClose()

	_, err := Execute(context.Background(), exec, "app.db", "UPDATE t SET x = 1", failHandler{err: boom})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_MissingStore(t *testing.T) {
	dir := t.TempDir()
	exec := NewExecutor(NewDirLocator(dir))

	_, err := Execute(context.Background(), exec, "missing.db", "select 1", Collect{})
	require.Error(t, err)

	var serr *StoreAccessError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "missing.db", serr.Store)

	// A failed open must not leave a file behind in the data directory.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExecute_InvalidStoreName(t *testing.T) {
	exec := NewExecutor(NewDirLocator(t.TempDir()))

	_, err := Execute(context.Background(), exec, "../escape.db", "select 1", Collect{})

	var serr *StoreAccessError
	require.ErrorAs(t, err, &serr)
}

// setupStore creates a real SQLite store file with a small users table.
func setupStore(t *testing.T, path string) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.Exec(`
		CREATE TABLE users (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL
		);
		CREATE TABLE sessions (token TEXT PRIMARY KEY);
		INSERT INTO users (id, name) VALUES (1, 'ada'), (2, 'grace');
	`)
	require.NoError(t, err)
}

func TestExecutor_SQLite(t *testing.T) {
	dir := t.TempDir()
	setupStore(t, filepath.Join(dir, "app.db"))
	exec := NewExecutor(NewDirLocator(dir))
	ctx := context.Background()

	t.Run("tables", func(t *testing.T) {
		tables, err := exec.Tables(ctx, "app.db")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"users", "sessions"}, tables)
	})

	t.Run("tables on empty store is an empty list", func(t *testing.T) {
		db, err := sql.Open("sqlite", filepath.Join(dir, "bare.db"))
		require.NoError(t, err)
		_, err = db.Exec("CREATE TABLE tmp (x INTEGER); DROP TABLE tmp;")
		require.NoError(t, err)
		require.NoError(t, db.Close())

		tables, err := exec.Tables(ctx, "bare.db")
		require.NoError(t, err)
		assert.Equal(t, []string{}, tables)
	})

	t.Run("select", func(t *testing.T) {
		res, err := Execute(ctx, exec, "app.db", "SELECT id, name FROM users ORDER BY id", Collect{})
		require.NoError(t, err)
		require.NotNil(t, res.RowSet)
		assert.Equal(t, []string{"id", "name"}, res.RowSet.Columns)
		require.Len(t, res.RowSet.Rows, 2)
		assert.Equal(t, "ada", res.RowSet.Rows[0][1])
	})

	t.Run("insert reports row id", func(t *testing.T) {
		res, err := Execute(ctx, exec, "app.db", "INSERT INTO users (name) VALUES ('linus')", Collect{})
		require.NoError(t, err)
		require.NotNil(t, res.Scalar)
		assert.Equal(t, int64(3), res.Scalar.Value)
		assert.Equal(t, "ID Of last inserted row", res.Scalar.Label)
	})

	t.Run("update reports affected count", func(t *testing.T) {
		res, err := Execute(ctx, exec, "app.db", "UPDATE users SET name = 'x'", Collect{})
		require.NoError(t, err)
		require.NotNil(t, res.Scalar)
		assert.Equal(t, int64(3), res.Scalar.Value)
		assert.Equal(t, "Rows Modified", res.Scalar.Label)
	})

	t.Run("malformed query surfaces engine error", func(t *testing.T) {
		_, err := Execute(ctx, exec, "app.db", "SELEC nope", Collect{})
		var qerr *QueryError
		require.ErrorAs(t, err, &qerr)
	})

	t.Run("tables on missing store", func(t *testing.T) {
		_, err := exec.Tables(ctx, "nope.db")
		var serr *StoreAccessError
		require.ErrorAs(t, err, &serr)
	})
}

func TestExecutor_Stores(t *testing.T) {
	dir := t.TempDir()
	setupStore(t, filepath.Join(dir, "app.db"))
	setupStore(t, filepath.Join(dir, "app.db-journal"))
	setupStore(t, filepath.Join(dir, "orphan.db-journal"))
	exec := NewExecutor(NewDirLocator(dir))

	stores, err := exec.Stores()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"app.db", "orphan.db-journal"}, stores)
}
