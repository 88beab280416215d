package database

import (
	"context"
	"database/sql"
	"strings"

	// sqlite driver for the host's store files.
	_ "modernc.org/sqlite"
)

// Scalar labels reported alongside non-cursor results.
const (
	labelRowsModified = "Rows Modified"
	labelLastInsertID = "ID Of last inserted row"
)

// ResultHandler converts either shape of an execution result into T. Exactly
// one of the two methods is invoked per execution: HandleRows for queries
// that produce a cursor, HandleScalar for statements summarized by a single
// labeled number. HandleRows must fully consume the cursor before returning;
// it is released as soon as the handler does.
type ResultHandler[T any] interface {
	HandleRows(rows *sql.Rows) (T, error)
	HandleScalar(value int64, label string) (T, error)
}

// Executor runs free-form SQL against named stores. Each call opens the
// store, executes once, and closes the handle on every exit path.
type Executor struct {
	locator Locator

	// open is swappable for tests.
	open func(path string) (*sql.DB, error)
}

// NewExecutor creates an executor that resolves stores through loc.
func NewExecutor(loc Locator) *Executor {
	return &Executor{
		locator: loc,
		open:    openSQLite,
	}
}

// openSQLite opens an existing store file read/write. The file: scheme is
// required for the driver to honor query parameters; mode=rw refuses to
// create the file, so a missing store surfaces as an open failure.
func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=rw")
	if err != nil {
		return nil, err
	}
	// sql.Open is lazy; force the file open so a missing store fails here.
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (e *Executor) openStore(name string) (*sql.DB, error) {
	path, err := e.locator.StorePath(name)
	if err != nil {
		return nil, &StoreAccessError{Store: name, Err: err}
	}
	db, err := e.open(path)
	if err != nil {
		return nil, &StoreAccessError{Store: name, Err: err}
	}
	return db, nil
}

// Stores returns the tidied list of store names: the raw directory listing
// with shadow artifacts removed.
func (e *Executor) Stores() ([]string, error) {
	raw, err := e.locator.StoreList()
	if err != nil {
		return nil, err
	}
	return TidyStoreList(raw), nil
}

// Tables returns the table names defined in a store.
func (e *Executor) Tables(ctx context.Context, store string) ([]string, error) {
	db, err := e.openStore(store)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type=?", "table")
	if err != nil {
		return nil, &QueryError{Query: "sqlite_master", Err: err}
	}
	defer func() { _ = rows.Close() }()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// Execute classifies query by its leading keyword, runs it against the named
// store, and hands the result to h. Updates and deletes report the affected
// row count, inserts report the new row id, and everything else runs as a
// raw read whose cursor is passed to the handler. The store handle is closed
// whether the call succeeds or fails.
func Execute[T any](ctx context.Context, e *Executor, store, query string, h ResultHandler[T]) (T, error) {
	var zero T
	db, err := e.openStore(store)
	if err != nil {
		return zero, err
	}
	defer func() { _ = db.Close() }()

	return executeConn(ctx, db, query, h)
}

// executeConn is the classification core, split out so tests can drive it
// with a mock connection.
func executeConn[T any](ctx context.Context, db *sql.DB, query string, h ResultHandler[T]) (T, error) {
	var zero T

	// The bridge does not parse SQL. Three characters are enough to pick
	// one of the engine's entry points and a result shape.
	trimmed := strings.TrimSpace(query)
	prefix := ""
	if len(trimmed) >= 3 {
		prefix = strings.ToUpper(trimmed[:3])
	}

	switch prefix {
	case "UPD", "DEL":
		res, err := db.ExecContext(ctx, query)
		if err != nil {
			return zero, &QueryError{Query: query, Err: err}
		}
		count, err := res.RowsAffected()
		if err != nil {
			return zero, &QueryError{Query: query, Err: err}
		}
		return h.HandleScalar(count, labelRowsModified)

	case "INS":
		res, err := db.ExecContext(ctx, query)
		if err != nil {
			return zero, &QueryError{Query: query, Err: err}
		}
		id, err := res.LastInsertId()
		if err != nil {
			return zero, &QueryError{Query: query, Err: err}
		}
		return h.HandleScalar(id, labelLastInsertID)

	default:
		rows, err := db.QueryContext(ctx, query)
		if err != nil {
			return zero, &QueryError{Query: query, Err: err}
		}
		defer func() { _ = rows.Close() }()
		return h.HandleRows(rows)
	}
}
