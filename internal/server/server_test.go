package server

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/storescope/storescope/internal/testutil"
	"github.com/storescope/storescope/pkg/database"
	"github.com/storescope/storescope/pkg/domstorage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	// sqlite driver for test fixtures.
	_ "modernc.org/sqlite"
)

// newTestServer builds a server over temp data and prefs directories with
// one seeded store and one seeded namespace.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	dataDir := t.TempDir()
	db, err := sql.Open("sqlite", filepath.Join(dataDir, "app.db"))
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL);
		INSERT INTO users (id, name) VALUES (1, 'ada'), (2, 'grace');
	`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	provider := domstorage.NewFileProvider(t.TempDir())
	editor := provider.Namespace("app.example").Edit()
	timeout, err := domstorage.NewValue(30)
	require.NoError(t, err)
	require.NoError(t, editor.Put("timeout", timeout).Commit())

	return New(Config{
		Executor: database.NewExecutor(database.NewDirLocator(dataDir)),
		Storage:  domstorage.New(provider),
		DataDir:  dataDir,
		Logger:   testutil.NewTestLogger(t),
	})
}

func testRouter(s *Server) http.Handler {
	r := chi.NewMux()
	s.routes(r)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestHandleStores(t *testing.T) {
	s := newTestServer(t)
	rec, body := doJSON(t, testRouter(s), http.MethodGet, "/api/stores", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"app.db"}, body["stores"])
}

func TestHandleTables(t *testing.T) {
	s := newTestServer(t)

	rec, body := doJSON(t, testRouter(s), http.MethodGet, "/api/stores/app.db/tables", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"users"}, body["tables"])

	rec, body = doJSON(t, testRouter(s), http.MethodGet, "/api/stores/missing.db/tables", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "store_access", body["kind"])
}

func TestHandleQuery(t *testing.T) {
	s := newTestServer(t)
	r := testRouter(s)

	t.Run("select returns rows", func(t *testing.T) {
		rec, body := doJSON(t, r, http.MethodPost, "/api/stores/app.db/query",
			queryRequest{Query: "SELECT id, name FROM users ORDER BY id"})
		require.Equal(t, http.StatusOK, rec.Code)

		rowSet := body["row_set"].(map[string]any)
		assert.Equal(t, []any{"id", "name"}, rowSet["columns"])
		assert.Len(t, rowSet["rows"], 2)
		assert.Nil(t, body["scalar"])
	})

	t.Run("update returns labeled scalar", func(t *testing.T) {
		rec, body := doJSON(t, r, http.MethodPost, "/api/stores/app.db/query",
			queryRequest{Query: "UPDATE users SET name = 'x' WHERE id = 1"})
		require.Equal(t, http.StatusOK, rec.Code)

		scalar := body["scalar"].(map[string]any)
		assert.Equal(t, float64(1), scalar["value"])
		assert.Equal(t, "Rows Modified", scalar["label"])
	})

	t.Run("engine rejection is a bad request", func(t *testing.T) {
		rec, body := doJSON(t, r, http.MethodPost, "/api/stores/app.db/query",
			queryRequest{Query: "SELEC nope"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "query", body["kind"])
	})

	t.Run("missing store is not found", func(t *testing.T) {
		rec, body := doJSON(t, r, http.MethodPost, "/api/stores/gone.db/query",
			queryRequest{Query: "select 1"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "store_access", body["kind"])
	})
}

func TestHandleEntries(t *testing.T) {
	s := newTestServer(t)
	r := testRouter(s)

	rec, body := doJSON(t, r, http.MethodGet, "/api/storage/app.example/entries", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{map[string]any{"key": "timeout", "value": "30"}}, body["entries"])

	// Session scope yields an empty list.
	rec, body = doJSON(t, r, http.MethodGet, "/api/storage/app.example/entries?session=1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, body["entries"])
}

func TestHandleSetEntry(t *testing.T) {
	s := newTestServer(t)
	r := testRouter(s)

	events := s.Notifier().Subscribe()
	defer s.Notifier().Unsubscribe(events)

	t.Run("valid write", func(t *testing.T) {
		rec, _ := doJSON(t, r, http.MethodPut, "/api/storage/app.example/entries/timeout",
			setEntryRequest{Value: "45"})
		require.Equal(t, http.StatusOK, rec.Code)

		_, body := doJSON(t, r, http.MethodGet, "/api/storage/app.example/entries", nil)
		assert.Equal(t, []any{map[string]any{"key": "timeout", "value": "45"}}, body["entries"])

		ev := <-events
		assert.Equal(t, "entry_updated", ev.Action)
		assert.Equal(t, "timeout", ev.Key)
	})

	t.Run("type mismatch", func(t *testing.T) {
		rec, body := doJSON(t, r, http.MethodPut, "/api/storage/app.example/entries/timeout",
			setEntryRequest{Value: "abc"})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "type_mismatch", body["kind"])
		assert.Contains(t, body["error"], "expected int")
	})

	t.Run("new key is unsupported", func(t *testing.T) {
		rec, body := doJSON(t, r, http.MethodPut, "/api/storage/app.example/entries/fresh",
			setEntryRequest{Value: "1"})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "unsupported", body["kind"])
	})
}

func TestHandleRemoveEntry(t *testing.T) {
	s := newTestServer(t)
	r := testRouter(s)

	rec, _ := doJSON(t, r, http.MethodDelete, "/api/storage/app.example/entries/timeout", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, body := doJSON(t, r, http.MethodGet, "/api/storage/app.example/entries", nil)
	assert.Equal(t, []any{}, body["entries"])

	// Removing again is still ok.
	rec, _ = doJSON(t, r, http.MethodDelete, "/api/storage/app.example/entries/timeout", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
