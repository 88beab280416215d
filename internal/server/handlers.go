package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/storescope/storescope/internal/notifier"
	"github.com/storescope/storescope/pkg/database"
	"github.com/storescope/storescope/pkg/domstorage"
)

func (s *Server) routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/stores", s.handleStores)
		r.Get("/stores/{store}/tables", s.handleTables)
		r.Post("/stores/{store}/query", s.handleQuery)
		r.Get("/storage/{origin}/entries", s.handleEntries)
		r.Put("/storage/{origin}/entries/{key}", s.handleSetEntry)
		r.Delete("/storage/{origin}/entries/{key}", s.handleRemoveEntry)
		r.Get("/events", s.handleEvents)
	})
}

func (s *Server) handleStores(w http.ResponseWriter, r *http.Request) {
	stores, err := s.executor.Stores()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"stores": stores})
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	store := chi.URLParam(r, "store")

	tables, err := s.executor.Tables(r.Context(), store)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"tables": tables})
}

type queryRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	store := chi.URLParam(r, "store")

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return
	}

	qid := uuid.NewString()
	s.logger.Debug("executing query", "id", qid, "store", store)

	result, err := database.Execute(r.Context(), s.executor, store, req.Query, database.Collect{})
	if err != nil {
		s.logger.Debug("query failed", "id", qid, "error", err)
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// storageID builds the scope from the origin path segment. Anything other
// than the local scope is passed through so the no-op semantics stay with
// the storage layer.
func storageID(r *http.Request) domstorage.StorageID {
	local := r.URL.Query().Get("session") != "1"
	return domstorage.StorageID{
		Origin:         chi.URLParam(r, "origin"),
		IsLocalStorage: local,
	}
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.storage.Entries(storageID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

type setEntryRequest struct {
	Value string `json:"value"`
}

func (s *Server) handleSetEntry(w http.ResponseWriter, r *http.Request) {
	id := storageID(r)
	key := chi.URLParam(r, "key")

	var req setEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return
	}

	if err := s.storage.SetEntry(id, key, req.Value); err != nil {
		s.writeError(w, err)
		return
	}

	if id.IsLocalStorage {
		s.notifier.Broadcast(notifier.Event{
			Action: notifier.ActionEntryUpdated,
			Origin: id.Origin,
			Key:    key,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleRemoveEntry(w http.ResponseWriter, r *http.Request) {
	id := storageID(r)
	key := chi.URLParam(r, "key")

	if err := s.storage.RemoveEntry(id, key); err != nil {
		s.writeError(w, err)
		return
	}

	if id.IsLocalStorage {
		s.notifier.Broadcast(notifier.Event{
			Action: notifier.ActionEntryRemoved,
			Origin: id.Origin,
			Key:    key,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleEvents streams change events to the peer as server-sent events
// until it disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	peer := uuid.NewString()
	ch := s.notifier.Subscribe()
	defer s.notifier.Unsubscribe(ch)

	s.logger.Debug("peer registered", "peer", peer)
	defer s.logger.Debug("peer unregistered", "peer", peer)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			_, _ = fmt.Fprintf(w, "event: change\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps the bridge's error taxonomy onto HTTP statuses. Nothing
// here is retried; each failure is scoped to the one request.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		accessErr      *database.StoreAccessError
		queryErr       *database.QueryError
		mismatchErr    *domstorage.TypeMismatchError
		unsupportedErr *domstorage.UnsupportedError
	)

	status := http.StatusInternalServerError
	kind := "internal"
	switch {
	case errors.As(err, &accessErr):
		status = http.StatusNotFound
		kind = "store_access"
	case errors.As(err, &queryErr):
		status = http.StatusBadRequest
		kind = "query"
	case errors.As(err, &mismatchErr):
		status = http.StatusConflict
		kind = "type_mismatch"
	case errors.As(err, &unsupportedErr):
		status = http.StatusUnprocessableEntity
		kind = "unsupported"
	}

	s.writeJSON(w, status, map[string]any{"error": err.Error(), "kind": kind})
}
