// Package devstore exposes any remote.Store over HTTP. It exists so local
// development and integration tests have a real document service to point
// the httpstore adapter at; production deployments bring their own backend.
package devstore

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/remote"
)

// Server handles the document API over a backing store.
type Server struct {
	store  remote.Store
	log    zerolog.Logger
	apiKey string
	ready  func() bool
}

// Option configures the server.
type Option func(*Server)

// WithAPIKey requires a matching bearer token on every request.
func WithAPIKey(key string) Option {
	return func(s *Server) { s.apiKey = key }
}

// WithReadiness wires the health endpoint to an externally maintained flag.
func WithReadiness(ready func() bool) Option {
	return func(s *Server) { s.ready = ready }
}

// New builds a server over store.
func New(store remote.Store, log zerolog.Logger, opts ...Option) *Server {
	s := &Server{store: store, log: log, ready: func() bool { return true }}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router mounts every route and middleware.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.recoverPanics)
	if s.apiKey != "" {
		r.Use(s.requireAPIKey)
	}

	r.HandleFunc("/v1/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/v1/collections/{collection}/documents", s.handleAdd).Methods(http.MethodPost)
	r.HandleFunc("/v1/collections/{collection}/documents/{id}", s.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/v1/collections/{collection}/documents/{id}", s.handleSet).Methods(http.MethodPut)
	r.HandleFunc("/v1/collections/{collection}/documents/{id}", s.handleUpdate).Methods(http.MethodPatch)
	r.HandleFunc("/v1/collections/{collection}/documents/{id}", s.handleDelete).Methods(http.MethodDelete)
	r.HandleFunc("/v1/collections/{collection}/documents/{id}/increment", s.handleIncrement).Methods(http.MethodPost)
	r.HandleFunc("/v1/collections/{collection}/query", s.handleQuery).Methods(http.MethodPost)
	r.HandleFunc("/v1/batch", s.handleBatch).Methods(http.MethodPost)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ready() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "UP"})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "DOWN"})
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	collection := mux.Vars(r)["collection"]
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid document body")
		return
	}
	id, err := s.store.Add(r.Context(), collection, fields)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doc, err := s.store.Get(r.Context(), vars["collection"], vars["id"])
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleSet(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid document body")
		return
	}
	if err := s.store.Set(r.Context(), vars["collection"], vars["id"], fields); err != nil {
		s.storeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var partial map[string]any
	if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
		writeError(w, http.StatusBadRequest, "invalid document body")
		return
	}
	if err := s.store.Update(r.Context(), vars["collection"], vars["id"], partial); err != nil {
		s.storeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.store.Delete(r.Context(), vars["collection"], vars["id"]); err != nil {
		s.storeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type incrementRequest struct {
	Field string `json:"field"`
	Delta int64  `json:"delta"`
}

func (s *Server) handleIncrement(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var req incrementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Field == "" {
		writeError(w, http.StatusBadRequest, "increment needs a field and a delta")
		return
	}
	if err := s.store.AtomicIncrement(r.Context(), vars["collection"], vars["id"], req.Field, req.Delta); err != nil {
		s.storeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	collection := mux.Vars(r)["collection"]
	var q remote.Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query body")
		return
	}
	docs, err := s.store.Query(r.Context(), collection, q)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	if docs == nil {
		docs = []remote.Document{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

type batchOp struct {
	Kind       string         `json:"kind"`
	Collection string         `json:"collection"`
	ID         string         `json:"id,omitempty"`
	Fields     map[string]any `json:"fields,omitempty"`
}

type batchRequest struct {
	Ops []batchOp `json:"ops"`
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid batch body")
		return
	}
	b := s.store.Batch()
	for _, op := range req.Ops {
		switch op.Kind {
		case "add":
			b.Add(op.Collection, op.Fields)
		case "set":
			b.Set(op.Collection, op.ID, op.Fields)
		case "update":
			b.Update(op.Collection, op.ID, op.Fields)
		case "delete":
			b.Delete(op.Collection, op.ID)
		default:
			writeError(w, http.StatusBadRequest, "unknown batch op kind "+op.Kind)
			return
		}
	}
	if err := b.Commit(r.Context()); err != nil {
		s.storeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) storeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, remote.ErrNotFound) {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	s.log.Error().Err(err).Str("method", r.Method).Str("url", r.URL.String()).Msg("store operation failed")
	writeError(w, http.StatusInternalServerError, "store operation failed")
}
