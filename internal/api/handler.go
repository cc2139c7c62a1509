package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/codec"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/command"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/diagram"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/logging"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/metrics"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/session"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/store/sqlite"
)

const maxBodyBytes = 4 << 20

// Store persists document snapshots. The sqlite store implements it.
type Store interface {
	Save(ctx context.Context, snap *diagram.Snapshot) (int64, error)
	Load(ctx context.Context, id string) (*diagram.Snapshot, error)
	List(ctx context.Context) ([]sqlite.DocumentInfo, error)
}

// Handler holds all HTTP handler dependencies.
type Handler struct {
	docs  *session.Manager
	store Store
	log   logging.Logger
	mux   *http.ServeMux
}

// New creates an HTTP handler and registers all routes. store may be nil,
// in which case the persistence routes answer 501.
func New(docs *session.Manager, store Store, log logging.Logger) http.Handler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	h := &Handler{docs: docs, store: store, log: log, mux: http.NewServeMux()}

	h.mux.HandleFunc("POST /v1/documents", h.openDocument)
	h.mux.HandleFunc("GET /v1/documents", h.listDocuments)
	h.mux.HandleFunc("GET /v1/documents/{id}", h.getDocument)
	h.mux.HandleFunc("DELETE /v1/documents/{id}", h.closeDocument)
	h.mux.HandleFunc("POST /v1/documents/{id}/commands", h.executeCommand)
	h.mux.HandleFunc("POST /v1/documents/{id}/undo", h.history(session.OpUndo))
	h.mux.HandleFunc("POST /v1/documents/{id}/redo", h.history(session.OpRedo))
	h.mux.HandleFunc("POST /v1/documents/{id}/delete-matching", h.deleteMatching)
	h.mux.HandleFunc("POST /v1/documents/{id}/save", h.saveDocument)
	h.mux.HandleFunc("GET /v1/documents/{id}/export", h.exportDocument)
	h.mux.HandleFunc("GET /v1/stored", h.listStored)
	h.mux.HandleFunc("GET /v1/commands", h.listCommandKinds)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(log.Named("http"), h.mux)
}

// POST /v1/documents — open a document. The body is an optional snapshot in
// ?format= (json by default); ?stored=<id> opens a saved document instead.
func (h *Handler) openDocument(w http.ResponseWriter, r *http.Request) {
	var snap *diagram.Snapshot
	if stored := r.URL.Query().Get("stored"); stored != "" {
		if h.store == nil {
			writeError(w, http.StatusNotImplemented, "no store configured")
			return
		}
		s, err := h.store.Load(r.Context(), stored)
		if err != nil {
			writeErr(w, err)
			return
		}
		snap = s
	} else {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("read body: %s", err))
			return
		}
		if len(bytes.TrimSpace(body)) > 0 {
			c, err := codec.ForFormat(formatParam(r))
			if err != nil {
				writeErr(w, err)
				return
			}
			if snap, err = c.Parse(bytes.NewReader(body)); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
	}

	s, err := h.docs.Open(snap)
	if err != nil {
		writeErr(w, err)
		return
	}
	current, err := s.Snapshot(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, current)
}

// GET /v1/documents — ids of the open documents.
func (h *Handler) listDocuments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": h.docs.List()})
}

// GET /v1/documents/{id} — current snapshot.
func (h *Handler) getDocument(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	snap, err := s.Snapshot(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// DELETE /v1/documents/{id} — close without saving.
func (h *Handler) closeDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.docs.Close(r.PathValue("id")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type commandRequest struct {
	Kind         string         `json:"kind"`
	Params       command.Params `json:"params"`
	WithSnapshot bool           `json:"with_snapshot"`
}

// POST /v1/documents/{id}/commands — execute one command.
func (h *Handler) executeCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Kind == "" {
		writeError(w, http.StatusBadRequest, "command kind is required")
		return
	}
	h.submit(w, r, session.Request{Op: session.OpExecute, Kind: req.Kind, Params: req.Params, WithSnapshot: req.WithSnapshot})
}

// POST /v1/documents/{id}/undo and /redo.
func (h *Handler) history(op session.Op) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		withSnapshot, _ := strconv.ParseBool(r.URL.Query().Get("snapshot"))
		h.submit(w, r, session.Request{Op: op, WithSnapshot: withSnapshot})
	}
}

type deleteMatchingRequest struct {
	Expression   string `json:"expression"`
	WithSnapshot bool   `json:"with_snapshot"`
}

// POST /v1/documents/{id}/delete-matching — delete every node the selector
// expression matches as one undoable step.
func (h *Handler) deleteMatching(w http.ResponseWriter, r *http.Request) {
	var req deleteMatchingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Expression == "" {
		writeError(w, http.StatusBadRequest, "expression is required")
		return
	}
	h.submit(w, r, session.Request{Op: session.OpDeleteMatching, Expression: req.Expression, WithSnapshot: req.WithSnapshot})
}

// POST /v1/documents/{id}/save — persist the current snapshot.
func (h *Handler) saveDocument(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusNotImplemented, "no store configured")
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	snap, err := s.Snapshot(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	rev, err := h.store.Save(r.Context(), snap)
	metrics.SnapshotsSaved.WithLabelValues(metrics.Status(err)).Inc()
	if err != nil {
		h.log.Error("save failed", logging.String("document", s.ID()), logging.Err(err))
		writeErr(w, err)
		return
	}
	h.log.Info("document saved", logging.String("document", s.ID()), logging.Any("revision", rev))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"document":    s.ID(),
		"revision":    rev,
		"nodes":       len(snap.Nodes),
		"connections": len(snap.Connections),
	})
}

// GET /v1/documents/{id}/export?format=yaml|json
func (h *Handler) exportDocument(w http.ResponseWriter, r *http.Request) {
	c, err := codec.ForFormat(formatParam(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	snap, err := s.Snapshot(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	var buf bytes.Buffer
	if err := c.Export(snap, &buf); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", c.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.ID()+"."+c.Format()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// GET /v1/stored — documents in the store.
func (h *Handler) listStored(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusNotImplemented, "no store configured")
		return
	}
	docs, err := h.store.List(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})
}

// GET /v1/commands — registered command kinds.
func (h *Handler) listCommandKinds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"kinds": h.docs.CommandKinds()})
}

// GET /healthz — always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz — 503 if any document queue is more than 80% full.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	util := h.docs.QueueUtilization()
	if util > 0.8 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":            "overloaded",
			"queue_utilization": util,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "ready",
		"queue_utilization": util,
		"documents":         len(h.docs.List()),
	})
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.docs.Get(r.PathValue("id"))
	if err != nil {
		writeErr(w, err)
		return nil, false
	}
	return s, true
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, req session.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	res, err := s.Submit(r.Context(), req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return false
	}
	return true
}

func formatParam(r *http.Request) string {
	if f := r.URL.Query().Get("format"); f != "" {
		return f
	}
	return "json"
}
