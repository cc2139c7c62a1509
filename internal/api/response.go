package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/codec"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/command"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/diagram"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/session"
)

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the standard error envelope.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeErr picks the status for err from its kind.
func writeErr(w http.ResponseWriter, err error) {
	kind, _ := diagram.KindOf(err)
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error(), Kind: string(kind)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, diagram.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, diagram.ErrDuplicateEntity), errors.Is(err, diagram.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, diagram.ErrInvalidOperation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, command.ErrUnknownKind), errors.Is(err, command.ErrInvalidParams),
		errors.Is(err, session.ErrBadRequest), errors.Is(err, codec.ErrUnknownFormat):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrQueueFull):
		return http.StatusTooManyRequests
	case errors.Is(err, session.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, session.ErrClosed):
		return http.StatusGone
	}
	return http.StatusInternalServerError
}
