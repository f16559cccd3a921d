package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/monifinebakery/BISMILLAH-sub018/internal/core"
)

type errorResponse struct {
	Error     string   `json:"error"`
	Code      string   `json:"code"`
	RequestID string   `json:"request_id,omitempty"`
	Applied   []string `json:"applied,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// apiError maps the service error taxonomy onto HTTP status codes. Sync
// failures include which ingredients were touched before the rollback so
// callers can see the operation left nothing applied.
func apiError(w http.ResponseWriter, r *http.Request, err error) {
	// The sync failure case goes first: the orchestrator wraps the failing
	// sentinel inside a PartialSyncError, and the applied detail would be
	// lost if a plain errors.Is case claimed the error before it.
	var partial *core.PartialSyncError
	switch {
	case errors.As(err, &partial):
		code := "SYNC_FAILED"
		if errors.Is(partial.Err, core.ErrInsufficientStockOnReversal) {
			code = "INSUFFICIENT_STOCK"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(errorResponse{
			Error:     partial.Error(),
			Code:      code,
			RequestID: requestIDFromContext(r.Context()),
			Applied:   partial.Applied,
		})
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrTerminalStatus), errors.Is(err, core.ErrInvalidTransition):
		writeError(w, r, err.Error(), "INVALID_TRANSITION", http.StatusConflict)
	case errors.Is(err, core.ErrInsufficientStockOnReversal):
		writeError(w, r, err.Error(), "INSUFFICIENT_STOCK", http.StatusConflict)
	case errors.Is(err, core.ErrConcurrentModification):
		writeError(w, r, err.Error(), "CONCURRENT_MODIFICATION", http.StatusConflict)
	case errors.Is(err, core.ErrInvalidCostState):
		writeError(w, r, err.Error(), "INVALID_COST_STATE", http.StatusUnprocessableEntity)
	default:
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
