package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/Beacon-Coaching/coach-portal-api/internal/app/authgate"
	"github.com/Beacon-Coaching/coach-portal-api/internal/app/wizard"
)

// ErrorResponse is the error envelope for every non-2xx response.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"requestId,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]any) {
	body := ErrorResponse{Error: ErrorBody{
		Code:    code,
		Message: message,
		Details: details,
	}}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		body.Error.RequestID = rid
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeServiceError maps application-layer errors to HTTP responses.
// Unrecognized errors become an opaque 500: details stay in the logs.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ae *authgate.Error
	if errors.As(err, &ae) {
		writeError(w, r, ae.Status, ae.Code, ae.Message, ae.Details)
		return
	}
	var we *wizard.Error
	if errors.As(err, &we) {
		writeError(w, r, we.Status, we.Code, we.Message, we.Details)
		return
	}
	if errors.Is(err, authgate.ErrNoActiveSession) {
		writeError(w, r, http.StatusUnauthorized, "NO_ACTIVE_SESSION", "no active session", nil)
		return
	}
	writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}
