package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/osot/membership-api/internal/app/categories"
	"github.com/osot/membership-api/internal/app/usergroup"
)

// ErrorResponse is the structured error envelope every failure returns.
// RequestId carries the per-request operation id for traceability.
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
	er := ErrorResponse{Error: ErrorBody{Code: code, Message: message, Details: details}}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		er.Error.RequestID = rid
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(er)
}

// writeAppError maps application-layer errors onto the envelope. Anything not
// typed by the app layer is an internal error.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	ce := (*categories.Error)(nil)
	if errors.As(err, &ce) {
		writeError(w, r, ce.Status, ce.Code, ce.Message, ce.Details)
		return
	}
	ue := (*usergroup.Error)(nil)
	if errors.As(err, &ue) {
		writeError(w, r, ue.Status, ue.Code, ue.Message, ue.Details)
		return
	}
	writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "unexpected error", nil)
}
