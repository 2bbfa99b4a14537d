package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	json.NewEncoder(w).Encode(v)
}

// writeError maps the service error taxonomy onto status codes. Client
// errors are logged at debug; anything else is logged and reported as 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *core.ValidationError
		nerr *core.NotFoundError
		perr *core.PermissionError
	)
	status, errorType := http.StatusInternalServerError, applog.ErrorTypeInternal
	resp := errorResponse{Error: "internal server error"}
	switch {
	case errors.As(err, &verr):
		status, errorType = http.StatusBadRequest, applog.ErrorTypeValidation
		resp = errorResponse{Error: verr.Error(), Field: verr.Field}
	case errors.As(err, &nerr):
		status, errorType = http.StatusNotFound, applog.ErrorTypeNotFound
		resp = errorResponse{Error: nerr.Error()}
	case errors.As(err, &perr):
		status, errorType = http.StatusForbidden, applog.ErrorTypePermission
		resp = errorResponse{Error: perr.Error()}
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingToken):
		status, errorType = http.StatusUnauthorized, applog.ErrorTypeAuth
		resp = errorResponse{Error: err.Error()}
	}

	logger := applog.FromContext(r.Context())
	if status == http.StatusInternalServerError {
		applog.NewStructuredLogger(logger).
			LogError(r.Context(), "Request failed", err, errorType, applog.ComponentHTTP, r.Method+" "+r.URL.Path)
	} else {
		logger.DebugContext(r.Context(), "Request rejected", applog.NewFields().WithError(err, errorType).ToSlice()...)
	}
	writeJSON(w, status, resp)
}

// decodeJSON reads a single JSON object, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var verr *core.ValidationError
		switch {
		case errors.As(err, &verr):
			return err
		case errors.Is(err, core.ErrInvalidAmount):
			return core.Invalid("amount", "must be a decimal number with at most two places")
		case errors.Is(err, io.EOF):
			return core.Invalid("body", "request body is empty")
		}
		return core.Invalid("body", "malformed JSON: "+err.Error())
	}
	if dec.More() {
		return core.Invalid("body", "request body must contain a single JSON object")
	}
	return nil
}

func actorFrom(r *http.Request) (core.Actor, error) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		return core.Actor{}, auth.ErrMissingToken
	}
	return actor, nil
}
