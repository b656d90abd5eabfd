// Package handler exposes the services over JSON HTTP. Handlers read the
// caller from the request context, call one service method, translate the
// error kind into a status code, and tell the caller's household about
// successful changes over the websocket hub.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/twoof/internal/apperror"
	"github.com/dukerupert/twoof/internal/auth"
	"github.com/dukerupert/twoof/internal/service"
	"github.com/dukerupert/twoof/internal/websocket"
)

// maxJSONBody caps request bodies for JSON endpoints.
const maxJSONBody = 1 << 20

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

var errorKinds = []struct {
	kind   error
	status int
	code   string
}{
	{apperror.ErrNotFound, http.StatusNotFound, "not_found"},
	{apperror.ErrConflict, http.StatusConflict, "conflict"},
	{apperror.ErrInvalidOperation, http.StatusBadRequest, "invalid_operation"},
	{apperror.ErrValidation, http.StatusBadRequest, "validation_error"},
	{apperror.ErrTooLarge, http.StatusRequestEntityTooLarge, "payload_too_large"},
	{apperror.ErrUnavailable, http.StatusServiceUnavailable, "service_unavailable"},
	{apperror.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
}

// writeError maps err onto a status code. Only AppError messages reach the
// client; anything else is logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		for _, k := range errorKinds {
			if errors.Is(appErr, k.kind) {
				if k.status >= 500 {
					logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", errors.Unwrap(appErr))
				}
				writeJSON(w, k.status, errorBody{Error: k.code, Message: appErr.Message, Field: appErr.Field})
				return
			}
		}
	}
	logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal_error", Message: "internal server error"})
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return apperror.TooLarge("request body too large")
		}
		return apperror.ValidationFailed("", "invalid JSON: "+err.Error())
	}
	return nil
}

// queryInt parses an optional integer query parameter. It returns nil when
// the parameter is absent.
func queryInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperror.ValidationFailed(name, name+" must be an integer")
	}
	return &n, nil
}

func queryBool(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperror.ValidationFailed(name, name+" must be true or false")
	}
	return &b, nil
}

func queryString(r *http.Request, name string) *string {
	if !r.URL.Query().Has(name) {
		return nil
	}
	v := r.URL.Query().Get(name)
	return &v
}

// intOr returns *p, or def when p is nil.
func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// notifier publishes change messages to the caller's household.
type notifier struct {
	hub        *websocket.Hub
	households *service.HouseholdService
	logger     *slog.Logger
}

func (n notifier) broadcast(r *http.Request, msg websocket.Message) {
	if n.hub == nil {
		return
	}
	h, err := n.households.Get(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		n.logger.Warn("broadcast skipped", "type", msg.Type, "error", err)
		return
	}
	n.hub.Broadcast(h.ID, msg)
}
