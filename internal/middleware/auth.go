package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/twoof/internal/auth"
)

// RequireUser resolves the caller through verifier and stores the user id in
// the request context. Missing or rejected credentials get a 401; an
// unreachable identity service gets a 503.
func RequireUser(verifier auth.Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := verifier.Verify(r.Context(), r)
			switch {
			case err == nil:
			case errors.Is(err, auth.ErrNoCredentials), errors.Is(err, auth.ErrInvalidCredentials):
				logger.Debug("rejected credentials", "path", r.URL.Path, "error", err)
				writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
				return
			default:
				logger.Error("identity check failed", "path", r.URL.Path, "error", err)
				writeError(w, http.StatusServiceUnavailable, "service_unavailable", "identity service unavailable")
				return
			}

			ctx := auth.WithAuth(r.Context(), auth.AuthContext{UserID: userID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ByUser keys rate limits on the authenticated caller, falling back to the
// client address for anonymous requests.
func ByUser(r *http.Request) string {
	if id := auth.UserID(r.Context()); id != "" {
		return "user:" + id
	}
	return "ip:" + RealIP(r)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message})
}
