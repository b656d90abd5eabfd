// Package auth turns request credentials into a user id. TwoOf never
// authenticates users itself; it trusts whatever identity a Verifier
// returns.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// SessionCookie is the cookie the shared identity service sets.
const SessionCookie = "shelf_session"

var (
	// ErrNoCredentials means the request carried neither a bearer token
	// nor a session cookie.
	ErrNoCredentials = errors.New("auth: no credentials")
	// ErrInvalidCredentials means credentials were present but rejected.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
)

// Verifier resolves the caller of a request.
type Verifier interface {
	Verify(ctx context.Context, r *http.Request) (string, error)
}

// VerifierFunc adapts a plain function to Verifier.
type VerifierFunc func(ctx context.Context, r *http.Request) (string, error)

func (f VerifierFunc) Verify(ctx context.Context, r *http.Request) (string, error) {
	return f(ctx, r)
}

// tokenFromRequest prefers an Authorization bearer token and falls back to
// the session cookie.
func tokenFromRequest(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") && strings.TrimSpace(token) != "" {
			return strings.TrimSpace(token), true
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}
