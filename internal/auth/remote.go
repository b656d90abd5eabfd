package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RemoteVerifier asks the identity service who the caller is by forwarding
// the request's credentials to {baseURL}/api/auth/me.
type RemoteVerifier struct {
	baseURL    string
	httpClient *http.Client
}

func NewRemoteVerifier(baseURL string) *RemoteVerifier {
	return &RemoteVerifier{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

type meResponse struct {
	ID string `json:"id"`
}

func (v *RemoteVerifier) Verify(ctx context.Context, r *http.Request) (string, error) {
	if _, ok := tokenFromRequest(r); !ok {
		return "", ErrNoCredentials
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/api/auth/me", nil)
	if err != nil {
		return "", fmt.Errorf("auth: create request: %w", err)
	}
	if h := r.Header.Get("Authorization"); h != "" {
		req.Header.Set("Authorization", h)
	}
	if h := r.Header.Get("Cookie"); h != "" {
		req.Header.Set("Cookie", h)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("auth: identity service: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", ErrInvalidCredentials
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("auth: identity service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var me meResponse
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return "", fmt.Errorf("auth: decode identity: %w", err)
	}
	if me.ID == "" {
		return "", fmt.Errorf("%w: identity has no id", ErrInvalidCredentials)
	}
	return me.ID, nil
}
