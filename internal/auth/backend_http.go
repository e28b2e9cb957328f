package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPBackend delegates authentication to a remote service exposing
// /auth/login, /auth/refresh and /auth/logout.
type HTTPBackend struct {
	baseURL string
	client  *http.Client
}

// NewHTTPBackend constructs an HTTPBackend.
func NewHTTPBackend(baseURL string, timeout time.Duration) *HTTPBackend {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Login posts credentials to the remote service.
func (b *HTTPBackend) Login(ctx context.Context, creds Credentials) (*Grant, error) {
	var grant Grant
	if err := b.post(ctx, "/auth/login", "", creds, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

// Refresh exchanges a refresh token.
func (b *HTTPBackend) Refresh(ctx context.Context, refreshToken string) (*Grant, error) {
	var grant Grant
	body := map[string]string{"refreshToken": refreshToken}
	if err := b.post(ctx, "/auth/refresh", "", body, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

// Logout notifies the remote service. Callers treat failures as advisory.
func (b *HTTPBackend) Logout(ctx context.Context, token string) error {
	return b.post(ctx, "/auth/logout", token, struct{}{}, nil)
}

func (b *HTTPBackend) post(ctx context.Context, path, bearer string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCollaboratorUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCollaboratorUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrInvalidCredentials
	case resp.StatusCode >= 300:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s", ErrCollaboratorUnavailable, resp.Status, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrCollaboratorUnavailable, err)
	}
	return nil
}

var _ Backend = (*HTTPBackend)(nil)
