// Package auth talks to the hosted auth service and resolves the current
// identity for the rest of the application. Authentication protocol design is
// owned by the provider; this package only drives its password, signup and
// logout endpoints and tracks the resulting session.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SessionUser is the user block of an auth session.
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is an access/refresh token pair issued by the auth service.
type Session struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token,omitempty"`
	TokenType    string      `json:"token_type,omitempty"`
	ExpiresIn    int         `json:"expires_in,omitempty"`
	ExpiresAt    int64       `json:"expires_at,omitempty"`
	User         SessionUser `json:"user"`
}

// IsExpired reports whether the access token's expiry instant has passed.
// Sessions without an expiry are treated as still valid.
func (s *Session) IsExpired() bool {
	if s.ExpiresAt == 0 {
		return false
	}
	return time.Now().Unix() >= s.ExpiresAt
}

// AuthError is a failed reply from the auth service, carrying the
// server-provided message for the UI.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth request failed: %d %s", e.Status, e.Message)
}

// Gateway is the HTTP client for the auth service.
type Gateway struct {
	baseURL string
	anonKey string
	http    *http.Client
}

// GatewayConfig carries the auth endpoint settings.
type GatewayConfig struct {
	BaseURL    string
	AnonKey    string
	HTTPClient *http.Client
}

// NewGateway constructs a Gateway from cfg.
func NewGateway(cfg GatewayConfig) *Gateway {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Gateway{baseURL: cfg.BaseURL, anonKey: cfg.AnonKey, http: hc}
}

// SignIn exchanges email/password credentials for a session.
func (g *Gateway) SignIn(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	return g.sessionRequest(ctx, "/auth/v1/token?grant_type=password", body)
}

// SignUp registers a new user. Username and marketing consent travel as user
// metadata; the backend materialises them into the profile row.
func (g *Gateway) SignUp(ctx context.Context, email, password, username string, marketingConsent bool) (*Session, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
		"data": map[string]any{
			"username":          username,
			"marketing_consent": marketingConsent,
		},
	}
	return g.sessionRequest(ctx, "/auth/v1/signup", body)
}

// SignOut revokes the session behind accessToken.
func (g *Gateway) SignOut(ctx context.Context, accessToken string) error {
	req, err := g.newRequest(ctx, "/auth/v1/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	defer resp.Body.Close()
	// 401s during logout mean the token was already dead; nothing to revoke.
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 || resp.StatusCode == http.StatusUnauthorized {
		return nil
	}
	return readAuthError(resp)
}

func (g *Gateway) sessionRequest(ctx context.Context, path string, body any) (*Session, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := g.newRequest(ctx, path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, readAuthError(resp)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}
	if session.ExpiresAt == 0 && session.ExpiresIn > 0 {
		session.ExpiresAt = time.Now().Unix() + int64(session.ExpiresIn)
	}
	return &session, nil
}

func (g *Gateway) newRequest(ctx context.Context, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", g.anonKey)
	req.Header.Set("Authorization", "Bearer "+g.anonKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func readAuthError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)
	msg := string(raw)
	// The service wraps messages in a few different envelopes.
	var envelope struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		switch {
		case envelope.ErrorDescription != "":
			msg = envelope.ErrorDescription
		case envelope.Message != "":
			msg = envelope.Message
		case envelope.Msg != "":
			msg = envelope.Msg
		}
	}
	return &AuthError{Status: resp.StatusCode, Message: msg}
}
