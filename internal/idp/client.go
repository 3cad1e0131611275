// Package idp wraps the hosted platform's auth API. Two key scopes exist:
// the anonymous key for credential operations initiated on behalf of users,
// and the service-role key for privileged token verification.
package idp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the provider's REST auth endpoints.
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	httpClient *http.Client
}

// NewClient constructs a provider client. timeout bounds each call; the
// surrounding request timeout still applies through ctx.
func NewClient(baseURL, anonKey, serviceKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		anonKey:    anonKey,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetUser verifies a bearer token with the provider and returns its subject.
// This round-trip is never cached: tokens can be revoked server-side.
func (c *Client) GetUser(ctx context.Context, token string) (*Subject, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/auth/v1/user", c.serviceKey, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var subject Subject
	if err := c.do(req, &subject); err != nil {
		return nil, err
	}
	if subject.ID == "" {
		return nil, &APIError{Status: http.StatusUnauthorized, Message: "no user for token"}
	}
	return &subject, nil
}

// SignUp creates a credential at the provider. metadata is stored as the
// subject's opaque metadata bag.
func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*SignUpResult, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
	}
	if len(metadata) > 0 {
		body["data"] = metadata
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/signup", c.anonKey, body)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Subject
		Session *Session `json:"session"`
	}
	if err := c.do(req, &payload); err != nil {
		return nil, err
	}
	result := &SignUpResult{Session: payload.Session}
	if payload.Subject.ID != "" {
		subject := payload.Subject
		result.Subject = &subject
	}
	return result, nil
}

// SignInPassword exchanges credentials for a session.
func (c *Client) SignInPassword(ctx context.Context, email, password string) (*Session, *Subject, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", c.anonKey, body)
	if err != nil {
		return nil, nil, err
	}

	var payload struct {
		Session
		User *Subject `json:"user"`
	}
	if err := c.do(req, &payload); err != nil {
		return nil, nil, err
	}
	session := payload.Session
	return &session, payload.User, nil
}

// SignOut revokes the session behind the bearer token.
func (c *Client) SignOut(ctx context.Context, token string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/logout", c.anonKey, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return c.do(req, nil)
}

// Recover triggers a password reset email.
func (c *Client) Recover(ctx context.Context, email string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/recover", c.anonKey, map[string]any{"email": email})
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// UpdatePassword changes the password for the token's subject.
func (c *Client) UpdatePassword(ctx context.Context, token, newPassword string) error {
	req, err := c.newRequest(ctx, http.MethodPut, "/auth/v1/user", c.anonKey, map[string]any{"password": newPassword})
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return c.do(req, nil)
}

// Refresh rotates a session using its refresh token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	body := map[string]any{"refresh_token": refreshToken}
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", c.anonKey, body)
	if err != nil {
		return nil, err
	}

	var session Session
	if err := c.do(req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) newRequest(ctx context.Context, method, path, apiKey string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("idp: marshal body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("idp: build request: %w", err)
	}
	req.Header.Set("apikey", apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(req *http.Request, target any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("idp: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		if err == nil && len(raw) > 0 {
			var parsed struct {
				Msg              string `json:"msg"`
				Message          string `json:"message"`
				ErrorDescription string `json:"error_description"`
			}
			if json.Unmarshal(raw, &parsed) == nil {
				switch {
				case parsed.Msg != "":
					apiErr.Message = parsed.Msg
				case parsed.Message != "":
					apiErr.Message = parsed.Message
				case parsed.ErrorDescription != "":
					apiErr.Message = parsed.ErrorDescription
				}
			}
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if target == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("idp: decode response: %w", err)
	}
	return nil
}
