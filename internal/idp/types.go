package idp

import "fmt"

// Subject is the provider's view of an authenticated principal.
type Subject struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"user_metadata"`
}

// Session is an issued token pair.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
}

// SignUpResult bundles the created subject and, when email confirmation is
// disabled, the immediately issued session.
type SignUpResult struct {
	Subject *Subject
	Session *Session
}

// APIError is an error response from the provider's auth API.
type APIError struct {
	Status  int    `json:"code"`
	Message string `json:"msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("idp: status %d: %s", e.Status, e.Message)
}

// IsAuthFailure reports whether the provider rejected the credentials or
// token, as opposed to failing for operational reasons.
func (e *APIError) IsAuthFailure() bool {
	return e.Status == 400 || e.Status == 401 || e.Status == 403 || e.Status == 422
}
