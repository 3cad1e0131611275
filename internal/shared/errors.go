package shared

import "fmt"

// ErrorClass buckets request failures into the outcomes the HTTP layer
// understands. Exactly one class reaches the response renderer; anything
// unclassified is treated as upstream.
type ErrorClass int

const (
	// ClassAuthentication covers missing/invalid/expired tokens and
	// provider verification failures.
	ClassAuthentication ErrorClass = iota
	// ClassTenancy marks an authenticated subject with no tenant binding.
	// It renders as unauthorized: without a tenant no authorization
	// decision is possible.
	ClassTenancy
	// ClassAuthorization marks a resolved identity that fails a role or
	// permission requirement.
	ClassAuthorization
	// ClassUpstream covers provider/store faults unrelated to credentials.
	ClassUpstream
)

// AuthError is the taxonomy member raised by the guard and the auth
// operations. Message is the client-facing text; Err carries the internal
// cause for logging and is never rendered to the caller.
type AuthError struct {
	Class   ErrorClass
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AuthError) Unwrap() error { return e.Err }

// AuthenticationError builds a ClassAuthentication failure.
func AuthenticationError(message string) *AuthError {
	return &AuthError{Class: ClassAuthentication, Message: message}
}

// TenancyError builds a ClassTenancy failure.
func TenancyError(message string) *AuthError {
	return &AuthError{Class: ClassTenancy, Message: message}
}

// AuthorizationError builds a ClassAuthorization failure.
func AuthorizationError(message string) *AuthError {
	return &AuthError{Class: ClassAuthorization, Message: message}
}

// UpstreamError wraps a provider or store fault. The cause is logged
// server-side only.
func UpstreamError(message string, err error) *AuthError {
	return &AuthError{Class: ClassUpstream, Message: message, Err: err}
}
