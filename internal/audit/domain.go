// Package audit records authentication and authorization events. Events are
// enqueued on the request path and persisted by the background worker so the
// auth-critical path never waits on an audit insert.
package audit

import "time"

// Auth event actions.
const (
	ActionSignIn        = "auth.signin"
	ActionSignUp        = "auth.signup"
	ActionSignOut       = "auth.signout"
	ActionPasswordReset = "auth.password_reset"
	ActionAccessDenied  = "auth.access_denied"
)

// Event is one auditable occurrence.
type Event struct {
	ActorID  string         `json:"actor_id"`
	TenantID string         `json:"tenant_id,omitempty"`
	Action   string         `json:"action"`
	Path     string         `json:"path,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
	At       time.Time      `json:"at"`
}
