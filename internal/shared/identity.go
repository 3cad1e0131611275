package shared

// Identity is the fully resolved principal for one request: the provider
// subject, its tenant binding and the role/permission sets granted within
// that tenant. It is assembled by the auth guard and lives only inside the
// request's context store.
type Identity struct {
	ID          string         `json:"id"`
	Email       string         `json:"email"`
	TenantID    string         `json:"tenantId"`
	Roles       []string       `json:"roles"`
	Permissions []string       `json:"permissions"`
	Metadata    map[string]any `json:"metadata,omitempty"`

	// Token is the raw bearer token, retained for sign-out and other
	// pass-through provider calls. Never serialized.
	Token string `json:"-"`
}

// HasRole reports whether the identity carries the named role.
func (i *Identity) HasRole(role string) bool {
	if i == nil {
		return false
	}
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasPermission reports whether the identity carries the named permission.
func (i *Identity) HasPermission(permission string) bool {
	if i == nil {
		return false
	}
	for _, p := range i.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}
