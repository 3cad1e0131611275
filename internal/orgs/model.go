// Package orgs manages the organization registry: the tenants every other
// record in the system is scoped to.
package orgs

import "time"

// Organization is one tenant.
type Organization struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	GSTIN        string    `json:"gstin,omitempty"`
	PAN          string    `json:"pan,omitempty"`
	IsSuperAdmin bool      `json:"isSuperAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
