package auth

import (
	"github.com/nimbus-hr/nimbus-hr/internal/idp"
)

type SignUpRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=8"`
	OrganizationID string `json:"organizationId" validate:"required,uuid"`
	Role           string `json:"role,omitempty" validate:"omitempty,oneof=SUPER_ADMIN ADMIN HR_MANAGER HR_EXECUTIVE EMPLOYEE"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type UpdatePasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// SignUpResult is returned by the signup flow.
type SignUpResult struct {
	User    SignUpUser   `json:"user"`
	Session *idp.Session `json:"session,omitempty"`
}

type SignUpUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// SignInResult bundles the resolved identity with the issued session.
type SignInResult struct {
	User    SignInUser   `json:"user"`
	Session *idp.Session `json:"session,omitempty"`
}

type SignInUser struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	TenantID    string   `json:"tenantId"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

type MessageResult struct {
	Message string `json:"message"`
}

type SessionResult struct {
	Session *idp.Session `json:"session"`
}
