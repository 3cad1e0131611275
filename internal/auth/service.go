package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nimbus-hr/nimbus-hr/internal/audit"
	"github.com/nimbus-hr/nimbus-hr/internal/idp"
	"github.com/nimbus-hr/nimbus-hr/internal/rbac"
	"github.com/nimbus-hr/nimbus-hr/internal/shared"
)

// ErrInvalidOrganization rejects a signup targeting an unknown tenant before
// any credential is created at the provider.
var ErrInvalidOrganization = errors.New("Invalid organization")

// Provider is the subset of identity-provider operations the auth flows use.
// Implemented by *idp.Client.
type Provider interface {
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*idp.SignUpResult, error)
	SignInPassword(ctx context.Context, email, password string) (*idp.Session, *idp.Subject, error)
	SignOut(ctx context.Context, token string) error
	Recover(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, token, newPassword string) error
	Refresh(ctx context.Context, refreshToken string) (*idp.Session, error)
}

// RoleAssigner grants a role to a subject. Implemented by *rbac.PGResolver.
type RoleAssigner interface {
	AssignRole(ctx context.Context, userID, roleName string) error
}

// Enqueuer submits audit events without blocking the request. May be nil.
type Enqueuer interface {
	Enqueue(ctx context.Context, event audit.Event) error
}

// Service implements the authentication operations: sign-up, sign-in,
// sign-out, password reset/update and session refresh.
type Service struct {
	logger   *slog.Logger
	provider Provider
	repo     Repository
	resolver rbac.Resolver
	assigner RoleAssigner
	auditor  Enqueuer
}

// NewService constructs a Service. auditor may be nil.
func NewService(logger *slog.Logger, provider Provider, repo Repository, resolver rbac.Resolver, assigner RoleAssigner, auditor Enqueuer) *Service {
	return &Service{
		logger:   logger,
		provider: provider,
		repo:     repo,
		resolver: resolver,
		assigner: assigner,
		auditor:  auditor,
	}
}

// SignUp creates a credential at the provider, binds it to the tenant via a
// profile row and assigns the requested role (EMPLOYEE by default).
//
// The three steps are not atomic: the backing store exposes no cross-step
// transaction, so a failure mid-way can leave a credential without a profile
// or role. Step-level detail is logged, never returned.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*SignUpResult, error) {
	exists, err := s.repo.OrganizationExists(ctx, req.OrganizationID)
	if err != nil {
		s.logger.ErrorContext(ctx, "signup organization lookup failed", slog.Any("error", err))
		return nil, shared.UpstreamError("Signup failed", err)
	}
	if !exists {
		return nil, ErrInvalidOrganization
	}

	role := req.Role
	if role == "" {
		role = rbac.RoleEmployee
	}

	created, err := s.provider.SignUp(ctx, req.Email, req.Password, map[string]any{
		"organization_id": req.OrganizationID,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "provider signup failed", slog.Any("error", err))
		return nil, shared.AuthenticationError("Signup failed")
	}
	if created.Subject == nil {
		s.logger.ErrorContext(ctx, "provider signup returned no subject")
		return nil, shared.AuthenticationError("Signup failed")
	}

	if err := s.repo.CreateProfile(ctx, created.Subject.ID, req.OrganizationID); err != nil {
		s.logger.ErrorContext(ctx, "profile creation failed after signup",
			slog.String("user_id", created.Subject.ID), slog.Any("error", err))
		return nil, shared.AuthenticationError("Signup failed")
	}

	if err := s.assigner.AssignRole(ctx, created.Subject.ID, role); err != nil {
		s.logger.ErrorContext(ctx, "role assignment failed after signup",
			slog.String("user_id", created.Subject.ID), slog.Any("error", err))
		return nil, shared.AuthenticationError("Signup failed")
	}

	s.record(ctx, audit.Event{
		ActorID:  created.Subject.ID,
		TenantID: req.OrganizationID,
		Action:   audit.ActionSignUp,
		Meta:     map[string]any{"role": role},
	})

	return &SignUpResult{
		User: SignUpUser{
			ID:    created.Subject.ID,
			Email: created.Subject.Email,
			Role:  role,
		},
		Session: created.Session,
	}, nil
}

// SignIn verifies credentials with the provider and resolves the caller's
// tenant, roles and permissions. Bad credentials and a missing tenant
// binding are indistinguishable to the caller.
func (s *Service) SignIn(ctx context.Context, req SignInRequest) (*SignInResult, error) {
	session, subject, err := s.provider.SignInPassword(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.WarnContext(ctx, "sign-in rejected", slog.Any("error", err))
		return nil, shared.AuthenticationError("Invalid credentials")
	}
	if subject == nil || subject.ID == "" {
		return nil, shared.AuthenticationError("Invalid credentials")
	}

	tenantID, err := s.resolver.TenantFor(ctx, subject.ID)
	if err != nil {
		if errors.Is(err, rbac.ErrNoTenant) {
			s.logger.WarnContext(ctx, "sign-in without tenant binding", slog.String("user_id", subject.ID))
			return nil, shared.AuthenticationError("Invalid credentials")
		}
		s.logger.ErrorContext(ctx, "sign-in tenant resolution failed", slog.Any("error", err))
		return nil, shared.UpstreamError("Sign in failed", err)
	}

	var roles, permissions []string
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		r, err := s.resolver.Roles(egCtx, subject.ID, tenantID)
		if err != nil {
			s.logger.WarnContext(ctx, "sign-in role resolution degraded", slog.Any("error", err))
			return nil
		}
		roles = r
		return nil
	})
	eg.Go(func() error {
		p, err := s.resolver.Permissions(egCtx, subject.ID)
		if err != nil {
			s.logger.WarnContext(ctx, "sign-in permission resolution degraded", slog.Any("error", err))
			return nil
		}
		permissions = p
		return nil
	})
	_ = eg.Wait()

	s.record(ctx, audit.Event{ActorID: subject.ID, TenantID: tenantID, Action: audit.ActionSignIn})

	return &SignInResult{
		User: SignInUser{
			ID:          subject.ID,
			Email:       subject.Email,
			TenantID:    tenantID,
			Roles:       roles,
			Permissions: permissions,
		},
		Session: session,
	}, nil
}

// SignOut invalidates the session behind the token.
func (s *Service) SignOut(ctx context.Context, token string) (*MessageResult, error) {
	if err := s.provider.SignOut(ctx, token); err != nil {
		s.logger.WarnContext(ctx, "sign-out failed", slog.Any("error", err))
		return nil, shared.AuthenticationError("Invalid token")
	}
	identity := shared.RequestContextFrom(ctx).Identity()
	if identity != nil {
		s.record(ctx, audit.Event{ActorID: identity.ID, TenantID: identity.TenantID, Action: audit.ActionSignOut})
	}
	return &MessageResult{Message: "Successfully signed out"}, nil
}

// ResetPassword triggers the provider's reset email.
func (s *Service) ResetPassword(ctx context.Context, email string) (*MessageResult, error) {
	if err := s.provider.Recover(ctx, email); err != nil {
		s.logger.WarnContext(ctx, "password reset failed", slog.Any("error", err))
		return nil, shared.AuthenticationError("Password reset failed")
	}
	s.record(ctx, audit.Event{Action: audit.ActionPasswordReset})
	return &MessageResult{Message: "Password reset email sent"}, nil
}

// UpdatePassword changes the caller's password.
func (s *Service) UpdatePassword(ctx context.Context, token, newPassword string) (*MessageResult, error) {
	if err := s.provider.UpdatePassword(ctx, token, newPassword); err != nil {
		s.logger.WarnContext(ctx, "password update failed", slog.Any("error", err))
		return nil, shared.AuthenticationError("Password update failed")
	}
	return &MessageResult{Message: "Password updated successfully"}, nil
}

// RefreshSession rotates the session using the refresh token.
func (s *Service) RefreshSession(ctx context.Context, refreshToken string) (*SessionResult, error) {
	session, err := s.provider.Refresh(ctx, refreshToken)
	if err != nil {
		s.logger.WarnContext(ctx, "session refresh failed", slog.Any("error", err))
		return nil, shared.AuthenticationError("Invalid refresh token")
	}
	return &SessionResult{Session: session}, nil
}

func (s *Service) record(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	if err := s.auditor.Enqueue(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit enqueue failed", slog.Any("error", err))
	}
}
