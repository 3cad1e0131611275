package auth

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbus-hr/nimbus-hr/internal/idp"
	"github.com/nimbus-hr/nimbus-hr/internal/rbac"
	"github.com/nimbus-hr/nimbus-hr/internal/shared"
	_ "github.com/nimbus-hr/nimbus-hr/testing"
)

type stubProvider struct {
	signUpResult *idp.SignUpResult
	signUpErr    error
	session      *idp.Session
	subject      *idp.Subject
	signInErr    error
	signOutErr   error
	recoverErr   error
	updateErr    error
	refreshErr   error

	signUpMetadata map[string]any
}

func (s *stubProvider) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*idp.SignUpResult, error) {
	s.signUpMetadata = metadata
	return s.signUpResult, s.signUpErr
}

func (s *stubProvider) SignInPassword(ctx context.Context, email, password string) (*idp.Session, *idp.Subject, error) {
	return s.session, s.subject, s.signInErr
}

func (s *stubProvider) SignOut(ctx context.Context, token string) error { return s.signOutErr }

func (s *stubProvider) Recover(ctx context.Context, email string) error { return s.recoverErr }

func (s *stubProvider) UpdatePassword(ctx context.Context, token, newPassword string) error {
	return s.updateErr
}

func (s *stubProvider) Refresh(ctx context.Context, refreshToken string) (*idp.Session, error) {
	return s.session, s.refreshErr
}

type stubAuthRepo struct {
	orgExists  bool
	orgErr     error
	profileErr error

	profileUserID string
	profileOrgID  string
}

func (s *stubAuthRepo) CreateProfile(ctx context.Context, userID, organizationID string) error {
	s.profileUserID = userID
	s.profileOrgID = organizationID
	return s.profileErr
}

func (s *stubAuthRepo) OrganizationExists(ctx context.Context, organizationID string) (bool, error) {
	return s.orgExists, s.orgErr
}

type stubResolver struct {
	tenantID  string
	tenantErr error
	roles     []string
	rolesErr  error
	perms     []string
	permsErr  error
}

func (s *stubResolver) TenantFor(ctx context.Context, userID string) (string, error) {
	return s.tenantID, s.tenantErr
}

func (s *stubResolver) Roles(ctx context.Context, userID, tenantID string) ([]string, error) {
	return s.roles, s.rolesErr
}

func (s *stubResolver) Permissions(ctx context.Context, userID string) ([]string, error) {
	return s.perms, s.permsErr
}

type stubAssigner struct {
	err      error
	userID   string
	roleName string
}

func (s *stubAssigner) AssignRole(ctx context.Context, userID, roleName string) error {
	s.userID = userID
	s.roleName = roleName
	return s.err
}

func newTestService(provider *stubProvider, repo *stubAuthRepo, resolver *stubResolver, assigner *stubAssigner) *Service {
	return NewService(slog.Default(), provider, repo, resolver, assigner, nil)
}

func TestSignUpAssignsDefaultRole(t *testing.T) {
	provider := &stubProvider{
		signUpResult: &idp.SignUpResult{
			Subject: &idp.Subject{ID: "user-1", Email: "new@corp.test"},
		},
	}
	repo := &stubAuthRepo{orgExists: true}
	assigner := &stubAssigner{}
	svc := newTestService(provider, repo, &stubResolver{}, assigner)

	result, err := svc.SignUp(context.Background(), SignUpRequest{
		Email:          "new@corp.test",
		Password:       "supersecret",
		OrganizationID: "org-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", result.User.ID)
	assert.Equal(t, rbac.RoleEmployee, result.User.Role)
	assert.Equal(t, "user-1", assigner.userID)
	assert.Equal(t, rbac.RoleEmployee, assigner.roleName)
	assert.Equal(t, "org-1", repo.profileOrgID)
	assert.Equal(t, "org-1", provider.signUpMetadata["organization_id"])
}

func TestSignUpUnknownOrganization(t *testing.T) {
	svc := newTestService(&stubProvider{}, &stubAuthRepo{orgExists: false}, &stubResolver{}, &stubAssigner{})

	_, err := svc.SignUp(context.Background(), SignUpRequest{
		Email:          "new@corp.test",
		Password:       "supersecret",
		OrganizationID: "org-missing",
	})
	require.ErrorIs(t, err, ErrInvalidOrganization)
}

func TestSignUpProviderFailureIsGeneric(t *testing.T) {
	provider := &stubProvider{signUpErr: errors.New("provider: email already registered")}
	svc := newTestService(provider, &stubAuthRepo{orgExists: true}, &stubResolver{}, &stubAssigner{})

	_, err := svc.SignUp(context.Background(), SignUpRequest{
		Email:          "dup@corp.test",
		Password:       "supersecret",
		OrganizationID: "org-1",
	})
	require.Error(t, err)

	var authErr *shared.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Signup failed", authErr.Message)
	assert.NotContains(t, err.Error(), "already registered")
}

func TestSignUpProfileFailureIsGeneric(t *testing.T) {
	provider := &stubProvider{
		signUpResult: &idp.SignUpResult{Subject: &idp.Subject{ID: "user-1"}},
	}
	repo := &stubAuthRepo{orgExists: true, profileErr: errors.New("insert failed")}
	svc := newTestService(provider, repo, &stubResolver{}, &stubAssigner{})

	_, err := svc.SignUp(context.Background(), SignUpRequest{
		Email:          "new@corp.test",
		Password:       "supersecret",
		OrganizationID: "org-1",
	})
	var authErr *shared.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Signup failed", authErr.Message)
}

func TestSignInResolvesIdentity(t *testing.T) {
	provider := &stubProvider{
		session: &idp.Session{AccessToken: "tok", TokenType: "bearer"},
		subject: &idp.Subject{ID: "user-1", Email: "hr@corp.test"},
	}
	resolver := &stubResolver{
		tenantID: "org-1",
		roles:    []string{rbac.RoleHRManager},
		perms:    []string{rbac.PermReadEmployee, rbac.PermCreateEmployee},
	}
	svc := newTestService(provider, &stubAuthRepo{}, resolver, &stubAssigner{})

	result, err := svc.SignIn(context.Background(), SignInRequest{Email: "hr@corp.test", Password: "supersecret"})
	require.NoError(t, err)
	assert.Equal(t, "org-1", result.User.TenantID)
	assert.Equal(t, []string{rbac.RoleHRManager}, result.User.Roles)
	assert.Len(t, result.User.Permissions, 2)
	assert.Equal(t, "tok", result.Session.AccessToken)
}

func TestSignInBadCredentialsUniformMessage(t *testing.T) {
	provider := &stubProvider{signInErr: errors.New("provider: invalid grant")}
	svc := newTestService(provider, &stubAuthRepo{}, &stubResolver{}, &stubAssigner{})

	_, err := svc.SignIn(context.Background(), SignInRequest{Email: "x@corp.test", Password: "wrong"})
	var authErr *shared.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Invalid credentials", authErr.Message)
}

func TestSignInMissingTenantSameMessageAsBadPassword(t *testing.T) {
	provider := &stubProvider{
		session: &idp.Session{AccessToken: "tok"},
		subject: &idp.Subject{ID: "user-1"},
	}
	resolver := &stubResolver{tenantErr: rbac.ErrNoTenant}
	svc := newTestService(provider, &stubAuthRepo{}, resolver, &stubAssigner{})

	_, err := svc.SignIn(context.Background(), SignInRequest{Email: "orphan@corp.test", Password: "supersecret"})
	var authErr *shared.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Invalid credentials", authErr.Message)
}

func TestSignInDegradedRoleLookup(t *testing.T) {
	provider := &stubProvider{
		session: &idp.Session{AccessToken: "tok"},
		subject: &idp.Subject{ID: "user-1"},
	}
	resolver := &stubResolver{
		tenantID: "org-1",
		rolesErr: errors.New("query timeout"),
		perms:    []string{rbac.PermReadEmployee},
	}
	svc := newTestService(provider, &stubAuthRepo{}, resolver, &stubAssigner{})

	result, err := svc.SignIn(context.Background(), SignInRequest{Email: "hr@corp.test", Password: "supersecret"})
	require.NoError(t, err)
	assert.Empty(t, result.User.Roles)
	assert.Equal(t, []string{rbac.PermReadEmployee}, result.User.Permissions)
}

func TestRefreshSession(t *testing.T) {
	provider := &stubProvider{session: &idp.Session{AccessToken: "rotated"}}
	svc := newTestService(provider, &stubAuthRepo{}, &stubResolver{}, &stubAssigner{})

	result, err := svc.RefreshSession(context.Background(), "refresh-tok")
	require.NoError(t, err)
	assert.Equal(t, "rotated", result.Session.AccessToken)
}
