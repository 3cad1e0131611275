package orgs

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbus-hr/nimbus-hr/internal/auth"
	"github.com/nimbus-hr/nimbus-hr/internal/platform/httpx"
	"github.com/nimbus-hr/nimbus-hr/internal/rbac"
	_ "github.com/nimbus-hr/nimbus-hr/testing"
)

type memRepo struct {
	orgs    map[string]Organization
	nextID  int
	inserts int
}

func newMemRepo() *memRepo {
	return &memRepo{orgs: make(map[string]Organization), nextID: 1}
}

func (m *memRepo) List(ctx context.Context, filters ListFilters) ([]Organization, int, error) {
	var out []Organization
	for _, o := range m.orgs {
		out = append(out, o)
	}
	return out, len(out), nil
}

func (m *memRepo) Get(ctx context.Context, id string) (Organization, error) {
	o, ok := m.orgs[id]
	if !ok {
		return Organization{}, httpx.ErrNotFound
	}
	return o, nil
}

func (m *memRepo) GetBySlug(ctx context.Context, slug string) (Organization, error) {
	for _, o := range m.orgs {
		if o.Slug == slug {
			return o, nil
		}
	}
	return Organization{}, httpx.ErrNotFound
}

func (m *memRepo) Create(ctx context.Context, org Organization) (Organization, error) {
	m.inserts++
	for _, o := range m.orgs {
		if o.Slug == org.Slug {
			return Organization{}, httpx.ErrDuplicate
		}
	}
	org.ID = "org-" + strconv.Itoa(m.nextID)
	m.nextID++
	m.orgs[org.ID] = org
	return org, nil
}

func (m *memRepo) Update(ctx context.Context, id string, org Organization) (Organization, error) {
	if _, ok := m.orgs[id]; !ok {
		return Organization{}, httpx.ErrNotFound
	}
	org.ID = id
	m.orgs[id] = org
	return org, nil
}

func (m *memRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.orgs[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.orgs, id)
	return nil
}

func (m *memRepo) Count(ctx context.Context) (int, error) { return len(m.orgs), nil }

func (m *memRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := m.GetBySlug(ctx, slug)
	if errors.Is(err, httpx.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

type stubAccounts struct {
	req auth.SignUpRequest
	err error
}

func (s *stubAccounts) SignUp(ctx context.Context, req auth.SignUpRequest) (*auth.SignUpResult, error) {
	s.req = req
	if s.err != nil {
		return nil, s.err
	}
	return &auth.SignUpResult{User: auth.SignUpUser{ID: "admin-1", Email: req.Email, Role: req.Role}}, nil
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Acme Corp":         "acme-corp",
		"  Café  Büro GmbH": "cafe-buro-gmbh",
		"A&B -- Systems!":   "a-b-systems",
		"42 North":          "42-north",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestCreateDerivesSlug(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(slog.Default(), repo, nil)

	org, err := svc.Create(context.Background(), CreateOrganizationRequest{Name: "Acme Corp"})
	require.NoError(t, err)
	assert.Equal(t, "acme-corp", org.Slug)
	assert.False(t, org.IsSuperAdmin)
}

func TestCreateDuplicateSlug(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(slog.Default(), repo, nil)

	_, err := svc.Create(context.Background(), CreateOrganizationRequest{Name: "Acme Corp"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateOrganizationRequest{Name: "Acme! Corp"})
	require.ErrorIs(t, err, httpx.ErrDuplicate)
	// The taken slug is rejected before the insert is attempted.
	assert.Equal(t, 1, repo.inserts)
}

func TestInitialSetupCreatesSuperAdmin(t *testing.T) {
	repo := newMemRepo()
	accounts := &stubAccounts{}
	svc := NewService(slog.Default(), repo, accounts)

	result, err := svc.InitialSetup(context.Background(), InitialSetupRequest{
		Organization: CreateOrganizationRequest{Name: "Acme Corp"},
		AdminEmail:   "founder@acme.test",
		AdminPass:    "supersecret",
	})
	require.NoError(t, err)
	assert.True(t, result.Organization.IsSuperAdmin)
	assert.Equal(t, rbac.RoleSuperAdmin, accounts.req.Role)
	assert.Equal(t, result.Organization.ID, accounts.req.OrganizationID)
}

func TestInitialSetupRefusedWhenOrganizationsExist(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(slog.Default(), repo, &stubAccounts{})

	_, err := svc.Create(context.Background(), CreateOrganizationRequest{Name: "Existing"})
	require.NoError(t, err)

	_, err = svc.InitialSetup(context.Background(), InitialSetupRequest{
		Organization: CreateOrganizationRequest{Name: "Late"},
		AdminEmail:   "late@acme.test",
		AdminPass:    "supersecret",
	})
	require.ErrorIs(t, err, ErrSetupComplete)
}

func TestUpdatePartial(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(slog.Default(), repo, nil)

	org, err := svc.Create(context.Background(), CreateOrganizationRequest{Name: "Acme Corp", Email: "old@acme.test"})
	require.NoError(t, err)

	newPhone := "+91-98765-43210"
	updated, err := svc.Update(context.Background(), org.ID, UpdateOrganizationRequest{Phone: &newPhone})
	require.NoError(t, err)
	assert.Equal(t, newPhone, updated.Phone)
	assert.Equal(t, "old@acme.test", updated.Email)
	assert.Equal(t, "Acme Corp", updated.Name)
}
