package employees

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbus-hr/nimbus-hr/internal/idp"
	"github.com/nimbus-hr/nimbus-hr/internal/rbac"
)

type stubVerifier struct {
	subject *idp.Subject
	err     error
}

func (s *stubVerifier) GetUser(ctx context.Context, token string) (*idp.Subject, error) {
	return s.subject, s.err
}

type stubResolver struct {
	tenantID string
	roles    []string
	perms    []string
}

func (s *stubResolver) TenantFor(ctx context.Context, userID string) (string, error) {
	if s.tenantID == "" {
		return "", rbac.ErrNoTenant
	}
	return s.tenantID, nil
}

func (s *stubResolver) Roles(ctx context.Context, userID, tenantID string) ([]string, error) {
	return s.roles, nil
}

func (s *stubResolver) Permissions(ctx context.Context, userID string) ([]string, error) {
	return s.perms, nil
}

func newTestRouter(resolver *stubResolver) chi.Router {
	svc := NewService(slog.Default(), newMemRepo())
	guard := rbac.Guard{
		Verifier: &stubVerifier{subject: &idp.Subject{ID: "user-1", Email: "hr@corp.test"}},
		Resolver: resolver,
	}
	handler := NewHandler(slog.Default(), svc, guard)

	r := chi.NewRouter()
	r.Route("/employees", handler.MountRoutes)
	return r
}

func doJSON(t *testing.T, router chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer test-token")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestCreateRequiresPermission(t *testing.T) {
	resolver := &stubResolver{tenantID: "org-1", perms: []string{rbac.PermReadEmployee}}
	router := newTestRouter(resolver)

	res := doJSON(t, router, http.MethodPost, "/employees/", map[string]string{
		"organizationId": "org-1",
		"firstName":      "Asha",
		"lastName":       "Rao",
		"officialEmail":  "asha.rao@acme.test",
	})
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Contains(t, res.Body.String(), "Insufficient permissions")
}

func TestCreateWithPermission(t *testing.T) {
	resolver := &stubResolver{
		tenantID: "b3e1a9a2-7c4f-4f4f-9d2a-0f8e6a1b2c3d",
		perms:    []string{rbac.PermCreateEmployee},
	}
	router := newTestRouter(resolver)

	res := doJSON(t, router, http.MethodPost, "/employees/", map[string]string{
		"organizationId": "b3e1a9a2-7c4f-4f4f-9d2a-0f8e6a1b2c3d",
		"firstName":      "Asha",
		"lastName":       "Rao",
		"officialEmail":  "asha.rao@acme.test",
	})
	require.Equal(t, http.StatusCreated, res.Code)

	var emp Employee
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &emp))
	assert.Equal(t, "b3e1a9a2-7c4f-4f4f-9d2a-0f8e6a1b2c3d", emp.OrganizationID)
}

func TestCreateCrossTenantForbidden(t *testing.T) {
	resolver := &stubResolver{
		tenantID: "b3e1a9a2-7c4f-4f4f-9d2a-0f8e6a1b2c3d",
		perms:    []string{rbac.PermCreateEmployee},
	}
	router := newTestRouter(resolver)

	res := doJSON(t, router, http.MethodPost, "/employees/", map[string]string{
		"organizationId": "11111111-2222-3333-4444-555555555555",
		"firstName":      "Asha",
		"lastName":       "Rao",
		"officialEmail":  "asha.rao@acme.test",
	})
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Contains(t, res.Body.String(), "another organization")
}

func TestListScopedToResolvedTenant(t *testing.T) {
	resolver := &stubResolver{tenantID: "org-1", perms: []string{rbac.PermReadEmployee}}
	router := newTestRouter(resolver)

	res := doJSON(t, router, http.MethodGet, "/employees/", nil)
	require.Equal(t, http.StatusOK, res.Code)

	var result ListResult
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &result))
	assert.Equal(t, 0, result.Total)
	assert.NotNil(t, result.Employees)
}

func TestListWithoutToken(t *testing.T) {
	router := newTestRouter(&stubResolver{tenantID: "org-1", perms: []string{rbac.PermReadEmployee}})

	req := httptest.NewRequest(http.MethodGet, "/employees/", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Contains(t, res.Body.String(), "No token provided")
}
