package employees

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbus-hr/nimbus-hr/internal/platform/httpx"
	_ "github.com/nimbus-hr/nimbus-hr/testing"
)

type memRepo struct {
	employees map[string]Employee
	nextID    int
}

func newMemRepo() *memRepo {
	return &memRepo{employees: make(map[string]Employee), nextID: 1}
}

func (m *memRepo) List(ctx context.Context, filters ListFilters) ([]Employee, int, error) {
	var out []Employee
	for _, e := range m.employees {
		if e.OrganizationID != filters.TenantID {
			continue
		}
		if filters.Search != "" && !strings.Contains(strings.ToLower(e.FirstName+" "+e.LastName), strings.ToLower(filters.Search)) {
			continue
		}
		out = append(out, e)
	}
	return out, len(out), nil
}

func (m *memRepo) Get(ctx context.Context, tenantID, id string) (Employee, error) {
	e, ok := m.employees[id]
	if !ok || e.OrganizationID != tenantID {
		return Employee{}, httpx.ErrNotFound
	}
	return e, nil
}

func (m *memRepo) Create(ctx context.Context, emp Employee) (Employee, error) {
	for _, e := range m.employees {
		if e.OfficialEmail == emp.OfficialEmail {
			return Employee{}, httpx.ErrDuplicate
		}
	}
	emp.ID = "emp-" + strconv.Itoa(m.nextID)
	m.nextID++
	m.employees[emp.ID] = emp
	return emp, nil
}

func (m *memRepo) Update(ctx context.Context, tenantID, id string, emp Employee) (Employee, error) {
	stored, ok := m.employees[id]
	if !ok || stored.OrganizationID != tenantID {
		return Employee{}, httpx.ErrNotFound
	}
	emp.ID = id
	emp.OrganizationID = tenantID
	m.employees[id] = emp
	return emp, nil
}

func (m *memRepo) Delete(ctx context.Context, tenantID, id string) error {
	e, ok := m.employees[id]
	if !ok || e.OrganizationID != tenantID {
		return httpx.ErrNotFound
	}
	delete(m.employees, id)
	return nil
}

func newTestService() (*Service, *memRepo) {
	repo := newMemRepo()
	return NewService(slog.Default(), repo), repo
}

func TestCreateEmployee(t *testing.T) {
	svc, _ := newTestService()

	emp, err := svc.Create(context.Background(), "org-1", CreateEmployeeRequest{
		OrganizationID: "org-1",
		FirstName:      "Asha",
		LastName:       "Rao",
		OfficialEmail:  "asha.rao@acme.test",
		JoinDate:       "2026-03-15",
	})
	require.NoError(t, err)
	assert.Equal(t, "org-1", emp.OrganizationID)
	require.NotNil(t, emp.JoinDate)
	assert.Equal(t, 2026, emp.JoinDate.Year())
}

func TestCreateEmployeeTenantMismatch(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), "org-1", CreateEmployeeRequest{
		OrganizationID: "org-2",
		FirstName:      "Asha",
		LastName:       "Rao",
		OfficialEmail:  "asha.rao@acme.test",
	})
	require.ErrorIs(t, err, ErrTenantMismatch)
}

func TestCreateEmployeeDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()

	req := CreateEmployeeRequest{
		OrganizationID: "org-1",
		FirstName:      "Asha",
		LastName:       "Rao",
		OfficialEmail:  "asha.rao@acme.test",
	}
	_, err := svc.Create(context.Background(), "org-1", req)
	require.NoError(t, err)

	req.FirstName = "Another"
	_, err = svc.Create(context.Background(), "org-1", req)
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestGetIsTenantScoped(t *testing.T) {
	svc, _ := newTestService()

	emp, err := svc.Create(context.Background(), "org-1", CreateEmployeeRequest{
		OrganizationID: "org-1",
		FirstName:      "Asha",
		LastName:       "Rao",
		OfficialEmail:  "asha.rao@acme.test",
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "org-2", emp.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)

	got, err := svc.Get(context.Background(), "org-1", emp.ID)
	require.NoError(t, err)
	assert.Equal(t, emp.ID, got.ID)
}

func TestUpdatePartial(t *testing.T) {
	svc, _ := newTestService()

	emp, err := svc.Create(context.Background(), "org-1", CreateEmployeeRequest{
		OrganizationID: "org-1",
		FirstName:      "Asha",
		LastName:       "Rao",
		OfficialEmail:  "asha.rao@acme.test",
		Mobile:         "+91-90000-00001",
	})
	require.NoError(t, err)

	newLast := "Rao-Menon"
	updated, err := svc.Update(context.Background(), "org-1", emp.ID, UpdateEmployeeRequest{LastName: &newLast})
	require.NoError(t, err)
	assert.Equal(t, "Rao-Menon", updated.LastName)
	assert.Equal(t, "Asha", updated.FirstName)
	assert.Equal(t, "+91-90000-00001", updated.Mobile)
}

func TestDeleteIsTenantScoped(t *testing.T) {
	svc, repo := newTestService()

	emp, err := svc.Create(context.Background(), "org-1", CreateEmployeeRequest{
		OrganizationID: "org-1",
		FirstName:      "Asha",
		LastName:       "Rao",
		OfficialEmail:  "asha.rao@acme.test",
	})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(context.Background(), "org-2", emp.ID), httpx.ErrNotFound)
	require.NoError(t, svc.Delete(context.Background(), "org-1", emp.ID))
	assert.Empty(t, repo.employees)
}
