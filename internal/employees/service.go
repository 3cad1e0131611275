package employees

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrTenantMismatch rejects a create whose organization id does not match
// the caller's resolved tenant.
var ErrTenantMismatch = errors.New("organization does not match caller tenant")

const joinDateLayout = "2006-01-02"

// Service implements employee management. All operations require the
// caller's tenant id, which the handler takes from the resolved identity.
type Service struct {
	logger *slog.Logger
	repo   Repository
}

// NewService constructs a Service.
func NewService(logger *slog.Logger, repo Repository) *Service {
	return &Service{logger: logger, repo: repo}
}

// List returns one page of the tenant's employees.
func (s *Service) List(ctx context.Context, filters ListFilters) (*ListResult, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.Limit < 1 || filters.Limit > 100 {
		filters.Limit = 20
	}
	employees, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	if employees == nil {
		employees = []Employee{}
	}
	return &ListResult{Employees: employees, Total: total, Page: filters.Page, Limit: filters.Limit}, nil
}

// Get returns one employee within the tenant.
func (s *Service) Get(ctx context.Context, tenantID, id string) (Employee, error) {
	return s.repo.Get(ctx, tenantID, id)
}

// Create adds an employee. The request's organization id must equal the
// caller's tenant; a cross-tenant create is refused before touching the
// store.
func (s *Service) Create(ctx context.Context, tenantID string, req CreateEmployeeRequest) (Employee, error) {
	if req.OrganizationID != tenantID {
		return Employee{}, ErrTenantMismatch
	}

	emp := Employee{
		OrganizationID: tenantID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		OfficialEmail:  req.OfficialEmail,
		Mobile:         req.Mobile,
		Gender:         req.Gender,
		EmployeeTypeID: req.EmployeeTypeID,
		StatusID:       req.StatusID,
	}
	if req.JoinDate != "" {
		d, err := time.Parse(joinDateLayout, req.JoinDate)
		if err != nil {
			return Employee{}, err
		}
		emp.JoinDate = &d
	}

	created, err := s.repo.Create(ctx, emp)
	if err != nil {
		return Employee{}, err
	}
	s.logger.InfoContext(ctx, "employee created",
		slog.String("employee_id", created.ID),
		slog.String("organization_id", tenantID))
	return created, nil
}

// Update applies a partial update on top of the stored record.
func (s *Service) Update(ctx context.Context, tenantID, id string, req UpdateEmployeeRequest) (Employee, error) {
	current, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return Employee{}, err
	}
	if req.FirstName != nil {
		current.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		current.LastName = *req.LastName
	}
	if req.OfficialEmail != nil {
		current.OfficialEmail = *req.OfficialEmail
	}
	if req.Mobile != nil {
		current.Mobile = *req.Mobile
	}
	if req.Gender != nil {
		current.Gender = *req.Gender
	}
	if req.JoinDate != nil {
		if *req.JoinDate == "" {
			current.JoinDate = nil
		} else {
			d, err := time.Parse(joinDateLayout, *req.JoinDate)
			if err != nil {
				return Employee{}, err
			}
			current.JoinDate = &d
		}
	}
	if req.EmployeeTypeID != nil {
		current.EmployeeTypeID = *req.EmployeeTypeID
	}
	if req.StatusID != nil {
		current.StatusID = *req.StatusID
	}
	return s.repo.Update(ctx, tenantID, id, current)
}

// Delete removes an employee within the tenant.
func (s *Service) Delete(ctx context.Context, tenantID, id string) error {
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "employee deleted",
		slog.String("employee_id", id),
		slog.String("organization_id", tenantID))
	return nil
}
