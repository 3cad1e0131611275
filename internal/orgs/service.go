package orgs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nimbus-hr/nimbus-hr/internal/auth"
	"github.com/nimbus-hr/nimbus-hr/internal/platform/httpx"
	"github.com/nimbus-hr/nimbus-hr/internal/rbac"
)

// ErrSetupComplete rejects the bootstrap endpoint once any organization
// exists.
var ErrSetupComplete = errors.New("initial setup already completed")

// Accounts creates user accounts during bootstrap. Implemented by
// *auth.Service.
type Accounts interface {
	SignUp(ctx context.Context, req auth.SignUpRequest) (*auth.SignUpResult, error)
}

// InitialSetupResult bundles the bootstrap organization with its first
// administrator account.
type InitialSetupResult struct {
	Organization Organization       `json:"organization"`
	Admin        *auth.SignUpResult `json:"admin"`
}

// Service implements organization management.
type Service struct {
	logger   *slog.Logger
	repo     Repository
	accounts Accounts
}

// NewService constructs a Service. accounts is only needed for bootstrap and
// may be nil in deployments that disable it.
func NewService(logger *slog.Logger, repo Repository, accounts Accounts) *Service {
	return &Service{logger: logger, repo: repo, accounts: accounts}
}

// List returns one page of organizations.
func (s *Service) List(ctx context.Context, filters ListFilters) (*ListResult, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.Limit < 1 || filters.Limit > 100 {
		filters.Limit = 20
	}
	orgs, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	if orgs == nil {
		orgs = []Organization{}
	}
	return &ListResult{Organizations: orgs, Total: total, Page: filters.Page, Limit: filters.Limit}, nil
}

// Get returns one organization by id.
func (s *Service) Get(ctx context.Context, id string) (Organization, error) {
	return s.repo.Get(ctx, id)
}

// GetBySlug returns one organization by slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (Organization, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// Create registers a new organization. The slug is derived from the name
// when not supplied; slug collisions surface as a duplicate error.
func (s *Service) Create(ctx context.Context, req CreateOrganizationRequest) (Organization, error) {
	return s.create(ctx, req, false)
}

func (s *Service) create(ctx context.Context, req CreateOrganizationRequest, superAdmin bool) (Organization, error) {
	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Name)
	}
	if slug == "" {
		return Organization{}, httpx.ErrValidation
	}

	// Pre-check before the insert; the unique index still backstops races.
	taken, err := s.repo.SlugExists(ctx, slug)
	if err != nil {
		s.logger.ErrorContext(ctx, "slug lookup failed", slog.Any("error", err))
		return Organization{}, err
	}
	if taken {
		return Organization{}, httpx.ErrDuplicate
	}

	org, err := s.repo.Create(ctx, Organization{
		Name:         req.Name,
		Slug:         slug,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		GSTIN:        req.GSTIN,
		PAN:          req.PAN,
		IsSuperAdmin: superAdmin,
	})
	if err != nil {
		if !errors.Is(err, httpx.ErrDuplicate) {
			s.logger.ErrorContext(ctx, "organization create failed", slog.Any("error", err))
		}
		return Organization{}, err
	}
	return org, nil
}

// Update applies a partial update on top of the stored record.
func (s *Service) Update(ctx context.Context, id string, req UpdateOrganizationRequest) (Organization, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Organization{}, err
	}
	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.Email != nil {
		current.Email = *req.Email
	}
	if req.Phone != nil {
		current.Phone = *req.Phone
	}
	if req.Address != nil {
		current.Address = *req.Address
	}
	if req.GSTIN != nil {
		current.GSTIN = *req.GSTIN
	}
	if req.PAN != nil {
		current.PAN = *req.PAN
	}
	return s.repo.Update(ctx, id, current)
}

// Delete removes an organization.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// InitialSetup bootstraps an empty installation: creates the founding
// organization and its SUPER_ADMIN account. Refused as soon as any
// organization exists, which keeps the endpoint safe to leave public.
func (s *Service) InitialSetup(ctx context.Context, req InitialSetupRequest) (*InitialSetupResult, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSetupComplete
	}
	if s.accounts == nil {
		return nil, errors.New("orgs: bootstrap disabled, no account service configured")
	}

	org, err := s.create(ctx, req.Organization, true)
	if err != nil {
		return nil, err
	}

	admin, err := s.accounts.SignUp(ctx, auth.SignUpRequest{
		Email:          req.AdminEmail,
		Password:       req.AdminPass,
		OrganizationID: org.ID,
		Role:           rbac.RoleSuperAdmin,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "bootstrap admin signup failed",
			slog.String("organization_id", org.ID), slog.Any("error", err))
		return nil, err
	}

	return &InitialSetupResult{Organization: org, Admin: admin}, nil
}
