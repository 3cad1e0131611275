package orgs

type CreateOrganizationRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Slug    string `json:"slug,omitempty" validate:"omitempty,min=2,max=120"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Address string `json:"address,omitempty" validate:"omitempty,max=500"`
	GSTIN   string `json:"gstin,omitempty" validate:"omitempty,len=15"`
	PAN     string `json:"pan,omitempty" validate:"omitempty,len=10"`
}

type UpdateOrganizationRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500"`
	GSTIN   *string `json:"gstin,omitempty" validate:"omitempty,len=15"`
	PAN     *string `json:"pan,omitempty" validate:"omitempty,len=10"`
}

// InitialSetupRequest bootstraps the first organization together with its
// first administrator account.
type InitialSetupRequest struct {
	Organization CreateOrganizationRequest `json:"organization" validate:"required"`
	AdminEmail   string                    `json:"adminEmail" validate:"required,email"`
	AdminPass    string                    `json:"adminPassword" validate:"required,min=8"`
}

// ListFilters narrows and pages the organization list.
type ListFilters struct {
	Search string
	Page   int
	Limit  int
}

// ListResult is one page of organizations plus the unpaged total.
type ListResult struct {
	Organizations []Organization `json:"organizations"`
	Total         int            `json:"total"`
	Page          int            `json:"page"`
	Limit         int            `json:"limit"`
}
