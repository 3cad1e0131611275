package employees

type CreateEmployeeRequest struct {
	OrganizationID string `json:"organizationId" validate:"required,uuid"`
	FirstName      string `json:"firstName" validate:"required,min=1,max=80"`
	LastName       string `json:"lastName" validate:"required,min=1,max=80"`
	OfficialEmail  string `json:"officialEmail" validate:"required,email"`
	Mobile         string `json:"mobile,omitempty" validate:"omitempty,max=20"`
	Gender         string `json:"gender,omitempty" validate:"omitempty,oneof=MALE FEMALE OTHER"`
	JoinDate       string `json:"joinDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EmployeeTypeID string `json:"employeeTypeId,omitempty" validate:"omitempty,uuid"`
	StatusID       string `json:"statusId,omitempty" validate:"omitempty,uuid"`
}

type UpdateEmployeeRequest struct {
	FirstName      *string `json:"firstName,omitempty" validate:"omitempty,min=1,max=80"`
	LastName       *string `json:"lastName,omitempty" validate:"omitempty,min=1,max=80"`
	OfficialEmail  *string `json:"officialEmail,omitempty" validate:"omitempty,email"`
	Mobile         *string `json:"mobile,omitempty" validate:"omitempty,max=20"`
	Gender         *string `json:"gender,omitempty" validate:"omitempty,oneof=MALE FEMALE OTHER"`
	JoinDate       *string `json:"joinDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EmployeeTypeID *string `json:"employeeTypeId,omitempty" validate:"omitempty,uuid"`
	StatusID       *string `json:"statusId,omitempty" validate:"omitempty,uuid"`
}

// ListFilters narrows and pages the employee list. TenantID is always set
// from the caller's resolved identity, never from request input.
type ListFilters struct {
	TenantID string
	Search   string
	Page     int
	Limit    int
}

// ListResult is one page of employees plus the unpaged total.
type ListResult struct {
	Employees []Employee `json:"employees"`
	Total     int        `json:"total"`
	Page      int        `json:"page"`
	Limit     int        `json:"limit"`
}
