// Package employees manages tenant-scoped employee records.
package employees

import "time"

// Employee is one employee record within an organization.
type Employee struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organizationId"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	OfficialEmail  string     `json:"officialEmail"`
	Mobile         string     `json:"mobile,omitempty"`
	Gender         string     `json:"gender,omitempty"`
	JoinDate       *time.Time `json:"joinDate,omitempty"`
	EmployeeTypeID string     `json:"employeeTypeId,omitempty"`
	StatusID       string     `json:"statusId,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}
