package queries

import (
	"errors"
	"strings"

	"fulfillment/internal/core/application/session"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrGetActiveOrdersQueryIsNotConstructed = errors.New(
		"GetActiveOrdersQuery must be created via NewGetActiveOrdersQuery constructor",
	)
	ErrEmployeeCodeIsRequired = errs.NewValueIsRequiredError("employeeCode")
)

// GetActiveOrdersQuery lists the unfinished orders assigned to an employee.
type GetActiveOrdersQuery struct {
	employeeCode string

	guard guard.ConstructorGuard
}

// NewGetActiveOrdersQuery creates a GetActiveOrdersQuery.
// Returns ErrEmployeeCodeIsRequired if employeeCode is blank.
func NewGetActiveOrdersQuery(employeeCode string) (GetActiveOrdersQuery, error) {
	employeeCode = strings.TrimSpace(employeeCode)
	if employeeCode == "" {
		return GetActiveOrdersQuery{}, ErrEmployeeCodeIsRequired
	}
	return GetActiveOrdersQuery{employeeCode: employeeCode, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the GetActiveOrdersQuery was created through its constructor.
func (q GetActiveOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveOrdersQueryIsNotConstructed)
}

// EmployeeCode returns the employee whose orders are listed.
func (q GetActiveOrdersQuery) EmployeeCode() string {
	return q.employeeCode
}

// GetActiveOrdersQueryResponse splits active orders into those waiting for
// pickup and those in processing, newest deposit first.
type GetActiveOrdersQueryResponse struct {
	Planned         []session.OrderPayload
	Processing      []session.OrderPayload
	PlannedCount    int
	ProcessingCount int
}
