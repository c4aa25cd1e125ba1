package employee

import (
	"time"

	"github.com/shopspring/decimal"

	"hrms/internal/domain/search"
)

// Criteria filters employee searches. Zero-valued fields do not filter.
type Criteria struct {
	Name                  string
	DepartmentID          *int64
	IncludeSubDepartments bool
	PositionID            *int64
	Status                Status
	HiredFrom             *time.Time
	HiredTo               *time.Time
	SalaryMin             *decimal.Decimal
	SalaryMax             *decimal.Decimal
}

var sortColumns = map[string]string{
	"name":           "e.last_name",
	"employeeNumber": "e.employee_number",
	"hireDate":       "e.hire_date",
	"salary":         "e.salary",
	"department":     "d.name",
}

func (c Criteria) Validate() error {
	if c.HiredFrom != nil && c.HiredTo != nil && c.HiredFrom.After(*c.HiredTo) {
		return ErrInvalidRange
	}
	if c.SalaryMin != nil && c.SalaryMax != nil && c.SalaryMin.GreaterThan(*c.SalaryMax) {
		return ErrInvalidRange
	}
	return nil
}

// Spec renders the criteria. deptPath is the materialized path of
// DepartmentID and is only consulted when sub-departments are included.
func (c Criteria) Spec(deptPath string) search.Spec {
	var specs []search.Spec
	if c.Name != "" {
		specs = append(specs, search.Or(
			search.Like("e.first_name", c.Name),
			search.Like("e.last_name", c.Name),
			search.Like("e.employee_number", c.Name),
		))
	}
	if c.DepartmentID != nil {
		if c.IncludeSubDepartments && deptPath != "" {
			specs = append(specs, search.HasPrefix("d.dep_path", deptPath))
		} else {
			specs = append(specs, search.Eq("e.department_id", *c.DepartmentID))
		}
	}
	if c.PositionID != nil {
		specs = append(specs, search.Eq("e.position_id", *c.PositionID))
	}
	if c.Status != "" {
		specs = append(specs, search.Eq("e.status", string(c.Status)))
	}
	specs = append(specs,
		search.Between("e.hire_date", optional(c.HiredFrom), optional(c.HiredTo)),
		search.Between("e.salary", optional(c.SalaryMin), optional(c.SalaryMax)),
	)
	return search.And(specs...)
}

// optional unwraps p so a nil pointer reaches Between as an untyped nil.
func optional[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
