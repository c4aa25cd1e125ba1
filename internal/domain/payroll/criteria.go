package payroll

import (
	"github.com/shopspring/decimal"

	"hrms/internal/domain/search"
)

type Criteria struct {
	EmployeeID   *int64
	DepartmentID *int64
	Status       Status
	PeriodFrom   string
	PeriodTo     string
	NetMin       *decimal.Decimal
	NetMax       *decimal.Decimal
}

var sortColumns = map[string]string{
	"payPeriod":  "l.pay_period",
	"netSalary":  "l.net_salary",
	"status":     "l.status",
	"employee":   "e.last_name",
	"department": "d.name",
}

func (c Criteria) Validate() error {
	for _, p := range []string{c.PeriodFrom, c.PeriodTo} {
		if p == "" {
			continue
		}
		if _, err := ParsePeriod(p); err != nil {
			return err
		}
	}
	if c.PeriodFrom != "" && c.PeriodTo != "" && c.PeriodFrom > c.PeriodTo {
		return ErrInvalidRange
	}
	if c.NetMin != nil && c.NetMax != nil && c.NetMin.GreaterThan(*c.NetMax) {
		return ErrInvalidRange
	}
	return nil
}

// Spec renders the set fields. Periods compare as text, which orders
// correctly for YYYY-MM.
func (c Criteria) Spec() search.Spec {
	var specs []search.Spec
	if c.EmployeeID != nil {
		specs = append(specs, search.Eq("l.employee_id", *c.EmployeeID))
	}
	if c.DepartmentID != nil {
		specs = append(specs, search.Eq("e.department_id", *c.DepartmentID))
	}
	if c.Status != "" {
		specs = append(specs, search.Eq("l.status", string(c.Status)))
	}
	specs = append(specs,
		search.Between("l.pay_period", nonEmpty(c.PeriodFrom), nonEmpty(c.PeriodTo)),
		search.Between("l.net_salary", optional(c.NetMin), optional(c.NetMax)),
	)
	return search.And(specs...)
}

func nonEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func optional[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
