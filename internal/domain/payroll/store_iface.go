package payroll

import (
	"context"

	"hrms/internal/domain/search"
)

type StoreAPI interface {
	WithTx(ctx context.Context, fn func(StoreAPI) error) error
	Create(ctx context.Context, l Ledger) (int64, error)
	Get(ctx context.Context, id int64) (Ledger, error)
	Update(ctx context.Context, l Ledger) error
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, employeeID int64, period string) (bool, error)
	EmployeeExists(ctx context.Context, id int64) (bool, error)
	Search(ctx context.Context, spec search.Spec, page search.Page) ([]Ledger, int, error)
	ActiveEmployees(ctx context.Context) ([]ActiveEmployee, error)
	EmployeesWithLedger(ctx context.Context, period string) (map[int64]bool, error)
	PeriodTotals(ctx context.Context, period string) ([]StatusTotal, error)
	PaidLedgers(ctx context.Context, period string) ([]Ledger, error)
}
