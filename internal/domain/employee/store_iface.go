package employee

import (
	"context"

	"hrms/internal/domain/search"
)

type StoreAPI interface {
	WithTx(ctx context.Context, fn func(StoreAPI) error) error
	Create(ctx context.Context, e Employee) (int64, error)
	Get(ctx context.Context, id int64) (Employee, error)
	Update(ctx context.Context, e Employee) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, spec search.Spec, page search.Page) ([]Employee, int, error)
	NumberExists(ctx context.Context, number string, excludeID int64) (bool, error)
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
	ExistingNumbers(ctx context.Context, numbers []string) (map[string]bool, error)
	ExistingEmails(ctx context.Context, emails []string) (map[string]bool, error)
	DepartmentExists(ctx context.Context, id int64) (bool, error)
	PositionExists(ctx context.Context, id int64) (bool, error)
	DepartmentPath(ctx context.Context, id int64) (string, error)
	DepartmentIDsByName(ctx context.Context) (map[string]int64, error)
	PositionIDsByName(ctx context.Context) (map[string]int64, error)
	CountLedgers(ctx context.Context, id int64) (int, error)
}
