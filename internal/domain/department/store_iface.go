package department

import "context"

type StoreAPI interface {
	WithTx(ctx context.Context, fn func(StoreAPI) error) error
	Create(ctx context.Context, d Department) (int64, error)
	Get(ctx context.Context, id int64) (Department, error)
	NameExists(ctx context.Context, name string, excludeID int64) (bool, error)
	Update(ctx context.Context, d Department) error
	UpdatePath(ctx context.Context, id int64, path string) error
	SetIsParent(ctx context.Context, id int64, isParent bool) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]Department, error)
	ListChildren(ctx context.Context, parentID int64) ([]Department, error)
	ListByPathPrefix(ctx context.Context, prefix string) ([]Department, error)
	CountChildren(ctx context.Context, id int64) (int, error)
	CountEmployees(ctx context.Context, id int64) (int, error)
}
