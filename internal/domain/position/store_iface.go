package position

import "context"

type StoreAPI interface {
	Create(ctx context.Context, p Position) (int64, error)
	Get(ctx context.Context, id int64) (Position, error)
	Update(ctx context.Context, p Position) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]Position, error)
	TitleExists(ctx context.Context, title string, excludeID int64) (bool, error)
	CountEmployees(ctx context.Context, id int64) (int, error)
}
