package department

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrms/internal/platform/db"
)

type Store struct {
	DB   db.Querier
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool, pool: pool}
}

func (s *Store) WithTx(ctx context.Context, fn func(StoreAPI) error) error {
	if s.pool == nil {
		return fn(s)
	}
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&Store{DB: tx})
	})
}

const departmentColumns = `id, name, parent_id, dep_path, is_parent, enabled, created_at`

func scanDepartment(row pgx.Row) (Department, error) {
	var d Department
	err := row.Scan(&d.ID, &d.Name, &d.ParentID, &d.DepPath, &d.IsParent, &d.Enabled, &d.CreatedAt)
	return d, err
}

func collect(rows pgx.Rows) ([]Department, error) {
	defer rows.Close()
	var out []Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, d Department) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, `
    INSERT INTO departments (name, parent_id, dep_path, is_parent, enabled)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, d.Name, d.ParentID, d.DepPath, d.IsParent, d.Enabled).Scan(&id)
	return id, err
}

func (s *Store) Get(ctx context.Context, id int64) (Department, error) {
	d, err := scanDepartment(s.DB.QueryRow(ctx, `SELECT `+departmentColumns+` FROM departments WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Department{}, ErrNotFound
	}
	return d, err
}

func (s *Store) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM departments WHERE LOWER(name) = LOWER($1) AND id <> $2
  `, name, excludeID).Scan(&count)
	return count > 0, err
}

func (s *Store) Update(ctx context.Context, d Department) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE departments
    SET name = $1, parent_id = $2, dep_path = $3, is_parent = $4, enabled = $5
    WHERE id = $6
  `, d.Name, d.ParentID, d.DepPath, d.IsParent, d.Enabled, d.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpdatePath(ctx context.Context, id int64, path string) error {
	_, err := s.DB.Exec(ctx, "UPDATE departments SET dep_path = $1 WHERE id = $2", path, id)
	return err
}

func (s *Store) SetIsParent(ctx context.Context, id int64, isParent bool) error {
	_, err := s.DB.Exec(ctx, "UPDATE departments SET is_parent = $1 WHERE id = $2", isParent, id)
	return err
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM departments WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+departmentColumns+` FROM departments ORDER BY dep_path`)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (s *Store) ListChildren(ctx context.Context, parentID int64) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+departmentColumns+` FROM departments WHERE parent_id = $1 ORDER BY id`, parentID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (s *Store) ListByPathPrefix(ctx context.Context, prefix string) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+departmentColumns+`
    FROM departments
    WHERE dep_path LIKE $1 || '%'
    ORDER BY dep_path
  `, prefix)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (s *Store) CountChildren(ctx context.Context, id int64) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM departments WHERE parent_id = $1", id).Scan(&count)
	return count, err
}

func (s *Store) CountEmployees(ctx context.Context, id int64) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE department_id = $1", id).Scan(&count)
	return count, err
}
