package position

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"hrms/internal/platform/db"
)

type Store struct {
	DB db.Querier
}

func NewStore(q db.Querier) *Store {
	return &Store{DB: q}
}

func (s *Store) Create(ctx context.Context, p Position) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, `
    INSERT INTO positions (title, description, enabled)
    VALUES ($1,$2,$3)
    RETURNING id
  `, p.Title, p.Description, p.Enabled).Scan(&id)
	return id, err
}

func (s *Store) Get(ctx context.Context, id int64) (Position, error) {
	var p Position
	err := s.DB.QueryRow(ctx, `
    SELECT id, title, description, enabled, created_at
    FROM positions
    WHERE id = $1
  `, id).Scan(&p.ID, &p.Title, &p.Description, &p.Enabled, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Position{}, ErrNotFound
	}
	return p, err
}

func (s *Store) Update(ctx context.Context, p Position) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE positions SET title = $1, description = $2, enabled = $3 WHERE id = $4
  `, p.Title, p.Description, p.Enabled, p.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM positions WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]Position, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, title, description, enabled, created_at
    FROM positions
    ORDER BY title
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Position
	for rows.Next() {
		var p Position
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Enabled, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) TitleExists(ctx context.Context, title string, excludeID int64) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM positions WHERE LOWER(title) = LOWER($1) AND id <> $2
  `, title, excludeID).Scan(&count)
	return count > 0, err
}

func (s *Store) CountEmployees(ctx context.Context, id int64) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE position_id = $1", id).Scan(&count)
	return count, err
}
