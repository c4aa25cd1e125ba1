package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrms/internal/platform/apperr"
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

func collectResources(rows pgx.Rows) ([]Resource, error) {
	defer rows.Close()
	var out []Resource
	for rows.Next() {
		var r Resource
		if err := rows.Scan(&r.ID, &r.Name, &r.URL, &r.Method); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) UserResources(ctx context.Context, userID int64) ([]Resource, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT DISTINCT res.id, res.name, res.url, res.method
    FROM user_roles ur
    JOIN role_resources rr ON rr.role_id = ur.role_id
    JOIN resources res ON res.id = rr.resource_id
    WHERE ur.user_id = $1
    ORDER BY res.id
  `, userID)
	if err != nil {
		return nil, err
	}
	return collectResources(rows)
}

func (s *Store) UserRoleNames(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT r.name
    FROM user_roles ur
    JOIN roles r ON r.id = ur.role_id
    WHERE ur.user_id = $1
    ORDER BY r.name
  `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (s *Store) CredentialsByUsername(ctx context.Context, username string) (Credentials, error) {
	var c Credentials
	err := s.DB.QueryRow(ctx, `
    SELECT id, username, password_hash, enabled
    FROM users
    WHERE LOWER(username) = LOWER($1)
  `, username).Scan(&c.ID, &c.Username, &c.PasswordHash, &c.Enabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return Credentials{}, ErrUserNotFound
	}
	return c, err
}

func (s *Store) GetUser(ctx context.Context, id int64) (User, error) {
	var u User
	err := s.DB.QueryRow(ctx, `
    SELECT id, username, email, enabled, employee_id, last_login
    FROM users
    WHERE id = $1
  `, id).Scan(&u.ID, &u.Username, &u.Email, &u.Enabled, &u.EmployeeID, &u.LastLogin)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	u.Roles, err = s.UserRoleNames(ctx, id)
	return u, err
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID int64) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login = now() WHERE id = $1", userID)
	return err
}

func (s *Store) ReplaceUserRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	if _, err := s.DB.Exec(ctx, "DELETE FROM user_roles WHERE user_id = $1", userID); err != nil {
		return err
	}
	for _, roleID := range roleIDs {
		_, err := s.DB.Exec(ctx, `
      INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING
    `, userID, roleID)
		if err != nil {
			return apperr.FromPG(err)
		}
	}
	return nil
}

func (s *Store) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, name, description FROM roles ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Role
	for rows.Next() {
		var r Role
		if err := rows.Scan(&r.ID, &r.Name, &r.Description); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) GetRole(ctx context.Context, id int64) (Role, error) {
	var r Role
	err := s.DB.QueryRow(ctx, "SELECT id, name, description FROM roles WHERE id = $1", id).Scan(&r.ID, &r.Name, &r.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return Role{}, ErrRoleNotFound
	}
	return r, err
}

func (s *Store) CreateRole(ctx context.Context, r Role) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, "INSERT INTO roles (name, description) VALUES ($1, $2) RETURNING id", r.Name, r.Description).Scan(&id)
	return id, apperr.FromPG(err)
}

func (s *Store) UpdateRole(ctx context.Context, r Role) error {
	tag, err := s.DB.Exec(ctx, "UPDATE roles SET name = $1, description = $2 WHERE id = $3", r.Name, r.Description, r.ID)
	if err != nil {
		return apperr.FromPG(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRoleNotFound
	}
	return nil
}

func (s *Store) DeleteRole(ctx context.Context, id int64) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM roles WHERE id = $1", id)
	if err != nil {
		return apperr.FromPG(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRoleNotFound
	}
	return nil
}

func (s *Store) RoleNameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM roles WHERE name = $1 AND id <> $2", name, excludeID).Scan(&count)
	return count > 0, err
}

func (s *Store) CountRoleUsers(ctx context.Context, id int64) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM user_roles WHERE role_id = $1", id).Scan(&count)
	return count, err
}

func (s *Store) CountRoles(ctx context.Context, ids []int64) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM roles WHERE id = ANY($1)", ids).Scan(&count)
	return count, err
}

func (s *Store) ReplaceRoleResources(ctx context.Context, roleID int64, resourceIDs []int64) error {
	if _, err := s.DB.Exec(ctx, "DELETE FROM role_resources WHERE role_id = $1", roleID); err != nil {
		return err
	}
	for _, resourceID := range resourceIDs {
		_, err := s.DB.Exec(ctx, `
      INSERT INTO role_resources (role_id, resource_id) VALUES ($1, $2) ON CONFLICT DO NOTHING
    `, roleID, resourceID)
		if err != nil {
			return apperr.FromPG(err)
		}
	}
	return nil
}

func (s *Store) RoleResources(ctx context.Context, roleID int64) ([]Resource, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT res.id, res.name, res.url, res.method
    FROM role_resources rr
    JOIN resources res ON res.id = rr.resource_id
    WHERE rr.role_id = $1
    ORDER BY res.id
  `, roleID)
	if err != nil {
		return nil, err
	}
	return collectResources(rows)
}

func (s *Store) ListResources(ctx context.Context) ([]Resource, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, name, url, method FROM resources ORDER BY name")
	if err != nil {
		return nil, err
	}
	return collectResources(rows)
}

func (s *Store) GetResource(ctx context.Context, id int64) (Resource, error) {
	var r Resource
	err := s.DB.QueryRow(ctx, "SELECT id, name, url, method FROM resources WHERE id = $1", id).Scan(&r.ID, &r.Name, &r.URL, &r.Method)
	if errors.Is(err, pgx.ErrNoRows) {
		return Resource{}, ErrResourceNotFound
	}
	return r, err
}

func (s *Store) CreateResource(ctx context.Context, r Resource) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, `
    INSERT INTO resources (name, url, method) VALUES ($1, $2, $3) RETURNING id
  `, r.Name, r.URL, r.Method).Scan(&id)
	return id, apperr.FromPG(err)
}

func (s *Store) UpdateResource(ctx context.Context, r Resource) error {
	tag, err := s.DB.Exec(ctx, "UPDATE resources SET name = $1, url = $2, method = $3 WHERE id = $4", r.Name, r.URL, r.Method, r.ID)
	if err != nil {
		return apperr.FromPG(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrResourceNotFound
	}
	return nil
}

func (s *Store) DeleteResource(ctx context.Context, id int64) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM resources WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrResourceNotFound
	}
	return nil
}

func (s *Store) ResourceNameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM resources WHERE name = $1 AND id <> $2", name, excludeID).Scan(&count)
	return count > 0, err
}

func (s *Store) CountResources(ctx context.Context, ids []int64) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM resources WHERE id = ANY($1)", ids).Scan(&count)
	return count, err
}
