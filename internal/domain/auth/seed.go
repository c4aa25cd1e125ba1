package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"hrms/internal/platform/config"
	"hrms/internal/platform/db"
)

// Seed installs the default roles, resources and the admin account. It is
// idempotent: existing rows are left alone.
func Seed(ctx context.Context, pool *db.Pool, cfg config.Config, logger *zap.Logger) error {
	return db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		roleIDs, err := ensureRoles(ctx, tx)
		if err != nil {
			return err
		}
		resourceIDs, err := ensureResources(ctx, tx)
		if err != nil {
			return err
		}
		if err := ensureRoleResources(ctx, tx, roleIDs, resourceIDs); err != nil {
			return err
		}
		created, err := ensureAdminUser(ctx, tx, roleIDs[RoleAdmin], cfg)
		if err != nil {
			return err
		}
		logger.Info("seed complete",
			zap.Int("roles", len(roleIDs)),
			zap.Int("resources", len(resourceIDs)),
			zap.Bool("adminCreated", created),
		)
		return nil
	})
}

func ensureRoles(ctx context.Context, q db.Querier) (map[string]int64, error) {
	ids := make(map[string]int64, len(defaultRoles))
	for name, description := range defaultRoles {
		var id int64
		err := q.QueryRow(ctx, "SELECT id FROM roles WHERE name = $1", name).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			err = q.QueryRow(ctx, "INSERT INTO roles (name, description) VALUES ($1, $2) RETURNING id", name, description).Scan(&id)
		}
		if err != nil {
			return nil, fmt.Errorf("seed role %s: %w", name, err)
		}
		ids[name] = id
	}
	return ids, nil
}

func ensureResources(ctx context.Context, q db.Querier) (map[string]int64, error) {
	ids := make(map[string]int64, len(defaultResources))
	for _, res := range defaultResources {
		var id int64
		err := q.QueryRow(ctx, "SELECT id FROM resources WHERE name = $1", res.name).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			err = q.QueryRow(ctx,
				"INSERT INTO resources (name, url, method) VALUES ($1, $2, $3) RETURNING id",
				res.name, res.url, res.method,
			).Scan(&id)
		}
		if err != nil {
			return nil, fmt.Errorf("seed resource %s: %w", res.name, err)
		}
		ids[res.name] = id
	}
	return ids, nil
}

func ensureRoleResources(ctx context.Context, q db.Querier, roleIDs, resourceIDs map[string]int64) error {
	for _, res := range defaultResources {
		for _, role := range res.roles {
			roleID, ok := roleIDs[role]
			if !ok {
				return errors.New("role not seeded: " + role)
			}
			_, err := q.Exec(ctx,
				"INSERT INTO role_resources (role_id, resource_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
				roleID, resourceIDs[res.name],
			)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func ensureAdminUser(ctx context.Context, q db.Querier, roleID int64, cfg config.Config) (bool, error) {
	username := strings.TrimSpace(cfg.SeedAdminUsername)
	if username == "" || strings.TrimSpace(cfg.SeedAdminPassword) == "" {
		return false, nil
	}

	var id int64
	err := q.QueryRow(ctx, "SELECT id FROM users WHERE username = $1", username).Scan(&id)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	hash, err := HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return false, err
	}
	err = q.QueryRow(ctx,
		"INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3) RETURNING id",
		username, strings.ToLower(strings.TrimSpace(cfg.SeedAdminEmail)), hash,
	).Scan(&id)
	if err != nil {
		return false, err
	}
	_, err = q.Exec(ctx, "INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)", id, roleID)
	return err == nil, err
}
