package auth

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"hrms/internal/platform/cache"
	"hrms/internal/platform/metrics"
)

// CacheNamespace holds every cached permission lookup. Mutations clear it
// as a whole.
const CacheNamespace = "permissions"

// PermissionStore is the part of StoreAPI the resolver reads.
type PermissionStore interface {
	UserResources(ctx context.Context, userID int64) ([]Resource, error)
	UserRoleNames(ctx context.Context, userID int64) ([]string, error)
}

type Resolver struct {
	store   PermissionStore
	cache   cache.Cache
	metrics *metrics.Collector
	logger  *zap.Logger
}

func NewResolver(store PermissionStore, c cache.Cache, m *metrics.Collector, logger *zap.Logger) *Resolver {
	if c == nil {
		c = cache.Noop{}
	}
	return &Resolver{store: store, cache: c, metrics: m, logger: logger}
}

// HasPermission reports whether any role of the user owns a resource whose
// pattern matches urlPath and whose method matches method.
func (r *Resolver) HasPermission(ctx context.Context, userID int64, urlPath, method string) (bool, error) {
	resources, err := r.resources(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, res := range resources {
		if MatchMethod(res.Method, method) && MatchPath(res.URL, urlPath) {
			return true, nil
		}
	}
	return false, nil
}

func (r *Resolver) HasRole(ctx context.Context, userID int64, role string) (bool, error) {
	roles, err := r.roles(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, name := range roles {
		if name == role {
			return true, nil
		}
	}
	return false, nil
}

// Evict drops every cached lookup.
func (r *Resolver) Evict(ctx context.Context) error {
	if err := r.cache.Clear(ctx, CacheNamespace); err != nil {
		return err
	}
	r.logger.Debug("permission cache cleared")
	return nil
}

func (r *Resolver) resources(ctx context.Context, userID int64) ([]Resource, error) {
	key := "resources:" + strconv.FormatInt(userID, 10)
	var cached []Resource
	if r.lookup(ctx, key, &cached) {
		return cached, nil
	}
	resources, err := r.store.UserResources(ctx, userID)
	if err != nil {
		return nil, err
	}
	r.remember(ctx, key, resources)
	return resources, nil
}

func (r *Resolver) roles(ctx context.Context, userID int64) ([]string, error) {
	key := "roles:" + strconv.FormatInt(userID, 10)
	var cached []string
	if r.lookup(ctx, key, &cached) {
		return cached, nil
	}
	roles, err := r.store.UserRoleNames(ctx, userID)
	if err != nil {
		return nil, err
	}
	r.remember(ctx, key, roles)
	return roles, nil
}

// lookup treats cache errors as misses so a cache outage only costs a query.
func (r *Resolver) lookup(ctx context.Context, key string, dest any) bool {
	found, err := r.cache.Get(ctx, CacheNamespace, key, dest)
	if err != nil {
		r.logger.Warn("permission cache read failed", zap.String("key", key), zap.Error(err))
		found = false
	}
	r.metrics.CacheLookup(CacheNamespace, found)
	return found
}

func (r *Resolver) remember(ctx context.Context, key string, value any) {
	if err := r.cache.Set(ctx, CacheNamespace, key, value); err != nil {
		r.logger.Warn("permission cache write failed", zap.String("key", key), zap.Error(err))
	}
}
