package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"hrms/internal/platform/validate"
)

type Service struct {
	store    StoreAPI
	resolver *Resolver
	secret   string
	ttl      time.Duration
	logger   *zap.Logger
}

func NewService(store StoreAPI, resolver *Resolver, secret string, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{store: store, resolver: resolver, secret: secret, ttl: ttl, logger: logger}
}

func (s *Service) Resolver() *Resolver {
	return s.resolver
}

// Login checks the password and issues a token carrying the user's roles.
// Unknown users, disabled users and wrong passwords look the same.
func (s *Service) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := validate.Struct(in); err != nil {
		return LoginResult{}, err
	}
	creds, err := s.store.CredentialsByUsername(ctx, in.Username)
	if errors.Is(err, ErrUserNotFound) {
		return LoginResult{}, ErrBadCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if !creds.Enabled || CheckPassword(creds.PasswordHash, in.Password) != nil {
		s.logger.Info("login rejected", zap.String("username", in.Username))
		return LoginResult{}, ErrBadCredentials
	}

	user, err := s.store.GetUser(ctx, creds.ID)
	if err != nil {
		return LoginResult{}, err
	}
	token, expires, err := GenerateToken(s.secret, Claims{UserID: user.ID, Username: user.Username, Roles: user.Roles}, s.ttl)
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.store.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("update last login failed", zap.Int64("userId", user.ID), zap.Error(err))
	}
	s.logger.Info("login succeeded", zap.Int64("userId", user.ID))
	return LoginResult{Token: token, ExpiresAt: expires, User: user}, nil
}

func (s *Service) Me(ctx context.Context, userID int64) (User, error) {
	return s.store.GetUser(ctx, userID)
}

func (s *Service) CheckPermission(ctx context.Context, userID int64, urlPath, method string) (bool, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return false, err
	}
	return s.resolver.HasPermission(ctx, userID, urlPath, method)
}

// CheckRole reports whether an existing user holds role.
func (s *Service) CheckRole(ctx context.Context, userID int64, role string) (bool, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return false, err
	}
	return s.resolver.HasRole(ctx, userID, role)
}

// mutate runs fn in a transaction and empties the permission cache once it
// commits.
func (s *Service) mutate(ctx context.Context, fn func(StoreAPI) error) error {
	if err := s.store.WithTx(ctx, fn); err != nil {
		return err
	}
	return s.resolver.Evict(ctx)
}

func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.store.ListRoles(ctx)
}

func (s *Service) CreateRole(ctx context.Context, in RoleInput) (Role, error) {
	in.Name = strings.ToUpper(strings.TrimSpace(in.Name))
	if err := validate.Struct(in); err != nil {
		return Role{}, err
	}
	role := Role{Name: in.Name, Description: in.Description}
	err := s.mutate(ctx, func(store StoreAPI) error {
		taken, err := store.RoleNameExists(ctx, in.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrRoleNameTaken
		}
		role.ID, err = store.CreateRole(ctx, role)
		return err
	})
	return role, err
}

func (s *Service) UpdateRole(ctx context.Context, id int64, in RoleInput) (Role, error) {
	in.Name = strings.ToUpper(strings.TrimSpace(in.Name))
	if err := validate.Struct(in); err != nil {
		return Role{}, err
	}
	role := Role{ID: id, Name: in.Name, Description: in.Description}
	err := s.mutate(ctx, func(store StoreAPI) error {
		if _, err := store.GetRole(ctx, id); err != nil {
			return err
		}
		taken, err := store.RoleNameExists(ctx, in.Name, id)
		if err != nil {
			return err
		}
		if taken {
			return ErrRoleNameTaken
		}
		return store.UpdateRole(ctx, role)
	})
	return role, err
}

func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	return s.mutate(ctx, func(store StoreAPI) error {
		if _, err := store.GetRole(ctx, id); err != nil {
			return err
		}
		users, err := store.CountRoleUsers(ctx, id)
		if err != nil {
			return err
		}
		if users > 0 {
			return ErrRoleInUse
		}
		return store.DeleteRole(ctx, id)
	})
}

// SetRoleResources replaces the resources a role owns.
func (s *Service) SetRoleResources(ctx context.Context, roleID int64, in IDsInput) ([]Resource, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	ids := unique(in.IDs)
	var out []Resource
	err := s.mutate(ctx, func(store StoreAPI) error {
		if _, err := store.GetRole(ctx, roleID); err != nil {
			return err
		}
		if len(ids) > 0 {
			count, err := store.CountResources(ctx, ids)
			if err != nil {
				return err
			}
			if count != len(ids) {
				return ErrResourceNotFound
			}
		}
		if err := store.ReplaceRoleResources(ctx, roleID, ids); err != nil {
			return err
		}
		var err error
		out, err = store.RoleResources(ctx, roleID)
		return err
	})
	return out, err
}

func (s *Service) ListResources(ctx context.Context) ([]Resource, error) {
	return s.store.ListResources(ctx)
}

func normalizeResource(in *ResourceInput) {
	in.Name = strings.TrimSpace(in.Name)
	in.URL = strings.TrimSpace(in.URL)
	in.Method = strings.ToUpper(strings.TrimSpace(in.Method))
}

func (s *Service) CreateResource(ctx context.Context, in ResourceInput) (Resource, error) {
	normalizeResource(&in)
	if err := validate.Struct(in); err != nil {
		return Resource{}, err
	}
	res := Resource{Name: in.Name, URL: in.URL, Method: in.Method}
	err := s.mutate(ctx, func(store StoreAPI) error {
		taken, err := store.ResourceNameExists(ctx, in.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrResourceNameTaken
		}
		res.ID, err = store.CreateResource(ctx, res)
		return err
	})
	return res, err
}

func (s *Service) UpdateResource(ctx context.Context, id int64, in ResourceInput) (Resource, error) {
	normalizeResource(&in)
	if err := validate.Struct(in); err != nil {
		return Resource{}, err
	}
	res := Resource{ID: id, Name: in.Name, URL: in.URL, Method: in.Method}
	err := s.mutate(ctx, func(store StoreAPI) error {
		if _, err := store.GetResource(ctx, id); err != nil {
			return err
		}
		taken, err := store.ResourceNameExists(ctx, in.Name, id)
		if err != nil {
			return err
		}
		if taken {
			return ErrResourceNameTaken
		}
		return store.UpdateResource(ctx, res)
	})
	return res, err
}

func (s *Service) DeleteResource(ctx context.Context, id int64) error {
	return s.mutate(ctx, func(store StoreAPI) error {
		return store.DeleteResource(ctx, id)
	})
}

// SetUserRoles replaces the roles assigned to a user.
func (s *Service) SetUserRoles(ctx context.Context, userID int64, in IDsInput) (User, error) {
	if err := validate.Struct(in); err != nil {
		return User{}, err
	}
	ids := unique(in.IDs)
	err := s.mutate(ctx, func(store StoreAPI) error {
		if _, err := store.GetUser(ctx, userID); err != nil {
			return err
		}
		if len(ids) > 0 {
			count, err := store.CountRoles(ctx, ids)
			if err != nil {
				return err
			}
			if count != len(ids) {
				return ErrRoleNotFound
			}
		}
		return store.ReplaceUserRoles(ctx, userID, ids)
	})
	if err != nil {
		return User{}, err
	}
	return s.store.GetUser(ctx, userID)
}

func unique(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
