package auth

import "context"

type StoreAPI interface {
	WithTx(ctx context.Context, fn func(StoreAPI) error) error

	UserResources(ctx context.Context, userID int64) ([]Resource, error)
	UserRoleNames(ctx context.Context, userID int64) ([]string, error)
	CredentialsByUsername(ctx context.Context, username string) (Credentials, error)
	GetUser(ctx context.Context, id int64) (User, error)
	UpdateLastLogin(ctx context.Context, userID int64) error
	ReplaceUserRoles(ctx context.Context, userID int64, roleIDs []int64) error

	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id int64) (Role, error)
	CreateRole(ctx context.Context, r Role) (int64, error)
	UpdateRole(ctx context.Context, r Role) error
	DeleteRole(ctx context.Context, id int64) error
	RoleNameExists(ctx context.Context, name string, excludeID int64) (bool, error)
	CountRoleUsers(ctx context.Context, id int64) (int, error)
	CountRoles(ctx context.Context, ids []int64) (int, error)
	ReplaceRoleResources(ctx context.Context, roleID int64, resourceIDs []int64) error
	RoleResources(ctx context.Context, roleID int64) ([]Resource, error)

	ListResources(ctx context.Context) ([]Resource, error)
	GetResource(ctx context.Context, id int64) (Resource, error)
	CreateResource(ctx context.Context, r Resource) (int64, error)
	UpdateResource(ctx context.Context, r Resource) error
	DeleteResource(ctx context.Context, id int64) error
	ResourceNameExists(ctx context.Context, name string, excludeID int64) (bool, error)
	CountResources(ctx context.Context, ids []int64) (int, error)
}
