package auth

import "hrms/internal/platform/apperr"

var (
	ErrBadCredentials    = apperr.New(apperr.KindUnauthorized, "invalid username or password")
	ErrInvalidToken      = apperr.New(apperr.KindUnauthorized, "invalid or expired token")
	ErrUserNotFound      = apperr.NotFound("user not found")
	ErrRoleNotFound      = apperr.NotFound("role not found")
	ErrResourceNotFound  = apperr.NotFound("resource not found")
	ErrRoleNameTaken     = apperr.Conflict("role name already exists")
	ErrResourceNameTaken = apperr.Conflict("resource name already exists")
	ErrRoleInUse         = apperr.IllegalState("role is still assigned to users")
)
