package notifications

import "hrms/internal/platform/apperr"

var (
	ErrNotFound     = apperr.NotFound("notification not found")
	ErrUserNotFound = apperr.NotFound("user not found")
	ErrMessageSelf  = apperr.Validation("cannot send a message to yourself")
)
