package department

import "hrms/internal/platform/apperr"

var (
	ErrNotFound       = apperr.NotFound("department not found")
	ErrParentNotFound = apperr.NotFound("parent department not found")
	ErrNameTaken      = apperr.Conflict("department name already exists")
	ErrSelfParent     = apperr.Validation("department cannot be its own parent")
	ErrCycle          = apperr.Validation("new parent is a descendant of the department")
	ErrHasChildren    = apperr.IllegalState("department has child departments")
	ErrHasEmployees   = apperr.IllegalState("department has employees")
)
