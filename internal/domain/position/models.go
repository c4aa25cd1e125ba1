package position

import (
	"time"

	"hrms/internal/platform/apperr"
)

type Position struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Input struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Enabled     *bool  `json:"enabled"`
}

var (
	ErrNotFound     = apperr.NotFound("position not found")
	ErrTitleTaken   = apperr.Conflict("position title already exists")
	ErrHasEmployees = apperr.IllegalState("position is held by employees")
)
