// Package apperr holds the error taxonomy shared by the domain services and
// the HTTP layer.
package apperr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindIllegalState Kind = "illegal_state"
	KindCalculation  Kind = "calculation"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindInternal     Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	Details any
}

func (e *Error) Error() string {
	return e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func WithDetails(kind Kind, message string, details any) *Error {
	return &Error{Kind: kind, Message: message, Details: details}
}

func Validation(message string) *Error   { return New(KindValidation, message) }
func NotFound(message string) *Error     { return New(KindNotFound, message) }
func Conflict(message string) *Error     { return New(KindConflict, message) }
func IllegalState(message string) *Error { return New(KindIllegalState, message) }
func Calculation(message string) *Error  { return New(KindCalculation, message) }

// KindOf reports the kind of the first *Error in err's chain. Postgres
// constraint violations that escaped the service pre-checks are mapped as
// well; anything else is internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return KindConflict
		case "23503", "23514":
			return KindValidation
		}
	}
	return KindInternal
}

// DetailsOf returns the details attached to the first *Error in err's chain.
func DetailsOf(err error) any {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Details
	}
	return nil
}

// FromPG turns Postgres constraint violations into *Error values so they
// survive wrapping with a useful message. Other errors pass through.
func FromPG(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505":
		return Newf(KindConflict, "duplicate value violates %s", pgErr.ConstraintName)
	case "23503":
		return Newf(KindValidation, "referenced row does not exist (%s)", pgErr.ConstraintName)
	case "23514":
		return Newf(KindValidation, "value violates check %s", pgErr.ConstraintName)
	case "22003":
		return New(KindValidation, "numeric value out of range")
	}
	return err
}
