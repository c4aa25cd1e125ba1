// Package validate wraps go-playground/validator so struct tag failures come
// back as validation errors carrying a field -> reason map.
package validate

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"hrms/internal/platform/apperr"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})
		_ = instance.RegisterValidation("singleline", func(fl validator.FieldLevel) bool {
			return !strings.ContainsAny(fl.Field().String(), "\r\n")
		})
	})
	return instance
}

// Struct validates v and returns an *apperr.Error of kind validation when
// any tag fails.
func Struct(v any) error {
	err := get().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = reason(fe)
	}
	return apperr.WithDetails(apperr.KindValidation, "payload validation failed", map[string]any{"fields": fields})
}

// Fields returns the field -> reason map carried by an error from Struct,
// or nil when err carries none.
func Fields(err error) map[string]string {
	details, _ := apperr.DetailsOf(err).(map[string]any)
	fields, _ := details["fields"].(map[string]string)
	return fields
}

// MaxAmount is the exclusive upper bound of a NUMERIC(14,2) money column.
var MaxAmount = decimal.New(1, 12)

// Amount returns why d cannot be stored as a money amount, or "" when it can.
func Amount(d decimal.Decimal) string {
	switch {
	case d.IsNegative():
		return "must not be negative"
	case !d.Equal(d.Round(2)):
		return "must have at most 2 decimal places"
	case d.GreaterThanOrEqual(MaxAmount):
		return "must be less than " + MaxAmount.String()
	}
	return ""
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	case "singleline":
		return "must not contain line breaks"
	default:
		return "failed " + fe.Tag() + " check"
	}
}
