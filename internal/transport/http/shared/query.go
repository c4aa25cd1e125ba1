package shared

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"hrms/internal/platform/apperr"
)

type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Query collects typed query parameters and the problems found while
// parsing them.
type Query struct {
	values map[string][]string
	issues []ValidationIssue
}

func NewQuery(values map[string][]string) *Query {
	return &Query{values: values}
}

func (q *Query) get(field string) string {
	if v := q.values[field]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

func (q *Query) add(field, reason string) {
	q.issues = append(q.issues, ValidationIssue{Field: field, Reason: reason})
}

func (q *Query) String(field string) string {
	return q.get(field)
}

func (q *Query) Bool(field string) bool {
	v, _ := strconv.ParseBool(q.get(field))
	return v
}

func (q *Query) Int64(field string) *int64 {
	raw := q.get(field)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		q.add(field, "must be a positive integer")
		return nil
	}
	return &v
}

// Date accepts YYYY-MM-DD or RFC3339.
func (q *Query) Date(field string) *time.Time {
	raw := q.get(field)
	if raw == "" {
		return nil
	}
	if v, err := time.Parse("2006-01-02", raw); err == nil {
		return &v
	}
	if v, err := time.Parse(time.RFC3339, raw); err == nil {
		return &v
	}
	q.add(field, "must be a valid date in YYYY-MM-DD format")
	return nil
}

func (q *Query) Decimal(field string) *decimal.Decimal {
	raw := q.get(field)
	if raw == "" {
		return nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		q.add(field, "must be a decimal number")
		return nil
	}
	return &v
}

// Err returns a validation error listing every bad parameter, or nil.
func (q *Query) Err() error {
	if len(q.issues) == 0 {
		return nil
	}
	issues := append([]ValidationIssue(nil), q.issues...)
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Field < issues[j].Field })
	return apperr.WithDetails(apperr.KindValidation, "query validation failed", map[string]any{"fields": issues})
}

// Invalid records a problem found by the caller's own parsing.
func (q *Query) Invalid(field, reason string) {
	q.add(field, reason)
}
