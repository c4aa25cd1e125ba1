// Package search builds SQL WHERE clauses out of small composable predicates.
// Criteria types in the domain packages translate their set fields into
// specs and combine them with And; unset fields never reach the query.
package search

import (
	"strconv"
	"strings"
)

// Args collects positional arguments while a spec renders.
type Args struct {
	values []any
}

// Add appends v and returns its placeholder.
func (a *Args) Add(v any) string {
	a.values = append(a.values, v)
	return "$" + strconv.Itoa(len(a.values))
}

func (a *Args) Values() []any {
	return a.values
}

type Spec interface {
	SQL(args *Args) string
}

type SpecFunc func(args *Args) string

func (f SpecFunc) SQL(args *Args) string { return f(args) }

func Eq(column string, value any) Spec {
	return SpecFunc(func(a *Args) string { return column + " = " + a.Add(value) })
}

func Gte(column string, value any) Spec {
	return SpecFunc(func(a *Args) string { return column + " >= " + a.Add(value) })
}

func Lte(column string, value any) Spec {
	return SpecFunc(func(a *Args) string { return column + " <= " + a.Add(value) })
}

// Between is inclusive. A nil bound drops that side; both nil yields nil.
func Between(column string, lo, hi any) Spec {
	switch {
	case lo != nil && hi != nil:
		return SpecFunc(func(a *Args) string {
			return column + " BETWEEN " + a.Add(lo) + " AND " + a.Add(hi)
		})
	case lo != nil:
		return Gte(column, lo)
	case hi != nil:
		return Lte(column, hi)
	default:
		return nil
	}
}

// Like is a case-insensitive contains match with LIKE wildcards escaped.
func Like(column, value string) Spec {
	return SpecFunc(func(a *Args) string {
		return column + " ILIKE " + a.Add("%"+escapeLike(value)+"%")
	})
}

// HasPrefix matches column values that start with prefix (case-sensitive).
func HasPrefix(column, prefix string) Spec {
	return SpecFunc(func(a *Args) string {
		return column + " LIKE " + a.Add(escapeLike(prefix)+"%")
	})
}

func In[T any](column string, values []T) Spec {
	if len(values) == 0 {
		return SpecFunc(func(*Args) string { return "FALSE" })
	}
	return SpecFunc(func(a *Args) string { return column + " = ANY(" + a.Add(values) + ")" })
}

// And is the conjunction of the non-nil specs. No specs renders TRUE.
func And(specs ...Spec) Spec {
	return junction(" AND ", "TRUE", specs)
}

// Or is the disjunction of the non-nil specs. No specs renders FALSE.
func Or(specs ...Spec) Spec {
	return junction(" OR ", "FALSE", specs)
}

func junction(op, empty string, specs []Spec) Spec {
	parts := make([]Spec, 0, len(specs))
	for _, s := range specs {
		if s != nil {
			parts = append(parts, s)
		}
	}
	return SpecFunc(func(a *Args) string {
		switch len(parts) {
		case 0:
			return empty
		case 1:
			return parts[0].SQL(a)
		}
		rendered := make([]string, len(parts))
		for i, p := range parts {
			rendered[i] = p.SQL(a)
		}
		return "(" + strings.Join(rendered, op) + ")"
	})
}

// Where renders spec into a WHERE clause and its arguments.
func Where(spec Spec) (string, []any) {
	if spec == nil {
		return "WHERE TRUE", nil
	}
	var args Args
	clause := spec.SQL(&args)
	return "WHERE " + clause, args.Values()
}

func escapeLike(value string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(value)
}
