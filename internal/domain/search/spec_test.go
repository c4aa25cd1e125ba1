package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAndRendersConjunction(t *testing.T) {
	spec := And(
		Eq("e.status", "ACTIVE"),
		nil,
		Like("e.first_name", "ann"),
		Between("e.hire_date", "2024-01-01", "2024-12-31"),
	)

	clause, args := Where(spec)
	assert.Equal(t, "WHERE (e.status = $1 AND e.first_name ILIKE $2 AND e.hire_date BETWEEN $3 AND $4)", clause)
	assert.Equal(t, []any{"ACTIVE", "%ann%", "2024-01-01", "2024-12-31"}, args)
}

func TestEmptyConjunctionIsTrue(t *testing.T) {
	clause, args := Where(And())
	assert.Equal(t, "WHERE TRUE", clause)
	assert.Empty(t, args)

	clause, _ = Where(And(nil, nil))
	assert.Equal(t, "WHERE TRUE", clause)
}

func TestSingleSpecIsNotParenthesized(t *testing.T) {
	clause, args := Where(And(Eq("id", 7)))
	assert.Equal(t, "WHERE id = $1", clause)
	assert.Equal(t, []any{7}, args)
}

func TestBetweenOpenBounds(t *testing.T) {
	assert.Nil(t, Between("x", nil, nil))

	clause, _ := Where(Between("x", 1, nil))
	assert.Equal(t, "WHERE x >= $1", clause)

	clause, _ = Where(Between("x", nil, 9))
	assert.Equal(t, "WHERE x <= $1", clause)
}

func TestNestedOr(t *testing.T) {
	spec := And(Eq("a", 1), Or(Like("f", "x"), Like("l", "x")))
	clause, args := Where(spec)
	assert.Equal(t, "WHERE (a = $1 AND (f ILIKE $2 OR l ILIKE $3))", clause)
	assert.Len(t, args, 3)
}

func TestLikeEscapesWildcards(t *testing.T) {
	_, args := Where(Like("name", `50%_off\`))
	assert.Equal(t, []any{`%50\%\_off\\%`}, args)

	_, args = Where(HasPrefix("d.dep_path", "/5/"))
	assert.Equal(t, []any{"/5/%"}, args)
}

func TestInEmptyMatchesNothing(t *testing.T) {
	clause, args := Where(In[int64]("id", nil))
	assert.Equal(t, "WHERE FALSE", clause)
	assert.Empty(t, args)

	clause, args = Where(In("id", []int64{1, 2}))
	assert.Equal(t, "WHERE id = ANY($1)", clause)
	assert.Equal(t, []any{[]int64{1, 2}}, args)
}

func TestPage(t *testing.T) {
	p := Page{Number: 0, Size: 1000}.Normalize()
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, MaxPageSize, p.Size)

	p = Page{Number: 3, Size: 10, Sort: "hireDate", Desc: true}
	assert.Equal(t, 20, p.Offset())
	assert.Equal(t, "ORDER BY e.hire_date DESC", p.OrderBy(map[string]string{"hireDate": "e.hire_date"}, "e.id"))
	assert.Equal(t, "ORDER BY e.id ASC", Page{Sort: "1; DROP TABLE"}.OrderBy(map[string]string{}, "e.id"))

	clause, args := p.LimitOffset([]any{"x"})
	assert.Equal(t, "LIMIT $2 OFFSET $3", clause)
	assert.Equal(t, []any{"x", 10, 20}, args)
}

func TestPageNumberIsClamped(t *testing.T) {
	huge := Page{Number: math.MaxInt, Size: MaxPageSize}
	assert.Equal(t, MaxPageNumber, huge.Normalize().Number)
	assert.Equal(t, (MaxPageNumber-1)*MaxPageSize, huge.Offset())
	assert.Positive(t, huge.Offset())
}
