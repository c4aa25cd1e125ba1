package payroll

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrms/internal/domain/search"
)

func TestTransitionTable(t *testing.T) {
	allowed := map[Status][]Status{
		StatusDraft:      {StatusCalculated, StatusCancelled},
		StatusCalculated: {StatusApproved, StatusDraft, StatusCancelled},
		StatusApproved:   {StatusPaid, StatusCalculated, StatusCancelled},
		StatusPaid:       {StatusCancelled},
	}
	for _, from := range Statuses {
		for _, to := range Statuses {
			if from == to {
				continue
			}
			want := false
			for _, s := range allowed[from] {
				if s == to {
					want = true
				}
			}
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTransitionHappyPath(t *testing.T) {
	l := Ledger{Status: StatusDraft}
	_, _, err := Transition(l, StatusPaid)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	for _, next := range []Status{StatusCalculated, StatusApproved, StatusPaid} {
		var changed bool
		l, changed, err = Transition(l, next)
		require.NoError(t, err)
		assert.True(t, changed)
	}
	assert.Equal(t, StatusPaid, l.Status)
}

func TestSameStateIsNoop(t *testing.T) {
	for _, s := range Statuses {
		l, changed, err := Transition(Ledger{Status: s}, s)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, s, l.Status)
	}
}

func TestCancelledIsTerminal(t *testing.T) {
	for _, to := range Statuses {
		if to == StatusCancelled {
			continue
		}
		_, _, err := Transition(Ledger{Status: StatusCancelled}, to)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	}
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod(" 2024-02 ")
	require.NoError(t, err)
	assert.Equal(t, "2024-02", PeriodOf(p))

	for _, bad := range []string{"", "2024-13", "2024/02", "24-02", "2024-02-01"} {
		_, err := ParsePeriod(bad)
		assert.ErrorIs(t, err, ErrInvalidPeriod, bad)
	}
}

func TestCriteria(t *testing.T) {
	assert.ErrorIs(t, Criteria{PeriodFrom: "2024-05", PeriodTo: "2024-01"}.Validate(), ErrInvalidRange)
	assert.ErrorIs(t, Criteria{PeriodFrom: "May"}.Validate(), ErrInvalidPeriod)

	emp := int64(3)
	c := Criteria{EmployeeID: &emp, Status: StatusPaid, PeriodFrom: "2024-01", PeriodTo: "2024-06"}
	require.NoError(t, c.Validate())
	where, args := search.Where(c.Spec())
	assert.Equal(t, "WHERE (l.employee_id = $1 AND l.status = $2 AND l.pay_period BETWEEN $3 AND $4)", where)
	assert.Equal(t, []any{int64(3), "PAID", "2024-01", "2024-06"}, args)
}
