package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrms/internal/domain/payroll"
	"hrms/internal/domain/search"
)

type memStore struct {
	period string
	where  string
	args   []any
}

func (m *memStore) CountDepartments(context.Context) (int, error) { return 4, nil }
func (m *memStore) CountPositions(context.Context) (int, error)   { return 7, nil }

func (m *memStore) EmployeesByStatus(context.Context) (map[string]int, error) {
	return map[string]int{"ACTIVE": 10, "ON_LEAVE": 1}, nil
}

func (m *memStore) LedgersByStatus(_ context.Context, period string) (map[string]int, error) {
	m.period = period
	return map[string]int{"DRAFT": 3, "PAID": 8}, nil
}

func (m *memStore) JobRuns(_ context.Context, spec search.Spec, _ search.Page) ([]JobRun, int, error) {
	m.where, m.args = search.Where(spec)
	return []JobRun{{ID: 1}}, 1, nil
}

func (m *memStore) JobRun(_ context.Context, id int64) (JobRun, error) {
	return JobRun{}, ErrJobRunNotFound
}

func TestDashboardDefaultsToCurrentPeriod(t *testing.T) {
	store := &memStore{}
	svc := NewService(store)
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC) }

	d, err := svc.Dashboard(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "2024-03", d.Period)
	assert.Equal(t, "2024-03", store.period)
	assert.Equal(t, 4, d.Departments)
	assert.Equal(t, 10, d.EmployeesByStatus["ACTIVE"])
	assert.Equal(t, 8, d.LedgersByStatus[string(payroll.StatusPaid)])

	_, err = svc.Dashboard(context.Background(), "2024-3")
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)
}

func TestJobRunsFilter(t *testing.T) {
	store := &memStore{}
	svc := NewService(store)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	result, err := svc.JobRuns(context.Background(), JobRunFilter{JobType: "payroll_generate", Statuses: []string{"FAILED", " skipped", ""}, StartedFrom: &from}, search.Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, "WHERE (job_type = $1 AND status = ANY($2) AND started_at >= $3)", store.where)
	assert.Equal(t, []any{"payroll_generate", []string{"failed", "skipped"}, from}, store.args)

	_, err = svc.JobRuns(context.Background(), JobRunFilter{}, search.Page{})
	require.NoError(t, err)
	assert.Equal(t, "WHERE TRUE", store.where)

	to := from.AddDate(0, 0, -1)
	_, err = svc.JobRuns(context.Background(), JobRunFilter{StartedFrom: &from, StartedTo: &to}, search.Page{})
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = svc.JobRun(context.Background(), 5)
	assert.ErrorIs(t, err, ErrJobRunNotFound)
}
