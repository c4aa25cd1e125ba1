package reports

import (
	"context"
	"strings"
	"time"

	"hrms/internal/domain/payroll"
	"hrms/internal/domain/search"
	"hrms/internal/platform/apperr"
)

var (
	ErrJobRunNotFound = apperr.NotFound("job run not found")
	ErrInvalidRange   = apperr.Validation("range start is after range end")
)

type Service struct {
	store StoreAPI
	now   func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store, now: time.Now}
}

// Dashboard reports headcount and the ledger pipeline of period, or of the
// current month when period is empty.
func (s *Service) Dashboard(ctx context.Context, period string) (Dashboard, error) {
	period = strings.TrimSpace(period)
	if period == "" {
		period = payroll.PeriodOf(s.now())
	}
	if _, err := payroll.ParsePeriod(period); err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{Period: period}
	var err error
	if d.Departments, err = s.store.CountDepartments(ctx); err != nil {
		return Dashboard{}, err
	}
	if d.Positions, err = s.store.CountPositions(ctx); err != nil {
		return Dashboard{}, err
	}
	if d.EmployeesByStatus, err = s.store.EmployeesByStatus(ctx); err != nil {
		return Dashboard{}, err
	}
	if d.LedgersByStatus, err = s.store.LedgersByStatus(ctx, period); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

func (f JobRunFilter) spec() search.Spec {
	var specs []search.Spec
	if v := strings.TrimSpace(f.JobType); v != "" {
		specs = append(specs, search.Eq("job_type", v))
	}
	var statuses []string
	for _, v := range f.Statuses {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			statuses = append(statuses, v)
		}
	}
	if len(statuses) > 0 {
		specs = append(specs, search.In("status", statuses))
	}
	var from, to any
	if f.StartedFrom != nil {
		from = *f.StartedFrom
	}
	if f.StartedTo != nil {
		to = *f.StartedTo
	}
	specs = append(specs, search.Between("started_at", from, to))
	return search.And(specs...)
}

func (s *Service) JobRuns(ctx context.Context, f JobRunFilter, page search.Page) (search.Result[JobRun], error) {
	if f.StartedFrom != nil && f.StartedTo != nil && f.StartedFrom.After(*f.StartedTo) {
		return search.Result[JobRun]{}, ErrInvalidRange
	}
	items, total, err := s.store.JobRuns(ctx, f.spec(), page)
	if err != nil {
		return search.Result[JobRun]{}, err
	}
	return search.NewResult(items, total, page), nil
}

func (s *Service) JobRun(ctx context.Context, id int64) (JobRun, error) {
	return s.store.JobRun(ctx, id)
}
