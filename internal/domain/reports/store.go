package reports

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"hrms/internal/domain/search"
	"hrms/internal/platform/db"
)

type StoreAPI interface {
	CountDepartments(ctx context.Context) (int, error)
	CountPositions(ctx context.Context) (int, error)
	EmployeesByStatus(ctx context.Context) (map[string]int, error)
	LedgersByStatus(ctx context.Context, period string) (map[string]int, error)
	JobRuns(ctx context.Context, spec search.Spec, page search.Page) ([]JobRun, int, error)
	JobRun(ctx context.Context, id int64) (JobRun, error)
}

type Store struct {
	DB db.Querier
}

func NewStore(q db.Querier) *Store {
	return &Store{DB: q}
}

func (s *Store) count(ctx context.Context, query string) (int, error) {
	var n int
	err := s.DB.QueryRow(ctx, query).Scan(&n)
	return n, err
}

func (s *Store) CountDepartments(ctx context.Context) (int, error) {
	return s.count(ctx, "SELECT COUNT(1) FROM departments")
}

func (s *Store) CountPositions(ctx context.Context) (int, error) {
	return s.count(ctx, "SELECT COUNT(1) FROM positions")
}

func (s *Store) grouped(ctx context.Context, query string, args ...any) (map[string]int, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		out[key] = n
	}
	return out, rows.Err()
}

func (s *Store) EmployeesByStatus(ctx context.Context) (map[string]int, error) {
	return s.grouped(ctx, "SELECT status, COUNT(1) FROM employees GROUP BY status")
}

func (s *Store) LedgersByStatus(ctx context.Context, period string) (map[string]int, error) {
	return s.grouped(ctx, "SELECT status, COUNT(1) FROM payroll_ledgers WHERE pay_period = $1 GROUP BY status", period)
}

var jobRunSort = map[string]string{
	"startedAt": "started_at",
	"jobType":   "job_type",
	"status":    "status",
}

const jobRunColumns = `id, job_type, status, details_json, started_at, completed_at`

func scanJobRun(row pgx.Row) (JobRun, error) {
	var r JobRun
	err := row.Scan(&r.ID, &r.JobType, &r.Status, &r.Details, &r.StartedAt, &r.CompletedAt)
	return r, err
}

func (s *Store) JobRuns(ctx context.Context, spec search.Spec, page search.Page) ([]JobRun, int, error) {
	where, args := search.Where(spec)

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM job_runs "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	paging, pageArgs := page.LimitOffset(args)
	rows, err := s.DB.Query(ctx, "SELECT "+jobRunColumns+" FROM job_runs "+where+" "+page.OrderBy(jobRunSort, "started_at")+" "+paging, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []JobRun
	for rows.Next() {
		r, err := scanJobRun(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

func (s *Store) JobRun(ctx context.Context, id int64) (JobRun, error) {
	r, err := scanJobRun(s.DB.QueryRow(ctx, "SELECT "+jobRunColumns+" FROM job_runs WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return JobRun{}, ErrJobRunNotFound
	}
	return r, err
}
