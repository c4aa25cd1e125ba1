package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"hrms/internal/platform/db"
	"hrms/internal/platform/metrics"
)

const JobPayrollGenerate = "payroll_generate"

var ErrLocked = errors.New("job lock held by another instance")

// RunFunc does the work of one job run and returns details stored with it.
type RunFunc func(ctx context.Context) (any, error)

// Locker guards a job run across instances.
type Locker interface {
	Lock(ctx context.Context, name string) (unlock func(), err error)
}

type Service struct {
	DB      db.Querier
	cron    *cron.Cron
	locker  Locker
	logger  *zap.Logger
	metrics *metrics.Collector
	timeout time.Duration
}

// New builds a scheduler. db and locker are optional: without db runs are
// not recorded in job_runs, without locker every instance runs every job.
func New(database db.Querier, locker Locker, logger *zap.Logger, m *metrics.Collector) *Service {
	return &Service{
		DB:      database,
		cron:    cron.New(),
		locker:  locker,
		logger:  logger,
		metrics: m,
		timeout: 30 * time.Minute,
	}
}

// Schedule registers run under a standard five-field cron expression.
func (s *Service) Schedule(ctx context.Context, name, spec string, run RunFunc) error {
	_, err := s.cron.AddFunc(spec, func() {
		runCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		if _, err := s.RunNow(runCtx, name, run); err != nil && !errors.Is(err, ErrLocked) {
			s.logger.Warn("job run failed", zap.String("jobType", name), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	return nil
}

// Start runs the cron loop until ctx is done.
func (s *Service) Start(ctx context.Context) {
	s.cron.Start()
	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
	}()
}

// RunNow runs a job immediately, under the lock when one is configured.
func (s *Service) RunNow(ctx context.Context, name string, run RunFunc) (any, error) {
	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, name)
		if err != nil {
			s.metrics.JobRun(name, "skipped")
			s.logger.Info("job skipped", zap.String("jobType", name), zap.Error(err))
			return nil, err
		}
		defer unlock()
	}
	return s.runJob(ctx, name, run)
}

func (s *Service) runJob(ctx context.Context, name string, run RunFunc) (any, error) {
	var runID int64
	if s.DB != nil {
		if err := s.DB.QueryRow(ctx, `
      INSERT INTO job_runs (job_type, status)
      VALUES ($1,$2)
      RETURNING id
    `, name, "running").Scan(&runID); err != nil {
			s.logger.Warn("job run insert failed", zap.Error(err))
		}
	}

	start := time.Now()
	details, err := run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	s.metrics.JobRun(name, status)
	s.logger.Info("job finished",
		zap.String("jobType", name),
		zap.String("status", status),
		zap.Duration("duration", time.Since(start)),
	)

	if runID != 0 {
		detailsJSON, marshalErr := json.Marshal(details)
		if marshalErr != nil || details == nil {
			detailsJSON = []byte("{}")
		}
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			s.logger.Warn("job run update failed", zap.Error(updErr))
		}
	}
	return details, err
}

// RedisLocker takes a redsync mutex per job name. The lock is not retried:
// if another instance holds it this run is skipped.
type RedisLocker struct {
	rs     *redsync.Redsync
	expiry time.Duration
}

func NewRedisLocker(client *redis.Client, expiry time.Duration) *RedisLocker {
	return &RedisLocker{rs: redsync.New(goredis.NewPool(client)), expiry: expiry}
}

func (l *RedisLocker) Lock(ctx context.Context, name string) (func(), error) {
	mutex := l.rs.NewMutex("hrms:job:"+name, redsync.WithExpiry(l.expiry), redsync.WithTries(1))
	if err := mutex.LockContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLocked, err)
	}
	return func() {
		_, _ = mutex.UnlockContext(context.WithoutCancel(ctx))
	}, nil
}
