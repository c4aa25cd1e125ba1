package jobs

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hrms/internal/platform/metrics"
)

type stubLocker struct {
	err      error
	unlocked int
}

func (l *stubLocker) Lock(context.Context, string) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	return func() { l.unlocked++ }, nil
}

func TestRunNowHoldsLock(t *testing.T) {
	locker := &stubLocker{}
	svc := New(nil, locker, zap.NewNop(), metrics.New())

	details, err := svc.RunNow(context.Background(), JobPayrollGenerate, func(context.Context) (any, error) {
		return map[string]int{"created": 2}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"created": 2}, details)
	assert.Equal(t, 1, locker.unlocked)
}

func TestRunNowSkipsWhenLocked(t *testing.T) {
	locker := &stubLocker{err: ErrLocked}
	svc := New(nil, locker, zap.NewNop(), nil)

	called := false
	_, err := svc.RunNow(context.Background(), JobPayrollGenerate, func(context.Context) (any, error) {
		called = true
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrLocked)
	assert.False(t, called)
}

func TestRunNowRecordsFailure(t *testing.T) {
	m := metrics.New()
	svc := New(nil, nil, zap.NewNop(), m)

	_, err := svc.RunNow(context.Background(), "broken", func(context.Context) (any, error) {
		return nil, errors.New("boom")
	})
	assert.EqualError(t, err, "boom")

	count, gatherErr := testutil.GatherAndCount(m.Registry(), "hrms_job_runs_total")
	require.NoError(t, gatherErr)
	assert.Equal(t, 1, count)
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	svc := New(nil, nil, zap.NewNop(), nil)
	err := svc.Schedule(context.Background(), "bad", "not a cron", func(context.Context) (any, error) { return nil, nil })
	assert.Error(t, err)
}

func TestRedisLockerExclusive(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	locker := NewRedisLocker(client, time.Minute)
	ctx := context.Background()
	unlock, err := locker.Lock(ctx, "exclusive-test")
	require.NoError(t, err)

	_, err = locker.Lock(ctx, "exclusive-test")
	assert.ErrorIs(t, err, ErrLocked)

	unlock()
	unlock2, err := locker.Lock(ctx, "exclusive-test")
	require.NoError(t, err)
	unlock2()
}
