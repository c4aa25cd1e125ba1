package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"hrms/internal/transport/http/api"
)

type RateLimitKeyFunc func(r *http.Request) string

// RateCounter counts hits of key in the current fixed window and reports how
// long until that window resets.
type RateCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int, resetIn time.Duration, err error)
}

type rateBucket struct {
	count int
	reset time.Time
}

// memorySweepEvery bounds how often Hit scans for expired windows.
const memorySweepEvery = time.Minute

// MemoryCounter keeps windows in process. Limits are per instance.
type MemoryCounter struct {
	mu        sync.Mutex
	clients   map[string]*rateBucket
	nextSweep time.Time
	now       func() time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{clients: map[string]*rateBucket{}, now: time.Now}
}

func (m *MemoryCounter) Hit(_ context.Context, key string, window time.Duration) (int, time.Duration, error) {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if now.After(m.nextSweep) {
		for k, b := range m.clients {
			if now.After(b.reset) {
				delete(m.clients, k)
			}
		}
		m.nextSweep = now.Add(memorySweepEvery)
	}
	bucket, ok := m.clients[key]
	if !ok || now.After(bucket.reset) {
		bucket = &rateBucket{reset: now.Add(window)}
		m.clients[key] = bucket
	}
	bucket.count++
	return bucket.count, bucket.reset.Sub(now), nil
}

// fixedWindowScript starts the window expiry on the first hit only.
var fixedWindowScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {count, redis.call('PTTL', KEYS[1])}
`)

// RedisCounter shares windows between instances.
type RedisCounter struct {
	client redis.Scripter
	prefix string
}

func NewRedisCounter(client redis.Scripter, prefix string) *RedisCounter {
	return &RedisCounter{client: client, prefix: prefix}
}

func (c *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	res, err := fixedWindowScript.Run(ctx, c.client, []string{c.prefix + key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("rate window: unexpected reply %v", res)
	}
	return int(res[0]), time.Duration(res[1]) * time.Millisecond, nil
}

type rateLimiter struct {
	counter RateCounter
	scope   string
	limit   int
	window  time.Duration
	keyFn   RateLimitKeyFunc
}

func newRateLimiter(counter RateCounter, scope string, limit int, window time.Duration, keyFn RateLimitKeyFunc) *rateLimiter {
	if counter == nil {
		counter = NewMemoryCounter()
	}
	if keyFn == nil {
		keyFn = userOrIPKey
	}
	return &rateLimiter{counter: counter, scope: scope, limit: limit, window: window, keyFn: keyFn}
}

// RateLimit throttles every request by user id, or client IP when anonymous.
// A nil counter keeps the windows in memory; limit <= 0 disables it.
func RateLimit(counter RateCounter, limit int, window time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	rl := newRateLimiter(counter, "api:", limit, window, userOrIPKey)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rl.enforce(w, r, logger) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// LoginRateLimit throttles login attempts both per client IP and per
// submitted username.
func LoginRateLimit(counter RateCounter, limit int, window time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	if counter == nil {
		counter = NewMemoryCounter()
	}
	byIP := newRateLimiter(counter, "login-ip:", limit, window, clientIPKey)
	byUsername := newRateLimiter(counter, "login-user:", limit, window, JSONFieldOrIPKey("username"))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !byIP.enforce(w, r, logger) || !byUsername.enforce(w, r, logger) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// JSONFieldOrIPKey keys on a string field of the JSON body, restoring the
// body for the next handler.
func JSONFieldOrIPKey(field string) RateLimitKeyFunc {
	return func(r *http.Request) string {
		value := extractJSONField(r, field)
		if value == "" {
			return clientIPKey(r)
		}
		return field + ":" + strings.ToLower(value)
	}
}

func userOrIPKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok {
		return "user:" + strconv.FormatInt(user.UserID, 10)
	}
	return clientIPKey(r)
}

// enforce fails open when the counter errors.
func (rl *rateLimiter) enforce(w http.ResponseWriter, r *http.Request, logger *zap.Logger) bool {
	if rl.limit <= 0 {
		return true
	}

	key := rl.scope + rl.keyFn(r)
	count, resetAfter, err := rl.counter.Hit(r.Context(), key, rl.window)
	if err != nil {
		logger.Warn("rate limit counter failed", zap.String("key", key), zap.Error(err))
		return true
	}
	remaining := rl.limit - count
	resetIn := max(int(resetAfter.Seconds()), 1)

	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))
	w.Header().Set("X-RateLimit-Reset", strconv.Itoa(resetIn))

	if count > rl.limit {
		w.Header().Set("Retry-After", strconv.Itoa(resetIn))
		logger.Warn("rate limit exceeded",
			zap.String("key", key),
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method),
			zap.Int("limit", rl.limit),
		)
		api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
		return false
	}
	return true
}

func extractJSONField(r *http.Request, field string) string {
	if r.Body == nil || !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64*1024))
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	payload := map[string]any{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	value, _ := payload[field].(string)
	return strings.TrimSpace(value)
}
