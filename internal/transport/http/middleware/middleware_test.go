package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hrms/internal/domain/audit"
	"hrms/internal/domain/auth"
	"hrms/internal/platform/metrics"
	"hrms/internal/requestctx"
)

func withUser(r *http.Request, id int64) *http.Request {
	return r.WithContext(requestctx.WithPrincipal(r.Context(), requestctx.Principal{UserID: id}))
}

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func TestAuthSetsPrincipal(t *testing.T) {
	token, _, err := auth.GenerateToken("test-secret", auth.Claims{UserID: 7, Username: "ana", Roles: []string{auth.RoleHR}}, time.Hour)
	require.NoError(t, err)

	var got requestctx.Principal
	handler := Auth("test-secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUser(r.Context())
		require.True(t, ok)
		got = user
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, []string{auth.RoleHR}, got.Roles)
}

func TestRequireAuthRejectsAnonymousAndBadTokens(t *testing.T) {
	handler := Auth("secret")(RequireAuth(http.HandlerFunc(noContent)))

	for _, header := range []string{"", "Bearer garbage", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
}

type fakeChecker struct {
	allowed bool
	err     error
	calls   []string
}

func (f *fakeChecker) HasPermission(_ context.Context, _ int64, urlPath, method string) (bool, error) {
	f.calls = append(f.calls, method+" "+urlPath)
	return f.allowed, f.err
}

func TestAuthorize(t *testing.T) {
	cases := []struct {
		checker *fakeChecker
		status  int
	}{
		{&fakeChecker{allowed: true}, http.StatusNoContent},
		{&fakeChecker{allowed: false}, http.StatusForbidden},
		{&fakeChecker{err: errors.New("db down")}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		handler := Authorize(tc.checker, zap.NewNop())(http.HandlerFunc(noContent))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodDelete, "/api/v1/departments/3", nil), 1))
		assert.Equal(t, tc.status, rec.Code)
		assert.Equal(t, []string{"DELETE /api/v1/departments/3"}, tc.checker.calls)
	}
}

func TestRequestIDPropagates(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
}

func TestLoggerRecordsRoutePattern(t *testing.T) {
	m := metrics.New()
	router := chi.NewRouter()
	router.Use(Logger(zap.NewNop(), m))
	router.Get("/api/v1/departments/{id}", noContent)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/departments/9", nil))

	count, err := testutil.GatherAndCount(m.Registry(), "hrms_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRecovererTurnsPanicInto500(t *testing.T) {
	handler := Recoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestBodyLimit(t *testing.T) {
	var readErr error
	handler := BodyLimit(4, 16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = bytes.NewBuffer(nil).ReadFrom(r.Body)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("0123456789")))
	assert.Error(t, readErr)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("0123456789"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.NoError(t, readErr)
}

func TestSecureHeaders(t *testing.T) {
	handler := SecureHeaders(true)(http.HandlerFunc(noContent))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestRateLimitKeysOnUserBeforeIP(t *testing.T) {
	limited := RateLimit(nil, 1, time.Minute, zap.NewNop())(http.HandlerFunc(noContent))

	first := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/payroll/ledgers", nil), 1)
	first.RemoteAddr = "198.51.100.11:2222"
	rec := httptest.NewRecorder()
	limited.ServeHTTP(rec, first)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	second := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/payroll/ledgers", nil), 1)
	second.RemoteAddr = "198.51.100.12:3333"
	rec = httptest.NewRecorder()
	limited.ServeHTTP(rec, second)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	other := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/payroll/ledgers", nil), 2)
	rec = httptest.NewRecorder()
	limited.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestLoginRateLimitByUsername(t *testing.T) {
	limited := LoginRateLimit(nil, 1, time.Minute, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r.Body)
		assert.Contains(t, buf.String(), "username", "body is restored for the handler")
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(ip, body string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = ip + ":1000"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, send("203.0.113.1", `{"username":"Admin"}`))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.2", `{"username":"admin"}`))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.1", `{"username":"other"}`))
}

type memIdempotency struct {
	hashes    map[string]string
	responses map[string]StoredResponse
}

func (m *memIdempotency) Check(_ context.Context, userID int64, endpoint, key, hash string) (StoredResponse, bool, error) {
	k := endpoint + key
	stored, ok := m.hashes[k]
	if !ok {
		return StoredResponse{}, false, nil
	}
	if stored != hash {
		return StoredResponse{}, false, ErrIdempotencyConflict
	}
	return m.responses[k], true, nil
}

func (m *memIdempotency) Save(_ context.Context, userID int64, endpoint, key, hash string, resp StoredResponse) error {
	if stored, ok := m.hashes[endpoint+key]; ok {
		if stored != hash {
			return ErrIdempotencyConflict
		}
		return nil
	}
	m.hashes[endpoint+key] = hash
	m.responses[endpoint+key] = resp
	return nil
}

func TestIdempotencyReplaysResponse(t *testing.T) {
	store := &memIdempotency{hashes: map[string]string{}, responses: map[string]StoredResponse{}}
	calls := 0
	handler := Idempotency(store, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))

	send := func(body string) *httptest.ResponseRecorder {
		req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/payroll/ledgers/4/pay", bytes.NewBufferString(body)), 1)
		req.Header.Set(IdempotencyHeader, "k1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := send(`{"reference":"R1"}`)
	assert.Equal(t, http.StatusOK, first.Code)
	replay := send(`{"reference":"R1"}`)
	assert.Equal(t, "true", replay.Header().Get("Idempotent-Replay"))
	assert.JSONEq(t, `{"success":true}`, replay.Body.String())
	assert.Equal(t, 1, calls)

	conflict := send(`{"reference":"R2"}`)
	assert.Equal(t, http.StatusConflict, conflict.Code)
	assert.Equal(t, 1, calls)
}

type stubRow struct{ hash string }

func (r stubRow) Scan(dest ...any) error {
	*dest[0].(*string) = r.hash
	return nil
}

type idempotencyDB struct {
	affected   int64
	storedHash string
	execSQL    string
}

func (d *idempotencyDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	d.execSQL = sql
	return pgconn.NewCommandTag("INSERT 0 " + strconv.FormatInt(d.affected, 10)), nil
}

func (d *idempotencyDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected query")
}

func (d *idempotencyDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return stubRow{hash: d.storedHash}
}

func TestPGIdempotencySaveKeepsFirstResponse(t *testing.T) {
	ctx := context.Background()
	conflictResp := StoredResponse{Status: http.StatusConflict, Body: []byte(`{"success":false}`)}

	fresh := &idempotencyDB{affected: 1}
	require.NoError(t, NewIdempotencyStore(fresh).Save(ctx, 1, "POST /pay", "k1", "h1", conflictResp))
	assert.Contains(t, fresh.execSQL, "DO NOTHING")
	assert.NotContains(t, fresh.execSQL, "DO UPDATE")

	duplicate := &idempotencyDB{affected: 0, storedHash: "h1"}
	assert.NoError(t, NewIdempotencyStore(duplicate).Save(ctx, 1, "POST /pay", "k1", "h1", conflictResp),
		"a later duplicate leaves the stored response alone")

	reused := &idempotencyDB{affected: 0, storedHash: "h2"}
	assert.ErrorIs(t, NewIdempotencyStore(reused).Save(ctx, 1, "POST /pay", "k1", "h1", conflictResp), ErrIdempotencyConflict)
}

func TestRequestHashDeterministic(t *testing.T) {
	assert.Equal(t, RequestHash([]byte("payload")), RequestHash([]byte("payload")))
	assert.NotEqual(t, RequestHash([]byte("payload")), RequestHash([]byte("other")))
}

type auditLog struct {
	events []audit.Event
}

func (a *auditLog) Record(_ context.Context, e audit.Event) {
	a.events = append(a.events, e)
}

func TestAuditRecordsSuccessfulMutations(t *testing.T) {
	log := &auditLog{}
	router := chi.NewRouter()
	router.Use(Audit(log))
	router.Get("/api/v1/departments/{id}", noContent)
	router.Put("/api/v1/departments/{id}", noContent)
	router.Delete("/api/v1/departments/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		req := withUser(httptest.NewRequest(method, "/api/v1/departments/4", nil), 9)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	require.Len(t, log.events, 1)
	e := log.events[0]
	assert.Equal(t, http.MethodPut, e.Action)
	assert.Equal(t, "/api/v1/departments/{id}", e.Route)
	assert.Equal(t, int64(4), *e.EntityID)
	assert.Equal(t, int64(9), *e.ActorID)
	assert.Equal(t, http.StatusNoContent, e.Status)
}
