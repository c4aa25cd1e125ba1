package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/audit"
)

type AuditRecorder interface {
	Record(ctx context.Context, e audit.Event)
}

// Audit records every mutating request that succeeded. Reads and failed
// requests are not recorded.
func Audit(recorder AuditRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			if rec.status >= http.StatusBadRequest {
				return
			}

			event := audit.Event{
				Action:    r.Method,
				Route:     routePattern(r),
				Status:    rec.status,
				RequestID: GetRequestID(r.Context()),
				IP:        clientIPKey(r),
			}
			if user, ok := GetUser(r.Context()); ok {
				event.ActorID = &user.UserID
			}
			if id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64); err == nil {
				event.EntityID = &id
			}
			recorder.Record(context.WithoutCancel(r.Context()), event)
		})
	}
}
