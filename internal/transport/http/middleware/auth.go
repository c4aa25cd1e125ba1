package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"hrms/internal/domain/auth"
	"hrms/internal/requestctx"
	"hrms/internal/transport/http/api"
)

// Auth puts the bearer token's principal on the context. Requests without a
// valid token pass through anonymous; RequireAuth rejects them.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
			if !found || !strings.EqualFold(scheme, "bearer") {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := auth.ParseToken(secret, strings.TrimSpace(token))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := requestctx.WithPrincipal(r.Context(), requestctx.Principal{
				UserID:   claims.UserID,
				Username: claims.Username,
				Roles:    claims.Roles,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUser(ctx context.Context) (requestctx.Principal, bool) {
	return requestctx.GetPrincipal(ctx)
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PermissionChecker decides whether a user may call method on urlPath.
type PermissionChecker interface {
	HasPermission(ctx context.Context, userID int64, urlPath, method string) (bool, error)
}

// Authorize matches the request against the caller's resources. It must run
// after RequireAuth.
func Authorize(checker PermissionChecker, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
				return
			}
			allowed, err := checker.HasPermission(r.Context(), user.UserID, r.URL.Path, r.Method)
			if err != nil {
				logger.Error("permission check failed", zap.Int64("userId", user.UserID), zap.Error(err))
				api.Fail(w, http.StatusInternalServerError, "permission_error", "permission check failed", GetRequestID(r.Context()))
				return
			}
			if !allowed {
				logger.Info("access denied",
					zap.Int64("userId", user.UserID),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				)
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
