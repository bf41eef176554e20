package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"perfeval/internal/domain/auth"
	"perfeval/internal/transport/http/api"
)

// PermissionStore answers whether a role carries a permission.
// auth.StaticPermissions is the production implementation.
type PermissionStore interface {
	HasPermission(ctx context.Context, role, permission string) (bool, error)
}

// RequirePermission rejects callers whose role lacks permission. Anonymous
// callers get the same 401 as RequireAuth.
func RequirePermission(permission string, store PermissionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", auth.ErrInvalidCredentials.Error(), requestID)
				return
			}

			allowed, err := store.HasPermission(r.Context(), user.Role, permission)
			if err != nil {
				slog.Error("permission check failed", "permission", permission, "role", user.Role, "request_id", requestID, "err", err)
				api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
				return
			}
			if !allowed {
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", requestID)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
