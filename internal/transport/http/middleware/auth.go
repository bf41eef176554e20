package middleware

import (
	"context"
	"net/http"
	"strings"

	"perfeval/internal/domain/auth"
	"perfeval/internal/domain/identity"
	"perfeval/internal/platform/requestctx"
	"perfeval/internal/transport/http/api"
)

// TokenVerifier turns a raw session token into the identity it carries.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (identity.Identity, error)
}

// TokenFromRequest reads the session cookie, then an Authorization bearer header.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(auth.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

// Auth attaches the caller identity when a valid token is present. Requests
// without one continue anonymously; RequireAuth rejects them.
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			id, err := verifier.Verify(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(requestctx.WithIdentity(r.Context(), id)))
		})
	}
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", auth.ErrInvalidCredentials.Error(), GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetUser(ctx context.Context) (identity.Identity, bool) {
	return requestctx.GetIdentity(ctx)
}
