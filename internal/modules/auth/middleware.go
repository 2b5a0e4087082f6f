package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/storefrontlabs/catalog-backend/internal/httpx"
)

type principalKey struct{}

// WithPrincipal returns a context carrying the authenticated principal.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom extracts the principal stored by the auth middleware.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok
}

// RequireAuth rejects requests without a valid bearer token and stores the
// resolved Principal in the request context for downstream handlers.
func RequireAuth(svc Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw := strings.TrimPrefix(header, "Bearer ")
			if raw == "" || raw == header {
				httpx.JSON(w, http.StatusUnauthorized, map[string]string{"status": "unauthorized"})
				return
			}

			p, err := svc.Authenticate(r.Context(), raw)
			if err != nil {
				httpx.JSON(w, http.StatusUnauthorized, map[string]string{"status": "unauthorized"})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}
