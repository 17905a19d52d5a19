package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/timberline-erp/timberline/internal/platform/httpx"
	"github.com/timberline-erp/timberline/internal/shared"
)

// Middleware resolves bearer tokens and enforces role requirements.
type Middleware struct {
	Tokens *TokenStore
	Logger *slog.Logger
}

// Authenticate loads the principal from the Authorization header into context.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		principal, err := m.Tokens.Resolve(r.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			if m.Logger != nil && err != ErrTokenNotFound {
				m.Logger.Error("resolve token", slog.Any("error", err))
			}
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		ctx := shared.ContextWithPrincipal(r.Context(), &principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole ensures the current user holds one of the given roles.
func (m Middleware) RequireRole(roles ...Role) func(http.Handler) http.Handler {
	allowed := make(map[Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := shared.PrincipalFromContext(r.Context())
			if principal == nil {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if len(allowed) > 0 {
				if _, ok := allowed[Role(principal.Role)]; !ok {
					httpx.RespondError(w, httpx.ErrForbidden)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
