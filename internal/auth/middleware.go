package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/repairshop-api/internal/common"
)

// Middleware guards the admin API with bearer tokens.
type Middleware struct {
	Verifier *Verifier
	Logger   zerolog.Logger
}

// RequireAuth rejects requests without a valid bearer token and stores the caller's
// id and roles on the request context.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Verifier == nil {
			common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "auth not configured", nil)
			return
		}
		claims, err := m.Verifier.Verify(bearerToken(r))
		if err != nil {
			var appErr *common.AppError
			if errors.As(err, &appErr) && appErr.Err != nil {
				m.Logger.Debug().Err(appErr.Err).Str("path", r.URL.Path).Msg("token rejected")
			}
			common.WriteError(w, err)
			return
		}
		ctx := common.WithUserID(r.Context(), claims.Subject)
		ctx = common.WithRoles(ctx, claims.Roles)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole allows the request through only when the caller holds one of roles.
// It must run after RequireAuth.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := Claims{Roles: common.Roles(r.Context())}
			if !claims.HasRole(roles...) {
				common.JSONError(w, http.StatusForbidden, common.CodeForbidden, "insufficient role", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
