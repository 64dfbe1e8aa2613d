package middleware

import (
	"net/http"

	"grocery-console/internal/domain"

	"go.uber.org/zap"
)

// RequireRole ensures the resolved identity carries the given role. A user
// with the wrong role is sent to their own dashboard rather than shown an
// error page.
func RequireRole(role domain.Role, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := Identity(r.Context())
			if !ok {
				logger.Warn("Identity not found in context")
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			if identity.Role != role {
				logger.Warn("Role not authorized for this area",
					zap.String("role", identity.Role.String()),
					zap.String("required", role.String()),
				)
				http.Redirect(w, r, identity.DashboardPath(), http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin ensures the resolved identity is an admin.
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole(domain.RoleAdmin, logger)
}
