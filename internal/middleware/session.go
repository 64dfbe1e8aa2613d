package middleware

import (
	"context"
	"net/http"

	"grocery-console/internal/domain"
	"grocery-console/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const (
	IdentityKey      contextKey = "identity"
	SessionCookieKey contextKey = "session_cookie"
)

// SessionCookieName is the browser cookie carrying the signed session ID.
const SessionCookieName = "grocery_session"

// SessionAuth resolves the session cookie to an identity and stores it in
// the request context. Requests without a live session are sent to the
// login screen instead of receiving an error page.
func SessionAuth(sessions service.SessionService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			identity, err := sessions.Resolve(r.Context(), cookie.Value)
			if err != nil {
				if err != service.ErrNoSession && err != service.ErrInvalidCookie {
					logger.Error("Failed to resolve session", zap.Error(err))
				}
				clearSessionCookie(w)
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			ctx = context.WithValue(ctx, SessionCookieKey, cookie.Value)

			logger.Debug("Session resolved",
				zap.String("name", identity.Name),
				zap.String("role", identity.Role.String()),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Identity extracts the authenticated identity from the request context.
func Identity(ctx context.Context) (*domain.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(*domain.Identity)
	return identity, ok
}

// SessionCookie extracts the raw session cookie value from the context.
func SessionCookie(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(SessionCookieKey).(string)
	return value, ok
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
