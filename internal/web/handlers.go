package web

import (
	"net/http"

	"grocery-console/internal/domain"
	"grocery-console/internal/middleware"
	"grocery-console/internal/service"
)

// bearerToken resolves the backend credential behind the current session.
// Only called on routes behind SessionAuth.
func bearerToken(r *http.Request, sessions service.SessionService) (string, error) {
	cookieValue, ok := middleware.SessionCookie(r.Context())
	if !ok {
		return "", service.ErrNoSession
	}
	return sessions.Token(r.Context(), cookieValue)
}

// identityFrom returns the authenticated identity, or nil outside a
// session-guarded route.
func identityFrom(r *http.Request) *domain.Identity {
	identity, _ := middleware.Identity(r.Context())
	return identity
}
