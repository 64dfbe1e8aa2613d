package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is a durable console session: the identity the backend attested
// plus the bearer credential proving it. The browser only ever holds the
// signed session ID; the token never leaves the server.
type Session struct {
	ID        uuid.UUID
	Token     string
	Name      string
	Role      Role
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

func (s *Session) Identity() Identity {
	return Identity{Name: s.Name, Role: s.Role}
}
