package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"grocery-console/internal/backend"
	"grocery-console/internal/domain"
	"grocery-console/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoSession          = errors.New("no active session")
	ErrInvalidCookie      = errors.New("invalid session cookie")
)

// AuthBackend is the slice of the backend client the session store needs.
type AuthBackend interface {
	Login(ctx context.Context, email, password string) (*backend.AuthResult, error)
	Register(ctx context.Context, name, email, password string, role domain.Role) (*backend.AuthResult, error)
	Me(ctx context.Context, token string) (*domain.Identity, error)
}

// SessionService is the Session Store: it owns login, registration, logout
// and rehydration, and persists the bearer credential in the durable
// session table. The browser carries only a signed session ID.
type SessionService interface {
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.Session, error)
	Logout(ctx context.Context, cookieValue string) error
	// Resolve maps a cookie value to an identity using only the local
	// session table. The route guard calls it on every request.
	Resolve(ctx context.Context, cookieValue string) (*domain.Identity, error)
	// Rehydrate additionally presents the stored credential to the backend.
	// A rejected credential destroys the session silently; the caller sees
	// ErrNoSession, never a user-facing failure.
	Rehydrate(ctx context.Context, cookieValue string) (*domain.Identity, error)
	// IssueCookieValue signs a session ID for the browser cookie.
	IssueCookieValue(session *domain.Session) (string, error)
	// Token returns the bearer credential for an authenticated request.
	Token(ctx context.Context, cookieValue string) (string, error)
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type sessionService struct {
	sessionRepo repository.SessionRepository
	auth        AuthBackend
	secret      string
	ttl         time.Duration
}

// NewSessionService creates a new instance of SessionService
func NewSessionService(
	sessionRepo repository.SessionRepository,
	auth AuthBackend,
	secret string,
	ttl time.Duration,
) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		auth:        auth,
		secret:      secret,
		ttl:         ttl,
	}
}

// Login exchanges credentials with the backend and persists the returned
// bearer token and identity as a new session.
func (s *sessionService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	result, err := s.auth.Login(ctx, email, password)
	if err != nil {
		if backend.IsAuthentication(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login failed: %w", err)
	}

	return s.createSession(ctx, result)
}

// Register creates a backend account and logs it in with the same contract
// as Login. Conflicts and field rejections surface the backend's message.
func (s *sessionService) Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.Session, error) {
	result, err := s.auth.Register(ctx, name, email, password, role)
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	return s.createSession(ctx, result)
}

func (s *sessionService) createSession(ctx context.Context, result *backend.AuthResult) (*domain.Session, error) {
	// Reap opportunistically; a failure here never blocks a login.
	_, _ = s.sessionRepo.DeleteExpired(ctx, time.Now())

	session := &domain.Session{
		ID:        uuid.New(),
		Token:     result.Token,
		Name:      result.Identity.Name,
		Role:      result.Identity.Role,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(s.ttl),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	return session, nil
}

// Logout destroys the session synchronously. No backend call is made and a
// missing or garbled cookie is already logged out.
func (s *sessionService) Logout(ctx context.Context, cookieValue string) error {
	sessionID, err := s.parseCookieValue(cookieValue)
	if err != nil {
		return nil
	}

	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Resolve maps a cookie to the identity stored with the session.
func (s *sessionService) Resolve(ctx context.Context, cookieValue string) (*domain.Identity, error) {
	session, err := s.lookup(ctx, cookieValue)
	if err != nil {
		return nil, err
	}

	identity := session.Identity()
	return &identity, nil
}

// Rehydrate presents the stored credential to the backend. Rejection
// destroys the session and reports ErrNoSession; a backend that is merely
// unreachable does not log the user out.
func (s *sessionService) Rehydrate(ctx context.Context, cookieValue string) (*domain.Identity, error) {
	session, err := s.lookup(ctx, cookieValue)
	if err != nil {
		return nil, err
	}

	identity, err := s.auth.Me(ctx, session.Token)
	if err != nil {
		if backend.IsAuthentication(err) {
			_ = s.sessionRepo.Delete(ctx, session.ID)
			return nil, ErrNoSession
		}
		stored := session.Identity()
		return &stored, nil
	}

	return identity, nil
}

// Token returns the bearer credential behind a cookie for backend calls.
func (s *sessionService) Token(ctx context.Context, cookieValue string) (string, error) {
	session, err := s.lookup(ctx, cookieValue)
	if err != nil {
		return "", err
	}
	return session.Token, nil
}

func (s *sessionService) lookup(ctx context.Context, cookieValue string) (*domain.Session, error) {
	sessionID, err := s.parseCookieValue(cookieValue)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		if err == repository.ErrSessionNotFound || err == repository.ErrSessionExpired {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	return session, nil
}

// IssueCookieValue signs the session ID with the console secret. The token
// expires alongside the session row.
func (s *sessionService) IssueCookieValue(session *domain.Session) (string, error) {
	claims := &sessionClaims{
		SessionID: session.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session cookie: %w", err)
	}

	return signed, nil
}

func (s *sessionService) parseCookieValue(cookieValue string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(cookieValue, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return uuid.Nil, ErrInvalidCookie
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return uuid.Nil, ErrInvalidCookie
	}

	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return uuid.Nil, ErrInvalidCookie
	}

	return sessionID, nil
}
