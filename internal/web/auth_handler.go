package web

import (
	"net/http"
	"time"

	"grocery-console/internal/backend"
	"grocery-console/internal/domain"
	"grocery-console/internal/middleware"
	"grocery-console/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AuthHandler serves the login screen and the credential-bearing posts.
type AuthHandler struct {
	sessions service.SessionService
	renderer *Renderer
	logger   *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(sessions service.SessionService, renderer *Renderer, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		renderer: renderer,
		logger:   logger,
	}
}

// RegisterRoutes registers the public auth routes. The throttle middleware
// guards the credential posts; pass nil to disable throttling.
func (h *AuthHandler) RegisterRoutes(r chi.Router, throttle func(http.Handler) http.Handler) {
	if throttle == nil {
		throttle = func(next http.Handler) http.Handler { return next }
	}

	r.Get("/", h.Root)
	r.Get("/login", h.LoginScreen)
	r.With(throttle).Post("/login", h.Login)
	r.With(throttle).Post("/register", h.Register)
	r.Post("/logout", h.Logout)
}

// Root sends the visitor to their dashboard or the login screen.
func (h *AuthHandler) Root(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		if identity, err := h.sessions.Resolve(r.Context(), cookie.Value); err == nil {
			http.Redirect(w, r, identity.DashboardPath(), http.StatusSeeOther)
			return
		}
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// loginScreenData feeds the combined login/register card.
type loginScreenData struct {
	Mode  string // "login" or "register"
	Roles []domain.Role
}

// LoginScreen renders the login card. A visitor who still holds a live
// session is revalidated against the backend and sent straight to their
// dashboard; a rejected credential lands on the card with no error shown.
func (h *AuthHandler) LoginScreen(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		identity, err := h.sessions.Rehydrate(r.Context(), cookie.Value)
		if err == nil {
			http.Redirect(w, r, identity.DashboardPath(), http.StatusSeeOther)
			return
		}
		clearSessionCookie(w)
	}

	mode := r.URL.Query().Get("mode")
	if mode != "register" {
		mode = "login"
	}

	h.renderer.Render(w, http.StatusOK, "login.html", Page{
		Title: "Sign in",
		Flash: PopFlash(w, r),
		Data:  loginScreenData{Mode: mode, Roles: []domain.Role{domain.RoleAdmin, domain.RoleShopkeeper}},
	})
}

// Login handles the login form post.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		SetFlash(w, "error", "Please check the form and try again")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	form := LoginForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	if msg := ValidateForm(form); msg != "" {
		SetFlash(w, "error", msg)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	session, err := h.sessions.Login(r.Context(), form.Email, form.Password)
	if err != nil {
		if err == service.ErrInvalidCredentials {
			SetFlash(w, "error", "Invalid email or password")
		} else {
			h.logger.Error("Login failed", zap.Error(err))
			SetFlash(w, "error", backend.UserMessage(err, "Unable to sign in. Please try again."))
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	h.startSession(w, r, session)
}

// Register handles the registration form post.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		SetFlash(w, "error", "Please check the form and try again")
		http.Redirect(w, r, "/login?mode=register", http.StatusSeeOther)
		return
	}

	form := RegisterForm{
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		Role:     r.PostFormValue("role"),
	}
	if msg := ValidateForm(form); msg != "" {
		SetFlash(w, "error", msg)
		http.Redirect(w, r, "/login?mode=register", http.StatusSeeOther)
		return
	}

	role, err := domain.ParseRole(form.Role)
	if err != nil {
		SetFlash(w, "error", "Please pick a valid role")
		http.Redirect(w, r, "/login?mode=register", http.StatusSeeOther)
		return
	}

	session, err := h.sessions.Register(r.Context(), form.Name, form.Email, form.Password, role)
	if err != nil {
		h.logger.Warn("Registration rejected", zap.Error(err))
		SetFlash(w, "error", backend.UserMessage(err, "Unable to create the account. Please try again."))
		http.Redirect(w, r, "/login?mode=register", http.StatusSeeOther)
		return
	}

	h.startSession(w, r, session)
}

// Logout destroys the session and returns to the login screen.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		if err := h.sessions.Logout(r.Context(), cookie.Value); err != nil {
			h.logger.Error("Logout failed", zap.Error(err))
		}
	}
	clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, session *domain.Session) {
	value, err := h.sessions.IssueCookieValue(session)
	if err != nil {
		h.logger.Error("Failed to issue session cookie", zap.Error(err))
		SetFlash(w, "error", "Unable to sign in. Please try again.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	identity := session.Identity()
	http.Redirect(w, r, identity.DashboardPath(), http.StatusSeeOther)
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
