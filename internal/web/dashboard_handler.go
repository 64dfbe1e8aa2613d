package web

import (
	"net/http"
	"strconv"

	"grocery-console/internal/backend"
	"grocery-console/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const fastMovingLimit = 5

// DashboardHandler serves the admin dashboard.
type DashboardHandler struct {
	client   *backend.Client
	sessions service.SessionService
	renderer *Renderer
	logger   *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(client *backend.Client, sessions service.SessionService, renderer *Renderer, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		client:   client,
		sessions: sessions,
		renderer: renderer,
		logger:   logger,
	}
}

// RegisterRoutes registers the admin dashboard route.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.AdminDashboard)
}

type adminDashboardData struct {
	Dashboard *backend.Dashboard
	Days      int
}

// AdminDashboard renders the stats, trend, fast movers, low stock and
// category sales. The five fetches run concurrently; one failure shows a
// single generic flash instead of partial charts.
func (h *DashboardHandler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil || (days != 7 && days != 14 && days != 30) {
		days = 7
	}

	page := Page{
		Title:    "Dashboard",
		Active:   "dashboard",
		Identity: identityFrom(r),
		Flash:    PopFlash(w, r),
		Data:     adminDashboardData{Days: days},
	}

	token, err := bearerToken(r, h.sessions)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	dashboard, err := h.client.FetchDashboard(r.Context(), token, days, fastMovingLimit)
	if err != nil {
		h.logger.Error("Dashboard fetch failed", zap.Error(err))
		page.Flash = &Flash{Kind: "error", Message: "Could not load the dashboard. Please try again."}
		h.renderer.Render(w, http.StatusOK, "admin_dashboard.html", page)
		return
	}

	page.Data = adminDashboardData{Dashboard: dashboard, Days: days}
	h.renderer.Render(w, http.StatusOK, "admin_dashboard.html", page)
}
