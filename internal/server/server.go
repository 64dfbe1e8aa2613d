package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"grocery-console/internal/backend"
	"grocery-console/internal/config"
	"grocery-console/internal/domain"
	custommiddleware "grocery-console/internal/middleware"
	"grocery-console/internal/repository"
	"grocery-console/internal/service"
	"grocery-console/internal/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB) (*Server, error) {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env == "development"))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Backend client and session store
	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.FilesBase, logger)
	sessionRepo := repository.NewSessionRepository(db)
	sessions := service.NewSessionService(sessionRepo, client, cfg.Session.Secret, cfg.Session.TTL)

	renderer, err := web.NewRenderer(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build renderer: %w", err)
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		renderer.RenderError(w, http.StatusNotFound, "That page does not exist.", nil)
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		renderer.RenderError(w, http.StatusMethodNotAllowed, "That request is not supported.", nil)
	})

	// Login/register throttling, enabled when Redis is configured.
	var throttle func(http.Handler) http.Handler
	if cfg.Redis.Host != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		throttle = custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: 10,
			Window:            time.Minute,
			KeyPrefix:         "login_attempts",
		}, logger)
	}

	// Handlers
	authHandler := web.NewAuthHandler(sessions, renderer, logger)
	dashboardHandler := web.NewDashboardHandler(client, sessions, renderer, logger)
	productHandler := web.NewProductHandler(client, sessions, renderer, cfg.Backend.FilesBase, logger)
	categoryHandler := web.NewCategoryHandler(client, sessions, renderer, logger)
	salesHandler := web.NewSalesHandler(client, sessions, renderer, logger)
	posHandler := web.NewPOSHandler(client, sessions, renderer, cfg.Backend.FilesBase, logger)

	// Public routes
	authHandler.RegisterRoutes(router, throttle)

	sessionAuth := custommiddleware.SessionAuth(sessions, logger)

	// Admin area
	router.Route("/admin", func(r chi.Router) {
		r.Use(sessionAuth)
		r.Use(custommiddleware.RequireAdmin(logger))
		dashboardHandler.RegisterRoutes(r)
		productHandler.RegisterRoutes(r)
		categoryHandler.RegisterRoutes(r)
		salesHandler.RegisterRoutes(r)
	})

	// Shopkeeper area
	router.Route("/shopkeeper", func(r chi.Router) {
		r.Use(sessionAuth)
		r.Use(custommiddleware.RequireRole(domain.RoleShopkeeper, logger))
		posHandler.RegisterRoutes(r)
	})

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
	}

	return server, nil
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
