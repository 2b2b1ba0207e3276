package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cbthost/voter-registry/config"
	"github.com/cbthost/voter-registry/internal/auth"
	"github.com/cbthost/voter-registry/internal/db"
	"github.com/cbthost/voter-registry/internal/handlers"
	"github.com/cbthost/voter-registry/internal/metrics"
	"github.com/cbthost/voter-registry/internal/mq"
	"github.com/cbthost/voter-registry/internal/services"
	"github.com/cbthost/voter-registry/internal/storage"
	"github.com/cbthost/voter-registry/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	events     *mq.Publisher
	logger     *slog.Logger
}

// Services bundles the workflows the router exposes.
type Services struct {
	Admins  *services.AdminService
	Voters  *services.VoterService
	Rosters *services.RosterService
	Tokens  *auth.TokenService
	Metrics *metrics.Metrics
}

// New wires the database, brokers, object storage and workflows, and builds
// the router.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	jwtSecret, fallback, err := cfg.JWTSecret()
	if err != nil {
		return nil, err
	}
	if fallback {
		logger.Warn("JWT_SECRET is not set, signing tokens with the development secret")
	}
	tokens, err := auth.NewTokenService(jwtSecret)
	if err != nil {
		return nil, err
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	backend, err := mq.NewBackend(ctx, cfg.Events)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("connect message backend: %w", err)
	}
	publisher := mq.NewPublisher(backend, cfg.Events.Channel)

	objects, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		_ = publisher.Close()
		_ = dbConn.Close()
		return nil, fmt.Errorf("open object storage: %w", err)
	}

	m := metrics.New()
	adminService := services.NewAdminService(
		store.NewAdminRepository(dbConn),
		auth.NewPasswordHasher(),
		tokens,
		logger,
		m,
	)
	voterService := services.NewVoterService(
		store.NewVoterRepository(dbConn),
		logger,
		m,
		services.WithVoterEvents(publisher),
	)
	var rosterService *services.RosterService
	if objects != nil {
		rosterService = services.NewRosterService(voterService, objects, logger)
	}

	router := NewRouter(cfg, logger, Services{
		Admins:  adminService,
		Voters:  voterService,
		Rosters: rosterService,
		Tokens:  tokens,
		Metrics: m,
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		events:     publisher,
		logger:     logger,
	}, nil
}

// NewRouter builds the chi router for svc.
func NewRouter(cfg config.Config, logger *slog.Logger, svc Services) *chi.Mux {
	authMiddleware := handlers.RequireAuth(svc.Tokens, logger, svc.Metrics)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
		handlers.CORS(cfg.CORSAllowedOrigins),
	)
	router.Get("/", handlers.Root)
	router.Get("/healthz", handlers.Healthz)
	if svc.Metrics != nil {
		router.Handle("/metrics", svc.Metrics.Handler())
	}
	router.Route("/api/auth", func(r chi.Router) {
		handlers.AuthRouter(r, svc.Admins, logger)
	})
	router.Route("/api/voters", func(r chi.Router) {
		handlers.VoterRouter(r, svc.Voters, svc.Rosters, logger, authMiddleware)
	})
	router.Route("/api/admin", func(r chi.Router) {
		handlers.AdminRouter(r, svc.Admins, logger, authMiddleware)
	})
	return router
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and releases the database and broker.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if cerr := s.events.Close(); cerr != nil {
		s.logger.Warn("failed to close message backend", "error", cerr)
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return err
}
