package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/brgy-records/apiserver/config"
	"github.com/brgy-records/apiserver/internal/db"
	"github.com/brgy-records/apiserver/internal/handlers"
	"github.com/brgy-records/apiserver/internal/metrics"
	"github.com/brgy-records/apiserver/internal/mq"
	"github.com/brgy-records/apiserver/internal/ratelimit"
	"github.com/brgy-records/apiserver/internal/render"
	"github.com/brgy-records/apiserver/internal/services"
	"github.com/brgy-records/apiserver/internal/storage"
	"github.com/brgy-records/apiserver/internal/store"
	"github.com/brgy-records/apiserver/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const (
	poolStatsInterval = 15 * time.Second
	minRequestTimeout = 60 * time.Second
	renderHeadroom    = 10 * time.Second
)

// requestTimeout leaves a PDF render room to finish, or fail with its own
// timeout, before the router abandons the request.
func requestTimeout(renderTimeout time.Duration) time.Duration {
	return max(renderTimeout+renderHeadroom, minRequestTimeout)
}

// Server wraps the HTTP server, the router and every handle it owns.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	archive    *storage.Archive
	events     *mq.Publisher
	limiter    ratelimit.Limiter
	logger     *zap.Logger
	stopStats  context.CancelFunc
}

// New connects every backend selected by cfg and builds the router. On
// error, handles opened so far are closed.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (srv *Server, err error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	var closers []func() error
	defer func() {
		if err == nil {
			return
		}
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}()

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	closers = append(closers, dbConn.Close)

	archive, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open certificate archive: %w", err)
	}
	closers = append(closers, archive.Close)
	if archive != nil {
		logger.Info("Archiving certificates", zap.String("backend", cfg.Storage.Backend), zap.String("bucket", archive.Bucket()))
	}

	broker, err := mq.Open(ctx, cfg.MQ)
	if err != nil {
		return nil, fmt.Errorf("open message broker: %w", err)
	}
	events := mq.NewPublisher(broker, cfg.MQ.RecordsTopic, logger)
	closers = append(closers, events.Close)

	limiter, err := ratelimit.Open(ctx, cfg.Redis, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow)
	if err != nil {
		return nil, fmt.Errorf("open login limiter: %w", err)
	}
	closers = append(closers, limiter.Close)

	m := metrics.New()

	userRepo := store.NewUserRepository(dbConn)
	inhabitantRepo := store.NewInhabitantRepository(dbConn)
	residentRepo := store.NewResidentDetailsRepository(dbConn)
	kasambahayRepo := store.NewKasambahayRepository(dbConn)
	permitRepo := store.NewBusinessPermitRepository(dbConn)
	officialRepo := store.NewOfficialRepository(dbConn)

	renderer := render.NewChromiumRenderer(cfg.Renderer.URL, cfg.Renderer.Timeout, logger)

	authService := services.NewAuthService(userRepo, limiter, logger, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	userService := services.NewUserService(userRepo)
	recordService := services.NewRecordService(services.RecordRepositories{
		Inhabitants:     inhabitantRepo,
		ResidentDetails: residentRepo,
		Kasambahay:      kasambahayRepo,
		BusinessPermits: permitRepo,
	}, events, m)
	certificateService := services.NewCertificateService(inhabitantRepo, residentRepo, officialRepo, renderer, archive, logger)
	officialService := services.NewOfficialService(officialRepo)

	validator := validation.New()
	requireAuth := handlers.RequireAuth(authService, logger)
	optionalAuth := handlers.OptionalAuth(authService)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		handlers.RequestLogger(logger),
		m.Middleware,
		middleware.Timeout(requestTimeout(cfg.Renderer.Timeout)),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Method(http.MethodGet, "/metrics", m.Handler())
	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			handlers.AuthRouter(r, handlers.NewAuthHandler(authService, userService, validator, logger), requireAuth)
		})
		r.Route("/officials", func(r chi.Router) {
			handlers.OfficialRouter(r, handlers.NewOfficialHandler(officialService, validator, logger), requireAuth)
		})
		handlers.RecordRouter(r, handlers.NewRecordHandler(recordService, validator, logger), requireAuth, optionalAuth)
		handlers.CertificateRouter(r, handlers.NewCertificateHandler(certificateService, validator, logger), requireAuth, optionalAuth)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	// PDF rendering can take most of the render timeout, so writes get the
	// same budget plus headroom.
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: requestTimeout(cfg.Renderer.Timeout) + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	statsCtx, stopStats := context.WithCancel(context.Background())
	go recordPoolStats(statsCtx, dbConn, m)

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		archive:    archive,
		events:     events,
		limiter:    limiter,
		logger:     logger,
		stopStats:  stopStats,
	}, nil
}

func recordPoolStats(ctx context.Context, dbConn *sql.DB, m *metrics.Metrics) {
	ticker := time.NewTicker(poolStatsInterval)
	defer ticker.Stop()
	for {
		m.RecordDBPoolStats(dbConn.Stats())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("Starting server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then closes every backend.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.stopStats()
	if closeErr := s.events.Close(); closeErr != nil {
		s.logger.Warn("Failed to close message broker", zap.Error(closeErr))
	}
	if closeErr := s.limiter.Close(); closeErr != nil {
		s.logger.Warn("Failed to close login limiter", zap.Error(closeErr))
	}
	if closeErr := s.archive.Close(); closeErr != nil {
		s.logger.Warn("Failed to close certificate archive", zap.Error(closeErr))
	}
	if closeErr := s.db.Close(); closeErr != nil {
		s.logger.Warn("Failed to close database", zap.Error(closeErr))
	}
	return err
}
