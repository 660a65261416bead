package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"leavetracker/internal/domain/activity"
	"leavetracker/internal/domain/auth"
	"leavetracker/internal/domain/directory"
	"leavetracker/internal/domain/leave"
	"leavetracker/internal/domain/reports"
	"leavetracker/internal/platform/config"
	"leavetracker/internal/platform/db"
	"leavetracker/internal/platform/metrics"
	"leavetracker/internal/platform/querier"
	activityhandler "leavetracker/internal/transport/http/handlers/activity"
	authhandler "leavetracker/internal/transport/http/handlers/auth"
	directoryhandler "leavetracker/internal/transport/http/handlers/directory"
	leavehandler "leavetracker/internal/transport/http/handlers/leave"
	reportshandler "leavetracker/internal/transport/http/handlers/reports"
	"leavetracker/internal/transport/http/api"
	"leavetracker/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	DB     *db.Pool
	Router http.Handler
	Logger *zap.Logger
}

type pinger interface {
	Ping(ctx context.Context) error
}

// New connects to the database, applies migrations and seed data when
// enabled, and builds the router.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if cfg.RunMigrations {
		if err := db.Migrate(cfg.DatabaseURL, log.Named("migrate")); err != nil {
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect failed: %w", err)
	}

	if cfg.RunSeed {
		provisioner := leave.NewService(leave.NewStore(pool), activity.New(pool), cfg.Location(), log)
		if err := db.Seed(ctx, pool, cfg, provisioner, log.Named("seed")); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed failed: %w", err)
		}
	}

	return &App{
		Config: cfg,
		DB:     pool,
		Router: NewRouter(cfg, pool, pool, log),
		Logger: log,
	}, nil
}

// NewRouter wires every service and handler on top of conn.
func NewRouter(cfg config.Config, conn querier.Querier, health pinger, log *zap.Logger) http.Handler {
	activityLog := activity.New(conn)
	loc := cfg.Location()

	authService := auth.NewService(auth.NewStore(conn), activityLog, cfg.JWTSecret, cfg.SessionLifetime, log)
	leaveService := leave.NewService(leave.NewStore(conn), activityLog, loc, log)
	directoryService := directory.NewService(directory.NewStore(conn), activityLog, leaveService, log)
	reportsService := reports.NewService(reports.NewStore(conn), activityLog, loc, log)
	collector := metrics.New()

	router := chi.NewRouter()
	router.Use(chimw.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.ClientInfo)
	router.Use(middleware.Logger(log))
	router.Use(middleware.Metrics(collector))
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if health == nil || health.Ping(ctx) != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	authHandler := authhandler.NewHandler(authService, log)

	router.Route("/api/v1", func(r chi.Router) {
		authHandler.RegisterPublicRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret, authService))

			authHandler.RegisterRoutes(r)
			leavehandler.NewHandler(leaveService, log).RegisterRoutes(r)
			directoryhandler.NewHandler(directoryService, leaveService, log).RegisterRoutes(r)
			reportshandler.NewHandler(reportsService, log).RegisterRoutes(r)
			activityhandler.NewHandler(activityLog, log).RegisterRoutes(r)

			r.With(middleware.RequireRole(auth.RoleAdmin)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
				api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
			})
		})
	})

	return router
}

// Run serves until ctx is cancelled, then drains in-flight requests for up to
// ShutdownTimeout.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadTimeout:       a.Config.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      a.Config.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("server listening", zap.String("addr", a.Config.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
