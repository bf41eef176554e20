package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"perfeval/internal/domain/analytics"
	"perfeval/internal/domain/auth"
	"perfeval/internal/domain/chat"
	"perfeval/internal/domain/contact"
	"perfeval/internal/domain/evaluations"
	"perfeval/internal/domain/goals"
	"perfeval/internal/domain/users"
	"perfeval/internal/platform/config"
	"perfeval/internal/platform/crypto"
	"perfeval/internal/platform/jobs"
	"perfeval/internal/platform/metrics"
	"perfeval/internal/transport/http/api"
	analyticshandler "perfeval/internal/transport/http/handlers/analytics"
	authhandler "perfeval/internal/transport/http/handlers/auth"
	chathandler "perfeval/internal/transport/http/handlers/chat"
	contacthandler "perfeval/internal/transport/http/handlers/contact"
	evaluationshandler "perfeval/internal/transport/http/handlers/evaluations"
	goalshandler "perfeval/internal/transport/http/handlers/goals"
	usershandler "perfeval/internal/transport/http/handlers/users"
	"perfeval/internal/transport/http/middleware"
	"perfeval/internal/transport/ws"
)

const shutdownTimeout = 15 * time.Second

// Services holds the domain services the router exposes.
type Services struct {
	Auth        *auth.Service
	Users       *users.Service
	Goals       *goals.Service
	Evaluations *evaluations.Service
	Chat        *chat.Service
	Contact     *contact.Service
	Analytics   *analytics.Service
	Perms       middleware.PermissionStore
}

func NewServices(stores Stores, cfg config.Config, denylist auth.Denylist, sealer *crypto.Sealer) Services {
	userSvc := users.NewService(stores.Users)
	goalSvc := goals.NewService(stores.Goals)
	evalSvc := evaluations.NewService(stores.Evaluations)
	return Services{
		Auth:        auth.NewService(userSvc, cfg.JWTSecret, cfg.SessionTTL, denylist, sealer),
		Users:       userSvc,
		Goals:       goalSvc,
		Evaluations: evalSvc,
		Chat:        chat.NewService(stores.Chat),
		Contact:     contact.NewService(stores.Contact),
		Analytics:   analytics.NewService(goalSvc, evalSvc),
		Perms:       auth.NewStaticPermissions(),
	}
}

// RouterDeps carries everything NewRouter wires besides the services.
type RouterDeps struct {
	Config    config.Config
	Logger    *slog.Logger
	Metrics   *metrics.Collector
	Relay     http.Handler
	Readiness func(context.Context) error
	// RateCounter defaults to an in-process counter when nil.
	RateCounter middleware.RateCounter
}

func NewRouter(svc Services, deps RouterDeps) http.Handler {
	cfg := deps.Config
	logger := deps.Logger

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(chimw.RealIP)
	router.Use(middleware.Logger(logger, deps.Metrics))
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(svc.Auth))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Readiness != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Readiness(ctx); err != nil {
				logger.Warn("readiness check failed", "err", err)
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled && deps.Metrics != nil {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.OK(w, deps.Metrics.Snapshot())
		})
	}

	router.Route("/api", func(r chi.Router) {
		rateOpts := []middleware.RateLimitOption{middleware.WithCounter(deps.RateCounter)}
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute, rateOpts...))
		r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute, rateOpts...))

		authhandler.NewHandler(svc.Auth, svc.Users, cfg.IsProduction(), logger).RegisterRoutes(r)
		usershandler.NewHandler(svc.Users, svc.Auth, svc.Perms, logger).RegisterRoutes(r)
		goalshandler.NewHandler(svc.Goals, svc.Perms, logger).RegisterRoutes(r)
		evaluationshandler.NewHandler(svc.Evaluations, svc.Perms, logger).RegisterRoutes(r)
		chathandler.NewHandler(svc.Chat, svc.Perms, deps.Relay, logger).RegisterRoutes(r)
		contacthandler.NewHandler(svc.Contact, logger).RegisterRoutes(r)
		analyticshandler.NewHandler(svc.Analytics, svc.Users, svc.Perms, logger).RegisterRoutes(r)
	})

	return router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	stores, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	sealer, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		return fmt.Errorf("data encryption key: %w", err)
	}

	var (
		denylist auth.Denylist = auth.NewMemoryDenylist()
		broker   ws.Broker
		counter  middleware.RateCounter
		rdb      *redis.Client
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb = redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		denylist = auth.NewRedisDenylist(rdb)
		broker = ws.NewRedisBroker(rdb, logger)
		counter = middleware.NewRedisRateCounter(rdb)
		logger.Info("redis enabled for session revocation, rate limits and chat fan-out")
	}

	svc := NewServices(stores, cfg, denylist, sealer)
	if cfg.RunSeed {
		if err := Seed(ctx, cfg, svc, logger); err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}
	}

	collector := metrics.New()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub := ws.NewHub(broker, logger, collector)
	go func() {
		if err := hub.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("chat relay stopped", "err", err)
		}
	}()

	jobsSvc := jobs.New(logger)
	jobsSvc.Every(jobs.JobOverdueSweep, cfg.OverdueSweepInterval, func(ctx context.Context) (any, error) {
		n, err := svc.Goals.SweepOverdue(ctx)
		collector.GoalsSwept(n)
		return map[string]int64{"marked": n}, err
	})
	jobsSvc.Start(runCtx)

	readiness := func(ctx context.Context) error {
		if err := stores.Ping(ctx); err != nil {
			return err
		}
		if rdb != nil {
			return rdb.Ping(ctx).Err()
		}
		return nil
	}

	router := NewRouter(svc, RouterDeps{
		Config:      cfg,
		Logger:      logger,
		Metrics:     collector,
		Relay:       ws.NewHandler(runCtx, hub, svc.Chat, logger, cfg.CORSOrigins),
		Readiness:   readiness,
		RateCounter: counter,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Addr, "driver", cfg.DBDriver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	return srv.Shutdown(shutdownCtx)
}
