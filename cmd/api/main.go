// Package main is the entrypoint for the fiberpulse API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/fiberpulse/fiberpulse/internal/aggregate"
	"github.com/fiberpulse/fiberpulse/internal/auth"
	"github.com/fiberpulse/fiberpulse/internal/cache"
	"github.com/fiberpulse/fiberpulse/internal/config"
	"github.com/fiberpulse/fiberpulse/internal/export"
	"github.com/fiberpulse/fiberpulse/internal/handler"
	"github.com/fiberpulse/fiberpulse/internal/metrics"
	"github.com/fiberpulse/fiberpulse/internal/middleware"
	"github.com/fiberpulse/fiberpulse/internal/repository"
	"github.com/fiberpulse/fiberpulse/internal/server"
	"github.com/fiberpulse/fiberpulse/internal/store"
	"github.com/fiberpulse/fiberpulse/internal/timerange"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize cache (rate-limit markers; redis event store backend)
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Initialize database when configured. The postgres event store
	// backend needs it; the page resolver uses it when present.
	var repo *repository.Repository
	if cfg.DatabaseURL != "" {
		repo, err = repository.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error(
				"failed to connect to database",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
				slog.String("database_url", redactURL(cfg.DatabaseURL)),
			)
			os.Exit(1)
		}
		defer repo.Close()
		logger.Info("connected to database")
	}

	// Select the event store backend
	eventStore, err := buildEventStore(ctx, cfg, cacheClient, repo, logger)
	if err != nil {
		logger.Error("failed to initialize event store",
			slog.String("backend", cfg.EventStoreBackend),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}
	logger.Info("event store ready", "backend", cfg.EventStoreBackend)

	// Timezone-aware range resolution
	loc, err := cfg.Location()
	if err != nil {
		logger.Error("failed to resolve site timezone", "error", err)
		os.Exit(1)
	}
	resolver := timerange.NewResolver(loc)

	// Page title/URL resolution for top-pages rows
	var pages aggregate.PageResolver
	if repo != nil {
		pageRepo := repository.NewPageRepository(repo, logger)
		if err := pageRepo.EnsureSchema(ctx); err != nil {
			logger.Error("failed to ensure pages schema", "error", err)
			os.Exit(1)
		}
		pages = pageRepo
	} else {
		pages = aggregate.StaticPages{}
	}

	// Aggregation + export
	agg := aggregate.New(eventStore, resolver, pages)
	exporter := export.New(agg, resolver)

	// Ingest anti-forgery token
	issuer := auth.NewTokenIssuer(cfg.IngestTokenSecret, cfg.IngestTokenTTL)

	// Admin key is hashed once at startup; only the hash is retained.
	adminHash, err := auth.HashAdminKey(cfg.AdminAPIKey)
	if err != nil {
		logger.Error("failed to hash admin key", "error", err)
		os.Exit(1)
	}

	// Event rate limiter
	var limiter *cache.EventLimiter
	if cfg.RateLimitEnabled {
		limiter = cache.NewEventLimiter(cacheClient, cfg.RateLimitTTL, logger)
	}

	// Instrumentation
	recorder := metrics.NewInMemory()

	// Handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler()
	healthHandler.AddCheck("redis", cacheClient)
	if repo != nil {
		healthHandler.AddCheck("postgres", repo)
	} else {
		healthHandler.AddCheck("postgres", nil)
	}
	metricsHandler := handler.NewMetricsHandler(eventStore, agg, issuer, limiter, recorder, logger)
	exportHandler := handler.NewExportHandler(exporter, issuer, recorder, logger)
	opsHandler := handler.NewOpsHandler(recorder)

	// Router
	r := setupRouter(h, healthHandler, metricsHandler, exportHandler, opsHandler, adminHash, cfg, logger)

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"backend", cfg.EventStoreBackend,
		"timezone", cfg.SiteTimezone,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// buildEventStore selects and initializes the configured backend.
func buildEventStore(
	ctx context.Context,
	cfg *config.Config,
	cacheClient *cache.Cache,
	repo *repository.Repository,
	logger *slog.Logger,
) (store.EventStore, error) {
	switch cfg.EventStoreBackend {
	case config.BackendMemory:
		return store.NewMemoryStore(), nil
	case config.BackendPostgres:
		pgStore := store.NewPostgresStore(repo.Pool(), logger)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return pgStore, nil
	default:
		return store.NewRedisStore(cacheClient.Client(), logger), nil
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	metricsHandler *handler.MetricsHandler,
	exportHandler *handler.ExportHandler,
	opsHandler *handler.OpsHandler,
	adminHash string,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment: cfg.IsDevelopment(),
	}))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	if origins := cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = origins
		r.Use(middleware.CORS(corsCfg))
	}

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Root info endpoint
	r.Get("/", h.Root)

	admin := middleware.AdminAuth(adminHash, logger)

	// API v1 routes
	r.Route("/api/v1/metrics", func(r chi.Router) {
		// Beacon ingestion (anti-forgery token checked in the handler)
		r.Post("/", metricsHandler.IngestEvent)

		// Token issuance for the beacon script
		r.Get("/token", metricsHandler.IssueToken)

		// Dashboard summary and exports require the admin key
		r.With(admin).Get("/", metricsHandler.GetSummary)
		r.With(admin).Post("/export", exportHandler.Export)
	})

	// Ops counters (admin only)
	r.With(admin).Get("/internal/metrics", opsHandler.Counters)

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
