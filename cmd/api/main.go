// Package main is the entrypoint for the Gatehouse web server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/gatehouse/gatehouse/internal/cache"
	"github.com/gatehouse/gatehouse/internal/config"
	"github.com/gatehouse/gatehouse/internal/handler"
	"github.com/gatehouse/gatehouse/internal/metrics"
	"github.com/gatehouse/gatehouse/internal/middleware"
	"github.com/gatehouse/gatehouse/internal/render"
	"github.com/gatehouse/gatehouse/internal/repository"
	"github.com/gatehouse/gatehouse/internal/server"
	"github.com/gatehouse/gatehouse/internal/service"
	"github.com/gatehouse/gatehouse/internal/session"
	"github.com/gatehouse/gatehouse/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.MigrateOnStart {
		if err := repository.Migrate(ctx, cfg.DatabaseURL); err != nil {
			logger.Error("failed to apply migrations",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			)
			return errRedacted("migrate")
		}
		logger.Info("database migrations applied")
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL, repository.PoolOptions{
		MaxConns: cfg.DatabaseMaxConns,
		MinConns: cfg.DatabaseMinConns,
	})
	if err != nil {
		logger.Error("failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return errRedacted("connect database")
	}
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL, cache.Options{PoolSize: cfg.RedisPoolSize})
	if err != nil {
		repo.Close()
		logger.Error("failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		return errRedacted("connect redis")
	}
	logger.Info("connected to Redis")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewPrometheus(registry)
	clock := clockwork.NewRealClock()

	sessions := session.NewManager(
		session.NewCookieStore(cfg.SessionSecret, cfg.SessionMaxAge, cfg.IsProduction()),
		cacheClient,
		session.Options{
			MaxAge:      cfg.SessionMaxAge,
			IdleTimeout: cfg.SessionIdleTimeout,
			Clock:       clock,
		},
	)
	accounts := service.NewAccountService(repo, recorder, clock)

	renderer, err := render.New(web.TemplateFiles, logger)
	if err != nil {
		repo.Close()
		_ = cacheClient.Close()
		return err
	}
	staticFS, err := web.StaticFS()
	if err != nil {
		repo.Close()
		_ = cacheClient.Close()
		return err
	}

	router := server.NewRouter(server.Routes{
		Pages: handler.New(handler.Deps{
			Accounts: accounts,
			Auth:     accounts,
			Sessions: sessions,
			Flashes:  sessions,
			Renderer: renderer,
			Metrics:  recorder,
			Logger:   logger,
		}),
		Health: handler.NewHealthHandler(clock,
			handler.HealthCheck{Name: "postgres", Checker: repo},
			handler.HealthCheck{Name: "redis", Checker: cacheClient},
		),
		Metrics:  handler.NewMetricsHandler(registry),
		Static:   staticFS,
		Sessions: sessions,
		RateLimit: middleware.RateLimitConfig{
			Logger:    logger,
			Limiter:   cacheClient,
			Metrics:   recorder,
			Enabled:   cfg.RateLimitAuthEnabled,
			PerMinute: cfg.RateLimitAuthPerMinute,
			Burst:     cfg.RateLimitAuthBurst,
		},
		Recorder:       recorder,
		IsDevelopment:  cfg.IsDevelopment(),
		MaxRequestBody: cfg.MaxRequestBodySize,
		Logger:         logger,
	})

	srv := server.New(router, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// LIFO: Redis closes before PostgreSQL.
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"session_max_age", cfg.SessionMaxAge.String(),
		"session_idle_timeout", cfg.SessionIdleTimeout.String(),
	)

	return srv.Run(ctx)
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", "gatehouse")
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
