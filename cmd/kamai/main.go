package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"kamai/internal/auth"
	"kamai/internal/backend"
	"kamai/internal/cache"
	"kamai/internal/cli"
	"kamai/internal/config"
	apphttp "kamai/internal/http"
	applog "kamai/internal/log"
	"kamai/internal/metrics"
	"kamai/internal/session"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).Validate)

	// Per-visitor state: last report and admin flag.
	sessions, sessionCache := session.NewManager(cfg.SessionMax, cfg.SessionTTL, cfg.CookieSecure)
	cacheManager := cache.NewManager(logger)
	cacheManager.Register(sessionCache)
	cacheManager.StartCleanup(5 * time.Minute)

	m := metrics.New(sessions.Count)

	backendConfig, err := backend.FromAppConfig(cfg, true)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	result, err := backend.NewFactory(logger, m).CreateBackend(startCtx, backendConfig)
	cancelStart()
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	gate := auth.NewGate(cfg.AdminPassword)
	if !gate.Enabled() {
		logger.Warn("ADMIN_PASSWORD is not set, admin mode is disabled")
	}

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Directory:          result.Service,
		Sessions:           sessions,
		Gate:               gate,
		Metrics:            m,
		Logger:             logger.WithComponent(applog.ComponentHTTP),
		PaymentLink:        cfg.PaymentLink,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	if err != nil {
		logger.Error("Failed to build HTTP server", applog.FieldError, err)
		_ = result.Cleanup()
		os.Exit(1)
	}

	srv.MaxHeaderBytes = 1 << 16 // 64KB

	_, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", applog.FieldError, err)
		}
		cacheManager.Stop()
	})

	logger.Info("Starting kamai server",
		"port", cfg.Port,
		applog.FieldBackend, result.Type.String(),
		"events_enabled", result.Events,
		"admin_enabled", gate.Enabled())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
