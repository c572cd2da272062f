package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/01moynul/cinestream-golang/internal/auth"
	"github.com/01moynul/cinestream-golang/internal/billing"
	"github.com/01moynul/cinestream-golang/internal/cache"
	"github.com/01moynul/cinestream-golang/internal/catalog"
	"github.com/01moynul/cinestream-golang/internal/config"
	"github.com/01moynul/cinestream-golang/internal/database"
	"github.com/01moynul/cinestream-golang/internal/handlers"
	"github.com/01moynul/cinestream-golang/internal/logger"
	"github.com/01moynul/cinestream-golang/internal/metrics"
	"github.com/01moynul/cinestream-golang/internal/routes"
	"github.com/01moynul/cinestream-golang/internal/telemetry"
)

const (
	release         = "cinestream-api@dev"
	gaugeInterval   = time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	// 0. --- Config & Logging ---
	cfg := config.Load()
	logger.Init(cfg.LogLevel)
	log := logger.Get()

	if cfg.UsingDefaultSecret() {
		if cfg.IsProduction() {
			log.Fatal("JWT_SECRET is not set; refusing to start in production with the development secret")
		}
		log.Warn("JWT_SECRET is not set; using the development secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. --- Error Reporting ---
	if err := telemetry.Init(cfg.SentryDSN, cfg.AppEnv, release); err != nil {
		log.WithError(err).Warn("sentry disabled")
	}
	defer telemetry.Flush(2 * time.Second)

	// 2. --- Database Connection & Schema ---
	db, err := database.Open(ctx, cfg.DB.DSN(), cfg.DB.ConnectAttempts)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		log.WithError(err).Fatal("failed to migrate schema")
	}

	// 3. --- Cache (optional) ---
	var catalogCache cache.Cache = cache.Noop{}
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.WithError(err).WithField("addr", cfg.Redis.Addr).Warn("redis unavailable, caching disabled")
		} else {
			defer rc.Close()
			catalogCache = rc
			log.WithField("addr", cfg.Redis.Addr).Info("redis cache enabled")
		}
	}

	// --- Application Setup ---
	app := &handlers.Handlers{
		DB:        db,
		Tokens:    auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL),
		Billing:   billing.NewService(db),
		Catalog:   catalog.NewService(db, catalogCache),
		Log:       log,
		MediaRoot: cfg.MediaRoot,
		BaseURL:   cfg.BaseURL,
	}

	// 4. --- Background Worker ---
	go refreshSubscriberGauge(ctx, app.Billing, log)

	// 5. --- Router & Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRouter(app, routes.Options{CORSOrigin: cfg.CORSOrigin, AuthRatePerMin: cfg.AuthRatePerMin}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("starting CineStream API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

// refreshSubscriberGauge keeps the active-subscriber gauge current until ctx is cancelled.
func refreshSubscriberGauge(ctx context.Context, svc *billing.Service, log *logrus.Logger) {
	ticker := time.NewTicker(gaugeInterval)
	defer ticker.Stop()

	log.Info("background worker started: active subscriber gauge")
	for {
		n, err := svc.ActiveSubscriberCount(ctx)
		if err != nil && ctx.Err() == nil {
			log.WithError(err).Warn("active subscriber count failed")
		} else if err == nil {
			metrics.ActiveSubscribers.Set(float64(n))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
