package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"lifedash/internal/auth"
	"lifedash/internal/backend"
	"lifedash/internal/cache"
	"lifedash/internal/cli"
	apphttp "lifedash/internal/http"
	"lifedash/internal/log"
	"lifedash/internal/normalize"
	"lifedash/internal/services"
)

var version = "dev"

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	flush, err := cli.InitSentry(cfg, version)
	if err != nil {
		logger.Warn("Sentry disabled", log.FieldError, err)
	}
	defer flush()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Exit(logger, "Invalid backend configuration", err)
	}

	ctx := context.Background()
	factory := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger)
	store, err := factory.CreateStore(ctx, bcfg)
	if err != nil {
		cli.Exit(logger, "Failed to initialize data backend", err)
	}
	rec, err := factory.CreateRecorder(ctx, bcfg)
	if err != nil {
		cli.Exit(logger, "Failed to initialize write recorder", err)
	}

	names := cfg.SheetNames()
	norm := normalize.New(bcfg.Location)
	finance := services.NewFinanceService(store.Store, names.Finance, norm, rec.Recorder)
	fuel := services.NewFuelService(store.Store, names.Fuel, norm, rec.Recorder)
	dreams := services.NewDreamService(store.Store, names.Dreams, names.DreamTracker, norm, rec.Recorder)

	verifier := auth.NewSheetVerifier(store.Store, names.Login, cfg.CredentialCacheTTL)
	caches := cache.NewManager()
	caches.Register("credentials", verifier.Cache())
	caches.StartCleanup(10 * time.Minute)

	opts := apphttp.Options{
		Logger:             logger,
		Verifier:           verifier,
		Tokens:             auth.NewTokens(cfg.SessionSecret, cfg.SessionTTL),
		SecureCookies:      cfg.SecureCookies,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Checks:             map[string]func(context.Context) error{},
	}
	if rec.Journal != nil {
		opts.Journal = rec.Journal
		opts.Checks["journal"] = rec.Journal.Ping
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Services{
		Finance:   finance,
		Fuel:      fuel,
		Dreams:    dreams,
		Dashboard: services.NewDashboardService(finance, fuel, dreams),
	}, opts)
	srv.ReadTimeout = 15 * time.Second
	srv.WriteTimeout = cfg.StoreTimeout + 15*time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	runCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		caches.Stop()
		if err := rec.Cleanup(); err != nil {
			logger.Error("Failed to close write recorders", log.FieldError, err)
		}
		if store.Cleanup != nil {
			if err := store.Cleanup(); err != nil {
				logger.Error("Failed to close data backend", log.FieldError, err)
			}
		}
	})

	logger.Info("Starting lifedash server",
		"port", cfg.Port,
		"backend", store.Type.String(),
		"version", version,
		"journal", rec.Journal != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cli.Exit(logger, "Server error", err)
	}

	cli.WaitForShutdown(runCtx, done)
	logger.Info("Server stopped gracefully")
}
