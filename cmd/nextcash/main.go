package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"nextcash/internal/auth"
	"nextcash/internal/backend"
	"nextcash/internal/cli"
	apphttp "nextcash/internal/http"
	"nextcash/internal/log"
	"nextcash/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", log.FieldError, err)
			}
		}
	}()

	verifier, err := cli.NewVerifier(cfg)
	if err != nil {
		logger.Error("Failed to initialize identity verifier", log.FieldError, err)
		os.Exit(1)
	}

	identity := auth.ContextResolver{}
	svc := apphttp.Services{
		Transactions: services.NewTransactionService(res.Backend, identity, logger),
		Categories:   services.NewCategoryService(res.Backend, logger).WithCache(cfg.CategoryCacheTTL),
		Cashflow:     services.NewCashflowService(res.Backend, identity, logger),
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Verifier:           verifier,
		Health:             res.Backend,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, srv.Shutdown)

	logger.Info("Starting nextcash server",
		log.FieldOperation, log.OpStartup,
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"auth_provider", cfg.AuthProvider)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
