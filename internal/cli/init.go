// Package cli holds the startup steps shared by the nextcash commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"nextcash/internal/auth"
	"nextcash/internal/config"
	"nextcash/internal/log"
)

// SetupLogger builds the application logger at the given level and makes it
// the slog default.
func SetupLogger(level string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(level)
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// NewVerifier returns the identity token verifier for the configured provider.
func NewVerifier(cfg *config.Config) (auth.Verifier, error) {
	switch cfg.AuthProvider {
	case config.AuthJWT:
		return auth.NewJWTVerifier(cfg.AuthJWTSecret, cfg.AuthJWTIssuer), nil
	case config.AuthGoogle:
		return auth.NewGoogleVerifier(cfg.GoogleClientID), nil
	default:
		return nil, fmt.Errorf("unsupported auth provider %q", cfg.AuthProvider)
	}
}

// GracefulShutdown waits for SIGINT or SIGTERM, then runs shutdown with a
// context bounded by timeout. The returned channel closes once shutdown has
// returned.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, shutdown func(context.Context) error) <-chan struct{} {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	return shutdownOn(sigChan, logger, timeout, shutdown)
}

func shutdownOn(sigChan <-chan os.Signal, logger *log.Logger, timeout time.Duration, shutdown func(context.Context) error) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := shutdown(ctx); err != nil {
			logger.Error("Shutdown failed", log.FieldOperation, log.OpShutdown, log.FieldError, err)
			return
		}
		if ctx.Err() != nil {
			logger.Warn("Shutdown timeout reached", "timeout", timeout)
			return
		}
		logger.Info("Shutdown complete", log.FieldOperation, log.OpShutdown)
	}()

	return done
}
