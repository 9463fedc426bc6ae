// Package cli provides the bootstrap shared by cmd/gastos, cmd/gastos-worker
// and cmd/gastosctl.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gastos/internal/assistant"
	"gastos/internal/backend"
	"gastos/internal/config"
	"gastos/internal/log"
)

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from LOG_LEVEL and makes it the
// slog default.
func SetupLogger(level, component string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(level)
	cfg.Component = component
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadConfig loads and validates the configuration.
func LoadConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadAndValidateConfig loads configuration and exits the process if it is
// invalid.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg, err := LoadConfig()
	if err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// Clock returns a time source in the configured timezone, so "today" is
// the user's calendar day.
func Clock(cfg *config.Config) func() time.Time {
	loc, err := cfg.Location()
	if err != nil {
		loc = time.Local
	}
	return func() time.Time { return time.Now().In(loc) }
}

// OpenBackend creates the store and exporter the configuration names.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *log.Logger) (*backend.Result, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("backend config: %w", err)
	}
	return backend.NewFactory(logger).CreateBackend(ctx, bcfg)
}

// NewAssistant wires the assistant to an opened backend.
func NewAssistant(res *backend.Result, cfg *config.Config, logger *log.Logger) *assistant.Service {
	opts := []assistant.Option{
		assistant.WithClock(Clock(cfg)),
		assistant.WithLogger(logger.WithComponent(log.ComponentAssistant)),
	}
	if res.Exporter != nil {
		opts = append(opts, assistant.WithExporter(res.Exporter))
	}
	return assistant.NewService(res.Store, res.Store, opts...)
}

// ShutdownContext returns a context cancelled on SIGINT or SIGTERM. The
// returned cancel releases the signal handler.
func ShutdownContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
