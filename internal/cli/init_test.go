package cli

import (
	"context"
	"testing"
	"time"

	"gastos/internal/config"
	"gastos/internal/log"
)

func TestClockUsesConfiguredTimezone(t *testing.T) {
	now := Clock(&config.Config{Timezone: "America/Bogota"})()
	if now.Location().String() != "America/Bogota" {
		t.Fatalf("location = %s", now.Location())
	}

	// An invalid zone falls back to local time instead of failing.
	if now := Clock(&config.Config{Timezone: "Mars/Olympus"})(); now.Location() != time.Local {
		t.Fatalf("fallback location = %s", now.Location())
	}
}

func TestLoadConfigReportsInvalidSettings(t *testing.T) {
	t.Setenv("DATA_BACKEND", "postgres")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestOpenBackendAndAssistant(t *testing.T) {
	cfg := &config.Config{
		DataBackend:  config.BackendMemory,
		ExportTarget: config.ExportFile,
		ExportDir:    t.TempDir(),
		ExportFormat: "csv",
		Timezone:     "UTC",
	}
	res, err := OpenBackend(context.Background(), cfg, log.Discard())
	if err != nil {
		t.Fatalf("OpenBackend: %v", err)
	}
	defer res.Cleanup()

	svc := NewAssistant(res, cfg, log.Discard())
	reply, err := svc.Handle(context.Background(), "exportar")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if reply.Export == nil || reply.Export.Format != "csv" {
		t.Fatalf("unexpected export: %+v", reply.Export)
	}
}

func TestShutdownContextCancel(t *testing.T) {
	ctx, cancel := ShutdownContext(log.Discard())
	cancel()
	<-ctx.Done()
}
