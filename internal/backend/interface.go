// Package backend builds the ledger store and exporter named by the
// configuration.
package backend

import (
	"context"

	"gastos/internal/ledger"
)

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// ExportTarget says where export requests are written.
type ExportTarget string

const (
	ExportToFile   ExportTarget = "file"
	ExportToSheets ExportTarget = "sheets"
)

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath   string
	MemorySeedFile string

	ExportTarget ExportTarget
	ExportDir    string
	ExportFormat string

	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the store, the exporter and the cleanup for both.
type Result struct {
	Store    ledger.Store
	Exporter ledger.Exporter
	Cleanup  CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}
