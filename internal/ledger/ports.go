// Package ledger declares the ports the assistant persists and exports
// through. Implementations live in the subpackages and in internal/storage.
package ledger

import (
	"context"

	"gastos/internal/core"
)

// ExportResult describes where an export landed.
type ExportResult struct {
	// Format is the file extension or target kind: csv, json or sheets.
	Format string `json:"format"`
	// Location is a file path or a spreadsheet range reference.
	Location string `json:"location"`
	Count    int    `json:"count"`
}

// Ports for outbound adapters.
type (
	ExpenseStore interface {
		Add(ctx context.Context, e core.Expense) error
		// List returns entries dated within [from, to], oldest first. A zero
		// bound leaves that side open.
		List(ctx context.Context, from, to core.Date) ([]core.Expense, error)
	}

	PreferenceStore interface {
		// LoadPreferences returns core.DefaultPreferences when nothing was saved.
		LoadPreferences(ctx context.Context) (core.Preferences, error)
		SavePreferences(ctx context.Context, p core.Preferences) error
	}

	Exporter interface {
		Export(ctx context.Context, entries []core.Expense) (ExportResult, error)
	}

	// Store is what a data backend provides.
	Store interface {
		ExpenseStore
		PreferenceStore
		Close() error
	}
)
