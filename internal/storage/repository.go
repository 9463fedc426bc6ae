// Package storage is the SQLite-backed ledger.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"gastos/internal/core"
)

// Open bounds used when List gets a zero date.
const (
	minDate = "0001-01-01"
	maxDate = "9999-12-31"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *slog.Logger
}

func NewSQLiteRepository(dbPath string, logger *slog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		logger:  logger,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database answers.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Add validates and inserts an expense. Amounts are stored as decimal text
// so no precision is lost.
func (r *SQLiteRepository) Add(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	err := r.queries.CreateExpense(ctx, ExpenseRow{
		ID:          e.ID,
		Date:        e.Date.String(),
		Category:    string(e.Category),
		Amount:      e.Amount.String(),
		Description: e.Description,
		Type:        string(e.Type),
	})
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}

	r.logger.InfoContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"amount", e.Amount.String(),
		"category", e.Category,
		"date", e.Date.String())
	return nil
}

// List returns entries within [from, to], oldest first.
func (r *SQLiteRepository) List(ctx context.Context, from, to core.Date) ([]core.Expense, error) {
	lo, hi := minDate, maxDate
	if !from.IsZero() {
		lo = from.String()
	}
	if !to.IsZero() {
		hi = to.String()
	}

	rows, err := r.queries.ListExpensesBetween(ctx, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	out := make([]core.Expense, 0, len(rows))
	for _, row := range rows {
		e, err := row.toExpense()
		if err != nil {
			return nil, fmt.Errorf("decode expense %s: %w", row.ID, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func (row ExpenseRow) toExpense() (core.Expense, error) {
	d, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Expense{}, err
	}
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse amount %q: %w", row.Amount, err)
	}
	return core.Expense{
		ID:          row.ID,
		Date:        d,
		Category:    core.CategoryID(row.Category),
		Amount:      amount,
		Description: row.Description,
		Type:        core.EntryType(row.Type),
	}, nil
}

// LoadPreferences returns the stored preferences, or the defaults when none
// were saved yet.
func (r *SQLiteRepository) LoadPreferences(ctx context.Context) (core.Preferences, error) {
	row, err := r.queries.GetPreferences(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultPreferences(), nil
	}
	if err != nil {
		return core.Preferences{}, fmt.Errorf("get preferences: %w", err)
	}
	return core.Preferences{
		DailyReport:   row.DailyReport,
		WeeklyReport:  row.WeeklyReport,
		MonthlyReport: row.MonthlyReport,
		Currency:      row.Currency,
		Language:      row.Language,
	}, nil
}

func (r *SQLiteRepository) SavePreferences(ctx context.Context, p core.Preferences) error {
	err := r.queries.UpsertPreferences(ctx, PreferencesRow{
		DailyReport:   p.DailyReport,
		WeeklyReport:  p.WeeklyReport,
		MonthlyReport: p.MonthlyReport,
		Currency:      p.Currency,
		Language:      p.Language,
	})
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	r.logger.InfoContext(ctx, "Preferences saved")
	return nil
}
