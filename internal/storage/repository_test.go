package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"gastos/internal/core"
	"gastos/internal/ledger"
)

var _ ledger.Store = (*SQLiteRepository)(nil)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "sub", "gastos.db"),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRepositoryAddAndList(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	entries := []core.Expense{
		{ID: "b", Date: core.NewDate(2025, 3, 10), Category: core.CategoryFood, Amount: decimal.RequireFromString("15000"), Description: "Comí por", Type: core.EntryExpense},
		{ID: "a", Date: core.NewDate(2025, 2, 28), Category: core.CategoryTransport, Amount: decimal.RequireFromString("12.50"), Description: "taxi", Type: core.EntryExpense},
		{ID: "c", Date: core.NewDate(2025, 3, 10), Category: core.CategoryOther, Amount: decimal.RequireFromString("1000000.01"), Description: "sueldo", Type: core.EntryIncome},
	}
	for _, e := range entries {
		if err := repo.Add(ctx, e); err != nil {
			t.Fatalf("Add(%s): %v", e.ID, err)
		}
	}

	all, err := repo.List(ctx, core.Date{}, core.Date{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].ID != "a" || all[1].ID != "b" || all[2].ID != "c" {
		t.Fatalf("unexpected order: %s %s %s", all[0].ID, all[1].ID, all[2].ID)
	}
	if !all[0].Amount.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("amount = %s, want 12.5", all[0].Amount)
	}
	if !all[2].Amount.Equal(decimal.RequireFromString("1000000.01")) || all[2].Type != core.EntryIncome {
		t.Errorf("income row = %+v", all[2])
	}
	if all[1].Date.String() != "2025-03-10" || all[1].Description != "Comí por" {
		t.Errorf("row b = %+v", all[1])
	}

	march, err := repo.List(ctx, core.NewDate(2025, 3, 1), core.NewDate(2025, 3, 10))
	if err != nil {
		t.Fatalf("List march: %v", err)
	}
	if len(march) != 2 {
		t.Fatalf("march len = %d, want 2", len(march))
	}
}

func TestRepositoryAddValidates(t *testing.T) {
	repo := newTestRepo(t)
	err := repo.Add(context.Background(), core.Expense{
		ID:          "x",
		Date:        core.NewDate(2025, 3, 1),
		Category:    "nope",
		Amount:      decimal.NewFromInt(1),
		Description: "x",
		Type:        core.EntryExpense,
	})
	if !errors.Is(err, core.ErrInvalidCategory) {
		t.Fatalf("Add error = %v, want ErrInvalidCategory", err)
	}
}

func TestRepositoryDuplicateID(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	e := core.Expense{ID: "dup", Date: core.NewDate(2025, 3, 1), Category: core.CategoryFood, Amount: decimal.NewFromInt(1), Description: "x", Type: core.EntryExpense}
	if err := repo.Add(ctx, e); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	if err := repo.Add(ctx, e); err == nil {
		t.Fatal("expected primary key violation")
	}
}

func TestRepositoryPreferences(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	p, err := repo.LoadPreferences(ctx)
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	if p != core.DefaultPreferences() {
		t.Fatalf("LoadPreferences = %+v, want defaults", p)
	}

	want := core.Preferences{DailyReport: true, WeeklyReport: true, MonthlyReport: false, Currency: "COP", Language: "es"}
	for i := 0; i < 2; i++ {
		if err := repo.SavePreferences(ctx, want); err != nil {
			t.Fatalf("SavePreferences #%d: %v", i, err)
		}
	}
	got, err := repo.LoadPreferences(ctx)
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	if got != want {
		t.Fatalf("LoadPreferences = %+v, want %+v", got, want)
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	if err := RunMigrations(path); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second run: %v", err)
	}
}
