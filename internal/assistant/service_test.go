package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gastos/internal/core"
	"gastos/internal/intent"
	"gastos/internal/ledger"
	"gastos/internal/ledger/memory"
	"gastos/internal/log"
)

var fixedNow = time.Date(2025, time.March, 17, 10, 0, 0, 0, time.UTC)

type fakeExporter struct {
	got []core.Expense
	err error
}

func (f *fakeExporter) Export(_ context.Context, entries []core.Expense) (ledger.ExportResult, error) {
	if f.err != nil {
		return ledger.ExportResult{}, f.err
	}
	f.got = entries
	return ledger.ExportResult{Format: "csv", Location: "/tmp/gastos_2025-03-17.csv", Count: len(entries)}, nil
}

type failingStore struct{ err error }

func (f failingStore) Add(context.Context, core.Expense) error { return f.err }
func (f failingStore) List(context.Context, core.Date, core.Date) ([]core.Expense, error) {
	return nil, f.err
}
func (f failingStore) LoadPreferences(context.Context) (core.Preferences, error) {
	return core.Preferences{}, f.err
}
func (f failingStore) SavePreferences(context.Context, core.Preferences) error { return f.err }

func newService(t *testing.T, store *memory.Store, opts ...Option) *Service {
	t.Helper()
	n := 0
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(log.Discard()),
		WithIDGenerator(func() string {
			n++
			return "id-" + string(rune('0'+n))
		}),
	}
	return NewService(store, store, append(base, opts...)...)
}

func seed(id string, day int, cat core.CategoryID, amount string, desc string) core.Expense {
	return core.Expense{
		ID:          id,
		Date:        core.NewDate(2025, 3, day),
		Category:    cat,
		Amount:      decimal.RequireFromString(amount),
		Description: desc,
		Type:        core.EntryExpense,
	}
}

func TestHandle_RecordsExpense(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := newService(t, store)

	reply, err := svc.Handle(ctx, "Comí por 15 mil")
	require.NoError(t, err)

	assert.Equal(t, "✅ Gasto registrado: $15,000 en alimentacion", reply.Text)
	require.NotNil(t, reply.Expense)
	assert.Equal(t, "id-1", reply.Expense.ID)
	assert.Equal(t, core.EntryExpense, reply.Expense.Type)
	assert.Equal(t, intent.KindExpense, reply.Parsed.Kind)

	stored, err := store.List(ctx, core.Date{}, core.Date{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.True(t, decimal.NewFromInt(15000).Equal(stored[0].Amount))
	assert.Equal(t, "Comí por", stored[0].Description)
	assert.Equal(t, "2025-03-17", stored[0].Date.String())
}

func TestHandle_UsesUUIDByDefault(t *testing.T) {
	store := memory.New()
	svc := NewService(store, store, WithLogger(log.Discard()))

	reply, err := svc.Handle(context.Background(), "taxi 12.50")
	require.NoError(t, err)
	require.NotNil(t, reply.Expense)
	assert.Len(t, reply.Expense.ID, 36)
}

func TestHandle_Help(t *testing.T) {
	reply, err := newService(t, memory.New()).Handle(context.Background(), "ayuda")
	require.NoError(t, err)
	assert.Equal(t, HelpText, reply.Text)
	assert.Contains(t, reply.Text, "Comí por 15 mil")
}

func TestHandle_Unparsed(t *testing.T) {
	store := memory.New()
	reply, err := newService(t, store).Handle(context.Background(), "asdf")
	require.NoError(t, err)
	assert.Equal(t, intent.UnparsedReason, reply.Text)

	stored, _ := store.List(context.Background(), core.Date{}, core.Date{})
	assert.Empty(t, stored)
}

func TestHandle_Report(t *testing.T) {
	ctx := context.Background()
	store := memory.New(
		seed("a", 2, core.CategoryFood, "5000", "almuerzo"),
		seed("b", 10, core.CategoryTransport, "12000", "taxi"),
		seed("c", 20, core.CategoryFood, "99", "fuera de rango"),
		core.Expense{ID: "old", Date: core.NewDate(2025, 1, 5), Category: core.CategoryHousing, Amount: decimal.NewFromInt(800), Description: "arriendo", Type: core.EntryExpense},
	)
	svc := newService(t, store)

	reply, err := svc.Handle(ctx, "Dame el reporte del mes")
	require.NoError(t, err)
	require.NotNil(t, reply.Report)

	r := reply.Report
	assert.Equal(t, "2025-03-01", r.Start.String())
	assert.Equal(t, "2025-03-17", r.End.String())
	assert.Equal(t, 2, r.Count)
	assert.True(t, decimal.NewFromInt(17000).Equal(r.TotalExpenses), r.TotalExpenses.String())
	require.NotEmpty(t, r.ByCategory)
	assert.Equal(t, core.CategoryTransport, r.ByCategory[0].Category)
	assert.Contains(t, reply.Text, "Total gastos: $17,000")
	assert.Contains(t, reply.Text, "Transporte")

	// The trend reaches back to January.
	var jan decimal.Decimal
	for _, m := range r.MonthlyTrend {
		if m.Month.Month() == time.January {
			jan = m.Amount
		}
	}
	assert.True(t, decimal.NewFromInt(800).Equal(jan), "january trend = %s", jan)
}

func TestHandle_ReportEmpty(t *testing.T) {
	reply, err := newService(t, memory.New()).Handle(context.Background(), "resumen")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "No hay gastos registrados")
}

func TestHandle_Export(t *testing.T) {
	store := memory.New(
		seed("a", 2, core.CategoryFood, "5000", "almuerzo"),
		seed("b", 18, core.CategoryFood, "1", "mañana"),
	)
	x := &fakeExporter{}
	svc := newService(t, store, WithExporter(x))

	reply, err := svc.Handle(context.Background(), "Exportar a Excel")
	require.NoError(t, err)
	require.NotNil(t, reply.Export)
	assert.Equal(t, 1, reply.Export.Count)
	require.Len(t, x.got, 1)
	assert.Equal(t, "a", x.got[0].ID)
	assert.Contains(t, reply.Text, "/tmp/gastos_2025-03-17.csv")
}

func TestHandle_ExportErrors(t *testing.T) {
	_, err := newService(t, memory.New()).Handle(context.Background(), "csv")
	assert.ErrorIs(t, err, ErrExportUnavailable)

	boom := errors.New("disk full")
	_, err = newService(t, memory.New(), WithExporter(&fakeExporter{err: boom})).Handle(context.Background(), "csv")
	assert.ErrorIs(t, err, boom)
}

func TestHandle_Queries(t *testing.T) {
	ctx := context.Background()
	store := memory.New(
		seed("a", 2, core.CategoryFood, "5000", "almuerzo"),
		seed("b", 3, core.CategoryHousing, "850000", "arriendo"),
		seed("c", 4, core.CategoryTransport, "12.5", "taxi"),
		core.Expense{ID: "i", Date: core.NewDate(2025, 3, 5), Category: core.CategoryOther, Amount: decimal.NewFromInt(9_000_000), Description: "sueldo", Type: core.EntryIncome},
		core.Expense{ID: "feb", Date: core.NewDate(2025, 2, 5), Category: core.CategoryOther, Amount: decimal.NewFromInt(1_000_000), Description: "febrero", Type: core.EntryExpense},
	)
	svc := newService(t, store)

	reply, err := svc.Handle(ctx, "¿Cuál fue mi mayor gasto?")
	require.NoError(t, err)
	require.Len(t, reply.Entries, 1)
	assert.Equal(t, "b", reply.Entries[0].ID)
	assert.Contains(t, reply.Text, "$850,000")

	reply, err = svc.Handle(ctx, "top")
	require.NoError(t, err)
	require.Len(t, reply.Entries, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{reply.Entries[0].ID, reply.Entries[1].ID, reply.Entries[2].ID})
	assert.True(t, strings.HasPrefix(reply.Text, "🏆 Tus 3 mayores gastos"))
}

func TestHandle_QueryWithoutExpenses(t *testing.T) {
	reply, err := newService(t, memory.New()).Handle(context.Background(), "más caro")
	require.NoError(t, err)
	assert.Equal(t, noExpensesText, reply.Text)
	assert.Empty(t, reply.Entries)
}

func TestHandle_PreferenceToggleLeavesPreferencesUnchanged(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := newService(t, store)

	reply, err := svc.Handle(ctx, "Activar reporte diario")
	require.NoError(t, err)
	// "reporte" is checked before "activar".
	assert.Equal(t, intent.KindReport, reply.Intent.Kind())

	reply, err = svc.Handle(ctx, "activar envío diario")
	require.NoError(t, err)
	assert.Equal(t, intent.KindPreference, reply.Intent.Kind())
	require.NotNil(t, reply.Preferences)
	assert.Equal(t, core.DefaultPreferences(), *reply.Preferences)
	assert.Contains(t, reply.Text, "diario desactivado")

	p, _ := store.LoadPreferences(ctx)
	assert.Equal(t, core.DefaultPreferences(), p)
}

func TestHandle_StoreErrorsAreWrapped(t *testing.T) {
	boom := errors.New("database is locked")
	store := failingStore{err: boom}
	svc := NewService(store, store, WithLogger(log.Discard()), WithClock(func() time.Time { return fixedNow }))

	for _, text := range []string{"taxi 5000", "reporte", "mayor gasto", "activar semanal"} {
		t.Run(text, func(t *testing.T) {
			reply, err := svc.Handle(context.Background(), text)
			require.Error(t, err)
			assert.ErrorIs(t, err, boom)
			assert.NotNil(t, reply.Intent)
		})
	}
}

func TestReplyJSON(t *testing.T) {
	reply, err := newService(t, memory.New()).Handle(context.Background(), "Gasté 2000 en combustible")
	require.NoError(t, err)

	b, err := json.Marshal(reply)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	parsed := got["parsed"].(map[string]any)
	assert.Equal(t, "gasto", parsed["tipo"])
	assert.Equal(t, "otros", parsed["categoria"])
	assert.Equal(t, "✅ Gasto registrado: $2,000 en otros", got["text"])
	assert.NotContains(t, got, "report")
}

func TestErrorText(t *testing.T) {
	assert.Equal(t, ExportUnavailableText, ErrorText(fmt.Errorf("wrapped: %w", ErrExportUnavailable)))
	assert.Equal(t, InvalidEntryText, ErrorText(fmt.Errorf("record expense: %w", core.ErrDescriptionLong)))
	assert.Equal(t, FailureText, ErrorText(errors.New("disk full")))

	assert.True(t, IsUserError(ErrExportUnavailable))
	assert.True(t, IsUserError(fmt.Errorf("record expense: %w", core.ErrInvalidAmount)))
	assert.False(t, IsUserError(errors.New("disk full")))
}

func TestHandle_LongDescriptionIsClipped(t *testing.T) {
	store := memory.New()
	svc := newService(t, store)

	tests := []string{
		"Gasté 5000 en " + strings.Repeat("almuerzo con los compañeros ", 8),
		"Pagué 12000 " + strings.Repeat("ñandú ", 60),
	}
	for _, text := range tests {
		reply, err := svc.Handle(context.Background(), text)
		require.NoError(t, err)
		require.NotNil(t, reply.Expense)
		assert.LessOrEqual(t, utf8.RuneCountInString(reply.Expense.Description), core.MaxDescriptionLength)
		assert.True(t, strings.HasPrefix(reply.Text, "✅"), reply.Text)
	}

	entries, err := store.List(context.Background(), core.Date{}, core.Date{})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestHandle_RejectedEntryIsAUserError(t *testing.T) {
	store := failingStore{err: fmt.Errorf("validate: %w", core.ErrInvalidCategory)}
	svc := NewService(store, store, WithLogger(log.Discard()), WithClock(func() time.Time { return fixedNow }))

	_, err := svc.Handle(context.Background(), "taxi 5000")
	require.Error(t, err)
	assert.True(t, IsUserError(err))
	assert.Equal(t, InvalidEntryText, ErrorText(err))
}
