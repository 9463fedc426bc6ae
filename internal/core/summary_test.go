package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func entry(id string, d Date, cat CategoryID, amount int64, typ EntryType) Expense {
	return Expense{ID: id, Date: d, Category: cat, Amount: decimal.NewFromInt(amount), Description: id, Type: typ}
}

func TestBuildReport(t *testing.T) {
	entries := []Expense{
		entry("a", NewDate(2025, 3, 2), CategoryFood, 100, EntryExpense),
		entry("b", NewDate(2025, 3, 10), CategoryTransport, 300, EntryExpense),
		entry("c", NewDate(2025, 3, 11), CategoryFood, 250, EntryExpense),
		entry("d", NewDate(2025, 3, 12), CategoryOther, 5000, EntryIncome),
		entry("e", NewDate(2025, 2, 28), CategoryHealth, 999, EntryExpense), // outside range
		entry("f", NewDate(2025, 3, 20), CategoryHealth, 1, EntryExpense),   // after end
	}

	r := BuildReport(entries, NewDate(2025, 3, 1), NewDate(2025, 3, 15))

	if !r.TotalExpenses.Equal(decimal.NewFromInt(650)) {
		t.Fatalf("total expenses = %s", r.TotalExpenses)
	}
	if !r.TotalIncome.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("total income = %s", r.TotalIncome)
	}
	if r.Count != 4 {
		t.Fatalf("count = %d", r.Count)
	}
	if len(r.ByCategory) != 2 || r.ByCategory[0].Category != CategoryFood || r.ByCategory[1].Category != CategoryTransport {
		t.Fatalf("unexpected category summary: %+v", r.ByCategory)
	}
	if len(r.TopExpenses) != 3 || r.TopExpenses[0].ID != "b" {
		t.Fatalf("unexpected top expenses: %+v", r.TopExpenses)
	}
	if len(r.MonthlyTrend) != 6 {
		t.Fatalf("trend length = %d", len(r.MonthlyTrend))
	}
	first, last := r.MonthlyTrend[0], r.MonthlyTrend[5]
	if first.Month.String() != "2024-10-01" || last.Month.String() != "2025-03-01" {
		t.Fatalf("unexpected trend window %s..%s", first.Month, last.Month)
	}
	if !last.Amount.Equal(decimal.NewFromInt(651)) || !last.Income.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("unexpected March trend point: %+v", last)
	}
	if !r.MonthlyTrend[4].Amount.Equal(decimal.NewFromInt(999)) {
		t.Fatalf("unexpected February trend point: %+v", r.MonthlyTrend[4])
	}
}

func TestTopAndHighestExpense(t *testing.T) {
	if _, ok := HighestExpense(nil); ok {
		t.Fatalf("expected no highest expense on empty input")
	}
	var entries []Expense
	for i := int64(1); i <= 7; i++ {
		entries = append(entries, entry(string(rune('a'+i)), NewDate(2025, 1, int(i)), CategoryOther, i*10, EntryExpense))
	}
	entries = append(entries, entry("income", NewDate(2025, 1, 9), CategoryOther, 1000, EntryIncome))

	top := TopExpenses(entries, TopExpensesLimit)
	if len(top) != 5 {
		t.Fatalf("expected 5, got %d", len(top))
	}
	for i := 1; i < len(top); i++ {
		if top[i].Amount.GreaterThan(top[i-1].Amount) {
			t.Fatalf("not sorted descending: %+v", top)
		}
	}
	h, ok := HighestExpense(entries)
	if !ok || !h.Amount.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("unexpected highest: %+v %v", h, ok)
	}
}

func TestReportFrom(t *testing.T) {
	end := NewDate(2025, 3, 17)
	if got := ReportFrom(end.MonthStart(), end); !got.Equal(NewDate(2024, 10, 1).Time) {
		t.Fatalf("ReportFrom() = %s, want 2024-10-01", got)
	}
	early := NewDate(2024, 1, 5)
	if got := ReportFrom(early, end); !got.Equal(early.Time) {
		t.Fatalf("ReportFrom() = %s, want %s", got, early)
	}
}
