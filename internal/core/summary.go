package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TopExpensesLimit is how many entries a top-expenses answer carries.
const TopExpensesLimit = 5

// trendMonths is the length of the monthly trend window.
const trendMonths = 6

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	Category CategoryID      `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// MonthAmount is one point of the monthly trend.
type MonthAmount struct {
	Month  Date            `json:"month"`
	Amount decimal.Decimal `json:"amount"`
	Income decimal.Decimal `json:"income"`
}

// Report is a compact summary for a date range.
type Report struct {
	Start         Date             `json:"start"`
	End           Date             `json:"end"`
	TotalExpenses decimal.Decimal  `json:"totalExpenses"`
	TotalIncome   decimal.Decimal  `json:"totalIncome"`
	Count         int              `json:"count"`
	ByCategory    []CategoryAmount `json:"categorySummary"`
	MonthlyTrend  []MonthAmount    `json:"monthlyTrend"`
	TopExpenses   []Expense        `json:"topExpenses"`
}

// ReportFrom returns the earliest date BuildReport needs for [start, end]:
// the trend window may reach further back than start.
func ReportFrom(start, end Date) Date {
	from := end.MonthStart().AddMonths(-(trendMonths - 1))
	if start.Before(from.Time) {
		return start
	}
	return from
}

// BuildReport summarises entries dated within [start, end]. The monthly
// trend covers the six months ending with end's month and is computed over
// every entry passed in, not only the ones inside the range.
func BuildReport(entries []Expense, start, end Date) Report {
	r := Report{
		Start:         start,
		End:           end,
		TotalExpenses: decimal.Zero,
		TotalIncome:   decimal.Zero,
	}

	byCat := map[CategoryID]decimal.Decimal{}
	var inRange []Expense
	for _, e := range entries {
		if !e.Date.Between(start, end) {
			continue
		}
		r.Count++
		if e.Type == EntryIncome {
			r.TotalIncome = r.TotalIncome.Add(e.Amount)
			continue
		}
		inRange = append(inRange, e)
		r.TotalExpenses = r.TotalExpenses.Add(e.Amount)
		if cur, ok := byCat[e.Category]; ok {
			byCat[e.Category] = cur.Add(e.Amount)
		} else {
			byCat[e.Category] = e.Amount
		}
	}

	// Catalogue order first so ties stay stable across runs.
	for _, c := range categories {
		if amt, ok := byCat[c.ID]; ok {
			r.ByCategory = append(r.ByCategory, CategoryAmount{Category: c.ID, Amount: amt})
			delete(byCat, c.ID)
		}
	}
	for id, amt := range byCat {
		r.ByCategory = append(r.ByCategory, CategoryAmount{Category: id, Amount: amt})
	}
	sort.SliceStable(r.ByCategory, func(i, j int) bool {
		return r.ByCategory[i].Amount.GreaterThan(r.ByCategory[j].Amount)
	})

	r.TopExpenses = TopExpenses(inRange, TopExpensesLimit)
	r.MonthlyTrend = monthlyTrend(entries, end)
	return r
}

// HighestExpense returns the largest expense entry, ignoring income.
func HighestExpense(entries []Expense) (Expense, bool) {
	top := TopExpenses(entries, 1)
	if len(top) == 0 {
		return Expense{}, false
	}
	return top[0], true
}

// TopExpenses returns up to n expense entries ordered by amount, largest first.
func TopExpenses(entries []Expense, n int) []Expense {
	out := make([]Expense, 0, len(entries))
	for _, e := range entries {
		if e.Type == EntryIncome {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func monthlyTrend(entries []Expense, end Date) []MonthAmount {
	if end.IsZero() {
		return nil
	}
	trend := make([]MonthAmount, trendMonths)
	first := end.AddMonths(-(trendMonths - 1))
	for i := range trend {
		trend[i] = MonthAmount{Month: first.AddMonths(i), Amount: decimal.Zero, Income: decimal.Zero}
	}
	for _, e := range entries {
		idx := monthsBetween(first, e.Date)
		if idx < 0 || idx >= trendMonths {
			continue
		}
		if e.Type == EntryIncome {
			trend[idx].Income = trend[idx].Income.Add(e.Amount)
		} else {
			trend[idx].Amount = trend[idx].Amount.Add(e.Amount)
		}
	}
	return trend
}

func monthsBetween(from, d Date) int {
	return (d.Year()-from.Year())*12 + int(d.Month()) - int(from.Month())
}
