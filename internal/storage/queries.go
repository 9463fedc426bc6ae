package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// ExpenseRow mirrors the expenses table.
type ExpenseRow struct {
	ID          string
	Date        string
	Category    string
	Amount      string
	Description string
	Type        string
}

const createExpense = `
INSERT INTO expenses (id, date, category, amount, description, type)
VALUES (?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateExpense(ctx context.Context, arg ExpenseRow) error {
	_, err := q.db.ExecContext(ctx, createExpense,
		arg.ID,
		arg.Date,
		arg.Category,
		arg.Amount,
		arg.Description,
		arg.Type,
	)
	return err
}

const listExpensesBetween = `
SELECT id, date, category, amount, description, type
FROM expenses
WHERE date >= ? AND date <= ?
ORDER BY date ASC, rowid ASC
`

func (q *Queries) ListExpensesBetween(ctx context.Context, from, to string) ([]ExpenseRow, error) {
	rows, err := q.db.QueryContext(ctx, listExpensesBetween, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ExpenseRow
	for rows.Next() {
		var i ExpenseRow
		if err := rows.Scan(
			&i.ID,
			&i.Date,
			&i.Category,
			&i.Amount,
			&i.Description,
			&i.Type,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// PreferencesRow mirrors the single-row preferences table.
type PreferencesRow struct {
	DailyReport   bool
	WeeklyReport  bool
	MonthlyReport bool
	Currency      string
	Language      string
}

const getPreferences = `
SELECT daily_report, weekly_report, monthly_report, currency, language
FROM preferences
WHERE id = 1
`

func (q *Queries) GetPreferences(ctx context.Context) (PreferencesRow, error) {
	row := q.db.QueryRowContext(ctx, getPreferences)
	var i PreferencesRow
	err := row.Scan(
		&i.DailyReport,
		&i.WeeklyReport,
		&i.MonthlyReport,
		&i.Currency,
		&i.Language,
	)
	return i, err
}

const upsertPreferences = `
INSERT INTO preferences (id, daily_report, weekly_report, monthly_report, currency, language, updated_at)
VALUES (1, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (id) DO UPDATE SET
    daily_report = excluded.daily_report,
    weekly_report = excluded.weekly_report,
    monthly_report = excluded.monthly_report,
    currency = excluded.currency,
    language = excluded.language,
    updated_at = CURRENT_TIMESTAMP
`

func (q *Queries) UpsertPreferences(ctx context.Context, arg PreferencesRow) error {
	_, err := q.db.ExecContext(ctx, upsertPreferences,
		arg.DailyReport,
		arg.WeeklyReport,
		arg.MonthlyReport,
		arg.Currency,
		arg.Language,
	)
	return err
}
