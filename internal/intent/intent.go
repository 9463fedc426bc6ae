// Package intent turns one line of informal Spanish text into exactly one
// structured intent: register an expense, produce a report, export data,
// query the ledger, toggle a preference, ask for help, or unparsed.
package intent

import (
	"github.com/shopspring/decimal"

	"gastos/internal/core"
)

// Kind tags each intent variant. The values match what chat transports
// historically put in the "tipo" field.
type Kind string

const (
	KindHelp       Kind = "ayuda"
	KindReport     Kind = "reporte"
	KindExport     Kind = "exportar"
	KindQuery      Kind = "consulta"
	KindPreference Kind = "preferencias"
	KindExpense    Kind = "gasto"
	KindUnparsed   Kind = "na"
)

// QueryIntent says what a Query asks about.
type QueryIntent string

const (
	HighestExpense QueryIntent = "mayor_gasto"
	TopExpenses    QueryIntent = "top_gastos"
)

// UnparsedReason is the only failure message the interpreter produces.
const UnparsedReason = "No se pudo interpretar el mensaje. Intenta ser más específico con el monto y descripción."

// DefaultDescription replaces an expense description that strips to nothing.
const DefaultDescription = "Gasto registrado"

// Intent is a closed sum type; the concrete variants are the types in this
// package that implement it.
type Intent interface {
	Kind() Kind
	isIntent()
}

type (
	// Help asks for usage instructions.
	Help struct{}

	// Report asks for a summary over [RangeStart, RangeEnd].
	Report struct {
		RangeStart core.Date
		RangeEnd   core.Date
	}

	// Export asks for the entries in [RangeStart, RangeEnd] as a file.
	Export struct {
		RangeStart core.Date
		RangeEnd   core.Date
	}

	Query struct {
		Intent QueryIntent
	}

	// PreferenceToggle asks to switch a report preference. The detected
	// action and cadence are kept unexported: callers only see the kind.
	PreferenceToggle struct {
		action  ToggleAction
		cadence Cadence
	}

	// Expense is a spend to record. Amount is in the base currency unit.
	Expense struct {
		Amount      decimal.Decimal
		Category    core.CategoryID
		Description string
		Date        core.Date
	}

	Unparsed struct {
		Reason string
	}
)

func (Help) Kind() Kind             { return KindHelp }
func (Report) Kind() Kind           { return KindReport }
func (Export) Kind() Kind           { return KindExport }
func (Query) Kind() Kind            { return KindQuery }
func (PreferenceToggle) Kind() Kind { return KindPreference }
func (Expense) Kind() Kind          { return KindExpense }
func (Unparsed) Kind() Kind         { return KindUnparsed }

func (Help) isIntent()             {}
func (Report) isIntent()           {}
func (Export) isIntent()           {}
func (Query) isIntent()            {}
func (PreferenceToggle) isIntent() {}
func (Expense) isIntent()          {}
func (Unparsed) isIntent()         {}
