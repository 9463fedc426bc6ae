package intent

import (
	"log/slog"
	"strings"
	"time"

	"gastos/internal/core"
)

// rule is one step of the cascade. Rules are evaluated in order against the
// lower-cased, trimmed message and the first rule with a matching phrase wins.
type rule struct {
	name    string
	phrases []string
	build   func(in *Interpreter, lower string, today core.Date) Intent
}

var cascade = []rule{
	{
		name:    "help",
		phrases: []string{"ayuda", "help", "cómo funciona", "qué puedo hacer"},
		build: func(*Interpreter, string, core.Date) Intent {
			return Help{}
		},
	},
	{
		name:    "report",
		phrases: []string{"reporte", "resumen", "gastos del mes", "mis gastos"},
		build: func(_ *Interpreter, _ string, today core.Date) Intent {
			return Report{RangeStart: today.MonthStart(), RangeEnd: today}
		},
	},
	{
		name:    "export",
		phrases: []string{"exportar", "descargar", "excel", "csv"},
		build: func(_ *Interpreter, _ string, today core.Date) Intent {
			return Export{RangeStart: today.MonthStart(), RangeEnd: today}
		},
	},
	{
		name:    "highest_expense",
		phrases: []string{"mayor gasto", "más caro"},
		build: func(*Interpreter, string, core.Date) Intent {
			return Query{Intent: HighestExpense}
		},
	},
	{
		name:    "top_expenses",
		phrases: []string{"top", "mayores gastos"},
		build: func(*Interpreter, string, core.Date) Intent {
			return Query{Intent: TopExpenses}
		},
	},
	{
		name:    "preference",
		phrases: []string{"activar", "desactivar"},
		build: func(in *Interpreter, lower string, _ core.Date) Intent {
			p := detectPreference(lower)
			in.log().Debug("Preference toggle detected",
				"action", p.action,
				"cadence", p.cadence)
			return p
		},
	},
}

// Interpreter classifies free-text messages. It holds no mutable state and
// is safe for concurrent use.
type Interpreter struct {
	now    func() time.Time
	logger *slog.Logger
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithClock sets the source of "today". The calendar day is taken in the
// location of the returned time.
func WithClock(now func() time.Time) Option {
	return func(in *Interpreter) {
		if now != nil {
			in.now = now
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(in *Interpreter) {
		if l != nil {
			in.logger = l
		}
	}
}

// NewInterpreter creates an interpreter reading the wall clock unless
// WithClock is given.
func NewInterpreter(opts ...Option) *Interpreter {
	in := &Interpreter{now: time.Now}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// log falls back to the process default so later slog.SetDefault calls apply.
func (in *Interpreter) log() *slog.Logger {
	if in.logger != nil {
		return in.logger
	}
	return slog.Default()
}

var defaultInterpreter = NewInterpreter()

// Interpret classifies text using the wall clock.
func Interpret(text string) Intent {
	return defaultInterpreter.Interpret(text)
}

// Interpret returns exactly one intent for text. It never fails: anything it
// cannot classify comes back as Unparsed with UnparsedReason.
func (in *Interpreter) Interpret(text string) Intent {
	lower := strings.ToLower(strings.TrimSpace(text))
	today := core.DateOf(in.now())

	for _, r := range cascade {
		if containsAny(lower, r.phrases) {
			return r.build(in, lower, today)
		}
	}

	// Amount and description come from the original text, category from
	// the lower-cased copy.
	if amount, ok := extractAmount(text); ok {
		return Expense{
			Amount:      amount,
			Category:    inferCategory(lower),
			Description: extractDescription(text),
			Date:        today,
		}
	}

	return Unparsed{Reason: UnparsedReason}
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
