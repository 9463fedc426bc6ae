// Package assistant turns chat messages into ledger actions and replies.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gastos/internal/core"
	"gastos/internal/intent"
	"gastos/internal/ledger"
	"gastos/internal/log"
)

// ErrExportUnavailable is returned for export requests when no exporter is
// configured.
var ErrExportUnavailable = errors.New("export not configured")

// Reply is the outcome of one message. Only the field matching the intent
// is set besides Text.
type Reply struct {
	Intent      intent.Intent        `json:"-"`
	Parsed      intent.Envelope      `json:"parsed"`
	Text        string               `json:"text"`
	Expense     *core.Expense        `json:"expense,omitempty"`
	Report      *core.Report         `json:"report,omitempty"`
	Entries     []core.Expense       `json:"entries,omitempty"`
	Export      *ledger.ExportResult `json:"export,omitempty"`
	Preferences *core.Preferences    `json:"preferences,omitempty"`
}

type Service struct {
	interpreter *intent.Interpreter
	expenses    ledger.ExpenseStore
	prefs       ledger.PreferenceStore
	exporter    ledger.Exporter
	now         func() time.Time
	newID       func() string
	logger      *log.Logger
}

type Option func(*Service)

// WithExporter sets where export requests go.
func WithExporter(x ledger.Exporter) Option {
	return func(s *Service) { s.exporter = x }
}

// WithClock sets the clock used for "today", for the interpreter as well.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator replaces the UUID generator for new expenses.
func WithIDGenerator(f func() string) Option {
	return func(s *Service) {
		if f != nil {
			s.newID = f
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService wires the assistant to its stores.
func NewService(expenses ledger.ExpenseStore, prefs ledger.PreferenceStore, opts ...Option) *Service {
	s := &Service{
		expenses: expenses,
		prefs:    prefs,
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   log.New(log.DefaultConfig()).WithComponent(log.ComponentAssistant),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.interpreter = intent.NewInterpreter(
		intent.WithClock(s.now),
		intent.WithLogger(s.logger.WithComponent(log.ComponentIntent).Slog()),
	)
	return s
}

// Handle interprets text and carries out the intent. Interpretation never
// fails; errors come only from the stores and the exporter.
func (s *Service) Handle(ctx context.Context, text string) (Reply, error) {
	in := s.interpreter.Interpret(text)
	reply := Reply{Intent: in, Parsed: intent.Encode(in)}

	s.logger.DebugContext(ctx, "Message interpreted",
		log.FieldIntent, in.Kind(),
		log.FieldOperation, log.OpInterpret)

	var err error
	switch v := in.(type) {
	case intent.Expense:
		err = s.recordExpense(ctx, v, &reply)
	case intent.Help:
		reply.Text = HelpText
	case intent.Report:
		err = s.report(ctx, v, &reply)
	case intent.Export:
		err = s.export(ctx, v, &reply)
	case intent.Query:
		err = s.query(ctx, v, &reply)
	case intent.PreferenceToggle:
		err = s.preferences(ctx, &reply)
	case intent.Unparsed:
		reply.Text = v.Reason
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to handle message",
			log.FieldIntent, in.Kind(),
			log.FieldError, err)
		return reply, err
	}
	return reply, nil
}

func (s *Service) recordExpense(ctx context.Context, v intent.Expense, reply *Reply) error {
	e := core.Expense{
		ID:          s.newID(),
		Date:        v.Date,
		Category:    v.Category,
		Amount:      v.Amount,
		Description: core.ClipDescription(v.Description),
		Type:        core.EntryExpense,
	}
	if err := s.expenses.Add(ctx, e); err != nil {
		return fmt.Errorf("record expense: %w", err)
	}

	fields := log.NewFields().
		WithExpense(e.ID, e.Amount, string(e.Category), e.Description).
		WithOperation(log.OpCreate)
	s.logger.InfoContext(ctx, "Expense recorded", fields.ToSlice()...)

	reply.Expense = &e
	reply.Text = expenseText(e)
	return nil
}

func (s *Service) report(ctx context.Context, v intent.Report, reply *Reply) error {
	entries, err := s.expenses.List(ctx, core.ReportFrom(v.RangeStart, v.RangeEnd), v.RangeEnd)
	if err != nil {
		return fmt.Errorf("list expenses for report: %w", err)
	}
	r := core.BuildReport(entries, v.RangeStart, v.RangeEnd)
	reply.Report = &r
	reply.Text = reportText(r)
	return nil
}

func (s *Service) export(ctx context.Context, v intent.Export, reply *Reply) error {
	if s.exporter == nil {
		return ErrExportUnavailable
	}
	entries, err := s.expenses.List(ctx, v.RangeStart, v.RangeEnd)
	if err != nil {
		return fmt.Errorf("list expenses for export: %w", err)
	}
	res, err := s.exporter.Export(ctx, entries)
	if err != nil {
		return fmt.Errorf("export expenses: %w", err)
	}

	s.logger.InfoContext(ctx, "Expenses exported",
		log.FieldExportRef, res.Location,
		log.FieldCount, res.Count,
		log.FieldRangeStart, v.RangeStart.String(),
		log.FieldRangeEnd, v.RangeEnd.String())

	reply.Export = &res
	reply.Text = exportText(res)
	return nil
}

// query answers over the current month so far.
func (s *Service) query(ctx context.Context, v intent.Query, reply *Reply) error {
	today := core.DateOf(s.now())
	entries, err := s.expenses.List(ctx, today.MonthStart(), today)
	if err != nil {
		return fmt.Errorf("list expenses for query: %w", err)
	}

	switch v.Intent {
	case intent.HighestExpense:
		e, ok := core.HighestExpense(entries)
		if !ok {
			reply.Text = noExpensesText
			return nil
		}
		reply.Entries = []core.Expense{e}
		reply.Text = highestText(e)
	case intent.TopExpenses:
		top := core.TopExpenses(entries, core.TopExpensesLimit)
		if len(top) == 0 {
			reply.Text = noExpensesText
			return nil
		}
		reply.Entries = top
		reply.Text = topText(top)
	}
	return nil
}

// preferences reports the current settings. The toggle carries no payload
// so nothing is changed here.
func (s *Service) preferences(ctx context.Context, reply *Reply) error {
	p, err := s.prefs.LoadPreferences(ctx)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}
	reply.Preferences = &p
	reply.Text = preferencesText(p)
	return nil
}
