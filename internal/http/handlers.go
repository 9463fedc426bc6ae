package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gastos/internal/assistant"
	"gastos/internal/core"
	"gastos/internal/export"
	"gastos/internal/log"
	"gastos/internal/middleware/trace"
)

// failedReply is the body of a message that could not be carried out.
type failedReply struct {
	Text      string `json:"text"`
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type entriesResponse struct {
	From    core.Date      `json:"from"`
	To      core.Date      `json:"to"`
	Count   int            `json:"count"`
	Entries []core.Expense `json:"entries"`
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady pings the store when it has a connection to check.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if p, ok := s.store.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleMessage runs one chat message through the assistant.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	text, err := parseMessage(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "el cuerpo de la solicitud es demasiado grande")
			return
		}
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := s.assistant.Handle(ctx, text)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Message handling failed",
			log.FieldError, err,
			log.FieldIntent, reply.Parsed.Kind)
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, assistant.ErrExportUnavailable):
			status = http.StatusServiceUnavailable
		case core.IsInvalid(err):
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, r, status, failedReply{
			Text:      assistant.ErrorText(err),
			Error:     http.StatusText(status),
			RequestID: trace.GetRequestID(ctx),
		})
		return
	}

	if reply.Expense != nil {
		s.reports.Clear()
	}
	writeJSON(w, r, http.StatusOK, reply)
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r.URL.Query(), s.today())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	entries, err := s.store.List(r.Context(), from, to)
	if err != nil {
		s.storeFailed(w, r, "list expenses", err)
		return
	}
	if entries == nil {
		entries = []core.Expense{}
	}
	writeJSON(w, r, http.StatusOK, entriesResponse{From: from, To: to, Count: len(entries), Entries: entries})
}

// handleAddExpense records an entry typed by hand, income included.
func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	e, err := parseExpense(w, r, s.today())
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "el cuerpo de la solicitud es demasiado grande")
			return
		}
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	e.ID = s.newID()
	if err := s.store.Add(r.Context(), e); err != nil {
		s.storeFailed(w, r, "add expense", err)
		return
	}
	s.reports.Clear()

	log.FromContext(r.Context()).InfoContext(r.Context(), "Entry added",
		log.FieldOperation, log.OpCreate,
		log.FieldExpenseID, e.ID,
		log.FieldAmount, e.Amount.String(),
		log.FieldCategory, string(e.Category))
	writeJSON(w, r, http.StatusCreated, e)
}

// handleReport returns the summary for a range, cached per range.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r.URL.Query(), s.today())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	key := from.String() + "|" + to.String()
	if report, ok := s.reports.Get(key); ok {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Report cache hit",
			log.FieldRangeStart, from.String(),
			log.FieldRangeEnd, to.String())
		writeJSON(w, r, http.StatusOK, report)
		return
	}

	entries, err := s.store.List(r.Context(), core.ReportFrom(from, to), to)
	if err != nil {
		s.storeFailed(w, r, "build report", err)
		return
	}
	report := core.BuildReport(entries, from, to)
	s.reports.Set(key, report)
	writeJSON(w, r, http.StatusOK, report)
}

// handleExport streams the range as a CSV or JSON download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	from, to, err := parseRange(q, s.today())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	entries, err := s.store.List(r.Context(), from, to)
	if err != nil {
		s.storeFailed(w, r, "export expenses", err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(format, s.today())))
	if err := export.Write(w, format, entries); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Export stream failed",
			log.FieldError, err,
			log.FieldCount, len(entries))
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Expenses exported",
		log.FieldOperation, log.OpExport,
		log.FieldCount, len(entries),
		log.FieldRangeStart, from.String(),
		log.FieldRangeEnd, to.String())
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.LoadPreferences(r.Context())
	if err != nil {
		s.storeFailed(w, r, "load preferences", err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

// handlePutPreferences merges the body into the stored preferences.
func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	current, err := s.store.LoadPreferences(r.Context())
	if err != nil {
		s.storeFailed(w, r, "load preferences", err)
		return
	}
	p, err := parsePreferences(w, r, current)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.SavePreferences(r.Context(), p); err != nil {
		s.storeFailed(w, r, "save preferences", err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Preferences updated",
		"daily_report", p.DailyReport,
		"weekly_report", p.WeeklyReport,
		"monthly_report", p.MonthlyReport)
	writeJSON(w, r, http.StatusOK, p)
}

func (s *Server) storeFailed(w http.ResponseWriter, r *http.Request, op string, err error) {
	log.FromContext(r.Context()).ErrorContext(r.Context(), "Store operation failed",
		log.FieldOperation, op,
		log.FieldError, err)
	writeError(w, r, http.StatusInternalServerError, "error interno, intenta de nuevo")
}
