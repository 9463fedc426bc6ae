package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"gastos/internal/core"
)

// maxBodyBytes bounds every request body the API reads.
const maxBodyBytes = 64 << 10

// maxMessageRunes bounds a single chat message.
const maxMessageRunes = 1000

var (
	errEmptyText   = errors.New("el mensaje está vacío")
	errTextTooLong = fmt.Errorf("el mensaje supera %d caracteres", maxMessageRunes)
)

type messageRequest struct {
	Text string `json:"text"`
}

// parseMessage reads the chat text from a JSON body or a form field, both
// named "text".
func parseMessage(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var text string
	if isJSON(r) {
		var req messageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", fmt.Errorf("cuerpo JSON inválido: %w", err)
		}
		text = req.Text
	} else {
		if err := r.ParseForm(); err != nil {
			return "", fmt.Errorf("formulario inválido: %w", err)
		}
		text = r.PostForm.Get("text")
	}

	text = sanitizeInput(text)
	switch {
	case text == "":
		return "", errEmptyText
	case len([]rune(text)) > maxMessageRunes:
		return "", errTextTooLong
	}
	return text, nil
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

// parseRange reads from/to as YYYY-MM-DD. Missing bounds default to the
// month of today so far.
func parseRange(q url.Values, today core.Date) (from, to core.Date, err error) {
	from, to = today.MonthStart(), today
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		if from, err = core.ParseDate(v); err != nil {
			return core.Date{}, core.Date{}, fmt.Errorf("fecha 'from' inválida: %q", v)
		}
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		if to, err = core.ParseDate(v); err != nil {
			return core.Date{}, core.Date{}, fmt.Errorf("fecha 'to' inválida: %q", v)
		}
	}
	if from.After(to.Time) {
		return core.Date{}, core.Date{}, fmt.Errorf("'from' (%s) es posterior a 'to' (%s)", from, to)
	}
	return from, to, nil
}

// parsePreferences decodes a JSON body over current, so omitted fields keep
// their stored values.
func parsePreferences(w http.ResponseWriter, r *http.Request, current core.Preferences) (core.Preferences, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	p := current
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return core.Preferences{}, fmt.Errorf("cuerpo JSON inválido: %w", err)
	}
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	p.Language = strings.ToLower(strings.TrimSpace(p.Language))
	if len(p.Currency) != 3 {
		return core.Preferences{}, fmt.Errorf("moneda inválida: %q", p.Currency)
	}
	if p.Language == "" {
		return core.Preferences{}, errors.New("el idioma es obligatorio")
	}
	return p, nil
}

// sanitizeInput trims and drops control characters other than tab and
// line breaks.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// expenseRequest is a manually entered ledger entry. Category accepts an id
// or part of a display name; type and date are optional.
type expenseRequest struct {
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Date        string `json:"date"`
}

// parseExpense builds an entry without an ID from a JSON body.
func parseExpense(w http.ResponseWriter, r *http.Request, today core.Date) (core.Expense, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req expenseRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return core.Expense{}, fmt.Errorf("cuerpo JSON inválido: %w", err)
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return core.Expense{}, fmt.Errorf("monto inválido: %q", req.Amount)
	}
	category, ok := core.FindCategory(req.Category)
	if !ok {
		return core.Expense{}, fmt.Errorf("categoría desconocida: %q", req.Category)
	}
	e := core.Expense{
		Date:        today,
		Category:    category.ID,
		Amount:      amount,
		Description: sanitizeInput(req.Description),
		Type:        core.EntryType(strings.ToLower(strings.TrimSpace(req.Type))),
	}
	if e.Type == "" {
		e.Type = core.EntryExpense
	}
	if v := strings.TrimSpace(req.Date); v != "" {
		if e.Date, err = core.ParseDate(v); err != nil {
			return core.Expense{}, fmt.Errorf("fecha inválida: %q", v)
		}
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}
