package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	EntryExpense EntryType = "gasto"
	EntryIncome  EntryType = "ingreso"
)

// MaxDescriptionLength is the longest description, in characters.
const MaxDescriptionLength = 200

// DateLayout is the calendar form used for every date crossing a boundary.
const DateLayout = "2006-01-02"

type (
	EntryType string

	Date struct {
		time.Time
	}

	// Expense is a persisted ledger entry. The ID is minted by the caller
	// that turns a parsed message into a record.
	Expense struct {
		ID          string          `json:"id"`
		Date        Date            `json:"date"`
		Category    CategoryID      `json:"category"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
		Type        EntryType       `json:"type"`
	}

	Preferences struct {
		DailyReport   bool   `json:"dailyReport"`
		WeeklyReport  bool   `json:"weeklyReport"`
		MonthlyReport bool   `json:"monthlyReport"`
		Currency      string `json:"currency"`
		Language      string `json:"language"`
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidEntryType = errors.New("invalid entry type")
	ErrDescriptionLong  = errors.New("description too long (max 200 characters)")
)

// IsInvalid reports whether err comes from rejecting an entry's fields.
func IsInvalid(err error) bool {
	for _, target := range []error{ErrInvalidDate, ErrInvalidAmount, ErrEmptyDescription, ErrInvalidCategory, ErrInvalidEntryType, ErrDescriptionLong} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ClipDescription trims s and cuts it to MaxDescriptionLength characters.
func ClipDescription(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= MaxDescriptionLength {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:MaxDescriptionLength]))
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MonthStart returns the first day of d's month.
func (d Date) MonthStart() Date {
	return NewDate(d.Year(), int(d.Month()), 1)
}

// AddMonths shifts d by n months, clamped to the first of the month.
func (d Date) AddMonths(n int) Date {
	return Date{Time: d.MonthStart().AddDate(0, n, 0)}
}

// Between reports whether d lies in [from, to]; zero bounds are open.
func (d Date) Between(from, to Date) bool {
	if !from.IsZero() && d.Before(from.Time) {
		return false
	}
	if !to.IsZero() && d.After(to.Time) {
		return false
	}
	return true
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (t EntryType) Valid() bool {
	return t == EntryExpense || t == EntryIncome
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(e.Description) > MaxDescriptionLength {
		return ErrDescriptionLong
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	if !e.Type.Valid() {
		return ErrInvalidEntryType
	}
	return nil
}

// DefaultPreferences mirrors what a fresh install starts with.
func DefaultPreferences() Preferences {
	return Preferences{
		DailyReport:   false,
		WeeklyReport:  false,
		MonthlyReport: true,
		Currency:      "USD",
		Language:      "es",
	}
}
