package intent

import (
	"encoding/json"

	"gastos/internal/core"
)

// Envelope is the flat wire form of an Intent, using the field names chat
// integrations already understand.
type Envelope struct {
	Kind        Kind            `json:"tipo"`
	Amount      json.Number     `json:"monto,omitempty"`
	Category    core.CategoryID `json:"categoria,omitempty"`
	Description string          `json:"descripcion,omitempty"`
	Date        string          `json:"fecha,omitempty"`
	RangeStart  string          `json:"fecha_inicio,omitempty"`
	RangeEnd    string          `json:"fecha_fin,omitempty"`
	Query       QueryIntent     `json:"intencion,omitempty"`
	Reason      string          `json:"razon,omitempty"`
}

// Encode flattens an intent into its envelope. A nil intent encodes as
// Unparsed.
func Encode(i Intent) Envelope {
	switch v := i.(type) {
	case Help:
		return Envelope{Kind: KindHelp}
	case Report:
		return Envelope{Kind: KindReport, RangeStart: v.RangeStart.String(), RangeEnd: v.RangeEnd.String()}
	case Export:
		return Envelope{Kind: KindExport, RangeStart: v.RangeStart.String(), RangeEnd: v.RangeEnd.String()}
	case Query:
		return Envelope{Kind: KindQuery, Query: v.Intent}
	case PreferenceToggle:
		return Envelope{Kind: KindPreference}
	case Expense:
		return Envelope{
			Kind:        KindExpense,
			Amount:      json.Number(v.Amount.String()),
			Category:    v.Category,
			Description: v.Description,
			Date:        v.Date.String(),
		}
	case Unparsed:
		return Envelope{Kind: KindUnparsed, Reason: v.Reason}
	default:
		return Envelope{Kind: KindUnparsed, Reason: UnparsedReason}
	}
}
