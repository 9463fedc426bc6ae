// Package google exports ledger entries to a Google Sheets tab.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"gastos/internal/core"
	"gastos/internal/export"
	"gastos/internal/ledger"
)

var _ ledger.Exporter = (*Exporter)(nil)

type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// Exporter appends one row per entry below the existing data of a tab. An
// empty tab gets the CSV header first.
type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *slog.Logger
}

// New creates an exporter authenticated with a service account. Extra client
// options are appended after the credentials.
func New(ctx context.Context, cfg Config, logger *slog.Logger, opts ...goption.ClientOption) (*Exporter, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if len(opts) == 0 {
		creds, err := credentials(cfg)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = "Gastos"
	}
	logger.InfoContext(ctx, "Google Sheets exporter ready", "sheet", sheet)
	return &Exporter{svc: svc, spreadsheetID: cfg.SpreadsheetID, sheetName: sheet, logger: logger}, nil
}

func credentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

func (x *Exporter) Export(ctx context.Context, entries []core.Expense) (ledger.ExportResult, error) {
	if x.svc == nil {
		return ledger.ExportResult{}, errors.New("sheets service not initialized")
	}

	head, err := x.svc.Spreadsheets.Values.Get(x.spreadsheetID, x.sheetName+"!A1:E1").Context(ctx).Do()
	if err != nil {
		return ledger.ExportResult{}, fmt.Errorf("read header of %s: %w", x.sheetName, err)
	}

	rows := Rows(entries, len(head.Values) == 0)
	if len(rows) == 0 {
		return ledger.ExportResult{Format: "sheets", Location: x.sheetName, Count: 0}, nil
	}

	resp, err := x.svc.Spreadsheets.Values.Append(x.spreadsheetID, x.sheetName+"!A:E", &gsheet.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return ledger.ExportResult{}, fmt.Errorf("append rows to %s: %w", x.sheetName, err)
	}

	ref := x.sheetName
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	x.logger.InfoContext(ctx, "Exported to Google Sheets", "range", ref, "count", len(entries))
	return ledger.ExportResult{Format: "sheets", Location: ref, Count: len(entries)}, nil
}

// Rows builds the value rows for entries, optionally led by the header.
func Rows(entries []core.Expense, withHeader bool) [][]any {
	rows := make([][]any, 0, len(entries)+1)
	if withHeader && len(entries) > 0 {
		rows = append(rows, toAny(export.Header))
	}
	for _, e := range entries {
		rows = append(rows, toAny(export.Row(e)))
	}
	return rows
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
