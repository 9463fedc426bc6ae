// Package export renders ledger entries as CSV or JSON files.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gastos/internal/core"
	"gastos/internal/ledger"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Header is the first CSV row.
var Header = []string{"Fecha", "Categoría", "Monto", "Descripción", "Tipo"}

// ParseFormat accepts "csv" and "json" in any case. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/csv; charset=utf-8"
}

// FileName is gastos_<YYYY-MM-DD>.<ext> for the given day.
func FileName(f Format, day core.Date) string {
	return fmt.Sprintf("gastos_%s.%s", day.String(), f)
}

// Write renders entries in the given format.
func Write(w io.Writer, f Format, entries []core.Expense) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, entries)
	case FormatCSV:
		return WriteCSV(w, entries)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

// WriteCSV writes the header and one row per entry.
func WriteCSV(w io.Writer, entries []core.Expense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		if err := cw.Write(Row(e)); err != nil {
			return fmt.Errorf("write csv row %s: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Row is the column order shared by CSV and spreadsheet exports.
func Row(e core.Expense) []string {
	return []string{
		e.Date.String(),
		string(e.Category),
		e.Amount.String(),
		e.Description,
		string(e.Type),
	}
}

// WriteJSON writes entries as an indented JSON array.
func WriteJSON(w io.Writer, entries []core.Expense) error {
	if entries == nil {
		entries = []core.Expense{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// FileExporter writes each export into Dir, replacing a same-day file.
type FileExporter struct {
	Dir    string
	Format Format
	Now    func() time.Time
	Logger *slog.Logger
}

func NewFileExporter(dir string, f Format) *FileExporter {
	return &FileExporter{Dir: dir, Format: f, Now: time.Now}
}

func (x *FileExporter) Export(ctx context.Context, entries []core.Expense) (ledger.ExportResult, error) {
	if err := ctx.Err(); err != nil {
		return ledger.ExportResult{}, err
	}
	f := x.Format
	if f == "" {
		f = FormatCSV
	}
	now := time.Now
	if x.Now != nil {
		now = x.Now
	}

	if err := os.MkdirAll(x.Dir, 0o755); err != nil {
		return ledger.ExportResult{}, fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(x.Dir, FileName(f, core.DateOf(now())))

	// Write to a temp file first so readers never see a partial export.
	tmp, err := os.CreateTemp(x.Dir, ".gastos-*")
	if err != nil {
		return ledger.ExportResult{}, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, f, entries); err != nil {
		tmp.Close()
		return ledger.ExportResult{}, err
	}
	if err := tmp.Close(); err != nil {
		return ledger.ExportResult{}, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return ledger.ExportResult{}, fmt.Errorf("move export into place: %w", err)
	}

	logger := x.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "Export written", "path", path, "count", len(entries), "format", f)

	return ledger.ExportResult{Format: string(f), Location: path, Count: len(entries)}, nil
}
