package google

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"

	"gastos/internal/core"
)

func entries() []core.Expense {
	return []core.Expense{
		{ID: "1", Date: core.NewDate(2025, 3, 17), Category: core.CategoryFood, Amount: decimal.RequireFromString("15000"), Description: "Comí por", Type: core.EntryExpense},
		{ID: "2", Date: core.NewDate(2025, 3, 18), Category: core.CategoryTransport, Amount: decimal.RequireFromString("12.5"), Description: "taxi", Type: core.EntryExpense},
	}
}

func TestRows(t *testing.T) {
	rows := Rows(entries(), true)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0][0] != "Fecha" || rows[0][4] != "Tipo" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[2][0] != "2025-03-18" || rows[2][1] != "transporte" || rows[2][2] != "12.5" {
		t.Errorf("row = %v", rows[2])
	}

	if got := Rows(entries(), false); len(got) != 2 {
		t.Errorf("rows without header = %d, want 2", len(got))
	}
	if got := Rows(nil, true); len(got) != 0 {
		t.Errorf("empty export should not write a header, got %v", got)
	}
}

// fakeSheets answers the two Values calls the exporter makes.
type fakeSheets struct {
	mu       sync.Mutex
	existing [][]any
	appended [][]any
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]any{"range": "Gastos!A1:E1", "values": f.existing})
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		var body struct {
			Values [][]any `json:"values"`
		}
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &body)
		f.appended = append(f.appended, body.Values...)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"updates": map[string]any{"updatedRange": "Gastos!A1:E3", "updatedRows": len(body.Values)},
		})
	default:
		http.NotFound(w, r)
	}
}

func newTestExporter(t *testing.T, fake *fakeSheets) *Exporter {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	x, err := New(context.Background(), Config{SpreadsheetID: "sheet-id", SheetName: "Gastos"},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return x
}

func TestExporterAppendsWithHeaderOnEmptySheet(t *testing.T) {
	fake := &fakeSheets{}
	x := newTestExporter(t, fake)

	res, err := x.Export(context.Background(), entries())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Count != 2 || res.Format != "sheets" || res.Location != "Gastos!A1:E3" {
		t.Fatalf("result = %+v", res)
	}
	if len(fake.appended) != 3 || fake.appended[0][0] != "Fecha" {
		t.Fatalf("appended = %v", fake.appended)
	}
}

func TestExporterSkipsHeaderWhenPresent(t *testing.T) {
	fake := &fakeSheets{existing: [][]any{{"Fecha", "Categoría", "Monto", "Descripción", "Tipo"}}}
	x := newTestExporter(t, fake)

	if _, err := x.Export(context.Background(), entries()); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(fake.appended) != 2 || fake.appended[0][0] != "2025-03-17" {
		t.Fatalf("appended = %v", fake.appended)
	}
}

func TestNewRequiresSpreadsheetAndCredentials(t *testing.T) {
	if _, err := New(context.Background(), Config{}, nil); err == nil {
		t.Fatal("expected error for missing spreadsheet ID")
	}
	if _, err := New(context.Background(), Config{SpreadsheetID: "x"}, nil); err == nil {
		t.Fatal("expected error for missing credentials")
	}
	if _, err := New(context.Background(), Config{SpreadsheetID: "x", CredentialsFile: "/non/existent.json"}, nil); err == nil {
		t.Fatal("expected error for unreadable credentials file")
	}
}
