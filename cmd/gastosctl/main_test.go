package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gastos/internal/export"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("EXPORT_TARGET", "none")
	t.Setenv("TIMEZONE", "UTC")

	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestInterpretPrintsEnvelope(t *testing.T) {
	out, err := run(t, "", "interpret", "gasté", "2000", "en", "combustible")
	if err != nil {
		t.Fatalf("interpret: %v", err)
	}

	var env map[string]any
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if env["tipo"] != "gasto" {
		t.Errorf("tipo = %v, want gasto", env["tipo"])
	}
}

func TestInterpretRequiresMessage(t *testing.T) {
	if _, err := run(t, "", "interpret"); err == nil {
		t.Fatal("expected an error without a message")
	}
}

func TestChatAnswersEachLine(t *testing.T) {
	out, err := run(t, "gasté 20 mil en almuerzo\n\nhola\nsalir\nno se procesa\n", "chat")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 2 {
		t.Fatalf("expected a reply per message, got %q", out)
	}
	if strings.Contains(out, "no se procesa") {
		t.Errorf("lines after salir were processed: %q", out)
	}
}

func TestExportToStdout(t *testing.T) {
	out, err := run(t, "", "export", "--format", "csv", "--from", "2025-01-01", "--to", "2025-01-31", "--out", "-")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want := strings.Join(export.Header, ",") + "\n"
	if out != want {
		t.Errorf("empty ledger export = %q, want header only %q", out, want)
	}
}

func TestExportRejectsBadFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"format", []string{"export", "--format", "xml", "--out", "-"}},
		{"from", []string{"export", "--from", "ayer", "--out", "-"}},
		{"inverted", []string{"export", "--from", "2025-02-01", "--to", "2025-01-01", "--out", "-"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, "", tt.args...); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestSendRequiresBroker(t *testing.T) {
	t.Setenv("AMQP_URL", "")
	if _, err := run(t, "", "send", "hola"); err == nil {
		t.Fatal("expected an error without AMQP_URL")
	}
}
