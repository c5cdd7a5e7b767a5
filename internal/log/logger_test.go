package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
	}
	for _, tc := range cases {
		got, err := ParseLevel(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentApp, Output: &buf})
	logger.WithComponent(ComponentController).Info("Expense recorded", FieldAmount, "25.5")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected a JSON record, got %q: %v", buf.String(), err)
	}
	if record[FieldComponent] != ComponentController {
		t.Fatalf("expected component %q, got %v", ComponentController, record[FieldComponent])
	}
	if record[FieldAmount] != "25.5" {
		t.Fatalf("expected amount field, got %v", record[FieldAmount])
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Component: ComponentApp, Output: &buf})
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().
		WithOperation(OpRecordExpense).
		WithExpense(7, decimal.RequireFromString("25.50"), "lunch").
		WithBalance(decimal.NewFromInt(100), decimal.RequireFromString("74.5")).
		WithError(errors.New("boom"), ErrorTypePersistence)

	if f[FieldExpenseID] != int64(7) || f[FieldAmount] != "25.5" || f[FieldBalance] != "74.5" {
		t.Fatalf("unexpected fields %v", f)
	}
	if len(f.ToSlice()) != len(f)*2 {
		t.Fatalf("ToSlice should produce key/value pairs")
	}
	if _, ok := NewFields().WithError(nil, ErrorTypeInput)[FieldError]; ok {
		t.Fatalf("nil error must not add fields")
	}
}
