package writer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-parser/internal/models"
)

func sampleBatch() *models.Batch {
	return &models.Batch{
		Format: models.FormatCBA,
		Transactions: []models.Transaction{
			{ID: "a", Date: "2024-01-01", Description: "OPENING BALANCE"},
			{ID: "b", Date: "2024-01-03", Description: "Transfer to xx1234, NetBank", Amount: decimal.RequireFromString("-50.00")},
			{ID: "c", Date: "2024-01-05", Description: "Salary ACME PTY LTD", Amount: decimal.RequireFromString("2500.00")},
		},
	}
}

func TestCSVWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: true}
	if err := w.Write(&buf, sampleBatch()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "# Format,cba") {
		t.Error("expected format metadata header")
	}
	if strings.Contains(output, "# Fallback") {
		t.Error("fallback metadata should only appear for fallback batches")
	}
	if !strings.Contains(output, "id,date,description,amount") {
		t.Error("expected column headers")
	}
	// Embedded commas are quoted
	if !strings.Contains(output, `b,2024-01-03,"Transfer to xx1234, NetBank",-50.00`) {
		t.Errorf("expected quoted debit row, got:\n%s", output)
	}
	if !strings.Contains(output, "a,2024-01-01,OPENING BALANCE,0.00") {
		t.Error("expected zero-amount balance row")
	}

	lines := strings.Split(strings.TrimSpace(output), "\n")
	// 1 metadata line + 1 header + 3 transactions = 5
	if len(lines) != 5 {
		t.Errorf("expected 5 lines, got %d", len(lines))
	}
}

func TestCSVWriter_WriteNoHeader(t *testing.T) {
	batch := &models.Batch{Format: models.FormatLocal, Fallback: true}

	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: false}
	if err := w.Write(&buf, batch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()

	if strings.Contains(output, "# Format") || strings.Contains(output, "# Fallback") {
		t.Error("should not have metadata when header=false")
	}
	if output != "id,date,description,amount\n" {
		t.Errorf("expected only column headers, got %q", output)
	}
}

func TestCSVWriter_WriteFallbackMetadata(t *testing.T) {
	batch := &models.Batch{Format: models.FormatLocal, Fallback: true}

	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: true}
	if err := w.Write(&buf, batch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "# Fallback,true") {
		t.Error("expected fallback metadata")
	}
}

func TestCSVWriter_WriteToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	w := &CSVWriter{}
	if err := w.WriteToFile(path, sampleBatch()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "id,date,description,amount\n") {
		t.Errorf("unexpected file contents: %q", data)
	}
}

func TestCSVWriter_WriteToFileBadPath(t *testing.T) {
	w := &CSVWriter{}
	err := w.WriteToFile(filepath.Join(t.TempDir(), "missing", "out.csv"), sampleBatch())
	if err == nil {
		t.Error("expected error for unwritable path")
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"-25.99", "-25.99"},
		{"1234.56", "1234.56"},
		{"0", "0.00"},
		{"2500", "2500.00"},
	}

	for _, tt := range tests {
		got := formatAmount(models.Transaction{Amount: decimal.RequireFromString(tt.input)})
		if got != tt.expected {
			t.Errorf("formatAmount(%s): got %q, want %q", tt.input, got, tt.expected)
		}
	}
}
