package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// CSVWriter writes transactions to CSV format.
type CSVWriter struct {
	IncludeHeader bool
}

// WriteToFile writes transactions to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, batch *models.Batch) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, batch)
}

// Write writes transactions in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, batch *models.Batch) error {
	writer := csv.NewWriter(out)

	// Metadata rows precede the column headers
	if w.IncludeHeader {
		if err := writer.Write([]string{"# Format", string(batch.Format)}); err != nil {
			return fmt.Errorf("failed to write CSV metadata: %w", err)
		}
		if batch.Fallback {
			if err := writer.Write([]string{"# Fallback", "true"}); err != nil {
				return fmt.Errorf("failed to write CSV metadata: %w", err)
			}
		}
	}

	header := []string{"id", "date", "description", "amount"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, txn := range batch.Transactions {
		row := []string{
			txn.ID,
			txn.Date,
			txn.Description,
			formatAmount(txn),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatAmount(txn models.Transaction) string {
	return txn.Amount.StringFixed(2)
}
