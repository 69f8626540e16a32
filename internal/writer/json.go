package writer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// JSONWriter writes the transaction list as a JSON array.
type JSONWriter struct {
	// Pretty indents with two spaces; otherwise output is compact.
	Pretty bool
}

// Write encodes the batch's transactions to out. An empty batch is written
// as [] rather than null.
func (w *JSONWriter) Write(out io.Writer, batch *models.Batch) error {
	txns := batch.Transactions
	if txns == nil {
		txns = []models.Transaction{}
	}

	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	if w.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(txns); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}
