package parser

import (
	"fmt"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/insightdelivered/statement-parser/internal/models"
)

type row struct {
	Date        string
	Description string
	Amount      string
}

func sequentialIDs() Option {
	n := 0
	return WithIDFunc(func() string {
		n++
		return fmt.Sprintf("txn-%d", n)
	})
}

func mustEngine(t *testing.T, format models.Format, opts ...Option) *Engine {
	t.Helper()
	e, err := New(format, append([]Option{sequentialIDs()}, opts...)...)
	assert.NoError(t, err)
	return e
}

func rowsOf(b *models.Batch) []row {
	out := make([]row, 0, len(b.Transactions))
	for _, txn := range b.Transactions {
		out = append(out, row{Date: txn.Date, Description: txn.Description, Amount: txn.Amount.StringFixed(2)})
	}
	return out
}
