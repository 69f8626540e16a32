package models

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Transaction is one normalized statement movement.
// Amount is negative for money leaving the account, positive for money
// entering it, and zero for opening/closing balance rows.
type Transaction struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"` // YYYY-MM-DD, empty only on balance rows without a date
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	// Balance marks a synthetic opening or closing balance row. It is not
	// part of the serialized record.
	Balance     bool            `json:"-"`
}

// MarshalJSON writes the amount as a JSON number rather than a quoted string
// and leaves characters such as & in descriptions unescaped.
func (t Transaction) MarshalJSON() ([]byte, error) {
	type record struct {
		ID          string      `json:"id"`
		Date        string      `json:"date"`
		Description string      `json:"description"`
		Amount      json.Number `json:"amount"`
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	err := enc.Encode(record{
		ID:          t.ID,
		Date:        t.Date,
		Description: t.Description,
		Amount:      json.Number(t.Amount.String()),
	})
	if err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// IsBalanceMarker reports whether the transaction is a synthetic opening or
// closing balance row. A movement whose amount happens to be zero is not.
func (t Transaction) IsBalanceMarker() bool {
	return t.Balance
}

// Format names a supported statement layout.
type Format string

const (
	FormatLocal             Format = "local"
	FormatWestpac           Format = "westpac"
	FormatWestpacCreditCard Format = "westpac-credit-card"
	FormatAmex              Format = "amex"
	FormatANZ               Format = "anz"
	FormatCBA               Format = "cba"
)

// Line results recorded in DebugLine.Result.
const (
	ResultParsed       = "parsed"
	ResultBalance      = "balance"
	ResultContinuation = "continuation"
	ResultAmounts      = "amounts"
	ResultReference    = "reference"
	ResultSkipped      = "skipped"
)

// DebugLine captures what the parser did with each input line.
type DebugLine struct {
	Page    int    `json:"page"`
	LineNum int    `json:"lineNum"`
	Text    string `json:"text"`
	Result  string `json:"result"`
	Reason  string `json:"reason,omitempty"`
	Pattern string `json:"pattern,omitempty"`
}

// Batch holds the transactions produced from one document.
type Batch struct {
	Format       Format
	Fallback     bool // true when the document-level fallback pattern produced the batch
	Transactions []Transaction
	DebugLines   []DebugLine
}

// Totals sums debits (as a positive figure) and credits across the batch.
func (b *Batch) Totals() (debit, credit decimal.Decimal) {
	for _, txn := range b.Transactions {
		switch txn.Amount.Sign() {
		case -1:
			debit = debit.Add(txn.Amount.Neg())
		case 1:
			credit = credit.Add(txn.Amount)
		}
	}
	return debit, credit
}
