package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// amountToken matches a decimal with optional thousands separators, e.g. 1,234.56.
var amountToken = regexp.MustCompile(`\b\d{1,3}(?:,\d{3})*\.\d{2}`)

var errNoAmount = errors.New("no usable amount")

// IsAmountsLine reports whether a line carries the numeric columns of a
// multi-line transaction: at least two decimal tokens.
//
// A description that happens to contain two price-like substrings is
// classified as an amounts line too.
func IsAmountsLine(line string) bool {
	return len(amountToken.FindAllString(line, -1)) >= 2
}

// AmountTokens returns the decimal tokens of an amounts line in order.
func AmountTokens(line string) []string {
	return amountToken.FindAllString(line, -1)
}

// Slots is the outcome of amount disambiguation. At most one of Debit and
// Credit is used for the transaction; Balance is never stored.
type Slots struct {
	Debit   string
	Credit  string
	Balance string
}

// Disambiguate assigns the trailing numeric tokens of a row to debit, credit
// and balance slots.
//
// One token, or two tokens (amount then balance), become a credit when the
// marker is a credit marker or the description carries a credit keyword,
// and a debit otherwise. Three tokens are debit, credit, balance by position.
func (s SignPolicy) Disambiguate(tokens []string, desc, marker string) (Slots, error) {
	switch len(tokens) {
	case 1, 2:
		var slots Slots
		if len(tokens) == 2 {
			slots.Balance = tokens[1]
		}
		if s.isCreditMarker(marker) || s.hasCreditKeyword(desc) {
			slots.Credit = tokens[0]
		} else {
			slots.Debit = tokens[0]
		}
		return slots, nil
	case 3:
		return Slots{Debit: tokens[0], Credit: tokens[1], Balance: tokens[2]}, nil
	default:
		return Slots{}, fmt.Errorf("%w: %d amount tokens", errNoAmount, len(tokens))
	}
}

// Signed returns the canonical amount: the first non-empty of debit and
// credit, negative for a debit and positive for a credit.
func (sl Slots) Signed() (decimal.Decimal, error) {
	if strings.TrimSpace(sl.Debit) != "" {
		amt, err := parseAmount(sl.Debit)
		if err != nil {
			return decimal.Zero, err
		}
		return amt.Neg(), nil
	}
	if strings.TrimSpace(sl.Credit) != "" {
		return parseAmount(sl.Credit)
	}
	return decimal.Zero, errNoAmount
}

// parseAmount converts a token like "1,234.56" or "$25.99" to a decimal.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00A0", "") // non-breaking space

	if s == "" || s == "-" {
		return decimal.Zero, errNoAmount
	}

	amt, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return amt, nil
}
