package parser

import (
	"regexp"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// westpacGrammar handles Westpac account statements. Transactions are listed
// on pages 3 to 5 and need layout-preserving extraction:
//
//	03 Jan 24   COLES SUPERMARKET SYDNEY        45.10
//
// The last amount on the row is the movement. Everything is money out
// except credit vouchers.
var westpacGrammar = Grammar{
	Name:  models.FormatWestpac,
	Title: "Westpac account",
	Primary: Pattern{
		Name:    "westpac-dated",
		Regexp:  regexp.MustCompile(`^\s*(?P<day>\d{1,2})\s+(?P<month>[A-Za-z]{3})\s+(?P<year>\d{2})\s+(?P<rest>.*)`),
		Amounts: LastAmount,
		Amount:  regexp.MustCompile(`[\d,]+\.\d{2}`),
	},
	Months: abbrevMonths,
	Sign: SignPolicy{
		CreditKeywords: []string{"CRED VOUCHER"},
	},
	Pages:  []int{3, 4, 5},
	Layout: true,
}
