package parser

import (
	"regexp"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// westpacCardGrammar handles Westpac credit card statements, where one
// transaction spans several lines:
//
//	03/01/24 ONLINE PURCHASE
//	AMAZON MKTPLC AU
//	12.00 450.00
//
// The description runs until the first line holding two or more amounts.
// Two amounts are movement and balance; three are debit, credit, balance.
var westpacCardGrammar = Grammar{
	Name:  models.FormatWestpacCreditCard,
	Title: "Westpac credit card",
	Primary: Pattern{
		Name:    "westpac-card-dated",
		Regexp:  regexp.MustCompile(`^(?P<day>\d{2})/(?P<month>\d{2})/(?P<year>\d{2})\s+(?P<desc>.*)`),
		Amounts: AmountsLine,
	},
	Continuation: UntilAmountsLine,
	Sign: SignPolicy{
		CreditKeywords: []string{"Deposit", "Refund"},
	},
}
