package parser

import (
	"regexp"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// anzGrammar handles ANZ card statements:
//
//	Processed  | Transaction | Card | Description | Amount [CR] | Balance
//	01/02/2024 01/02/2024 1234 COFFEE SHOP 4.50 120.00
//
// The transaction date is used. A "CR" after the amount marks money in.
var anzGrammar = Grammar{
	Name:  models.FormatANZ,
	Title: "ANZ card",
	Primary: Pattern{
		Name: "anz-two-dates",
		Regexp: regexp.MustCompile(
			`(?P<processed>\d{2}/\d{2}/\d{4})\s+` +
				`(?P<day>\d{2})/(?P<month>\d{2})/(?P<year>\d{4})\s+` +
				`(?P<card>\d{4})\s+` +
				`(?P<desc>.*?)\s+` +
				`\$?(?P<amt1>[\d,]+\.\d{2})\s*` +
				`(?P<marker>CR)?\s+` +
				`\$?(?P<amt2>[\d,]+\.\d{2})`,
		),
		Amounts:    AmountGroups,
		Unanchored: true,
	},
	Sign: SignPolicy{
		CreditMarkers: []string{"CR"},
	},
}
