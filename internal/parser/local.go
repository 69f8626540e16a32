package parser

import (
	"regexp"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// localGrammar handles savings statements laid out as
//
//	Day | Mon | Type | Description | Money out | Money in | Balance
//
// The source omits the year. Example: "12 Mar DR COFFEE HOUSE 4.50 1,200.00"
//
// Some exports drop the two-letter type column. When no row of the document
// matches the typed layout, the whole document is re-read with the untyped
// layout and every row is treated as money out.
var localGrammar = Grammar{
	Name:  models.FormatLocal,
	Title: "Local savings account (day, month, type code)",
	Primary: Pattern{
		Name: "local-typed",
		Regexp: regexp.MustCompile(
			`^(?P<day>\d{1,2})\s+(?P<month>[A-Za-z]{3})\s+(?P<marker>[A-Z]{2})\s+(?P<desc>.*?)\s+` +
				`(?P<amt1>[\d,.]+)?\s*(?P<amt2>[\d,.]+)?\s*(?P<amt3>[\d,.]+)?\s*$`,
		),
		Amounts: AmountGroups,
	},
	Fallback: &Pattern{
		Name: "local-untyped",
		Regexp: regexp.MustCompile(
			`^(?P<day>\d{1,2})\s+(?P<month>[A-Za-z]{3})\s+(?P<desc>.*?)\s+(?P<amt1>[\d,.]+)\s*$`,
		),
		Amounts:    AmountGroups,
		ForceDebit: true,
	},
	Months:      abbrevMonths,
	DefaultYear: 2023,
}
