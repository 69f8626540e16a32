package parser

import (
	"regexp"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// amexGrammar handles American Express card statements. The month name is
// glued to the day and there is no year:
//
//	May28 TRANSPORTFORNSWTRAVEL SYDNEY 2.24
//	Reference: AT251480012000010042431
//
// Every row is a charge. A "Reference:" line directly below a row is
// appended to its description.
var amexGrammar = Grammar{
	Name:  models.FormatAmex,
	Title: "American Express card",
	Primary: Pattern{
		Name: "amex-month-day",
		Regexp: regexp.MustCompile(
			`^(?P<month>January|February|March|April|May|June|July|August|September|October|November|December)` +
				`(?P<day>\d{1,2})\s+(?P<desc>.+?)\s+(?P<amt1>\d+\.\d{2})$`,
		),
		Amounts: AmountGroups,
	},
	Months:          fullMonths,
	DefaultYear:     2025,
	ReferencePrefix: "Reference:",
}
