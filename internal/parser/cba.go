package parser

import (
	"regexp"

	"github.com/insightdelivered/statement-parser/internal/models"
)

const cbaDate = `(?P<day>\d{1,2})\s+(?P<month>[A-Za-z]+)\s+(?P<year>\d{4})`

// cbaGrammar handles Commonwealth Bank account statements:
//
//	01 January 2024 OPENING BALANCE $1,000.00 CR
//	03 January 2024 Transfer to xx1234 NetBank 50.00
//
// Opening and closing balance lines become zero-amount rows. On other rows
// the last amount is taken as money out; a negative amount flips to money in.
var cbaGrammar = Grammar{
	Name:  models.FormatCBA,
	Title: "Commonwealth Bank account",
	Primary: Pattern{
		Name:    "cba-dated",
		Regexp:  regexp.MustCompile(`^` + cbaDate + `(?P<rest>.*)$`),
		Amounts: LastAmount,
		Amount:  regexp.MustCompile(`-?\b\d{1,3}(?:,\d{3})*\.\d{2}`),
	},
	Months:      mergeMonths(fullMonths, abbrevMonths),
	BalanceDate: regexp.MustCompile(cbaDate),
}
