package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// Continuation controls whether a transaction may span several lines.
type Continuation int

const (
	// SingleLine grammars assemble a transaction from the operative line alone.
	SingleLine Continuation = iota
	// UntilAmountsLine grammars keep appending lines to the description until
	// a line satisfying IsAmountsLine is reached.
	UntilAmountsLine
)

// AmountSource says where a pattern finds its numeric tokens.
type AmountSource int

const (
	// AmountGroups reads the non-empty amt1, amt2, amt3 capture groups in order.
	AmountGroups AmountSource = iota
	// LastAmount takes the last Amount match inside the rest group; the
	// description is the text of rest before it.
	LastAmount
	// AmountsLine reads every amount token on the continuation's amounts line.
	AmountsLine
)

// Pattern is one candidate row pattern of a grammar.
//
// Recognised capture group names: day, month, year, marker, desc, rest and
// amt1..amt3. Groups a pattern does not declare are simply absent.
type Pattern struct {
	Name    string
	Regexp  *regexp.Regexp
	Amounts AmountSource
	// Amount matches a single numeric token; used with LastAmount.
	Amount *regexp.Regexp
	// Unanchored patterns may match several times within one line.
	Unanchored bool
	// ForceDebit ignores every piece of sign evidence.
	ForceDebit bool
}

// SignPolicy maps the raw evidence of a format onto the canonical sign rule.
type SignPolicy struct {
	// CreditKeywords are case-sensitive description substrings that mark a
	// one- or two-token row as money in.
	CreditKeywords []string
	// CreditMarkers are marker codes (such as "CR") that force money in.
	CreditMarkers []string
}

func (s SignPolicy) isCreditMarker(marker string) bool {
	marker = strings.TrimSpace(marker)
	if marker == "" {
		return false
	}
	for _, m := range s.CreditMarkers {
		if marker == m {
			return true
		}
	}
	return false
}

func (s SignPolicy) hasCreditKeyword(desc string) bool {
	for _, kw := range s.CreditKeywords {
		if strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}

// Grammar is the declarative description of one institution's statement layout.
// A Grammar is built once and never mutated.
type Grammar struct {
	Name  models.Format
	Title string

	Primary  Pattern
	Fallback *Pattern

	Continuation Continuation

	// Months maps lower-cased month tokens to months.
	Months map[string]time.Month
	// DefaultYear is used when the source text omits the year.
	DefaultYear int

	Sign SignPolicy

	// ReferencePrefix, when set, makes a line immediately following the
	// operative line that contains the prefix contribute a reference suffix.
	ReferencePrefix string

	// BalanceDate, when set, enables opening/closing balance rows; it locates
	// the date anywhere on such a line.
	BalanceDate *regexp.Regexp

	// Pages restricts parsing to these 1-based pages. Empty means all pages.
	Pages []int
	// Layout asks the extractor for layout-preserving text.
	Layout bool
}

var abbrevMonths = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var fullMonths = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

func mergeMonths(tables ...map[string]time.Month) map[string]time.Month {
	out := make(map[string]time.Month)
	for _, t := range tables {
		for k, v := range t {
			out[k] = v
		}
	}
	return out
}

// groups resolves a pattern's submatch into named values.
func (p *Pattern) groups(sub []string) map[string]string {
	names := p.Regexp.SubexpNames()
	out := make(map[string]string, len(names))
	for i, name := range names {
		if name == "" || i >= len(sub) {
			continue
		}
		out[name] = sub[i]
	}
	return out
}
