package parser

import (
	"regexp"
	"strings"
)

// Placeholder replaces descriptions that are empty or purely numeric.
const Placeholder = "-"

// ReferenceSeparator joins a captured reference line onto the description.
const ReferenceSeparator = " Ref:"

var (
	multiSpace = regexp.MustCompile(`\s{2,}`)
	allDigits  = regexp.MustCompile(`^\d+$`)
)

// CleanDescription collapses whitespace runs, trims, and substitutes the
// placeholder for empty or all-digit text.
func CleanDescription(s string) string {
	s = strings.TrimSpace(multiSpace.ReplaceAllString(s, " "))
	if s == "" || allDigits.MatchString(s) {
		return Placeholder
	}
	return s
}
