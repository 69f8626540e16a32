package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

// normalizeDate turns the date evidence of a row into YYYY-MM-DD.
// An empty year falls back to defaultYear; two-digit years pivot at 69.
func normalizeDate(months map[string]time.Month, day, month, year string, defaultYear int) (string, error) {
	d, err := strconv.Atoi(strings.TrimSpace(day))
	if err != nil {
		return "", fmt.Errorf("invalid day %q", day)
	}

	m, err := monthOf(months, month)
	if err != nil {
		return "", err
	}

	y := defaultYear
	if year = strings.TrimSpace(year); year != "" {
		y, err = strconv.Atoi(year)
		if err != nil {
			return "", fmt.Errorf("invalid year %q", year)
		}
		if len(year) == 2 {
			y = expandYear(y)
		}
	}

	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || t.Month() != m || t.Year() != y {
		return "", fmt.Errorf("invalid calendar date %04d-%02d-%02d", y, int(m), d)
	}
	return t.Format(isoDate), nil
}

func monthOf(months map[string]time.Month, token string) (time.Month, error) {
	token = strings.TrimSpace(token)
	if n, err := strconv.Atoi(token); err == nil {
		if n < 1 || n > 12 {
			return 0, fmt.Errorf("invalid month %q", token)
		}
		return time.Month(n), nil
	}
	if m, ok := months[strings.ToLower(token)]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("unknown month %q", token)
}

// expandYear follows the POSIX %y convention: 69-99 are 1969-1999, 00-68 are 2000-2068.
func expandYear(y int) int {
	if y >= 69 {
		return 1900 + y
	}
	return 2000 + y
}
