package parser

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestNormalizeDate(t *testing.T) {
	months := mergeMonths(fullMonths, abbrevMonths)

	tests := []struct {
		name             string
		day, month, year string
		defaultYear      int
		expected         string
		wantErr          bool
	}{
		{name: "abbreviated month uses default year", day: "28", month: "May", defaultYear: 2025, expected: "2025-05-28"},
		{name: "full month name", day: "3", month: "January", year: "2024", expected: "2024-01-03"},
		{name: "month is case insensitive", day: "3", month: "JAN", year: "2024", expected: "2024-01-03"},
		{name: "numeric four digit year", day: "01", month: "02", year: "2024", expected: "2024-02-01"},
		{name: "two digit year", day: "03", month: "01", year: "24", expected: "2024-01-03"},
		{name: "two digit year pivot low", day: "01", month: "01", year: "68", expected: "2068-01-01"},
		{name: "two digit year pivot high", day: "01", month: "01", year: "69", expected: "1969-01-01"},
		{name: "leap day", day: "29", month: "Feb", year: "24", expected: "2024-02-29"},
		{name: "not a leap year", day: "29", month: "02", year: "23", wantErr: true},
		{name: "day 31 in a 30 day month", day: "31", month: "Apr", defaultYear: 2023, wantErr: true},
		{name: "unknown month", day: "5", month: "Foo", year: "2024", wantErr: true},
		{name: "month out of range", day: "1", month: "13", year: "2024", wantErr: true},
		{name: "day zero", day: "0", month: "1", year: "2024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeDate(months, tt.day, tt.month, tt.year, tt.defaultYear)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
