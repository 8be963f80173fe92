package jobdata

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts are the date formats written by the editing screens, most
// specific first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02.01.2006",
}

// ParseNumber parses a stored numeric value. Thousands separators and
// surrounding whitespace are tolerated.
func ParseNumber(value string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if cleaned == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseBool parses a stored checkbox value.
func ParseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on", "v":
		return true
	}
	return false
}

// ParseDate parses a stored date value in any of the known layouts.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatNumber renders a number the way the editors store it.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatAmount renders a monetary amount with two decimals.
func FormatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
