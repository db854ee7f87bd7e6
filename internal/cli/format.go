// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatAmount formats a money amount with a dollar sign and separators.
// Cents are only shown when present.
// e.g., 45000 -> "$45,000", 1234.5 -> "$1,234.50"
func FormatAmount(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	whole := d.Truncate(0)
	out := sign + "$" + FormatNumber(whole.IntPart())

	frac := d.Sub(whole)
	if !frac.IsZero() {
		cents := frac.StringFixed(2)
		out += cents[strings.IndexByte(cents, '.'):]
	}
	return out
}

// FormatDate formats a due date for lists, e.g. "Jan 25, 2025".
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// FormatDays renders a signed day count as a short countdown.
// e.g., 3 -> "in 3d", 0 -> "today", -2 -> "2d late"
func FormatDays(days int) string {
	switch {
	case days == 0:
		return "today"
	case days > 0:
		return fmt.Sprintf("in %dd", days)
	default:
		return fmt.Sprintf("%dd late", -days)
	}
}

// Plural returns "1 day", "3 days".
func Plural(n int, word string) string {
	if n == 1 || n == -1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// Truncate shortens s to maxLen runes with an ellipsis.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}

// ShortID returns the first 8 characters of an id for display.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
