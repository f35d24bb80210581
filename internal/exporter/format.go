package exporter

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"salespulse/internal/sales"
)

// formatMoney formats an amount for machine-readable output with exactly 2
// decimal places
func formatMoney(m sales.Money) string {
	return m.StringFixed(2)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatPct formats a percentage with one decimal place
func formatPct(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}

// DisplayMoney formats an amount for humans: thousands separators and
// exactly two decimals, e.g. 3,215.85.
func DisplayMoney(m sales.Money) string {
	fixed := m.StringFixed(2)
	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	whole, frac, _ := strings.Cut(fixed, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return m.StringFixed(2)
	}
	out := humanize.Comma(n) + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

// displayInt formats a count with thousands separators
func displayInt[T int | int64](i T) string {
	return humanize.Comma(int64(i))
}
