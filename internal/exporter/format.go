package exporter

import (
	"strconv"
)

// formatFloat formats a float64 at full precision. Derived datasets feed
// regressions, so values round-trip without loss.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatOptFloat formats a nullable float; absence becomes an empty cell.
func formatOptFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}

// formatOptInt formats a nullable int; absence becomes an empty cell.
func formatOptInt(i *int) string {
	if i == nil {
		return ""
	}
	return formatInt(*i)
}
