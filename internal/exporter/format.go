package exporter

import (
	"strconv"
	"time"
)

// formatInt formats an int for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatDate formats an optional date as YYYY-MM-DD, empty when absent
func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}

// formatYear formats an optional year, empty when absent
func formatYear(y *int) string {
	if y == nil {
		return ""
	}
	return strconv.Itoa(*y)
}
