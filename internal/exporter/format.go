package exporter

import (
	"fmt"
)

// formatFloat formats a float64 value with exactly 2 decimal places
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatBin labels a histogram bucket. The last bucket is closed on both ends.
func formatBin(lower, upper float64, last bool) string {
	closing := ")"
	if last {
		closing = "]"
	}
	return "[" + formatFloat(lower) + ", " + formatFloat(upper) + closing
}
