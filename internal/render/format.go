package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotAvailable is shown in place of a statistic that has no data.
const NotAvailable = "N/A"

var printer = message.NewPrinter(language.English)

// FormatCount renders an integer with thousands separators.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatAverage renders a mean in tonnes with two decimals, or N/A.
func FormatAverage(avg *float64) string {
	if avg == nil {
		return NotAvailable
	}
	return printer.Sprintf("%.2f t", *avg)
}

// FormatValue renders a single observation value with one decimal.
func FormatValue(v float64) string {
	return printer.Sprintf("%.1f", v)
}
