// Package format renders numeric and text fragments for outbound
// notifications. Numbers follow en-US conventions (grouping separators,
// capped fraction digits) to match what the monitoring platform's own UI
// shows.
package format

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// Number formats v with locale grouping and at most maxFrac fraction digits.
// Percentages render with 0, GB magnitudes with 2.
func Number(v float64, maxFrac int) string {
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(maxFrac)))
}

// Mode selects the markup dialect of the downstream backend.
type Mode int

const (
	Plain Mode = iota
	Markdown
)

// Bold wraps s in bold markup. Identity under Plain.
func (m Mode) Bold(s string) string {
	if m == Markdown {
		return "**" + s + "**"
	}
	return s
}
