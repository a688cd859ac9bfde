package analysis

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const ellipsis = "..."

var sectorTags = strings.NewReplacer("(A)", "A:", "(B)", "B:", "(C)", "C:", "(D)", "D:")

var printer = message.NewPrinter(language.English)

// SectorLabel rewrites "(A)".."(D)" tags to "A:".."D:" and cuts the result to limit characters.
func SectorLabel(sector string, limit int) string {
	return Truncate(sectorTags.Replace(sector), limit)
}

// Truncate keeps the first limit characters of s.
func Truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

// Abbreviate is Truncate plus an ellipsis, added only when something was cut.
func Abbreviate(s string, limit int) string {
	if len([]rune(s)) <= limit {
		return s
	}
	return Truncate(s, limit) + ellipsis
}

// Thousands formats v rounded to a whole number with comma grouping.
func Thousands(v float64) string {
	return printer.Sprintf("%.0f", v)
}
