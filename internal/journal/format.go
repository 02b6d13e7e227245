package journal

import "strings"

// layoutReplacer maps journal filename tokens to Go reference-layout
// fragments. Longer tokens come first so that YYYY wins over YY and MMMM
// over MM; anything outside the token alphabet passes through untouched.
var layoutReplacer = strings.NewReplacer(
	"YYYY", "2006",
	"YY", "06",
	"MMMM", "January",
	"MMM", "Jan",
	"MM", "01",
	"M", "1",
	"DD", "02",
	"D", "2",
	"dddd", "Monday",
	"ddd", "Mon",
)

// Layout converts a token-based date format (for example "YYYY-MM-DD") to a
// Go time layout. An empty format falls back to ISO dates.
func Layout(format string) string {
	if strings.TrimSpace(format) == "" {
		return "2006-01-02"
	}
	return layoutReplacer.Replace(format)
}
