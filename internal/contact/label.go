package contact

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayLabelGroup returns the index group of a display label: the first
// letter upper-cased, "#" for anything that does not start with a letter,
// and "" for an empty label.
func DisplayLabelGroup(label string) string {
	r, size := utf8.DecodeRuneInString(label)
	if size == 0 {
		return ""
	}
	if !unicode.IsLetter(r) {
		return "#"
	}
	// Casers carry state and must not be shared between goroutines.
	return cases.Upper(language.Und).String(string(r))
}
