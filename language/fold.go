package language

import (
	"golang.org/x/text/cases"
	textlanguage "golang.org/x/text/language"
)

// Lower lower-cases text with the language-neutral Unicode rules, including the
// Greek final sigma. Keywords and the text they are searched in must both be
// folded with it, or a word can fail to match itself.
func Lower(text string) string {
	return cases.Lower(textlanguage.Und).String(text)
}
