package cleaner

import (
	"strings"
	"unicode"
)

// SimpleCleaner drops characters outside the word and whitespace classes,
// collapses whitespace runs to one space and trims the result.
type SimpleCleaner struct{}

func NewSimpleCleaner() *SimpleCleaner {
	return &SimpleCleaner{}
}

// Clean is idempotent: punctuation is removed before whitespace is collapsed,
// so a second pass finds nothing to change.
func (c *SimpleCleaner) Clean(text string) string {
	stripped := strings.Map(func(r rune) rune {
		if isWord(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, text)

	return strings.Join(strings.Fields(stripped), " ")
}

// isWord keeps letters, all numerics (Nd, Nl, No), combining marks and
// underscore. Marks stay so decomposed accents survive.
func isWord(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r) || r == '_'
}
