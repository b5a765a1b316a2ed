package naming

import (
	"strings"
	"unicode"
)

// allowedPunct is the punctuation kept by [Sanitize] besides word characters.
const allowedPunct = "().,&+-^%$;№@='[]{}`~# "

// Sanitize removes every rune that is not a letter, number, underscore or one of
// the allowed punctuation marks, then trims surrounding whitespace.
//
// It never fails and never introduces a path separator.
func Sanitize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if allowed(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

func allowed(r rune) bool {
	if r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) {
		return true
	}
	return strings.ContainsRune(allowedPunct, r)
}

// IsUsable reports whether a sanitized segment can name a file or directory on its own.
func IsUsable(segment string) bool {
	return segment != "" && strings.Trim(segment, ".") != ""
}
