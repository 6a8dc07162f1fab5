// Package slug derives URL-safe identifiers from free text.
package slug

import (
	"strings"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/unicode/norm"
)

// Normalize transliterates s to ASCII, lowercases it and collapses every run
// of non-alphanumeric characters into a single hyphen. Leading and trailing
// hyphens are dropped. A positive maxLength truncates the result; zero or
// less leaves it unbounded. Normalize is idempotent.
func Normalize(s string, maxLength int) string {
	// compose first so accented letters hit the single-rune table entries
	s = strings.ToLower(unidecode.Unidecode(norm.NFKC.String(s)))

	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}

	out := b.String()
	if maxLength > 0 && len(out) > maxLength {
		out = strings.TrimRight(out[:maxLength], "-")
	}
	return out
}

// Generate picks the slug for a post: the explicit slug when it normalizes to
// something, the title otherwise.
func Generate(title, explicit string, maxLength int) string {
	if s := Normalize(explicit, maxLength); s != "" {
		return s
	}
	return Normalize(title, maxLength)
}
