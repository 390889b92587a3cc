// Package textutil normalizes the free text found in feed taxonomy fields.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Letters that do not decompose into an ASCII base plus combining marks.
var transliterations = map[rune]string{
	'ß': "ss", 'æ': "ae", 'Æ': "AE", 'ø': "o", 'Ø': "O", 'œ': "oe", 'Œ': "OE",
	'đ': "d", 'Đ': "D", 'ł': "l", 'Ł': "L", 'þ': "th", 'Þ': "TH", 'ð': "d", 'Ð': "D",
	'&': "and", '%': "percent", '$': "dollar", '€': "euro", '£': "pound", '|': "or",
	'<': "less", '>': "greater",
}

// Slugify returns the lowercase, ASCII-only, hyphen separated form of s.
// Existing hyphens act as word separators, every other symbol is dropped, so
// Slugify(Slugify(s)) == Slugify(s).
func Slugify(s string) string {
	var mapped strings.Builder
	for _, r := range s {
		if t, ok := transliterations[r]; ok {
			mapped.WriteString(" " + t + " ")
			continue
		}
		mapped.WriteRune(r)
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, mapped.String())
	if err != nil {
		folded = mapped.String()
	}

	var b strings.Builder
	for _, r := range folded {
		switch {
		case r == '-' || unicode.IsSpace(r):
			b.WriteByte(' ')
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return strings.Join(strings.Fields(b.String()), "-")
}
