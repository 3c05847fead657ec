package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Letters that carry no combining mark in NFD and so survive diacritic
// stripping unchanged.
var undecomposable = strings.NewReplacer(
	"ı", "i", "ł", "l", "đ", "d", "ø", "o", "ß", "ss", "æ", "ae", "œ", "oe",
)

// Generate turns a display name into a lowercase ASCII slug suitable for
// file names and URLs, e.g. "Café Ñandú" becomes "cafe-nandu".
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = undecomposable.Replace(s)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, s); err == nil {
		s = stripped
	}

	return strings.Trim(nonAlnum.ReplaceAllString(s, "-"), "-")
}

// Or returns Generate(name), or fallback when the name has no usable
// characters.
func Or(name, fallback string) string {
	if s := Generate(name); s != "" {
		return s
	}
	return fallback
}
