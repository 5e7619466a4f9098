package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	symbols  = strings.NewReplacer(
		"&", " and ", "₦", " naira ", "@", " at ",
		// Hausa hooked letters have no decomposition.
		"Ɓ", "B", "ɓ", "b", "Ɗ", "D", "ɗ", "d", "Ƙ", "K", "ƙ", "k", "Ƴ", "Y", "ƴ", "y",
	)
)

// Generate creates a URL-friendly slug from a listing or vendor name.
// Tone marks and under-dots used in Yoruba, Igbo and Hausa spellings are
// stripped to their base letters.
//
// Examples:
//   - "Mama Ọ̀jọ́ Kitchen" → "mama-ojo-kitchen"
//   - "Àṣẹ Fabrics & Co." → "ase-fabrics-and-co"
//   - "Wuse  Market!!" → "wuse-market"
func Generate(name string) string {
	s := symbols.Replace(strings.TrimSpace(name))
	s = stripMarks(s)
	s = strings.ToLower(s)
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
