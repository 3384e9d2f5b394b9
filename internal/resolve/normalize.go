// Package resolve maps free-text references to concrete records. It builds a
// searchable index over a record set (members, tasks) and ranks candidates
// with exact/prefix/substring/token heuristics before falling back to
// approximate string similarity.
package resolve

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// diacriticStripper decomposes to NFD, drops combining marks, then
// recomposes. "José" and "Jose" normalize identically.
var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases, strips diacritics, and collapses whitespace runs to a
// single space. It is the canonical form every comparison runs on.
func Normalize(s string) string {
	stripped, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		stripped = s
	}
	return strings.Join(strings.Fields(strings.ToLower(stripped)), " ")
}

// Tokenize splits the normalized form on non-alphanumeric boundaries.
func Tokenize(s string) []string {
	normalized := Normalize(s)
	return strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
