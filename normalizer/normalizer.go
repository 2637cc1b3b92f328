// Package normalizer turns free-text medication names into the comparison key
// used by the catalog, the learned mapping store and the resolver.
package normalizer

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Pre-compiled patterns, shared by every call
var (
	// A number (optionally with a decimal part) followed by a unit or a dosage form.
	// Longer alternatives come first so "mcg" is never read as "m" + "cg".
	dosageRegex = regexp.MustCompile(
		`\d+(?:[.,]\d+)?\s*(?:%|(?:mg\s*/\s*ml|mcg|µg|ug|mg|ml|g|iu|ui|` +
			`comprimidos|comprimido|comp|cpr|cp|capsulas|capsula|caps|cps|` +
			`gotas|gts|tablets|tablet|capsules|capsule|drops)\b)`,
	)

	disallowedRegex = regexp.MustCompile(`[^a-z0-9 ]+`)
	spacesRegex     = regexp.MustCompile(`\s+`)
)

// Normalize returns the canonical comparison key for a raw medication string.
//
// The result is lowercase ASCII letters, digits and single spaces, with
// accents folded away and dosage tokens ("10mg", "0,5 ml", "20 gotas")
// removed. Normalize is idempotent and never fails: empty or unusable
// input yields the empty string.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	s := stripAccents(strings.ToLower(raw))

	// First pass catches decimals and percentages before punctuation is dropped
	s = dosageRegex.ReplaceAllString(s, " ")
	s = disallowedRegex.ReplaceAllString(s, " ")

	// Removing punctuation can expose new dosage tokens ("10-mg"), so repeat
	// until nothing changes. Each replacement shrinks the digit count, which bounds the loop.
	for {
		next := dosageRegex.ReplaceAllString(s, " ")
		if next == s {
			break
		}
		s = next
	}

	return strings.TrimSpace(spacesRegex.ReplaceAllString(s, " "))
}

// stripAccents removes combining marks after canonical decomposition.
// The transformer chain keeps internal state, so one is built per call.
func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
