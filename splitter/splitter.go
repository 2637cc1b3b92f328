// Package splitter breaks compound medication entries such as
// "Velija 60mg e Donaren 50mg" into one candidate per drug.
package splitter

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinCandidateLength is the shortest candidate, in characters, kept after a split.
const MinCandidateLength = 3

// separators are applied one after the other, each on the output of the previous
var separators = []*regexp.Regexp{
	regexp.MustCompile(`,`),
	regexp.MustCompile(`(?i)\s+(?:e|and)\s+`),
	regexp.MustCompile(`\+`),
	regexp.MustCompile(`(?i)\s+(?:plus|mais)\s+`),
}

// Split returns the drug candidates found in raw.
//
// Candidates are trimmed and those shorter than MinCandidateLength are
// dropped. When fewer than two candidates survive, Split returns raw as the
// only element so callers can treat the entry as a single drug.
func Split(raw string) []string {
	parts := []string{raw}

	for _, sep := range separators {
		next := make([]string, 0, len(parts))
		for _, p := range parts {
			next = append(next, sep.Split(p, -1)...)
		}
		parts = next
	}

	candidates := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if utf8.RuneCountInString(p) < MinCandidateLength {
			continue
		}
		candidates = append(candidates, p)
	}

	if len(candidates) < 2 {
		return []string{raw}
	}

	return candidates
}
