package scoring

import (
	"strings"
	"unicode"
)

// DefaultMatchThreshold is the token-overlap ratio a candidate pair must
// exceed to count as a match.
const DefaultMatchThreshold = 0.7

// Match reports whether two question texts refer to the same question.
// Identical strings after normalization always match. Otherwise significant
// tokens (longer than two characters) are compared by mutual substring
// containment, and the overlap ratio over the larger token set must exceed
// threshold. This tolerates scattered character corruption from earlier
// template conversions as long as most significant words survive.
func Match(a, b string, threshold float64) bool {
	na, nb := normalizeText(a), normalizeText(b)
	if na == nb {
		return na != ""
	}

	ta, tb := tokenSet(na), tokenSet(nb)
	if len(ta) == 0 || len(tb) == 0 {
		return false
	}

	matched := 0
	for _, x := range ta {
		for _, y := range tb {
			if strings.Contains(x, y) || strings.Contains(y, x) {
				matched++
				break
			}
		}
	}

	larger := len(ta)
	if len(tb) > larger {
		larger = len(tb)
	}
	return float64(matched)/float64(larger) > threshold
}

// normalizeText lowercases, replaces punctuation with spaces, and collapses
// whitespace.
func normalizeText(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

// tokenSet returns the distinct tokens longer than two characters.
func tokenSet(s string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tok := range strings.Fields(s) {
		if len(tok) <= 2 || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}
