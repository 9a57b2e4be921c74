package normalize

import (
	"math"
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// FuzzyKey prepares s for fuzzy comparison: case-folded, punctuation
// replaced by spaces, whitespace collapsed.
func FuzzyKey(s string) string {
	// cases.Caser is stateful, so each call gets its own.
	s = cases.Fold().String(norm.NFC.String(s))
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r) {
			return r
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// Ratio scores the similarity of two strings from 0 to 100 after FuzzyKey
// pre-processing. It is symmetric in its arguments.
func Ratio(a, b string) int {
	return KeyRatio(FuzzyKey(a), FuzzyKey(b))
}

// KeyRatio is Ratio for strings already passed through FuzzyKey.
func KeyRatio(ka, kb string) int {
	if ka == "" || kb == "" {
		return 0
	}
	if ka == kb {
		return 100
	}
	// Matching blocks depend on argument order; fix it for symmetry.
	if ka > kb {
		ka, kb = kb, ka
	}
	m := difflib.NewMatcher(chars(ka), chars(kb))
	// Only identical keys score 100.
	return min(int(math.Round(m.Ratio()*100)), 99)
}

// MaxRatio is an upper bound on KeyRatio derived from the key lengths alone.
// Callers use it to skip pairs that cannot reach a threshold.
func MaxRatio(ka, kb string) int {
	la, lb := len([]rune(ka)), len([]rune(kb))
	if la+lb == 0 {
		return 0
	}
	return int(math.Round(200 * float64(min(la, lb)) / float64(la+lb)))
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
