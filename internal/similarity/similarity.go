// Package similarity scores how alike two strings are using a bigram Dice
// coefficient. The measure is symmetric, deterministic, returns 1 for
// identical strings and 0 for strings sharing no bigrams.
package similarity

import (
	"strings"
	"unicode"
)

// Score returns the normalized similarity of a and b in [0,1].
// Whitespace is ignored; strings shorter than two runes after stripping
// share no bigrams and score 0 unless identical.
func Score(a, b string) float64 {
	a = stripSpace(a)
	b = stripSpace(b)

	if a == b {
		return 1
	}

	ra := []rune(a)
	rb := []rune(b)
	if len(ra) < 2 || len(rb) < 2 {
		return 0
	}

	bigrams := make(map[string]int, len(ra)-1)
	for i := 0; i < len(ra)-1; i++ {
		bigrams[string(ra[i:i+2])]++
	}

	intersection := 0
	for i := 0; i < len(rb)-1; i++ {
		bigram := string(rb[i : i+2])
		if bigrams[bigram] > 0 {
			bigrams[bigram]--
			intersection++
		}
	}

	return 2 * float64(intersection) / float64(len(ra)+len(rb)-2)
}

func stripSpace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if !unicode.IsSpace(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
