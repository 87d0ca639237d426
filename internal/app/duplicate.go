package app

// DefaultSimilarityThreshold is the score above which two answers count as
// near-duplicates.
const DefaultSimilarityThreshold = 0.8

// DuplicateGuard rejects candidate answers that score too close to an
// existing answer on the same prompt.
type DuplicateGuard struct {
	score     func(a, b string) float64
	threshold float64
}

// NewDuplicateGuard builds a guard around a similarity scorer. The scorer
// must be symmetric and return values in [0,1].
func NewDuplicateGuard(score func(a, b string) float64, threshold float64) DuplicateGuard {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return DuplicateGuard{score: score, threshold: threshold}
}

// Check reports whether candidate may join the pool of existing answers.
// Any existing answer scoring strictly above the threshold rejects the
// candidate; the first hit short-circuits. A zero-value guard accepts
// every candidate.
func (g DuplicateGuard) Check(candidate string, existing []string) bool {
	if g.score == nil {
		return true
	}
	for _, text := range existing {
		if g.score(text, candidate) > g.threshold {
			return false
		}
	}
	return true
}
