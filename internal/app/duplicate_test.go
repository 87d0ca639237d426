package app

import (
	"testing"

	"answerhub-service/internal/similarity"
	"github.com/stretchr/testify/assert"
)

func TestDuplicateGuardEmptyPoolAccepts(t *testing.T) {
	guard := NewDuplicateGuard(similarity.Score, DefaultSimilarityThreshold)
	assert.True(t, guard.Check("anything at all", nil))
}

func TestDuplicateGuardRejectsNearDuplicate(t *testing.T) {
	guard := NewDuplicateGuard(similarity.Score, DefaultSimilarityThreshold)
	existing := []string{"I love my morning coffee by the window"}

	assert.False(t, guard.Check("I love my morning coffee near the window", existing))
	assert.True(t, guard.Check("Tax policy should favor renewable energy", existing))
}

func TestDuplicateGuardExactThresholdAccepts(t *testing.T) {
	// Rejection requires a score strictly above the threshold.
	guard := NewDuplicateGuard(func(a, b string) float64 { return 0.8 }, 0.8)
	assert.True(t, guard.Check("candidate", []string{"existing"}))
}

func TestDuplicateGuardShortCircuits(t *testing.T) {
	calls := 0
	guard := NewDuplicateGuard(func(a, b string) float64 {
		calls++
		return 1
	}, 0.8)

	guard.Check("candidate", []string{"first", "second", "third"})
	assert.Equal(t, 1, calls)
}
