package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuotaFreshUser(t *testing.T) {
	now := time.Date(2025, 8, 12, 14, 0, 0, 0, time.UTC)

	decision := EvaluateQuota(nil, 0, DefaultDailyCap, now)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 1, decision.NextCount)
}

func TestQuotaSameDayCounts(t *testing.T) {
	now := time.Date(2025, 8, 12, 14, 0, 0, 0, time.UTC)
	earlier := now.Add(-3 * time.Hour)

	decision := EvaluateQuota(&earlier, 4, DefaultDailyCap, now)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 5, decision.NextCount)

	decision = EvaluateQuota(&earlier, 5, DefaultDailyCap, now)
	assert.False(t, decision.Allowed)
}

func TestQuotaResetsOnDayRollover(t *testing.T) {
	lastNight := time.Date(2025, 8, 12, 23, 59, 0, 0, time.UTC)
	justPastMidnight := time.Date(2025, 8, 13, 0, 1, 0, 0, time.UTC)

	// Stored count is stale: the calendar day changed two minutes later.
	decision := EvaluateQuota(&lastNight, 5, DefaultDailyCap, justPastMidnight)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 1, decision.NextCount)
}

func TestQuotaIgnoresStoredCountFromPastDays(t *testing.T) {
	lastWeek := time.Date(2025, 8, 5, 10, 0, 0, 0, time.UTC)
	now := time.Date(2025, 8, 12, 14, 0, 0, 0, time.UTC)

	decision := EvaluateQuota(&lastWeek, 3, DefaultDailyCap, now)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 1, decision.NextCount)
}

func TestQuotaCustomCap(t *testing.T) {
	now := time.Date(2025, 8, 12, 14, 0, 0, 0, time.UTC)
	earlier := now.Add(-time.Hour)

	decision := EvaluateQuota(&earlier, 1, 2, now)
	assert.True(t, decision.Allowed)

	decision = EvaluateQuota(&earlier, 2, 2, now)
	assert.False(t, decision.Allowed)
}
