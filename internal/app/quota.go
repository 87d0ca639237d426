package app

import "time"

// DefaultDailyCap is the number of answers a user may submit per calendar day.
const DefaultDailyCap = 5

// QuotaDecision is the outcome of evaluating a user's daily quota.
type QuotaDecision struct {
	Allowed bool
	// NextCount is what the persisted daily count becomes if the submission
	// is committed. It accounts for day rollover resetting the count.
	NextCount int
}

// EvaluateQuota decides whether a user may submit another answer at now.
// A lastAnswerDate on a previous calendar day (or absent) means the stored
// count no longer applies and the effective count is zero. A non-positive
// cap falls back to DefaultDailyCap.
func EvaluateQuota(lastAnswerDate *time.Time, dailyCount, cap int, now time.Time) QuotaDecision {
	if cap <= 0 {
		cap = DefaultDailyCap
	}
	effective := 0
	if lastAnswerDate != nil && dayStart(lastAnswerDate.In(now.Location())).Equal(dayStart(now)) {
		effective = dailyCount
	}
	return QuotaDecision{
		Allowed:   effective < cap,
		NextCount: effective + 1,
	}
}

// dayStart truncates t to midnight in t's location.
func dayStart(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
