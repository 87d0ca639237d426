package domain

import "time"

// PointReason identifies why a ledger entry was appended.
type PointReason string

const (
	// ReasonAnswerSubmission is awarded when an answer passes all submission checks.
	ReasonAnswerSubmission PointReason = "Answer Submission"
	// ReasonGoodAnswer is awarded when an admin validates an answer.
	ReasonGoodAnswer PointReason = "Good Answer"
)

// User is a participant in the answer pool.
type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Points           int        `json:"points"`
	DailyAnswerCount int        `json:"dailyAnswerCount"`
	LastAnswerDate   *time.Time `json:"lastAnswerDate,omitempty"`
	IsAdmin          bool       `json:"isAdmin"`
}

// Prompt is a question presented to users for open-ended answering.
// IsAnswered moves false→true exactly once and never reverts.
type Prompt struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Topic      string `json:"topic"`
	IsAnswered bool   `json:"isAnswered"`
}

// SubmittedAnswer is a committed answer to a prompt. IsGoodAnswer moves
// false→true only through admin validation.
type SubmittedAnswer struct {
	ID           string    `json:"id"`
	Text         string    `json:"text"`
	PromptID     string    `json:"promptId"`
	UserID       string    `json:"userId"`
	IsGoodAnswer bool      `json:"isGoodAnswer"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PointTransaction is an immutable ledger entry. Entries are append-only;
// a user's cached Points total always equals the sum of their amounts.
type PointTransaction struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Amount    int         `json:"amount"`
	Reason    PointReason `json:"reason"`
	Timestamp time.Time   `json:"timestamp"`
}

// UserStanding is the caller-facing view of a user's progress. The daily
// count reads as zero once the stored count belongs to a previous day.
type UserStanding struct {
	UserID           string     `json:"userId"`
	Email            string     `json:"email"`
	Points           int        `json:"points"`
	DailyAnswerCount int        `json:"dailyAnswerCount"`
	LastAnswerDate   *time.Time `json:"lastAnswerDate,omitempty"`
	IsAdmin          bool       `json:"isAdmin"`
}

// DatasetEntry pairs a prompt with one of its validated answers for export.
type DatasetEntry struct {
	Instruction string `json:"instruction"`
	Output      string `json:"output"`
}
