package domain

import "errors"

var (
	// ErrUnauthorized is returned when no valid credential accompanies a request.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when an authenticated caller lacks admin rights.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidInput is returned when the answer text is empty after trimming.
	ErrInvalidInput = errors.New("answer text cannot be empty")
	// ErrUserNotFound indicates the submitting user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrPromptNotFound indicates the target prompt does not exist.
	ErrPromptNotFound = errors.New("prompt not found")
	// ErrAnswerNotFound indicates the answer to validate does not exist.
	ErrAnswerNotFound = errors.New("answer not found")
	// ErrQuotaExceeded is returned when the daily answer limit is reached.
	ErrQuotaExceeded = errors.New("daily answer limit reached")
	// ErrDuplicateAnswer is returned when a near-duplicate answer already exists.
	ErrDuplicateAnswer = errors.New("similar answer already submitted")
	// ErrPromptClosed is returned only when closed-prompt submissions are disabled.
	ErrPromptClosed = errors.New("prompt is no longer accepting answers")
	// ErrStoreUnavailable wraps transient storage failures; callers may retry.
	ErrStoreUnavailable = errors.New("store unavailable")
)
