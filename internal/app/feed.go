package app

import (
	"sync"
	"time"
)

// EventKind distinguishes feed events.
type EventKind string

const (
	EventAnswerSubmitted EventKind = "answerSubmitted"
	EventAnswerValidated EventKind = "answerValidated"
)

// Event describes a committed engine operation for live observers.
type Event struct {
	Kind     EventKind `json:"kind"`
	AnswerID string    `json:"answerId"`
	PromptID string    `json:"promptId,omitempty"`
	UserID   string    `json:"userId"`
	Awarded  int       `json:"awarded"`
	At       time.Time `json:"at"`
}

// Feed fans out engine events to subscribers. Slow subscribers have their
// oldest pending event dropped rather than blocking the publisher.
type Feed struct {
	mu          sync.Mutex
	subscribers map[chan Event]struct{}
}

func NewFeed() *Feed {
	return &Feed{subscribers: make(map[chan Event]struct{})}
}

// Subscribe returns a channel of events and a cancel function the caller
// must invoke to avoid leaks.
func (f *Feed) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers an event to all current subscribers.
func (f *Feed) Publish(event Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- event:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}
