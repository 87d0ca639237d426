package similarity

import "testing"

func TestIdenticalStrings(t *testing.T) {
	if got := Score("hello world", "hello world"); got != 1 {
		t.Fatalf("expected 1, got %f", got)
	}
	// Whitespace differences do not matter.
	if got := Score("hello  world", "helloworld"); got != 1 {
		t.Fatalf("expected 1 ignoring whitespace, got %f", got)
	}
}

func TestDisjointStrings(t *testing.T) {
	if got := Score("abcd", "wxyz"); got != 0 {
		t.Fatalf("expected 0, got %f", got)
	}
}

func TestShortStrings(t *testing.T) {
	if got := Score("a", "ab"); got != 0 {
		t.Fatalf("expected 0 for sub-bigram input, got %f", got)
	}
	if got := Score("a", "a"); got != 1 {
		t.Fatalf("identical short strings still score 1, got %f", got)
	}
	if got := Score("", "anything"); got != 0 {
		t.Fatalf("expected 0 for empty input, got %f", got)
	}
}

func TestSymmetric(t *testing.T) {
	a, b := "morning coffee", "coffee in the morning"
	if Score(a, b) != Score(b, a) {
		t.Fatalf("expected symmetric scores, got %f and %f", Score(a, b), Score(b, a))
	}
}

func TestNearDuplicateAboveThreshold(t *testing.T) {
	a := "I love my morning coffee by the window"
	b := "I love my morning coffee near the window"
	if got := Score(a, b); got <= 0.8 {
		t.Fatalf("expected score above 0.8, got %f", got)
	}
}

func TestUnrelatedBelowThreshold(t *testing.T) {
	a := "I love my morning coffee by the window"
	b := "Tax policy should favor renewable energy"
	if got := Score(a, b); got > 0.8 {
		t.Fatalf("expected score at most 0.8, got %f", got)
	}
}
