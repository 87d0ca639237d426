package redis

import (
	"context"
	"testing"
	"time"

	"answerhub-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type countingSource struct {
	prompt domain.Prompt
	err    error
	calls  int
}

func (s *countingSource) FirstOpenPrompt(context.Context) (domain.Prompt, error) {
	s.calls++
	return s.prompt, s.err
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

func TestPromptCacheServesFromRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	source := &countingSource{prompt: domain.Prompt{ID: "p1", Text: "Why Go?", Topic: "General"}}
	cache := NewPromptCache(newClient(mr), source, time.Minute)

	prompt, err := cache.FirstOpenPrompt(context.Background())
	if err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	if prompt.ID != "p1" {
		t.Fatalf("prompt = %+v", prompt)
	}
	if source.calls != 1 {
		t.Fatalf("expected source called once, got %d", source.calls)
	}

	// Second call should hit cache, source not incremented.
	_, _ = cache.FirstOpenPrompt(context.Background())
	if source.calls != 1 {
		t.Fatalf("expected cache hit, source calls=%d", source.calls)
	}
}

func TestPromptCacheForgetForcesReload(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	source := &countingSource{prompt: domain.Prompt{ID: "p1", Text: "Why Go?", Topic: "General"}}
	cache := NewPromptCache(newClient(mr), source, time.Minute)

	if _, err := cache.FirstOpenPrompt(context.Background()); err != nil {
		t.Fatalf("warm lookup: %v", err)
	}

	cache.Forget(context.Background())
	source.prompt = domain.Prompt{ID: "p2", Text: "What next?", Topic: "General"}

	prompt, err := cache.FirstOpenPrompt(context.Background())
	if err != nil {
		t.Fatalf("lookup after forget: %v", err)
	}
	if prompt.ID != "p2" {
		t.Fatalf("stale prompt after forget: %+v", prompt)
	}
	if source.calls != 2 {
		t.Fatalf("expected source reloaded, calls=%d", source.calls)
	}
}

func TestPromptCachePropagatesEmptyPool(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	source := &countingSource{err: domain.ErrPromptNotFound}
	cache := NewPromptCache(newClient(mr), source, time.Minute)

	if _, err := cache.FirstOpenPrompt(context.Background()); err != domain.ErrPromptNotFound {
		t.Fatalf("err = %v, want ErrPromptNotFound", err)
	}
	// Misses are not cached.
	if _, err := cache.FirstOpenPrompt(context.Background()); err != domain.ErrPromptNotFound {
		t.Fatalf("err = %v, want ErrPromptNotFound", err)
	}
	if source.calls != 2 {
		t.Fatalf("expected two source calls, got %d", source.calls)
	}
}
