// Package redis caches the next open prompt so the hot
// GET /api/prompts/next path doesn't hammer the store.
package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"answerhub-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const openPromptKey = "prompt:open:next"

// PromptSource is the store-side lookup the cache falls back to.
type PromptSource interface {
	FirstOpenPrompt(ctx context.Context) (domain.Prompt, error)
}

// PromptCache implements app.OpenPromptSource over Redis. Entries expire on
// a short TTL and the engine forgets the key whenever a prompt closes, so a
// closed prompt is served for at most one TTL window in the worst case.
type PromptCache struct {
	client *redis.Client
	source PromptSource
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewPromptCache(client *redis.Client, source PromptSource, ttl time.Duration) *PromptCache {
	return &PromptCache{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *PromptCache) FirstOpenPrompt(ctx context.Context) (domain.Prompt, error) {
	if prompt, ok := c.cached(ctx); ok {
		return prompt, nil
	}

	result, err, _ := c.sf.Do(openPromptKey, func() (interface{}, error) {
		// Re-check in case another goroutine filled the key.
		if prompt, ok := c.cached(ctx); ok {
			return prompt, nil
		}

		prompt, err := c.source.FirstOpenPrompt(ctx)
		if err != nil {
			return domain.Prompt{}, err
		}

		if data, err := json.Marshal(prompt); err == nil {
			_ = c.client.Set(ctx, openPromptKey, data, c.ttlWithJitter()).Err()
		}
		return prompt, nil
	})
	if err != nil {
		return domain.Prompt{}, err
	}
	return result.(domain.Prompt), nil
}

// Forget drops the cached prompt; the next lookup hits the store.
func (c *PromptCache) Forget(ctx context.Context) {
	_ = c.client.Del(ctx, openPromptKey).Err()
}

func (c *PromptCache) cached(ctx context.Context) (domain.Prompt, bool) {
	data, err := c.client.Get(ctx, openPromptKey).Bytes()
	if err != nil {
		return domain.Prompt{}, false
	}
	var prompt domain.Prompt
	if err := json.Unmarshal(data, &prompt); err != nil {
		return domain.Prompt{}, false
	}
	return prompt, true
}

func (c *PromptCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
