package classify

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cardsavvy/cardsavvy/internal/rewards"
)

const cachePrefix = "classify:v1:"

// Cached memoizes classifier verdicts in Redis keyed by the normalized
// merchant string. Cache failures fail open to the inner classifier; a broken
// cache must never turn into a classification error.
type Cached struct {
	inner  rewards.Classifier
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCached wraps inner with a Redis read-through cache.
func NewCached(inner rewards.Classifier, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *Cached {
	return &Cached{inner: inner, cache: cache, ttl: ttl, logger: logger}
}

type cachedVerdict struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// Classify implements rewards.Classifier.
func (c *Cached) Classify(ctx context.Context, merchant string) (rewards.Classification, error) {
	key := cacheKey(merchant)

	raw, err := c.cache.Get(ctx, key).Result()
	if err == nil {
		var v cachedVerdict
		if jsonErr := json.Unmarshal([]byte(raw), &v); jsonErr == nil {
			if category := rewards.Category(v.Category); category.Valid() {
				return rewards.Classification{Category: category, Confidence: v.Confidence}, nil
			}
		}
	} else if err != redis.Nil {
		c.logger.Warn("classification cache read failed", "merchant", merchant, "error", err)
	}

	verdict, err := c.inner.Classify(ctx, merchant)
	if err != nil {
		return rewards.Classification{}, err
	}

	payload, err := json.Marshal(cachedVerdict{Category: string(verdict.Category), Confidence: verdict.Confidence})
	if err == nil {
		if err := c.cache.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("classification cache write failed", "merchant", merchant, "error", err)
		}
	}

	return verdict, nil
}

func cacheKey(merchant string) string {
	return cachePrefix + strings.ToLower(strings.Join(strings.Fields(merchant), " "))
}
