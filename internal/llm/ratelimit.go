package llm

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/climbr/internal/model"
)

// rateLimiter is a token bucket refilled continuously at capacity tokens per minute.
type rateLimiter struct {
	lastRefill time.Time
	now        func() time.Time
	tokens     float64
	capacity   float64
	mu         sync.Mutex
}

func newRateLimiter(requestsPerMinute int) *rateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	return &rateLimiter{
		tokens:     float64(requestsPerMinute),
		capacity:   float64(requestsPerMinute),
		lastRefill: time.Now(),
		now:        time.Now,
	}
}

// reserve takes a token if one is available, otherwise it reports how long
// until the next one.
func (rl *rateLimiter) reserve() (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	elapsed := now.Sub(rl.lastRefill)
	rl.lastRefill = now
	rl.tokens += elapsed.Minutes() * rl.capacity
	if rl.tokens > rl.capacity {
		rl.tokens = rl.capacity
	}

	if rl.tokens >= 1 {
		rl.tokens--
		return true, 0
	}
	missing := 1 - rl.tokens
	return false, time.Duration(missing / rl.capacity * float64(time.Minute))
}

// wait blocks until a token is available or the context is canceled.
func (rl *rateLimiter) wait(ctx context.Context) error {
	for {
		ok, delay := rl.reserve()
		if ok {
			return nil
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("rate limiter canceled: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

type rateLimitedClient struct {
	Client
	limiter *rateLimiter
}

// RateLimited wraps client so that at most requestsPerMinute Describe calls
// start per minute. Callers over the limit wait their turn.
func RateLimited(client Client, requestsPerMinute int) Client {
	return &rateLimitedClient{Client: client, limiter: newRateLimiter(requestsPerMinute)}
}

func (c *rateLimitedClient) Describe(ctx context.Context, img model.Image, prompt string) (string, error) {
	start := time.Now()
	if err := c.limiter.wait(ctx); err != nil {
		return "", err
	}
	if waited := time.Since(start); waited > time.Second {
		slog.Debug("Vision request delayed by rate limit", "provider", c.Name(), "waited", waited)
	}
	return c.Client.Describe(ctx, img, prompt)
}
