package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/vk/wardengo/internal/handler"
	"github.com/vk/wardengo/internal/pipeline"
	"github.com/vk/wardengo/internal/route"
	"golang.org/x/time/rate"
)

// Cooldown tracks one rate limiter per (route, user) pair. Limiters live
// in an expiring LRU so a quiet user's entry ages out instead of pinning
// memory. The cache bounds memory, not correctness: its idle ttl must
// exceed the longest route cooldown, or an evicted cooldown is forgotten
// early.
type Cooldown struct {
	mu       sync.Mutex
	limiters *expirable.LRU[string, *rate.Limiter]
}

// NewCooldown sizes the limiter cache. Zero capacity means unlimited;
// idleTTL is how long an untouched entry survives.
func NewCooldown(capacity int, idleTTL time.Duration) *Cooldown {
	return &Cooldown{
		limiters: expirable.NewLRU[string, *rate.Limiter](capacity, nil, idleTTL),
	}
}

// limiter returns the limiter behind a key, creating it on first use. The
// mutex covers the get-or-create race; the LRU itself is safe for
// concurrent use.
func (c *Cooldown) limiter(key string, window time.Duration) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	if lim, ok := c.limiters.Get(key); ok {
		return lim
	}
	lim := rate.NewLimiter(rate.Every(window), 1)
	c.limiters.Add(key, lim)
	return lim
}

// Middleware builds the cooldown gate: one invocation per window per user
// and route. A second invocation inside the window is denied with the
// remaining wait.
func (c *Cooldown) Middleware() pipeline.Middleware {
	return func(ctx context.Context, call *handler.Context, rt route.Route, next pipeline.Next) error {
		window := rt.Gate().Cooldown
		if window <= 0 {
			return next()
		}
		user := actorID(call)
		if user == "" {
			return next()
		}

		// The window is part of the key so a reload that tunes the
		// cooldown starts fresh instead of reshaping live limiters.
		key := fmt.Sprintf("%s/%s.%s/%s/%s",
			rt.RouteKind(), rt.OwnerModule(), rt.RouteName(), window, user)

		res := c.limiter(key, window).Reserve()
		if wait := res.Delay(); wait > 0 {
			res.Cancel()
			human := wait.Round(time.Second)
			if human < time.Second {
				human = time.Second
			}
			return deny(ctx, call, rt, "cooldown",
				fmt.Sprintf("Slow down. Try again in %s.", human))
		}
		return next()
	}
}
