package middleware

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/wardengo/internal/handler"
	"github.com/vk/wardengo/internal/pipeline"
	"github.com/vk/wardengo/internal/route"
	"golang.org/x/sync/semaphore"
)

// Throttle caps in-flight executions per route. Overflow is denied
// immediately: queueing callers behind a slow handler only trades an
// honest "busy" for a pile-up.
type Throttle struct {
	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
}

// NewThrottle creates an empty Throttle.
func NewThrottle() *Throttle {
	return &Throttle{
		sems: make(map[string]*semaphore.Weighted),
	}
}

func (t *Throttle) semaphore(key string, limit int) *semaphore.Weighted {
	t.mu.Lock()
	defer t.mu.Unlock()
	sem, ok := t.sems[key]
	if !ok {
		sem = semaphore.NewWeighted(int64(limit))
		t.sems[key] = sem
	}
	return sem
}

// Middleware builds the concurrency gate. The semaphore is held across the
// rest of the chain and the handler.
func (t *Throttle) Middleware() pipeline.Middleware {
	return func(ctx context.Context, call *handler.Context, rt route.Route, next pipeline.Next) error {
		limit := rt.Gate().MaxConcurrent
		if limit <= 0 {
			return next()
		}

		// The limit is part of the key so a reload that changes
		// max_concurrent gets a fresh semaphore; holders of the old one
		// drain on their own.
		key := fmt.Sprintf("%s/%s.%s/%d",
			rt.RouteKind(), rt.OwnerModule(), rt.RouteName(), limit)

		sem := t.semaphore(key, limit)
		if !sem.TryAcquire(1) {
			return deny(ctx, call, rt, "throttle",
				"Too many of these are running right now. Try again shortly.")
		}
		defer sem.Release(1)
		return next()
	}
}
