// Package lifecycle runs shutdown hooks in a controlled order.
//
// Components register a named hook with a priority at wiring time; on
// shutdown the hooks run one at a time, highest priority first, each
// under its own time box inside the caller's shared deadline. A hook
// that will not return is abandoned with a warning so the ones after it
// still get their chance.
package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vk/wardengo/internal/ctxlog"
)

const defaultHookTimeout = 5 * time.Second

type hook struct {
	name     string
	priority int
	seq      int
	fn       func(ctx context.Context) error
}

// Option tunes Hooks.
type Option func(*Hooks)

// WithHookTimeout sets the per-hook time box.
func WithHookTimeout(d time.Duration) Option {
	return func(h *Hooks) { h.perHook = d }
}

// Hooks collects shutdown hooks.
type Hooks struct {
	mu      sync.Mutex
	hooks   []hook
	perHook time.Duration
	ran     bool
}

// New creates an empty hook set.
func New(opts ...Option) *Hooks {
	h := &Hooks{perHook: defaultHookTimeout}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register adds a hook. Registration is startup wiring, so an empty name
// or a nil function panics.
func (h *Hooks) Register(name string, priority int, fn func(ctx context.Context) error) {
	if name == "" {
		panic("lifecycle: hook name cannot be empty")
	}
	if fn == nil {
		panic(fmt.Sprintf("lifecycle: nil function for hook %q", name))
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook{name: name, priority: priority, seq: len(h.hooks), fn: fn})
}

// Shutdown runs every hook, highest priority first; hooks sharing a
// priority run in registration order. Each hook gets the smaller of the
// per-hook box and whatever remains of ctx. Errors and abandonments are
// collected, never fatal. A second Shutdown is a no-op.
func (h *Hooks) Shutdown(ctx context.Context) []error {
	h.mu.Lock()
	if h.ran {
		h.mu.Unlock()
		return nil
	}
	h.ran = true
	hooks := make([]hook, len(h.hooks))
	copy(hooks, h.hooks)
	perHook := h.perHook
	h.mu.Unlock()

	sort.SliceStable(hooks, func(i, j int) bool {
		if hooks[i].priority != hooks[j].priority {
			return hooks[i].priority > hooks[j].priority
		}
		return hooks[i].seq < hooks[j].seq
	})

	logger := ctxlog.FromContext(ctx)
	var errs []error

	for _, hk := range hooks {
		hctx, cancel := context.WithTimeout(ctx, perHook)

		start := time.Now()
		done := make(chan error, 1)
		go func(hk hook) {
			done <- hk.fn(hctx)
		}(hk)

		select {
		case err := <-done:
			if err != nil {
				logger.Warn("Shutdown hook failed.", "hook", hk.name, "error", err, "took", time.Since(start))
				errs = append(errs, fmt.Errorf("hook %q: %w", hk.name, err))
			} else {
				logger.Debug("Shutdown hook finished.", "hook", hk.name, "took", time.Since(start))
			}
		case <-hctx.Done():
			// The goroutine is abandoned; waiting longer would starve the
			// hooks behind this one.
			logger.Warn("Shutdown hook abandoned.", "hook", hk.name, "after", time.Since(start))
			errs = append(errs, fmt.Errorf("hook %q: %w", hk.name, hctx.Err()))
		}
		cancel()
	}

	return errs
}

// Len returns the number of registered hooks.
func (h *Hooks) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.hooks)
}
