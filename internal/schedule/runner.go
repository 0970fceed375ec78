// Package schedule drives task routes on their declared intervals.
//
// Each live task gets one goroutine looping on a ticker and submitting a
// synthetic tick event to the dispatcher; the task's handler then runs
// through the ordinary dispatch path, pipeline included. Loops are keyed
// by task name and generation, so a module reload retires the old loops
// and starts fresh ones without touching tasks of other modules.
package schedule

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vk/wardengo/internal/ctxlog"
	"github.com/vk/wardengo/internal/platform"
	"github.com/vk/wardengo/internal/registry"
	"github.com/vk/wardengo/internal/route"
)

// Submitter accepts tick events for dispatch. *dispatch.Dispatcher
// satisfies it.
type Submitter interface {
	Submit(ctx context.Context, ev *platform.Event)
}

// loop is one running task goroutine.
type loop struct {
	cancel     context.CancelFunc
	generation int
}

// Runner owns the task goroutines.
type Runner struct {
	registry *registry.Registry
	submit   Submitter

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	loops   map[string]*loop
	wg      sync.WaitGroup
	started bool
}

// New creates a Runner over the registry's task store.
func New(reg *registry.Registry, submit Submitter) *Runner {
	return &Runner{
		registry: reg,
		submit:   submit,
		loops:    make(map[string]*loop),
	}
}

// Start brings up a loop for every registered task. ctx bounds the whole
// runner: canceling it stops every loop.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.ctx, r.cancel = context.WithCancel(ctx)
	r.started = true
	r.mu.Unlock()

	r.Sync()
	ctxlog.FromContext(ctx).Info("Task runner started.", "tasks", len(r.Running()))
}

// Sync reconciles the running loops against the registry's current tasks.
// A task keeps its loop only while both name and generation match; a
// reload bumps the generation, so its module's loops restart with the new
// schedule. The app subscribes Sync to the loader's reload callback.
func (r *Runner) Sync() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return
	}

	tasks := r.registry.Tasks()
	live := make(map[string]*route.Task, len(tasks))
	for _, t := range tasks {
		live[t.Name] = t
	}

	for name, lp := range r.loops {
		t, ok := live[name]
		if ok && t.Generation == lp.generation {
			continue
		}
		lp.cancel()
		delete(r.loops, name)
	}

	for name, t := range live {
		if _, ok := r.loops[name]; ok {
			continue
		}
		r.startLocked(name, t)
	}
}

// Stop cancels every loop and waits for them to exit. In-flight dispatches
// are the dispatcher's to drain, not the runner's.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	r.cancel()
	r.loops = make(map[string]*loop)
	r.started = false
	r.mu.Unlock()

	r.wg.Wait()
}

// Running returns the names of tasks with a live loop, sorted.
func (r *Runner) Running() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.loops))
	for name := range r.loops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Runner) startLocked(name string, t *route.Task) {
	ctx, cancel := context.WithCancel(r.ctx)
	r.loops[name] = &loop{cancel: cancel, generation: t.Generation}

	r.wg.Add(1)
	go r.runLoop(ctx, t)
}

func (r *Runner) runLoop(ctx context.Context, t *route.Task) {
	defer r.wg.Done()

	logger := ctxlog.FromContext(ctx).With("task", t.Name, "module", t.Module, "every", t.Every)
	logger.Debug("Task loop started.")

	if t.RunOnStart {
		r.emit(ctx, t)
	}

	ticker := time.NewTicker(t.Every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Task loop stopped.")
			return
		case <-ticker.C:
			r.emit(ctx, t)
		}
	}
}

func (r *Runner) emit(ctx context.Context, t *route.Task) {
	r.submit.Submit(ctx, &platform.Event{
		Name:       platform.EventTick,
		Payload:    map[string]any{platform.TaskPayloadKey: t.Name},
		ReceivedAt: time.Now(),
	})
}
