package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/wardengo/internal/platform"
	"github.com/vk/wardengo/internal/registry"
	"github.com/vk/wardengo/internal/route"
)

// tickRecorder collects submitted tick events.
type tickRecorder struct {
	mu     sync.Mutex
	events []*platform.Event
	ch     chan string
}

func newTickRecorder() *tickRecorder {
	return &tickRecorder{ch: make(chan string, 64)}
}

func (r *tickRecorder) Submit(ctx context.Context, ev *platform.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()

	name, _ := ev.Payload[platform.TaskPayloadKey].(string)
	select {
	case r.ch <- name:
	default:
	}
}

func (r *tickRecorder) count(task string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, ev := range r.events {
		if name, _ := ev.Payload[platform.TaskPayloadKey].(string); name == task {
			n++
		}
	}
	return n
}

func (r *tickRecorder) waitFor(t *testing.T, task string) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case name := <-r.ch:
			if name == task {
				return
			}
		case <-deadline:
			t.Fatalf("no tick for task %q", task)
		}
	}
}

func taskFile(name string, every time.Duration, gen int, runOnStart bool) *route.File {
	return &route.File{Tasks: []*route.Task{{
		Meta:       route.Meta{Module: "moderation", Generation: gen},
		Name:       name,
		Handler:    "moderation.sweep",
		Every:      every,
		RunOnStart: runOnStart,
	}}}
}

func TestRunner_TicksOnInterval(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(taskFile("sweep_expired", 20*time.Millisecond, 1, false)))

	rec := newTickRecorder()
	r := New(reg, rec)
	r.Start(context.Background())
	defer r.Stop()

	rec.waitFor(t, "sweep_expired")
	rec.waitFor(t, "sweep_expired")

	ev := func() *platform.Event {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return rec.events[0]
	}()
	assert.Equal(t, platform.EventTick, ev.Name)
	assert.Equal(t, "sweep_expired", ev.Payload[platform.TaskPayloadKey])
	assert.Equal(t, []string{"sweep_expired"}, r.Running())
}

func TestRunner_RunOnStartFiresImmediately(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(taskFile("report", time.Hour, 1, true)))

	rec := newTickRecorder()
	r := New(reg, rec)
	r.Start(context.Background())
	defer r.Stop()

	// The interval is an hour; only run_on_start can deliver this.
	rec.waitFor(t, "report")
}

func TestRunner_SyncStopsRemovedTasks(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(taskFile("sweep_expired", 15*time.Millisecond, 1, false)))

	rec := newTickRecorder()
	r := New(reg, rec)
	r.Start(context.Background())
	defer r.Stop()

	rec.waitFor(t, "sweep_expired")

	reg.UnregisterModule("moderation")
	r.Sync()
	assert.Empty(t, r.Running())

	// Whatever was in flight lands, then the count stops moving.
	time.Sleep(50 * time.Millisecond)
	settled := rec.count("sweep_expired")
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, settled, rec.count("sweep_expired"))
}

func TestRunner_SyncRestartsOnNewGeneration(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(taskFile("sweep_expired", time.Hour, 1, false)))

	rec := newTickRecorder()
	r := New(reg, rec)
	r.Start(context.Background())
	defer r.Stop()

	// Nothing ticks on an hour-long interval.
	assert.Equal(t, []string{"sweep_expired"}, r.Running())

	// A reload rewrites the task with a short interval under a new
	// generation; Sync must swap the loop.
	require.NoError(t, reg.ReplaceModule("moderation", taskFile("sweep_expired", 15*time.Millisecond, 2, false)))
	r.Sync()

	rec.waitFor(t, "sweep_expired")
}

func TestRunner_SyncKeepsUnchangedGeneration(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(taskFile("report", time.Hour, 1, true)))

	rec := newTickRecorder()
	r := New(reg, rec)
	r.Start(context.Background())
	defer r.Stop()

	rec.waitFor(t, "report")

	// Same generation: the loop survives Sync, so run_on_start does not
	// fire again.
	r.Sync()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, rec.count("report"))
}

func TestRunner_StopEndsLoops(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(taskFile("sweep_expired", 15*time.Millisecond, 1, false)))

	rec := newTickRecorder()
	r := New(reg, rec)
	r.Start(context.Background())

	rec.waitFor(t, "sweep_expired")
	r.Stop()

	settled := rec.count("sweep_expired")
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, settled, rec.count("sweep_expired"))
	assert.Empty(t, r.Running())
}

func TestRunner_SyncBeforeStartIsANoOp(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(taskFile("sweep_expired", 10*time.Millisecond, 1, false)))

	r := New(reg, newTickRecorder())
	r.Sync()
	assert.Empty(t, r.Running())
}
