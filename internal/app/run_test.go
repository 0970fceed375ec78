package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/wardengo/internal/handler"
	"github.com/vk/wardengo/internal/platform"
)

// echoModule is the minimal feature module the lifecycle tests run: one
// command that repeats its text option, one task that leaves a trace.
type echoModule struct{}

func (echoModule) Name() string { return "echo" }

func (echoModule) Register(r *handler.Registry) {
	r.Register("echo.say", func(ctx context.Context, call *handler.Context) error {
		text, _ := call.ParamString("text")
		return call.Reply(ctx, "heard: "+text)
	})
	r.Register("echo.trace", func(ctx context.Context, call *handler.Context) error {
		return call.Send(ctx, "trace", "tick")
	})
}

func writeEchoModule(t *testing.T, root string) {
	t.Helper()
	writeFile(t, filepath.Join(root, "echo", "module.hcl"), `description = "Echo routes for lifecycle tests."`+"\n")
	writeFile(t, filepath.Join(root, "echo", "commands", "say.hcl"), `command "say" {
  description = "Repeats the text option."
  handler     = "echo.say"
}
`)
	writeFile(t, filepath.Join(root, "echo", "tasks", "trace.hcl"), `task "trace" {
  handler      = "echo.trace"
  every        = "1h"
  run_on_start = true
}
`)
}

func sayEvent(id, text string) *platform.Event {
	return &platform.Event{
		Name:    platform.EventInteractionCreate,
		GuildID: "g1",
		Member:  &platform.Member{User: platform.User{ID: "u1"}},
		Interaction: &platform.Interaction{
			ID:      id,
			Kind:    platform.InteractionCommand,
			Command: "say",
			Options: map[string]any{"text": text},
		},
	}
}

func TestRun_DispatchesUntilStopped(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeEchoModule(t, root)
	testApp, gw, logs := SetupAppTest(t, Options{ModulesRoot: root, NoWatch: true}, echoModule{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- testApp.Run(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "🚀 Warden is up.")
	}, 2*time.Second, 10*time.Millisecond, "startup milestone never logged")

	require.NoError(t, gw.Emit(ctx, sayEvent("ic-1", "hello")))
	require.Eventually(t, func() bool {
		reply, ok := gw.InteractionReply("ic-1")
		return ok && reply.Content == "heard: hello"
	}, 2*time.Second, 10*time.Millisecond, "command dispatch never answered")

	// The run_on_start task fires once as the scheduler comes up.
	require.Eventually(t, func() bool {
		return len(gw.ChannelLog("trace")) > 0
	}, 2*time.Second, 10*time.Millisecond, "task tick never ran")

	families, err := testApp.Gatherer().Gather()
	require.NoError(t, err)
	seen := make(map[string]bool, len(families))
	for _, f := range families {
		seen[f.GetName()] = true
	}
	assert.True(t, seen["warden_dispatches_total"])
	assert.True(t, seen["warden_modules_loaded"])
	assert.True(t, seen["warden_routes_live"])

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after the stop signal")
	}
	assert.Contains(t, logs.String(), "Stop signal received.")
	assert.Contains(t, logs.String(), "🏁 Warden stopped.")
}

func TestRun_StopsWhenEventSourceCloses(t *testing.T) {
	t.Parallel()

	testApp, gw, logs := SetupAppTest(t, Options{ModulesRoot: t.TempDir(), NoWatch: true}, echoModule{})

	done := make(chan error, 1)
	go func() { done <- testApp.Run(context.Background()) }()

	require.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "🚀 Warden is up.")
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, gw.Close(context.Background()))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after the source closed")
	}
	assert.Contains(t, logs.String(), "Event source closed.")
}

func TestRun_FailsWhenModulesRootIsAFile(t *testing.T) {
	t.Parallel()

	notADir := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(notADir, []byte("x"), 0o644))

	testApp, _, _ := SetupAppTest(t, Options{ModulesRoot: notADir, NoWatch: true}, echoModule{})

	err := testApp.Run(context.Background())
	require.ErrorContains(t, err, "loading modules")
}

func TestRun_MissingModulesRootIsEmptyNotFatal(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "never-created")
	testApp, gw, logs := SetupAppTest(t, Options{ModulesRoot: root, NoWatch: true}, echoModule{})

	done := make(chan error, 1)
	go func() { done <- testApp.Run(context.Background()) }()

	require.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "🚀 Warden is up.")
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, gw.Close(context.Background()))
	require.NoError(t, <-done)
	assert.Contains(t, logs.String(), "nothing to discover")
}
