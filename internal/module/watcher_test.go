package module

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_ReloadsOnFileChange(t *testing.T) {
	root := t.TempDir()
	writeModerationModule(t, root)
	l, reg := newTestLoader(t, root, WithDebounce(25*time.Millisecond))
	ctx, cancel := context.WithCancel(quietContext())
	defer cancel()

	require.NoError(t, l.Load(ctx, "moderation"))

	reloaded := make(chan string, 4)
	l.OnReload(func(name string) { reloaded <- name })

	require.NoError(t, l.Watch(ctx))

	writeTestFile(t, filepath.Join(root, "moderation", "commands", "warn.hcl"), `
command "warn" {
  handler  = "moderation.warn"
  cooldown = "45s"
}
`)

	select {
	case name := <-reloaded:
		assert.Equal(t, "moderation", name)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher never reloaded the module")
	}

	cmd, ok := reg.FindCommand("warn", "")
	require.True(t, ok)
	assert.Equal(t, 45*time.Second, cmd.Cooldown)
	rec, _ := l.Record("moderation")
	assert.Equal(t, 2, rec.Generation)
}

func TestWatch_CoalescesEventBursts(t *testing.T) {
	root := t.TempDir()
	writeModerationModule(t, root)
	l, _ := newTestLoader(t, root, WithDebounce(60*time.Millisecond))
	ctx, cancel := context.WithCancel(quietContext())
	defer cancel()

	require.NoError(t, l.Load(ctx, "moderation"))

	reloaded := make(chan string, 16)
	l.OnReload(func(name string) { reloaded <- name })

	require.NoError(t, l.Watch(ctx))

	// A burst of writes inside one debounce window is one reload.
	target := filepath.Join(root, "moderation", "commands", "warn.hcl")
	for i := 0; i < 5; i++ {
		writeTestFile(t, target, `
command "warn" {
  handler  = "moderation.warn"
  cooldown = "45s"
}
`)
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-reloaded:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher never reloaded the module")
	}

	// The window has passed; no second reload should be queued.
	select {
	case name := <-reloaded:
		t.Fatalf("burst produced an extra reload of %q", name)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatch_IgnoresUnloadedModules(t *testing.T) {
	root := t.TempDir()
	writeModerationModule(t, root)
	l, _ := newTestLoader(t, root, WithDebounce(25*time.Millisecond))
	ctx, cancel := context.WithCancel(quietContext())
	defer cancel()

	reloaded := make(chan string, 4)
	l.OnReload(func(name string) { reloaded <- name })

	// Never loaded; file changes must not pull the module in.
	require.NoError(t, l.Watch(ctx))

	writeTestFile(t, filepath.Join(root, "moderation", "commands", "warn.hcl"), `
command "warn" {
  handler = "moderation.warn"
}
`)

	select {
	case name := <-reloaded:
		t.Fatalf("unloaded module %q was reloaded", name)
	case <-time.After(200 * time.Millisecond):
	}
	_, ok := l.Record("moderation")
	assert.False(t, ok)
}

func TestWatch_MissingRootIsNotAnError(t *testing.T) {
	l, _ := newTestLoader(t, filepath.Join(t.TempDir(), "missing"))
	ctx, cancel := context.WithCancel(quietContext())
	defer cancel()

	require.NoError(t, l.Watch(ctx))
}

func TestModuleFor(t *testing.T) {
	root := t.TempDir()
	writeModerationModule(t, root)
	l, _ := newTestLoader(t, root)
	require.NoError(t, l.Load(quietContext(), "moderation"))

	name, ok := l.moduleFor(filepath.Join(root, "moderation", "commands", "warn.hcl"))
	require.True(t, ok)
	assert.Equal(t, "moderation", name)

	_, ok = l.moduleFor(filepath.Join(root, "welcome", "commands", "greet.hcl"))
	assert.False(t, ok, "unknown module")

	_, ok = l.moduleFor(root)
	assert.False(t, ok, "the root itself belongs to no module")

	_, ok = l.moduleFor(filepath.Join(filepath.Dir(root), "outside.hcl"))
	assert.False(t, ok, "path outside the root")

	require.NoError(t, l.Unload(quietContext(), "moderation"))
	_, ok = l.moduleFor(filepath.Join(root, "moderation", "commands", "warn.hcl"))
	assert.False(t, ok, "unloaded module")
}

func TestWatchDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "moderation", "commands"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "objects"), 0o755))

	dirs, err := watchDirs(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		root,
		filepath.Join(root, "moderation"),
		filepath.Join(root, "moderation", "commands"),
	}, dirs)
}
