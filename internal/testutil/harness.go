package testutil

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vk/wardengo/internal/app"
	"github.com/vk/wardengo/internal/ctxlog"
	"github.com/vk/wardengo/internal/handler"
	"github.com/vk/wardengo/internal/localgateway"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	Loaded    []string
	Root      string
	App       *app.App
	Gateway   *localgateway.Gateway
}

// RunIntegrationTest stands up an App over a temporary modules root
// populated from files and loads every module in it. Keys in files are
// paths relative to the modules root, e.g. "echo/commands/say.hcl".
//
// The harness stops after loading: route files are parsed, validated
// against the registered handlers and middlewares, and registered. Tests
// that need the dispatch path running use StartIntegrationApp instead.
func RunIntegrationTest(t *testing.T, files map[string]string, mods ...handler.Module) *HarnessResult {
	t.Helper()

	root := writeModuleFiles(t, files)
	logBuffer := &SafeBuffer{}
	gw := localgateway.New()

	var testApp *app.App
	var err error
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp, err = app.New(logBuffer, app.Options{
			ModulesRoot: root,
			LogLevel:    "debug",
			NoWatch:     true,
		}, gw, gw, mods...)
	}()
	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked: %v", panicErr),
			Root:      root,
			Gateway:   gw,
		}
	}
	if err != nil {
		return &HarnessResult{LogOutput: logBuffer.String(), Err: err, Root: root, Gateway: gw}
	}

	// The loader takes its logger from the context, as it does under Run;
	// seed it so loader output lands in the captured buffer.
	logger := slog.New(slog.NewTextHandler(logBuffer, &slog.HandlerOptions{Level: slog.LevelDebug}))
	loaded, err := testApp.Loader().LoadAll(ctxlog.WithLogger(context.Background(), logger))
	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       err,
		Loaded:    loaded,
		Root:      root,
		App:       testApp,
		Gateway:   gw,
	}
}

// RunningApp is an App running its full lifecycle inside a test.
type RunningApp struct {
	App     *app.App
	Gateway *localgateway.Gateway
	Logs    *SafeBuffer

	cancel context.CancelFunc
	done   chan error
}

// StartIntegrationApp builds the same harness as RunIntegrationTest but
// drives the full Run loop in the background: modules load, the
// scheduler starts and events emitted on the gateway reach handlers. It
// returns once the startup milestone is logged. Stop is registered as a
// cleanup, so tests only call it when they assert on shutdown ordering.
func StartIntegrationApp(t *testing.T, files map[string]string, mods ...handler.Module) *RunningApp {
	t.Helper()

	root := writeModuleFiles(t, files)
	logBuffer := &SafeBuffer{}
	gw := localgateway.New()

	testApp, err := app.New(logBuffer, app.Options{
		ModulesRoot: root,
		LogLevel:    "debug",
		NoWatch:     true,
	}, gw, gw, mods...)
	require.NoError(t, err, "app construction failed")

	ctx, cancel := context.WithCancel(context.Background())
	ra := &RunningApp{
		App:     testApp,
		Gateway: gw,
		Logs:    logBuffer,
		cancel:  cancel,
		done:    make(chan error, 1),
	}
	go func() { ra.done <- testApp.Run(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(logBuffer.String(), "🚀 Warden is up.")
	}, 5*time.Second, 10*time.Millisecond, "app never reached its startup milestone")

	t.Cleanup(func() { ra.Stop(t) })
	return ra
}

// Stop cancels the run and waits for a clean exit. Safe to call twice.
func (ra *RunningApp) Stop(t *testing.T) {
	t.Helper()

	ra.cancel()
	select {
	case err := <-ra.done:
		require.NoError(t, err, "Run returned an error")
		ra.done <- nil
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

// WaitForLog blocks until the log output contains want.
func (ra *RunningApp) WaitForLog(t *testing.T, want string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return strings.Contains(ra.Logs.String(), want)
	}, 5*time.Second, 10*time.Millisecond, "log line %q never appeared", want)
}

// writeModuleFiles lays files out under a fresh modules root.
func writeModuleFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}
