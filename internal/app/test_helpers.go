package app

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/wardengo/internal/handler"
	"github.com/vk/wardengo/internal/localgateway"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SetupAppTest wires an App around an in-process gateway for system
// testing. The gateway stands in for both the session and the event
// source, so tests push events with Emit and read replies back off it.
func SetupAppTest(t *testing.T, opts Options, mods ...handler.Module) (*App, *localgateway.Gateway, *SafeBuffer) {
	t.Helper()

	logBuffer := &SafeBuffer{}
	opts.LogLevel = "debug"
	gw := localgateway.New()

	testApp, err := New(logBuffer, opts, gw, gw, mods...)
	require.NoError(t, err)

	t.Cleanup(func() {
		if os.Getenv("WARDEN_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, gw, logBuffer
}
