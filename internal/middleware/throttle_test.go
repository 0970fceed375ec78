package middleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/wardengo/internal/route"
)

func throttleRoute(limit int) *route.Command {
	return &route.Command{
		Meta:          route.Meta{Module: "utility"},
		Name:          "export",
		Handler:       "utility.export",
		MaxConcurrent: limit,
	}
}

func TestThrottle_OverflowDenied(t *testing.T) {
	th := NewThrottle()
	mw := th.Middleware()
	rt := throttleRoute(1)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- mw(context.Background(), testCall(&sessionRecorder{}, "u1", 0), rt, func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	rec := &sessionRecorder{}
	ran, err := runGate(t, mw, testCall(rec, "u2", 0), rt)
	require.NoError(t, err)
	assert.False(t, ran)

	msg, ok := rec.lastReply()
	require.True(t, ok, "expected a busy reply")
	assert.Contains(t, msg.Content, "Too many")
	assert.True(t, msg.Ephemeral)

	close(release)
	require.NoError(t, <-done)

	ran, err = runGate(t, mw, testCall(&sessionRecorder{}, "u3", 0), rt)
	require.NoError(t, err)
	assert.True(t, ran, "capacity freed once the holder finished")
}

func TestThrottle_ZeroLimitPasses(t *testing.T) {
	th := NewThrottle()
	mw := th.Middleware()
	rt := throttleRoute(0)

	for i := 0; i < 3; i++ {
		ran, err := runGate(t, mw, testCall(&sessionRecorder{}, "u1", 0), rt)
		require.NoError(t, err)
		assert.True(t, ran)
	}
}

func TestThrottle_ChangedLimitGetsFreshSemaphore(t *testing.T) {
	th := NewThrottle()
	mw := th.Middleware()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- mw(context.Background(), testCall(&sessionRecorder{}, "u1", 0), throttleRoute(1), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	// The same route reloaded with a higher limit keys a new semaphore, so
	// the exhausted old one does not gate it.
	ran, err := runGate(t, mw, testCall(&sessionRecorder{}, "u2", 0), throttleRoute(2))
	require.NoError(t, err)
	assert.True(t, ran)

	close(release)
	require.NoError(t, <-done)
}
