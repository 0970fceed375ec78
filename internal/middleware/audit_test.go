package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/wardengo/internal/ctxlog"
	"github.com/vk/wardengo/internal/route"
)

func auditContext(buf *bytes.Buffer) context.Context {
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return ctxlog.WithLogger(context.Background(), logger)
}

func TestAudit_RecordsActorAndRoute(t *testing.T) {
	var buf bytes.Buffer
	ctx := auditContext(&buf)

	call := testCall(&sessionRecorder{}, "mod-7", 0)
	call.Params = map[string]any{"target": "123456789012345678"}
	rt := &route.Command{Meta: route.Meta{Module: "moderation"}, Name: "ban", Handler: "moderation.ban"}

	ran := false
	err := Audit()(ctx, call, rt, func() error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	out := buf.String()
	assert.Contains(t, out, "Audited action.")
	assert.Contains(t, out, "actor=mod-7")
	assert.Contains(t, out, "module=moderation")
	assert.Contains(t, out, "route=ban")
}

func TestAudit_FailurePropagatesAndWarns(t *testing.T) {
	var buf bytes.Buffer
	ctx := auditContext(&buf)

	call := testCall(&sessionRecorder{}, "mod-7", 0)
	rt := &route.Command{Meta: route.Meta{Module: "moderation"}, Name: "ban", Handler: "moderation.ban"}

	sentinel := errors.New("store offline")
	err := Audit()(ctx, call, rt, func() error { return sentinel })
	assert.Same(t, sentinel, err)

	out := buf.String()
	assert.Contains(t, out, "Audited action failed.")
	assert.Contains(t, out, "store offline")
}
