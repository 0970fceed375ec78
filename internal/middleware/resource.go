package middleware

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vk/wardengo/internal/handler"
	"github.com/vk/wardengo/internal/pipeline"
	"github.com/vk/wardengo/internal/route"
	"golang.org/x/sync/semaphore"
)

// Resource serializes handlers over one named resource, e.g. a single
// moderation case or one guild's settings. The name comes from the
// route's resource_key template with {placeholder} segments filled from
// the dispatch.
type Resource struct {
	mu    sync.Mutex
	locks map[string]*resourceLock
	wait  time.Duration
}

// resourceLock is refcounted so the map sheds keys nobody holds or waits
// on.
type resourceLock struct {
	sem  *semaphore.Weighted
	refs int
}

// NewResource bounds how long a dispatch waits for a busy resource before
// giving up with a busy reply.
func NewResource(wait time.Duration) *Resource {
	return &Resource{
		locks: make(map[string]*resourceLock),
		wait:  wait,
	}
}

func (r *Resource) checkout(key string) *resourceLock {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[key]
	if !ok {
		l = &resourceLock{sem: semaphore.NewWeighted(1)}
		r.locks[key] = l
	}
	l.refs++
	return l
}

func (r *Resource) checkin(key string, l *resourceLock) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(r.locks, key)
	}
}

// Middleware builds the named-mutex gate. The lock is held across the
// rest of the chain and the handler and released on every path.
func (r *Resource) Middleware() pipeline.Middleware {
	return func(ctx context.Context, call *handler.Context, rt route.Route, next pipeline.Next) error {
		tmpl := rt.Gate().ResourceKey
		if tmpl == "" {
			return next()
		}

		key := rt.OwnerModule() + "/" + renderKey(tmpl, call)
		l := r.checkout(key)
		defer r.checkin(key, l)

		acquireCtx, cancel := context.WithTimeout(ctx, r.wait)
		defer cancel()
		if err := l.sem.Acquire(acquireCtx, 1); err != nil {
			// A canceled dispatch is not a busy resource.
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return deny(ctx, call, rt, "resource",
				"That resource is busy right now. Try again in a moment.")
		}
		defer l.sem.Release(1)
		return next()
	}
}

// renderKey fills {name} placeholders from the extracted params, then
// from the envelope fields every dispatch carries. A placeholder with no
// value stays literal: unrelated dispatches may then share a key, which
// over-serializes but never lets two writers at the same resource.
func renderKey(tmpl string, call *handler.Context) string {
	var b strings.Builder
	for {
		open := strings.IndexByte(tmpl, '{')
		if open < 0 {
			b.WriteString(tmpl)
			return b.String()
		}
		end := strings.IndexByte(tmpl[open:], '}')
		if end < 0 {
			b.WriteString(tmpl)
			return b.String()
		}
		end += open

		b.WriteString(tmpl[:open])
		if v, ok := keyValue(tmpl[open+1:end], call); ok {
			b.WriteString(v)
		} else {
			b.WriteString(tmpl[open : end+1])
		}
		tmpl = tmpl[end+1:]
	}
}

func keyValue(name string, call *handler.Context) (string, bool) {
	if v, ok := call.Params[name]; ok {
		switch t := v.(type) {
		case string:
			return t, true
		case int:
			return strconv.Itoa(t), true
		}
	}
	if call.Event == nil {
		return "", false
	}
	switch name {
	case "guild_id":
		return call.Event.GuildID, true
	case "channel_id":
		return call.Event.ChannelID, true
	case "user_id":
		if call.Event.Member != nil {
			return call.Event.Member.User.ID, true
		}
	}
	return "", false
}
