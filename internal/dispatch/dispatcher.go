package dispatch

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/vk/wardengo/internal/container"
	"github.com/vk/wardengo/internal/ctxlog"
	"github.com/vk/wardengo/internal/handler"
	"github.com/vk/wardengo/internal/metrics"
	"github.com/vk/wardengo/internal/pipeline"
	"github.com/vk/wardengo/internal/platform"
	"github.com/vk/wardengo/internal/registry"
	"github.com/vk/wardengo/internal/route"
	"github.com/zclconf/go-cty/cty"
)

// ExtraSource resolves a route's named middleware list into a chain.
// *middleware.Registry satisfies it.
type ExtraSource interface {
	Chain(names []string) ([]pipeline.Middleware, error)
}

// SettingsSource returns a module's manifest settings. The loader's
// Settings method satisfies it.
type SettingsSource func(module string) map[string]cty.Value

// Option tunes a Dispatcher.
type Option func(*Dispatcher)

// WithPipeline sets the base middleware chain every dispatch runs.
func WithPipeline(p *pipeline.Pipeline) Option {
	return func(d *Dispatcher) { d.base = p }
}

// WithExtras enables per-route middleware extension by name.
func WithExtras(src ExtraSource) Option {
	return func(d *Dispatcher) { d.extras = src }
}

// WithSettings supplies module manifest settings to handler contexts.
func WithSettings(src SettingsSource) Option {
	return func(d *Dispatcher) { d.settings = src }
}

// WithMetrics wires the Prometheus collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// Dispatcher routes inbound events to handlers through the pipeline.
type Dispatcher struct {
	session  platform.Session
	registry *registry.Registry
	handlers *handler.Registry
	services *container.Container
	base     *pipeline.Pipeline
	extras   ExtraSource
	settings SettingsSource
	metrics  *metrics.Collector

	wg sync.WaitGroup
}

// New creates a Dispatcher over the given stores. Without options it runs
// an empty pipeline and no metrics.
func New(session platform.Session, reg *registry.Registry, handlers *handler.Registry, services *container.Container, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		session:  session,
		registry: reg,
		handlers: handlers,
		services: services,
		base:     pipeline.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Submit hands ev to a fresh dispatch goroutine and returns immediately.
// Failures are handled inside; nothing escapes to the caller.
func (d *Dispatcher) Submit(ctx context.Context, ev *platform.Event) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		_ = d.Dispatch(ctx, ev)
	}()
}

// Drain blocks until every submitted dispatch has finished. Shutdown calls
// it so in-flight handlers complete before their services are torn down.
func (d *Dispatcher) Drain() {
	d.wg.Wait()
}

// Dispatch classifies and runs one event synchronously. The returned error
// is for callers that want it; Dispatch has already logged, counted and
// answered the user by the time it returns.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *platform.Event) error {
	if ev == nil {
		return errors.New("dispatch of a nil event")
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	ctx = ctxlog.With(ctx, "request_id", ev.ID, "event", ev.Name)

	switch {
	case ev.Interaction != nil && ev.Interaction.Kind == platform.InteractionCommand:
		return d.dispatchCommand(ctx, ev)
	case ev.Interaction != nil && ev.Interaction.Kind == platform.InteractionComponent:
		return d.dispatchComponent(ctx, ev)
	case ev.Name == platform.EventTick:
		return d.dispatchTask(ctx, ev)
	default:
		return d.dispatchEvent(ctx, ev)
	}
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, ev *platform.Event) error {
	ic := ev.Interaction
	key := ic.Command
	if ic.Subcommand != "" {
		key = ic.Command + " " + ic.Subcommand
	}

	cmd, ok := d.registry.FindCommand(ic.Command, ic.Subcommand)
	if ok && cmd.IsGroup() && cmd.Handler == "" {
		// A bare group is not invocable; the platform should have sent a
		// subcommand.
		ok = false
	}
	if !ok {
		return d.miss(ctx, route.KindCommand, key)
	}
	return d.run(ctx, ev, cmd, ic.Options)
}

func (d *Dispatcher) dispatchComponent(ctx context.Context, ev *platform.Event) error {
	ic := ev.Interaction

	comp, values, ok := d.registry.FindComponent(route.ComponentType(ic.Component), ic.CustomID)
	if !ok {
		return d.miss(ctx, route.KindComponent, ic.CustomID)
	}
	return d.run(ctx, ev, comp, values)
}

func (d *Dispatcher) dispatchTask(ctx context.Context, ev *platform.Event) error {
	name, _ := ev.Payload[platform.TaskPayloadKey].(string)

	task, ok := d.registry.FindTask(name)
	if !ok {
		return d.miss(ctx, route.KindTask, name)
	}
	return d.run(ctx, ev, task, nil)
}

// dispatchEvent fans one gateway event out to every subscription, highest
// priority first. Subscribers are isolated: one failing does not stop the
// rest. A once-subscription retires after its first clean run.
func (d *Dispatcher) dispatchEvent(ctx context.Context, ev *platform.Event) error {
	subs := d.registry.FindEvents(ev.Name)
	if len(subs) == 0 {
		// Gateways chatter; an unsubscribed event is normal traffic.
		ctxlog.FromContext(ctx).Debug("No subscriptions for event.")
		d.countMiss(route.KindEvent)
		return nil
	}

	var errs []error
	for _, sub := range subs {
		if err := d.run(ctx, ev, sub, nil); err != nil {
			errs = append(errs, err)
			continue
		}
		if sub.Once {
			d.registry.RemoveEventRoute(sub.Name)
			ctxlog.FromContext(ctx).Debug("Retired one-shot subscription.", "route", sub.Name)
		}
	}
	return errors.Join(errs...)
}

// miss records a failed resolution. Interactions get a warning, since a
// user pressed something; the user is still not sent a failure.
func (d *Dispatcher) miss(ctx context.Context, kind route.Kind, key string) error {
	ctxlog.FromContext(ctx).Warn("No route for event.", "kind", kind, "key", key)
	d.countMiss(kind)
	return &RouteNotFoundError{Kind: kind, Key: key}
}

func (d *Dispatcher) countMiss(kind route.Kind) {
	if d.metrics != nil {
		d.metrics.RouteMisses.WithLabelValues(string(kind)).Inc()
	}
}
