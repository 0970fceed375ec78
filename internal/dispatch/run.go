package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/vk/wardengo/internal/ctxlog"
	"github.com/vk/wardengo/internal/handler"
	"github.com/vk/wardengo/internal/metrics"
	"github.com/vk/wardengo/internal/pipeline"
	"github.com/vk/wardengo/internal/platform"
	"github.com/vk/wardengo/internal/route"
	"github.com/zclconf/go-cty/cty"
)

// run is the common tail of every dispatch path: build the call context,
// extend the pipeline with the route's extras, execute, account.
func (d *Dispatcher) run(ctx context.Context, ev *platform.Event, rt route.Route, params map[string]any) error {
	ctx = ctxlog.With(ctx,
		"kind", rt.RouteKind(),
		"module", rt.OwnerModule(),
		"route", rt.RouteName(),
	)
	logger := ctxlog.FromContext(ctx)

	call, err := d.buildCall(ev, rt, params)
	if err != nil {
		logger.Error("Dispatch setup failed.", "error", err)
		d.count(rt, metrics.OutcomeError)
		d.failureReply(ctx, ev)
		return err
	}

	pipe := d.base
	if names := rt.MiddlewareNames(); len(names) > 0 && d.extras != nil {
		chain, err := d.extras.Chain(names)
		if err != nil {
			// The loader verified these names; hitting this means the
			// middleware registry changed underneath a live route set.
			logger.Error("Dispatch setup failed.", "error", err)
			d.count(rt, metrics.OutcomeError)
			d.failureReply(ctx, ev)
			return err
		}
		pipe = pipe.Extend(chain...)
	}

	fn, ok := d.handlers.Lookup(rt.HandlerRef())
	if !ok {
		err := fmt.Errorf("handler %q is not registered", rt.HandlerRef())
		logger.Error("Dispatch setup failed.", "error", err)
		d.count(rt, metrics.OutcomeError)
		d.failureReply(ctx, ev)
		return err
	}

	if d.metrics != nil {
		d.metrics.DispatchesInFlight.Inc()
		defer d.metrics.DispatchesInFlight.Dec()
	}

	start := time.Now()
	err = d.execute(ctx, call, rt, pipe, fn)
	took := time.Since(start)

	if d.metrics != nil {
		d.metrics.DispatchDuration.WithLabelValues(string(rt.RouteKind()), rt.OwnerModule()).Observe(took.Seconds())
	}

	if err != nil {
		logger.Error("Dispatch failed.", "error", err, "took", took)
		d.count(rt, metrics.OutcomeError)
		d.failureReply(ctx, ev)
		return err
	}

	logger.Debug("Dispatch complete.", "took", took)
	d.count(rt, metrics.OutcomeOK)
	return nil
}

// execute runs the pipeline with the handler as its final step, converting
// a panic anywhere inside into an error at this boundary.
func (d *Dispatcher) execute(ctx context.Context, call *handler.Context, rt route.Route, pipe *pipeline.Pipeline, fn handler.Func) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
			ctxlog.FromContext(ctx).Error("Recovered handler panic.",
				"panic", r,
				"stack", string(debug.Stack()),
			)
			if d.metrics != nil {
				d.metrics.HandlerPanics.WithLabelValues(rt.OwnerModule()).Inc()
			}
		}
	}()

	return pipe.Execute(ctx, call, rt, func() error {
		return fn(ctx, call)
	})
}

func (d *Dispatcher) buildCall(ev *platform.Event, rt route.Route, params map[string]any) (*handler.Context, error) {
	var services map[string]any
	if names := rt.InjectNames(); len(names) > 0 {
		var err error
		services, err = d.services.Resolve(names)
		if err != nil {
			return nil, fmt.Errorf("resolving services: %w", err)
		}
	}

	var settings map[string]cty.Value
	if d.settings != nil {
		settings = d.settings(rt.OwnerModule())
	}

	call := &handler.Context{
		Event:    ev,
		Kind:     rt.RouteKind(),
		Route:    rt.RouteName(),
		Module:   rt.OwnerModule(),
		Params:   params,
		Services: services,
		Settings: settings,
		Session:  d.session,
	}
	if cmd, ok := rt.(*route.Command); ok {
		call.Ephemeral = cmd.Ephemeral
	}
	return call, nil
}

// failureReply tells a waiting user their interaction failed. Best effort:
// the dispatch outcome is already decided, so a reply failure is only
// noted.
func (d *Dispatcher) failureReply(ctx context.Context, ev *platform.Event) {
	if ev == nil || ev.Interaction == nil || d.session == nil {
		return
	}
	msg := platform.Message{
		Content:   "Something went wrong running that. The error has been logged.",
		Ephemeral: true,
	}
	if err := d.session.Reply(ctx, ev.Interaction, msg); err != nil {
		ctxlog.FromContext(ctx).Debug("Failure reply was not delivered.", "error", err)
	}
}

func (d *Dispatcher) count(rt route.Route, outcome string) {
	if d.metrics == nil {
		return
	}
	d.metrics.DispatchesTotal.WithLabelValues(string(rt.RouteKind()), rt.OwnerModule(), outcome).Inc()
	if rt.RouteKind() == route.KindTask {
		d.metrics.TaskRuns.WithLabelValues(rt.RouteName(), outcome).Inc()
	}
}
