package pipeline

import (
	"context"
	"fmt"

	"github.com/vk/wardengo/internal/handler"
	"github.com/vk/wardengo/internal/route"
)

// Next advances the chain by one step. Middlewares that do not call it
// short-circuit the rest of the chain and the final handler.
type Next func() error

// Middleware is one step of the chain. Implementations may do work before
// and after next(), and may hold locks across it.
type Middleware func(ctx context.Context, call *handler.Context, rt route.Route, next Next) error

// ProtocolError reports a middleware that invoked next() twice.
type ProtocolError struct {
	// Step is the zero-based chain index of the offending middleware.
	Step int
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("middleware %d invoked next() twice", e.Step)
}

// Pipeline is an ordered middleware chain. It holds no per-request state,
// so one Pipeline serves every dispatch concurrently.
type Pipeline struct {
	chain []Middleware
}

// New builds a pipeline running the given middlewares in order.
func New(chain ...Middleware) *Pipeline {
	return &Pipeline{chain: chain}
}

// Use appends middlewares to the chain in place. It is meant for wiring
// time; mutating a pipeline that is already serving dispatches is not
// safe.
func (p *Pipeline) Use(mw ...Middleware) {
	p.chain = append(p.chain, mw...)
}

// Extend returns a pipeline running p's chain followed by extra. The
// receiver is left untouched, so the shared base chain can be extended
// per route without copying games.
func (p *Pipeline) Extend(extra ...Middleware) *Pipeline {
	if len(extra) == 0 {
		return p
	}
	combined := make([]Middleware, 0, len(p.chain)+len(extra))
	combined = append(combined, p.chain...)
	combined = append(combined, extra...)
	return &Pipeline{chain: combined}
}

// Len returns the chain length.
func (p *Pipeline) Len() int {
	return len(p.chain)
}

// Execute runs the chain and, once it is exhausted, final. The cursor is
// single-use: each step may be entered once, and a second next() from the
// same middleware returns a ProtocolError to its caller.
func (p *Pipeline) Execute(ctx context.Context, call *handler.Context, rt route.Route, final func() error) error {
	entered := make([]bool, len(p.chain)+1)

	var run func(step int) error
	run = func(step int) error {
		if entered[step] {
			return &ProtocolError{Step: step - 1}
		}
		entered[step] = true

		if step == len(p.chain) {
			return final()
		}
		return p.chain[step](ctx, call, rt, func() error {
			return run(step + 1)
		})
	}

	return run(0)
}
