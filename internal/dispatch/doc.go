// Package dispatch turns inbound platform events into handler executions.
//
// The dispatcher classifies each event, resolves the matching route in the
// registry, builds the request-scoped handler context (request id, logger,
// injected services, module settings) and runs the middleware pipeline
// with the route's Go handler as the final step. Each submitted event runs
// on its own goroutine; nothing orders one dispatch against another.
//
// Errors stop here. A failed dispatch is logged, counted and answered with
// a best-effort ephemeral reply when a user is waiting on an interaction;
// it never takes the process down. Panics from handlers are recovered at
// the same boundary.
package dispatch
