// Package pipeline runs a dispatch through its ordered middleware chain.
//
// Each middleware decides whether to call next(); not calling it
// short-circuits everything downstream including the final handler, which
// is how cooldown and permission gates reject a request before business
// logic. Calling next() twice in one middleware is a protocol violation
// and fails loudly instead of silently double-running downstream logic.
//
// The pipeline owns no error policy: whatever the chain or the handler
// returns reaches the caller unmodified. Deciding what a user sees is the
// dispatcher's job.
package pipeline
