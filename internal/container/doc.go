// Package container provides the dependency container the kernel and the
// feature modules resolve their services from.
//
// Services are registered under dotted `module.service` names as either a
// ready instance or a lazy factory. Factories run at most once; the first
// successful resolution is cached and every later Get returns the identical
// value. Resolution is cycle-safe: a factory that directly or transitively
// resolves its own name gets a CircularDependencyError naming the full path
// instead of recursing forever.
//
// There is no package-level default container. Every consumer receives an
// explicit *Container, which is what lets tests and parallel app instances
// stay isolated.
package container
