// internal/handlerid/doc.go

/*
Package handlerid provides a structured, type-safe representation for handler
identifiers within the system, based on the canonical format `module.handler`.

The format is exactly two dot-separated segments: the owning module's name
and the handler's name within it, e.g., `moderation.warn`.

This package enforces the identifier schema and centralizes all formatting
and parsing logic, so route files, the handler registry and dispatch logs
all agree on what a handler reference looks like.
*/
package handlerid
