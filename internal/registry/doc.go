// Package registry provides the authoritative store of live routes.
//
// The store is partitioned by kind: commands keyed by exact name (with
// subcommands nested inside their group), the three component namespaces as
// ordered pattern lists, events as priority-sorted lists keyed by gateway
// event name, and tasks keyed by name.
//
// Mutations happen in module-sized batches. A hot reload replaces every
// route of one module inside a single critical section, so a concurrent
// lookup observes either the module's complete old route set or its
// complete new one, never a mix.
package registry
