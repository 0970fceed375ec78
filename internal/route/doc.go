// Package route holds the format-agnostic definitions of everything a bot
// module can wire into the kernel: slash commands, message components,
// gateway event subscriptions and background tasks.
//
// Definitions are loaded from the .hcl route files that ship next to a
// module's Go handlers. The package owns parsing and validation of those
// files; it deliberately knows nothing about handler functions, dispatching
// or the registry, so every other kernel package can depend on it without
// cycles.
package route
