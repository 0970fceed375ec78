// Package app contains the core application logic. It defines the main App
// struct, its wiring, and the run lifecycle: load modules, watch for
// changes, pump gateway events into the dispatcher, and unwind cleanly on
// a stop signal. It is decoupled from any specific entrypoint like a CLI.
package app
