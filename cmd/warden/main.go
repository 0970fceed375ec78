package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/wardengo/internal/app"
	"github.com/vk/wardengo/internal/cli"
	"github.com/vk/wardengo/internal/localgateway"
)

// main is the entrypoint for the warden application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling.
func run(outW io.Writer, args []string) (err error) {
	opts, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// Feature-module registration mistakes panic; recover so the process
	// exits with a clean message instead of a bare stack trace.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The in-process gateway is the platform seam: it is both the event
	// source and the outbound session. A wire transport would slot in here
	// by satisfying the same two interfaces.
	gateway := localgateway.New()

	wardenApp, err := app.New(outW, *opts, gateway, gateway)
	if err != nil {
		return err
	}

	return wardenApp.Run(ctx)
}
