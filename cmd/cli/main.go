package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/specialistvlad/elementflow/internal/app"
	"github.com/specialistvlad/elementflow/internal/cli"
	"github.com/specialistvlad/elementflow/internal/orchestrator"
	"github.com/specialistvlad/elementflow/internal/registry"
)

// main is the entrypoint for the elementflow application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Args[1:], os.Getenv)
	stop()

	os.Exit(exitCode(os.Stderr, err))
}

// run encapsulates the main application logic for easier testing and error
// handling. When modules is empty the core element modules are used.
func run(ctx context.Context, outW io.Writer, args []string, getenv func(string) string, modules ...registry.Module) (err error) {
	appConfig, shouldExit, err := cli.Parse(args, outW, getenv)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// Registering a malformed module panics, so we recover here to provide
	// a clean error to the user.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	elementflowApp := app.NewApp(outW, appConfig, modules...)
	defer closeApp(slog.Default(), elementflowApp)

	return elementflowApp.Run(ctx)
}

// closeApp releases the resources of c. The app's own log file may already
// be closed, so failures go to logger.
func closeApp(logger *slog.Logger, c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Error("Failed to close application resources", "error", err)
	}
}

// exitCode reports err to w and maps it to a process exit code.
func exitCode(w io.Writer, err error) int {
	if err == nil {
		return 0
	}

	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		fmt.Fprintln(w, exitErr.Message)
		return exitErr.Code
	}

	var abortErr *orchestrator.AbortError
	if errors.As(err, &abortErr) {
		fmt.Fprintln(w, abortErr.PublicMessage())
		return 1
	}

	fmt.Fprintf(w, "Unexpected error occurred: %v\n", err)
	return 1
}
