// Command shaderbg renders a Shadertoy style fragment shader as the
// background of one or all Wayland outputs.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"

	"github.com/cjlester41/shaderbg/config"
	"github.com/cjlester41/shaderbg/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit code: 0 for -h and for shutdown by
// SIGINT or SIGTERM, 1 for everything else.
func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Parse(args)
	switch {
	case errors.Is(err, config.ErrHelp):
		_ = config.PrintHelp(stdout)
		return 0
	case err != nil:
		_ = config.PrintUsageError(stderr, err)
		return 1
	}

	log := logging.New(stderr, logging.LevelForVerbosity(cfg.Verbosity))
	log.Info().
		Str("output", cfg.Selector).
		Str("shader", cfg.ShaderPath).
		Log("starting")

	ctx, stop := signal.NotifyContext(context.Background(), unix.SIGINT, unix.SIGTERM)
	defer stop()

	if err := render(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		_, _ = fmt.Fprintf(stderr, "shaderbg: %v\n", err)
		return 1
	}
	log.Info().Log("stopped")
	return 0
}
