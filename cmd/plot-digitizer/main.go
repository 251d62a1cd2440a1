package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/plot-digitizer/internal/logging"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "plot-digitizer: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		usage(stdout)
		return fmt.Errorf("missing command")
	}

	log := logging.FromEnv()
	switch args[0] {
	case "digitize":
		return runDigitize(ctx, log, args[1:], stdout)
	case "serve":
		return runServe(ctx, log, args[1:])
	case "config":
		return runConfig(args[1:], stdout)
	case "--version", "-v", "version":
		fmt.Fprintf(stdout, "plot-digitizer %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		return nil
	case "--help", "-h", "help":
		usage(stdout)
		return nil
	}
	usage(stdout)
	return fmt.Errorf("unknown command: %s", args[0])
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "plot-digitizer - extract data series from chart images")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  plot-digitizer digitize [-config file] [-x-range a,b] [-y-range a,b] image...")
	fmt.Fprintln(w, "  plot-digitizer serve [-config file] [-listen addr]")
	fmt.Fprintln(w, "  plot-digitizer config [-config file]")
	fmt.Fprintln(w, "  plot-digitizer version")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintln(w, "  PLOT_DIGITIZER_LOG_LEVEL=debug    Log level (debug, info, warn, error)")
	fmt.Fprintln(w, "  PLOT_DIGITIZER_LISTEN=:8080       Listen address for serve")
}
