package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/plot-digitizer/internal/config"
	"github.com/ironsheep/plot-digitizer/internal/logging"
	"github.com/ironsheep/plot-digitizer/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// envConfig names an optional YAML file with default pipeline options.
const envConfig = "PLOT_DIGITIZER_CONFIG"

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("plot-digitizer-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("plot-digitizer-mcp - MCP server for extracting data from chart images")
			fmt.Println()
			fmt.Println("Usage: plot-digitizer-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  PLOT_DIGITIZER_LOG_LEVEL=debug    Log level (debug, info, warn, error)")
			fmt.Println("  PLOT_DIGITIZER_CONFIG=path.yaml   Default digitization options")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Logs go to stderr (stdout is for MCP protocol)
	log := logging.FromEnv()
	log.Debug().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("commit", GitCommit).
		Msg("plot digitizer MCP server starting")

	cfg, err := config.Load(os.Getenv(envConfig))
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(
		server.WithLogger(log),
		server.WithVersion(Version),
		server.WithDefaults(cfg.Options),
	)
	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
