package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/streamforge/reencoder/internal/config"
	"github.com/streamforge/reencoder/internal/log"
	"github.com/streamforge/reencoder/internal/telemetry"
)

var (
	version = "v0.1.0"
	commit  = "none"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "serve":
		os.Exit(runServe(os.Args[2:]))
	case "process":
		os.Exit(runProcess(os.Args[2:]))
	case "-version", "--version", "version":
		fmt.Printf("reencodectl %s (commit %s)\n", version, commit)
		os.Exit(0)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: reencodectl <serve|process> [flags]")
}

func newSignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func configureLogging(level string) {
	log.Configure(log.Config{
		Level:   level,
		Service: "reencodectl",
		Version: version,
	})
}

func configureToolchain(toolchainDir string, maxConcurrent int64) error {
	if err := config.ConfigureWithToolchain(toolchainDir, maxConcurrent); err != nil {
		return fmt.Errorf("toolchain: %w", err)
	}
	return nil
}

func configureTelemetry(ctx context.Context, enabled bool, endpoint string) (*telemetry.Provider, error) {
	return telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        enabled,
		ServiceName:    "reencodectl",
		ServiceVersion: version,
		ExporterType:   "http",
		Endpoint:       endpoint,
		SamplingRate:   1.0,
	})
}

func parseFlagSet(name string, args []string, setup func(*flag.FlagSet)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	setup(fs)
	_ = fs.Parse(args)
	return fs
}
