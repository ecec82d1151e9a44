package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/streamforge/reencoder/internal/compat"
	"github.com/streamforge/reencoder/internal/config"
	"github.com/streamforge/reencoder/internal/log"
	"github.com/streamforge/reencoder/internal/planner"
	"github.com/streamforge/reencoder/internal/probe"
	"github.com/streamforge/reencoder/internal/supervisor"
	"github.com/streamforge/reencoder/internal/workctx"
)

// runProcess drives a single source file through the planner outside
// of any host file-processor framework, using workctx.LocalContext as
// a stand-in for the real one. Intended for manual runs and smoke
// tests against a toolchain install.
func runProcess(args []string) int {
	var (
		source          string
		workDir         string
		presetPath      string
		toolchainDir    string
		maxConcurrent   int64
		cacheDir        string
		logLevel        string
		tracingEnabled  bool
		tracingEndpoint string
	)
	parseFlagSet("process", args, func(fs *flag.FlagSet) {
		fs.StringVar(&source, "source", "", "path to the source media file")
		fs.StringVar(&workDir, "work-dir", "", "scratch directory for intermediate files")
		fs.StringVar(&presetPath, "preset", "", "path to a YAML Options preset")
		fs.StringVar(&toolchainDir, "toolchain-dir", "", "directory containing the transcoder/probe binaries")
		fs.Int64Var(&maxConcurrent, "max-concurrent", 32, "maximum concurrent toolchain processes")
		fs.StringVar(&cacheDir, "probe-cache-dir", "", "optional badger directory for probe result caching")
		fs.StringVar(&logLevel, "log-level", "info", "log level")
		fs.BoolVar(&tracingEnabled, "tracing", false, "export spans over OTLP/HTTP")
		fs.StringVar(&tracingEndpoint, "otlp-endpoint", "localhost:4318", "OTLP/HTTP collector endpoint")
	})

	configureLogging(logLevel)
	logger := log.WithComponent("process")

	if source == "" || workDir == "" || presetPath == "" || toolchainDir == "" {
		fmt.Fprintln(os.Stderr, "usage: reencodectl process -source <path> -work-dir <dir> -preset <yaml> -toolchain-dir <dir>")
		return 2
	}

	if err := configureToolchain(toolchainDir, maxConcurrent); err != nil {
		logger.Fatal().Err(err).Msg("toolchain configuration failed")
	}
	tc := config.CurrentToolchain()

	opts, err := config.LoadYAML(presetPath)
	if err != nil {
		logger.Fatal().Err(err).Str("preset", presetPath).Msg("failed to load preset")
	}

	var cache *probe.Cache
	if cacheDir != "" {
		cache, err = probe.OpenCache(cacheDir, 24*time.Hour)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open probe cache")
		}
		defer cache.Close()
	}

	sup := supervisor.New(tc.MaxConcurrentProcesses)
	probeAdapter := probe.New(sup, tc.ProbePath, cache)

	ctx, stop := newSignalContext()
	defer stop()

	tp, err := configureTelemetry(ctx, tracingEnabled, tracingEndpoint)
	if err != nil {
		logger.Fatal().Err(err).Msg("telemetry configuration failed")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	if err := probeAdapter.Configure(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to build capability matrix")
	}

	prober := compat.New(sup, tc.TranscoderPath)
	p := planner.New(probeAdapter, sup, prober, tc.TranscoderPath)

	wc, err := workctx.NewLocalContext(ctx, source, workDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create work context")
	}
	defer wc.Release()

	result, err := p.Process(ctx, wc, opts)
	if err != nil {
		logger.Error().Err(err).Msg("processing failed")
		return 1
	}

	logger.Info().
		Str("result_path", result.Path).
		Bool("has_changes", result.HasChanges).
		Msg("processing complete")
	return 0
}
