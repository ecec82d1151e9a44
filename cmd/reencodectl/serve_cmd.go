package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/streamforge/reencoder/internal/config"
	"github.com/streamforge/reencoder/internal/log"
)

// runServe starts the admin HTTP surface: /healthz reports whether the
// toolchain is configured, /metrics exposes the prometheus registry.
func runServe(args []string) int {
	var (
		listenAddr      string
		toolchainDir    string
		maxConcurrent   int64
		logLevel        string
		rps             int
		tracingEnabled  bool
		tracingEndpoint string
	)
	fs := parseFlagSet("serve", args, func(fs *flag.FlagSet) {
		fs.StringVar(&listenAddr, "listen", ":8088", "admin HTTP listen address")
		fs.StringVar(&toolchainDir, "toolchain-dir", "", "directory containing the transcoder/probe binaries")
		fs.Int64Var(&maxConcurrent, "max-concurrent", 32, "maximum concurrent toolchain processes")
		fs.StringVar(&logLevel, "log-level", "info", "log level")
		fs.IntVar(&rps, "rate-limit-rps", 50, "admin surface requests per second per client")
		fs.BoolVar(&tracingEnabled, "tracing", false, "export spans over OTLP/HTTP")
		fs.StringVar(&tracingEndpoint, "otlp-endpoint", "localhost:4318", "OTLP/HTTP collector endpoint")
	})
	_ = fs

	configureLogging(logLevel)
	logger := log.WithComponent("serve")

	if toolchainDir != "" {
		if err := configureToolchain(toolchainDir, maxConcurrent); err != nil {
			logger.Fatal().Err(err).Msg("toolchain configuration failed")
		}
	}

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

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(httprate.Limit(
		rps*60,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
	))

	r.Get("/healthz", handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", listenAddr).Msg("admin server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("admin server exited with error")
		return 1
	}
	return 0
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	tc := config.CurrentToolchain()
	status := "ok"
	code := http.StatusOK
	if tc == nil {
		status = "toolchain_not_configured"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
