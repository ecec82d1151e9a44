package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// Toolchain records the absolute, validated paths to the transcoder
// and probe binaries. It is configured exactly once per process (spec
// §5: "the toolchain-path configuration is a one-shot write: attempting
// to set it twice is a fatal error").
type Toolchain struct {
	TranscoderPath          string
	ProbePath               string
	MaxConcurrentProcesses  int64
}

var (
	toolchainMu  sync.Mutex
	toolchain    *Toolchain
	toolchainSet bool
)

// ConfigureWithToolchain resolves the transcoder/probe binaries under
// directory, validates their existence, and latches them process-wide.
// maxConcurrentProcesses <= 0 uses the default of 32. Calling this a
// second time returns an error without mutating the existing latch.
func ConfigureWithToolchain(directory string, maxConcurrentProcesses int64) error {
	toolchainMu.Lock()
	defer toolchainMu.Unlock()

	if toolchainSet {
		return fmt.Errorf("config: toolchain already configured")
	}
	if maxConcurrentProcesses <= 0 {
		maxConcurrentProcesses = 32
	}

	transcoderName, probeName := binaryNames()
	transcoderPath := filepath.Join(directory, transcoderName)
	probePath := filepath.Join(directory, probeName)

	if _, err := os.Stat(transcoderPath); err != nil {
		return fmt.Errorf("config: transcoder binary not found at %s: %w", transcoderPath, err)
	}
	if _, err := os.Stat(probePath); err != nil {
		return fmt.Errorf("config: probe binary not found at %s: %w", probePath, err)
	}

	toolchain = &Toolchain{
		TranscoderPath:         transcoderPath,
		ProbePath:              probePath,
		MaxConcurrentProcesses: maxConcurrentProcesses,
	}
	toolchainSet = true
	return nil
}

// CurrentToolchain returns the latched Toolchain, or nil if
// ConfigureWithToolchain hasn't succeeded yet.
func CurrentToolchain() *Toolchain {
	toolchainMu.Lock()
	defer toolchainMu.Unlock()
	return toolchain
}

// resetToolchainForTest clears the one-shot latch; only for use in
// this package's own tests, which otherwise could only configure the
// toolchain once per test binary.
func resetToolchainForTest() {
	toolchainMu.Lock()
	defer toolchainMu.Unlock()
	toolchain = nil
	toolchainSet = false
}

func binaryNames() (transcoder, probe string) {
	if runtime.GOOS == "windows" {
		return "ffmpeg.exe", "ffprobe.exe"
	}
	return "ffmpeg", "ffprobe"
}
