package probe

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/streamforge/reencoder/internal/log"
	"github.com/streamforge/reencoder/internal/model"
)

// runner is the subset of supervisor.Supervisor the adapter needs,
// kept narrow so tests can substitute a fake.
type runner interface {
	RunToStrings(ctx context.Context, path string, argv []string, shortLived bool) (stdout, stderr string, exitCode int, err error)
}

// Adapter invokes the toolchain's probe binary to build FileInfo
// values and the process-wide capability Matrix. One Adapter is
// shared process-wide; Configure must be called exactly once before
// Probe or CapabilityMatrix are used.
type Adapter struct {
	sup        runner
	binaryPath string
	cache      *Cache // optional; nil disables caching

	mu       sync.RWMutex
	matrix   *Matrix
	checked  bool
}

// New constructs an Adapter bound to the given probe binary path and
// runner. cache may be nil to disable persistent result caching.
func New(sup runner, binaryPath string, cache *Cache) *Adapter {
	return &Adapter{sup: sup, binaryPath: binaryPath, cache: cache}
}

// Configure builds the capability matrix eagerly under a one-shot
// guard, so later concurrent callers never race the five probe
// invocations this requires. Calling Configure twice is a no-op after
// the first successful build.
func (a *Adapter) Configure(ctx context.Context) error {
	a.mu.RLock()
	if a.checked {
		a.mu.RUnlock()
		return nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.checked {
		return nil
	}

	m := &Matrix{}
	steps := []struct {
		args []string
		fn   func(string) map[string]bool
		dst  *map[string]bool
	}{
		{[]string{"-hide_banner", "-encoders"}, ParseEncoders, &m.Encoders},
		{[]string{"-hide_banner", "-codecs"}, ParseDecoders, &m.Decoders},
		{[]string{"-hide_banner", "-muxers"}, ParseMuxers, &m.Muxers},
		{[]string{"-hide_banner", "-demuxers"}, ParseDemuxers, &m.Demuxers},
		{[]string{"-hide_banner", "-filters"}, ParseFilters, &m.Filters},
	}

	for _, step := range steps {
		stdout, stderr, exitCode, err := a.sup.RunToStrings(ctx, a.binaryPath, step.args, true)
		if err != nil {
			return fmt.Errorf("probe: capability query %v: %w", step.args, err)
		}
		if exitCode != 0 {
			log.WithComponent("probe").Warn().
				Strs("argv", step.args).
				Int("exit_code", exitCode).
				Str("stderr", stderr).
				Msg("capability query returned non-zero exit, parsing stdout anyway")
		}
		*step.dst = step.fn(stdout)
	}

	a.matrix = m
	a.checked = true
	return nil
}

// CapabilityMatrix returns the process-wide capability matrix. It must
// be called after Configure.
func (a *Adapter) CapabilityMatrix() *Matrix {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.matrix
}

// Probe runs the probe binary against path and parses its JSON output
// into a model.FileInfo, consulting the cache first when present.
func (a *Adapter) Probe(ctx context.Context, path string) (*model.FileInfo, error) {
	if a.cache != nil {
		if key, ferr := cacheKeyFor(path, a.binaryPath); ferr == nil {
			if fi, ok := a.cache.Get(key); ok {
				return fi, nil
			}
		}
	}

	argv := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}
	stdout, stderr, exitCode, err := a.sup.RunToStrings(ctx, a.binaryPath, argv, true)
	if err != nil {
		return nil, fmt.Errorf("probe: run: %w", err)
	}
	if exitCode != 0 {
		return nil, fmt.Errorf("probe: %s exited %d: %s", a.binaryPath, exitCode, stderr)
	}

	fi, err := ParseFileInfo([]byte(stdout))
	if err != nil {
		return nil, err
	}

	if a.cache != nil {
		if key, ferr := cacheKeyFor(path, a.binaryPath); ferr == nil {
			_ = a.cache.Put(key, fi)
		}
	}

	return fi, nil
}

// cacheKeyFor derives a stable cache key from the file's path, size,
// mtime, and the probe binary path, so a changed file or a different
// probe binary path invalidates stale entries. Replacing the binary in
// place at the same path does not change the key.
func cacheKeyFor(path, binaryPath string) (string, error) {
	st, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	return path + "|" + strconv.FormatInt(st.Size(), 10) + "|" +
		strconv.FormatInt(st.ModTime().UnixNano(), 10) + "|" + binaryPath, nil
}
