// Package supervisor serializes access to the toolchain binaries to a
// configured degree of parallelism, prioritizes short-lived probes
// over long-running transcodes via a fast lane, redirects child I/O,
// and translates caller cancellation into a tree-kill of the child and
// its descendants.
package supervisor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/streamforge/reencoder/internal/log"
	"github.com/streamforge/reencoder/internal/metrics"
	"github.com/streamforge/reencoder/internal/procgroup"
)

const (
	killGrace   = 3 * time.Second
	killTimeout = 5 * time.Second

	// ringCapacity is the number of trailing stderr lines each run
	// mirrors into its LineRing. The errors returned by this package
	// carry the full captured stderr, not this tail.
	ringCapacity = 200
)

// Supervisor runs toolchain subprocesses under a bounded-concurrency
// pool. A single Supervisor is shared process-wide.
type Supervisor struct {
	pool *pool
}

// New constructs a Supervisor with the given main-pool capacity. A
// value <= 0 uses DefaultMaxConcurrentProcesses.
func New(maxConcurrentProcesses int64) *Supervisor {
	return &Supervisor{pool: newPool(maxConcurrentProcesses)}
}

// Stats describes a point-in-time occupancy snapshot. The Supervisor
// has no method that returns one; occupancy is published through the
// metrics.PoolOccupancy gauge.
type Stats struct {
	MainInUse int64
	MainLimit int64
	FastInUse int64
}

// ProgressCallback receives the child's reported output position in
// seconds (out_time_us converted from microseconds).
type ProgressCallback func(seconds float64)

// RunToStrings runs path with argv to completion, capturing stdout and
// stderr as strings, and returns the process's exit code. It does not
// itself fail on a non-zero exit; callers inspect exitCode.
func (s *Supervisor) RunToStrings(ctx context.Context, path string, argv []string, shortLived bool) (stdout, stderr string, exitCode int, err error) {
	var outBuf, errBuf strings.Builder
	exitCode, err = s.run(ctx, path, argv, shortLived, &outBuf, &errBuf, nil, "", false)
	return outBuf.String(), errBuf.String(), exitCode, err
}

// RunWithError runs path with argv, streaming stdout to stdoutSink (if
// non-nil) and failing with an *ExitError when the exit code is
// non-zero.
func (s *Supervisor) RunWithError(ctx context.Context, path string, argv []string, stdoutSink io.Writer, shortLived bool) error {
	var errBuf strings.Builder
	exitCode, err := s.run(ctx, path, argv, shortLived, stdoutSink, &errBuf, nil, "", false)
	if err != nil {
		return err
	}
	if exitCode != 0 {
		return &ExitError{Path: path, Argv: argv, ExitCode: exitCode, Stderr: errBuf.String()}
	}
	return nil
}

// RunRawWithProgress runs argv against path, emitting progress samples
// parsed from progressFile to cb as the child writes to it. When
// ensureAllRead is set, the poller performs one final drain after the
// child exits so the last sample isn't lost to poll timing.
func (s *Supervisor) RunRawWithProgress(ctx context.Context, path string, argv []string, cb ProgressCallback, progressFile string, ensureAllRead bool) error {
	var errBuf strings.Builder
	exitCode, err := s.run(ctx, path, argv, false, io.Discard, &errBuf, cb, progressFile, ensureAllRead)
	if err != nil {
		return err
	}
	if exitCode != 0 {
		return &ExitError{Path: path, Argv: argv, ExitCode: exitCode, Stderr: errBuf.String()}
	}
	return nil
}

func (s *Supervisor) run(ctx context.Context, path string, argv []string, shortLived bool, stdout, stderr io.Writer, cb ProgressCallback, progressFile string, ensureAllRead bool) (int, error) {
	l, err := s.pool.acquire(ctx, shortLived)
	if err != nil {
		return -1, err
	}
	defer s.pool.release(l)

	logger := log.WithComponent("supervisor")
	metrics.ProcessStarts.WithLabelValues(l.String(), filepath.Base(path)).Inc()

	cmd := exec.Command(path, argv...)
	procgroup.Set(cmd)

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return -1, fmt.Errorf("supervisor: stdout pipe: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return -1, fmt.Errorf("supervisor: stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("supervisor: start %s: %w", path, err)
	}

	ring := NewLineRing(ringCapacity)

	var wg sync.WaitGroup
	wg.Add(2)
	go drainBuffered(&wg, stdoutPipe, stdout)
	go drainLines(&wg, stderrPipe, stderr, ring)

	var progDone chan struct{}
	if progressFile != "" && cb != nil {
		progDone = make(chan struct{})
		go pollProgress(progressFile, cb, progDone, ensureAllRead)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case waitErr := <-done:
		wg.Wait()
		if progDone != nil {
			close(progDone)
		}
		exitCode := exitCodeOf(waitErr)
		if waitErr != nil && exitCode < 0 {
			metrics.ProcessExits.WithLabelValues("error").Inc()
			return exitCode, fmt.Errorf("supervisor: wait %s: %w", path, waitErr)
		}
		if exitCode == 0 {
			metrics.ProcessExits.WithLabelValues("ok").Inc()
		} else {
			metrics.ProcessExits.WithLabelValues("nonzero").Inc()
		}
		_ = ring.Tail()
		return exitCode, nil

	case <-ctx.Done():
		logger.Warn().Str("path", path).Msg("cancellation requested, tree-killing child")
		if cmd.Process != nil {
			if kerr := procgroup.KillGroup(cmd.Process.Pid, killGrace, killTimeout); kerr != nil {
				logger.Debug().Err(kerr).Msg("kill group error swallowed")
			}
		}
		<-done
		wg.Wait()
		if progDone != nil {
			close(progDone)
		}
		metrics.ProcessExits.WithLabelValues("cancelled").Inc()
		return -1, &CancelledError{Path: path, Argv: argv}
	}
}

func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}

// drainBuffered copies a pipe to dst using a pooled buffer, per spec's
// "pooled buffer ≥4 KiB" I/O redirection requirement.
func drainBuffered(wg *sync.WaitGroup, src io.Reader, dst io.Writer) {
	defer wg.Done()
	if dst == nil {
		dst = io.Discard
	}
	buf := bufferPool.Get().([]byte)
	defer bufferPool.Put(buf) //nolint:staticcheck // pool reuse, not a leak
	_, _ = io.CopyBuffer(dst, src, buf)
}

// drainLines scans stderr line by line so each line can be mirrored
// into the diagnostic ring buffer as it arrives.
func drainLines(wg *sync.WaitGroup, src io.Reader, dst io.Writer, ring *LineRing) {
	defer wg.Done()
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		ring.Add(line)
		if dst != nil {
			_, _ = io.WriteString(dst, line+"\n")
		}
	}
}

var bufferPool = sync.Pool{
	New: func() any { return make([]byte, 8*1024) },
}
