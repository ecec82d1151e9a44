package supervisor

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreCurrent())
}

func TestRunToStringsCapturesStdout(t *testing.T) {
	s := New(2)
	ctx := context.Background()

	stdout, _, exitCode, err := s.RunToStrings(ctx, "/bin/sh", []string{"-c", "echo hello"}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exitCode != 0 {
		t.Fatalf("expected exit 0, got %d", exitCode)
	}
	if !strings.Contains(stdout, "hello") {
		t.Fatalf("expected stdout to contain hello, got %q", stdout)
	}
}

func TestRunWithErrorReturnsExitError(t *testing.T) {
	s := New(2)
	ctx := context.Background()

	err := s.RunWithError(ctx, "/bin/sh", []string{"-c", "echo boom 1>&2; exit 3"}, nil, false)
	if err == nil {
		t.Fatal("expected non-nil error for non-zero exit")
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *ExitError, got %T: %v", err, err)
	}
	if exitErr.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %d", exitErr.ExitCode)
	}
	if !strings.Contains(exitErr.Stderr, "boom") {
		t.Fatalf("expected stderr to contain boom, got %q", exitErr.Stderr)
	}
}

func TestRunToStringsCancellationTreeKills(t *testing.T) {
	s := New(2)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	_, _, _, err := s.RunToStrings(ctx, "/bin/sh", []string{"-c", "sleep 5"}, false)
	var cancelled *CancelledError
	if !errors.As(err, &cancelled) {
		t.Fatalf("expected *CancelledError, got %T: %v", err, err)
	}
}

func TestRunRawWithProgressReceivesSamples(t *testing.T) {
	s := New(2)
	ctx := context.Background()

	progressFile, err := os.CreateTemp(t.TempDir(), "progress")
	if err != nil {
		t.Fatal(err)
	}
	path := progressFile.Name()
	progressFile.Close()

	script := `
for i in 1 2 3; do
  echo "out_time_us=$((i*1000000))" >> "` + path + `"
  sleep 0.02
done
echo "progress=end" >> "` + path + `"
`

	var samples []float64
	cb := func(seconds float64) { samples = append(samples, seconds) }

	err = s.RunRawWithProgress(ctx, "/bin/sh", []string{"-c", script}, cb, path, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(samples) == 0 {
		t.Fatal("expected at least one progress sample")
	}
}
