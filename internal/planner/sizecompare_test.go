package planner

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/streamforge/reencoder/internal/supervisor"
)

// sizeFakeRunner fakes toolchain extraction: for each "-i <path>" it
// finds in argv, it writes byteSize[path] bytes to the trailing output
// path, simulating a real extract/mix invocation without running one.
type sizeFakeRunner struct {
	byteSize map[string]int
}

func (f *sizeFakeRunner) RunWithError(ctx context.Context, path string, argv []string, stdoutSink io.Writer, shortLived bool) error {
	var inputPath string
	for i, a := range argv {
		if a == "-i" && i+1 < len(argv) {
			inputPath = argv[i+1]
		}
	}
	out := argv[len(argv)-1]
	n := f.byteSize[inputPath]
	return os.WriteFile(out, make([]byte, n), 0o644)
}

func (f *sizeFakeRunner) RunRawWithProgress(ctx context.Context, path string, argv []string, cb supervisor.ProgressCallback, progressFile string, ensureAllRead bool) error {
	return nil
}

func newSizeComparePlanner(byteSize map[string]int) *Planner {
	return &Planner{sup: &sizeFakeRunner{byteSize: byteSize}}
}

func TestSizeComparePassKeepsSourceWhenAllTrackedStreamsSmallerThere(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "source.mp4")
	transcoded := filepath.Join(dir, "transcoded.mp4")

	p := newSizeComparePlanner(map[string]int{source: 100, transcoded: 500})

	streams := []plannedStream{{AbsoluteIndex: 0, Tracked: true}}
	newWorkFile := func(ext string) (string, error) {
		f, err := os.CreateTemp(dir, "work-*."+ext)
		if err != nil {
			return "", err
		}
		f.Close()
		return f.Name(), nil
	}

	result, err := p.sizeComparePass(context.Background(), source, transcoded, streams, false, newWorkFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != source {
		t.Fatalf("expected source to be kept, got %s", result)
	}
}

func TestSizeComparePassMixesWhenGuaranteedRequiredEvenIfSourceSmaller(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "source.mp4")
	transcoded := filepath.Join(dir, "transcoded.mp4")

	p := newSizeComparePlanner(map[string]int{source: 100, transcoded: 500})

	streams := []plannedStream{{AbsoluteIndex: 0, Tracked: true}}
	newWorkFile := func(ext string) (string, error) {
		f, err := os.CreateTemp(dir, "work-*."+ext)
		if err != nil {
			return "", err
		}
		f.Close()
		return f.Name(), nil
	}

	result, err := p.sizeComparePass(context.Background(), source, transcoded, streams, true, newWorkFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == source || result == transcoded {
		t.Fatalf("expected a synthesized mix output, got %s", result)
	}
}

func TestSizeComparePassSkipsEntirelyWhenNoTrackedStreams(t *testing.T) {
	p := newSizeComparePlanner(nil)
	result, err := p.sizeComparePass(context.Background(), "/src.mp4", "/out.mp4", nil, false, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "/out.mp4" {
		t.Fatalf("expected transcoded path returned unchanged, got %s", result)
	}
}
