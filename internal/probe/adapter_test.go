package probe

import (
	"context"
	"os"
	"testing"
)

type fakeRunner struct {
	responses map[string]fakeResponse
	calls     []string
}

type fakeResponse struct {
	stdout   string
	stderr   string
	exitCode int
}

func (f *fakeRunner) RunToStrings(_ context.Context, _ string, argv []string, _ bool) (string, string, int, error) {
	key := argv[len(argv)-1]
	f.calls = append(f.calls, key)
	r := f.responses[key]
	return r.stdout, r.stderr, r.exitCode, nil
}

func TestAdapterConfigureBuildsMatrixOnce(t *testing.T) {
	runner := &fakeRunner{responses: map[string]fakeResponse{
		"-encoders": {stdout: sampleEncoders},
		"-codecs":   {stdout: sampleCodecs},
		"-muxers":   {stdout: sampleMuxers},
		"-demuxers": {stdout: sampleDemuxers},
		"-filters":  {stdout: sampleFilters},
	}}
	a := New(runner, "ffprobe", nil)

	if err := a.Configure(context.Background()); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if err := a.Configure(context.Background()); err != nil {
		t.Fatalf("second Configure call should be a no-op, got: %v", err)
	}

	if len(runner.calls) != 5 {
		t.Fatalf("expected exactly 5 capability queries (one-shot), got %d: %v", len(runner.calls), runner.calls)
	}

	m := a.CapabilityMatrix()
	if !m.HasEncoder("libx264") {
		t.Fatal("expected libx264 encoder in matrix")
	}
	if !m.HasMuxer("mp4") {
		t.Fatal("expected mp4 muxer in matrix")
	}
}

func TestAdapterProbeParsesAndCaches(t *testing.T) {
	runner := &fakeRunner{responses: map[string]fakeResponse{
		"source.mp4": {stdout: sampleProbeJSON},
	}}
	cache, err := OpenCache(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer cache.Close()

	a := New(runner, "ffprobe", cache)

	tmpFile := t.TempDir() + "/source.mp4"
	if err := os.WriteFile(tmpFile, []byte("fake media bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	runner.responses[tmpFile] = fakeResponse{stdout: sampleProbeJSON}

	fi, err := a.Probe(context.Background(), tmpFile)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if len(fi.VideoStreams()) != 1 {
		t.Fatalf("expected 1 video stream, got %d", len(fi.VideoStreams()))
	}

	// Second call should be served from cache without invoking the runner again.
	callsBefore := len(runner.calls)
	fi2, err := a.Probe(context.Background(), tmpFile)
	if err != nil {
		t.Fatalf("Probe (cached): %v", err)
	}
	if len(runner.calls) != callsBefore {
		t.Fatalf("expected cached probe to skip the runner, calls went from %d to %d", callsBefore, len(runner.calls))
	}
	if len(fi2.VideoStreams()) != 1 {
		t.Fatal("expected cached result to round-trip correctly")
	}
}

