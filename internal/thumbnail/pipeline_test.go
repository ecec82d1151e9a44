package thumbnail

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/streamforge/reencoder/internal/config"
	"github.com/streamforge/reencoder/internal/model"
	"github.com/streamforge/reencoder/internal/workctx"
)

type fakeProbe struct {
	fi *model.FileInfo
}

func (f *fakeProbe) Probe(ctx context.Context, path string) (*model.FileInfo, error) {
	return f.fi, nil
}

type fakeRunner struct {
	failFirstN int
	calls      int
}

func (f *fakeRunner) RunWithError(ctx context.Context, path string, argv []string, stdoutSink io.Writer, shortLived bool) error {
	f.calls++
	if f.calls <= f.failFirstN {
		return &ToolchainError{Argv: argv}
	}
	return nil
}

func newLocalWC(t *testing.T) workctx.Context {
	t.Helper()
	dir := t.TempDir()
	source := filepath.Join(dir, "source.mp4")
	if err := os.WriteFile(source, []byte("fake"), 0o644); err != nil {
		t.Fatal(err)
	}
	wc, err := workctx.NewLocalContext(context.Background(), source, filepath.Join(dir, "work"))
	if err != nil {
		t.Fatal(err)
	}
	return wc
}

func TestExtractSucceedsOnFirstAttempt(t *testing.T) {
	wc := newLocalWC(t)
	fi := &model.FileInfo{
		Duration: f64(120),
		Streams: []model.Stream{
			&model.VideoStream{C: model.Common{Index: 0, Disposition: model.DispositionDefault}, Width: 1280, Height: 720},
		},
	}
	p := New(&fakeProbe{fi: fi}, &fakeRunner{}, "/usr/bin/ffmpeg")

	out, err := p.Extract(context.Background(), wc, config.ThumbnailOptions{AbsoluteSeconds: f64(5)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == "" {
		t.Fatal("expected a non-empty output path")
	}
}

func TestExtractRetriesAfterFailures(t *testing.T) {
	wc := newLocalWC(t)
	fi := &model.FileInfo{
		Duration: f64(120),
		Streams: []model.Stream{
			&model.VideoStream{C: model.Common{Index: 0, Disposition: model.DispositionDefault}, Width: 1280, Height: 720},
		},
	}
	p := New(&fakeProbe{fi: fi}, &fakeRunner{failFirstN: 2}, "/usr/bin/ffmpeg")

	out, err := p.Extract(context.Background(), wc, config.ThumbnailOptions{AbsoluteSeconds: f64(5)})
	if err != nil {
		t.Fatalf("expected success on the third attempt, got error: %v", err)
	}
	if out == "" {
		t.Fatal("expected a non-empty output path")
	}
}

func TestExtractReraisesFirstErrorAfterExhaustingLadder(t *testing.T) {
	wc := newLocalWC(t)
	fi := &model.FileInfo{
		Duration: f64(120),
		Streams: []model.Stream{
			&model.VideoStream{C: model.Common{Index: 0, Disposition: model.DispositionDefault}, Width: 1280, Height: 720},
		},
	}
	p := New(&fakeProbe{fi: fi}, &fakeRunner{failFirstN: 99}, "/usr/bin/ffmpeg")

	_, err := p.Extract(context.Background(), wc, config.ThumbnailOptions{AbsoluteSeconds: f64(5)})
	if err == nil {
		t.Fatal("expected an error after exhausting the retry ladder")
	}
}

func TestExtractOmitsSeekForAttachedPicSource(t *testing.T) {
	wc := newLocalWC(t)
	fi := &model.FileInfo{
		Streams: []model.Stream{
			&model.VideoStream{C: model.Common{Index: 0, Disposition: model.DispositionAttachedPic}, Width: 300, Height: 300},
		},
	}
	p := New(&fakeProbe{fi: fi}, &fakeRunner{}, "/usr/bin/ffmpeg")

	_, err := p.Extract(context.Background(), wc, config.ThumbnailOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
