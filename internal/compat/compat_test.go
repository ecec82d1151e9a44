package compat

import (
	"context"
	"reflect"
	"testing"
)

type fakeRunner struct {
	gotArgv  []string
	exitCode int
	err      error
}

func (f *fakeRunner) RunToStrings(ctx context.Context, path string, argv []string, shortLived bool) (string, string, int, error) {
	f.gotArgv = argv
	return "", "", f.exitCode, f.err
}

func TestIsCompatibleBuildsMinimalCopyCommand(t *testing.T) {
	fr := &fakeRunner{exitCode: 0}
	p := New(fr, "/usr/bin/ffmpeg")

	ok, err := p.IsCompatible(context.Background(), "/src.mkv", 2, "/tmp/probe.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected compatible")
	}

	want := []string{
		"-i", "/src.mkv",
		"-map", "0:2",
		"-c", "copy",
		"-hide_banner", "-y",
		"-f", "mp4",
		"/tmp/probe.mp4",
	}
	if !reflect.DeepEqual(fr.gotArgv, want) {
		t.Fatalf("got  %v\nwant %v", fr.gotArgv, want)
	}
}

func TestIsCompatibleReportsNonZeroExit(t *testing.T) {
	fr := &fakeRunner{exitCode: 1}
	p := New(fr, "/usr/bin/ffmpeg")

	ok, err := p.IsCompatible(context.Background(), "/src.mkv", 0, "/tmp/probe.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected incompatible on non-zero exit")
	}
}
