package config

import (
	"os"
	"testing"
	"time"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := writePreset(t, samplePreset)

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if w.Current().AudioReencodeMode != ReencodeSelectSmallest {
		t.Fatalf("expected initial snapshot to match preset, got %s", w.Current().AudioReencodeMode)
	}

	updated := `
result_video_codecs: ["h264"]
result_audio_codecs: ["aac"]
result_formats: ["mov,mp4"]
video_reencode_mode: "always"
audio_reencode_mode: "always"
`
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if w.Current().AudioReencodeMode == ReencodeAlways {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("expected watcher to pick up updated preset, still got %s", w.Current().AudioReencodeMode)
}

func TestWatcherKeepsPreviousSnapshotOnParseFailure(t *testing.T) {
	path := writePreset(t, samplePreset)

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	before := w.Current()

	if err := os.WriteFile(path, []byte("not: [valid, yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(200 * time.Millisecond)

	if w.Current() != before {
		t.Fatal("expected snapshot to remain unchanged after a failed reload")
	}
}
