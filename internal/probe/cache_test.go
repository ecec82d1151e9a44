package probe

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/streamforge/reencoder/internal/model"
)

func TestCachePutGetRoundTrip(t *testing.T) {
	c, err := OpenCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer c.Close()

	sampleRate := 48000
	duration := 120.5
	fi := &model.FileInfo{
		FormatName: "mov,mp4",
		Duration:   &duration,
		Streams: []model.Stream{
			&model.VideoStream{C: model.Common{Index: 0, CodecName: "h264"}, Width: 1920, Height: 1080, FPSNum: 24, FPSDen: 1},
			&model.AudioStream{C: model.Common{Index: 1, CodecName: "aac"}, Channels: 2, SampleRate: &sampleRate},
			&model.SubtitleStream{C: model.Common{Index: 2}, Title: "English"},
			&model.UnrecognizedStream{C: model.Common{Index: 3}, CodecType: "data"},
		},
	}

	if err := c.Put("key1", fi); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := c.Get("key1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if diff := cmp.Diff(fi, got); diff != "" {
		t.Fatalf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCacheGetMissReturnsFalse(t *testing.T) {
	c, err := OpenCache(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer c.Close()

	if _, ok := c.Get("does-not-exist"); ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestNilCacheIsSafeNoop(t *testing.T) {
	var c *Cache
	if _, ok := c.Get("anything"); ok {
		t.Fatal("expected nil cache to report miss")
	}
	if err := c.Put("anything", &model.FileInfo{}); err != nil {
		t.Fatalf("expected nil cache Put to no-op, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("expected nil cache Close to no-op, got %v", err)
	}
}
