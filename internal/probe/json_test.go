package probe

import (
	"testing"

	"github.com/streamforge/reencoder/internal/model"
)

const sampleProbeJSON = `{
  "streams": [
    {
      "index": 0,
      "codec_type": "video",
      "codec_name": "h264",
      "codec_tag_string": "avc1",
      "width": 1920,
      "height": 1080,
      "r_frame_rate": "24000/1001",
      "sample_aspect_ratio": "1:1",
      "duration": "120.5",
      "pix_fmt": "yuv420p",
      "color_transfer": "bt709",
      "bits_per_raw_sample": "8",
      "disposition": {"default": 1, "forced": 0},
      "tags": {"language": "eng", "title": "Main"}
    },
    {
      "index": 1,
      "codec_type": "audio",
      "codec_name": "aac",
      "channels": 2,
      "sample_rate": "48000",
      "channel_layout": "stereo",
      "duration": "120.5",
      "disposition": {"default": 1},
      "tags": {"language": "eng"}
    }
  ],
  "format": {
    "format_name": "mov,mp4,m4a,3gp,3g2,mj2",
    "duration": "120.5"
  }
}`

func TestParseFileInfoVideoAndAudio(t *testing.T) {
	fi, err := ParseFileInfo([]byte(sampleProbeJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fi.FormatName != "mov,mp4,m4a,3gp,3g2,mj2" {
		t.Fatalf("unexpected format name: %s", fi.FormatName)
	}
	if fi.Duration == nil || *fi.Duration != 120.5 {
		t.Fatalf("unexpected duration: %v", fi.Duration)
	}

	videos := fi.VideoStreams()
	if len(videos) != 1 {
		t.Fatalf("expected 1 video stream, got %d", len(videos))
	}
	v := videos[0]
	if v.Width != 1920 || v.Height != 1080 {
		t.Fatalf("unexpected dimensions: %dx%d", v.Width, v.Height)
	}
	if v.FPSNum != 24000 || v.FPSDen != 1001 {
		t.Fatalf("unexpected fps rational: %d/%d", v.FPSNum, v.FPSDen)
	}
	if v.SARNum != 1 || v.SARDen != 1 {
		t.Fatalf("unexpected sar: %d:%d", v.SARNum, v.SARDen)
	}
	if !v.IsDefault() {
		t.Fatal("expected default disposition")
	}
	if v.C.Language != "eng" {
		t.Fatalf("unexpected language: %s", v.C.Language)
	}

	audios := fi.AudioStreams()
	if len(audios) != 1 {
		t.Fatalf("expected 1 audio stream, got %d", len(audios))
	}
	a := audios[0]
	if a.Channels != 2 {
		t.Fatalf("unexpected channel count: %d", a.Channels)
	}
	if a.SampleRate == nil || *a.SampleRate != 48000 {
		t.Fatalf("unexpected sample rate: %v", a.SampleRate)
	}
}

func TestParseRationalRejectsNonPositive(t *testing.T) {
	num, den := parseRational("0/1", "/")
	if num != sentinelInt || den != sentinelInt {
		t.Fatalf("expected sentinel for zero numerator, got %d/%d", num, den)
	}
	num, den = parseRational("30/0", "/")
	if num != sentinelInt || den != sentinelInt {
		t.Fatalf("expected sentinel for zero denominator, got %d/%d", num, den)
	}
}

func TestParseSARDefaultsAndSentinels(t *testing.T) {
	if n, d := parseSAR(""); n != 1 || d != 1 {
		t.Fatalf("expected 1:1 default for missing SAR, got %d:%d", n, d)
	}
	if n, d := parseSAR("0:1"); n != -1 || d != -1 {
		t.Fatalf("expected -1:-1 sentinel for malformed SAR, got %d:%d", n, d)
	}
	if n, d := parseSAR("garbage"); n != -1 || d != -1 {
		t.Fatalf("expected -1:-1 sentinel for unparsable SAR, got %d:%d", n, d)
	}
}

func TestParseFileInfoMissingFieldsBecomeSentinel(t *testing.T) {
	data := `{"streams":[{"index":0,"codec_type":"video","codec_name":"h264"}],"format":{"format_name":"avi"}}`
	fi, err := ParseFileInfo([]byte(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := fi.VideoStreams()[0]
	if v.Width != sentinelInt || v.Height != sentinelInt {
		t.Fatalf("expected sentinel width/height, got %d/%d", v.Width, v.Height)
	}
	if v.BitsPerSample != sentinelInt {
		t.Fatalf("expected sentinel bits per sample, got %d", v.BitsPerSample)
	}
}

func TestParseFileInfoSubtitleAndUnrecognized(t *testing.T) {
	data := `{"streams":[
		{"index":0,"codec_type":"subtitle","codec_name":"mov_text","tags":{"title":"English"}},
		{"index":1,"codec_type":"attachment","codec_name":"ttf"}
	],"format":{"format_name":"mov,mp4"}}`
	fi, err := ParseFileInfo([]byte(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fi.Streams) != 2 {
		t.Fatalf("expected 2 streams, got %d", len(fi.Streams))
	}
	sub, ok := fi.Streams[0].(*model.SubtitleStream)
	if !ok || sub.Title != "English" {
		t.Fatalf("expected subtitle stream with title English, got %+v", fi.Streams[0])
	}
	un, ok := fi.Streams[1].(*model.UnrecognizedStream)
	if !ok || un.CodecType != "attachment" || un.Shorthand() != 't' {
		t.Fatalf("expected attachment unrecognized stream, got %+v", fi.Streams[1])
	}
}
