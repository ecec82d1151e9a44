package model

import "testing"

func TestVideoStreamFPS(t *testing.T) {
	v := &VideoStream{FPSNum: 24000, FPSDen: 1001}
	got := v.FPS()
	if got < 23.97 || got > 23.98 {
		t.Fatalf("expected ~23.976, got %f", got)
	}
}

func TestVideoStreamFPSZeroDen(t *testing.T) {
	v := &VideoStream{FPSNum: 30}
	if got := v.FPS(); got != 0 {
		t.Fatalf("expected 0 for degenerate rational, got %f", got)
	}
}

func TestVideoStreamIsHDR(t *testing.T) {
	cases := []struct {
		transfer string
		want     bool
	}{
		{"smpte2084", true},
		{"arib-std-b67", true},
		{"bt709", false},
		{"", false},
	}
	for _, c := range cases {
		v := &VideoStream{ColorTransfer: c.transfer}
		if got := v.IsHDR(); got != c.want {
			t.Errorf("transfer=%q: got %v, want %v", c.transfer, got, c.want)
		}
	}
}

func TestVideoStreamIsBadCandidateForThumbnail(t *testing.T) {
	v := &VideoStream{C: Common{Disposition: DispositionForced}}
	if !v.IsBadCandidateForThumbnail() {
		t.Fatal("forced disposition should disqualify thumbnail candidacy")
	}

	v2 := &VideoStream{C: Common{Disposition: DispositionDefault}}
	if v2.IsBadCandidateForThumbnail() {
		t.Fatal("default-only disposition should not disqualify thumbnail candidacy")
	}
}

func TestUnrecognizedStreamShorthand(t *testing.T) {
	cases := map[string]byte{
		"data":       'd',
		"attachment": 't',
		"other":      0,
	}
	for codecType, want := range cases {
		u := &UnrecognizedStream{CodecType: codecType}
		if got := u.Shorthand(); got != want {
			t.Errorf("codecType=%q: got %q, want %q", codecType, got, want)
		}
	}
}

func TestKindString(t *testing.T) {
	if KindVideo.String() != "video" {
		t.Fatal("unexpected video kind string")
	}
	if Kind(99).String() != "unrecognized" {
		t.Fatal("unknown kind should stringify as unrecognized")
	}
}
