package model

import "testing"

func TestFileInfoPlayableVideoCount(t *testing.T) {
	fi := &FileInfo{
		Streams: []Stream{
			&VideoStream{C: Common{Index: 0}},
			&VideoStream{C: Common{Index: 1, Disposition: DispositionAttachedPic}},
			&AudioStream{C: Common{Index: 2}},
		},
	}
	if got := fi.PlayableVideoCount(); got != 1 {
		t.Fatalf("expected 1 playable video stream, got %d", got)
	}
}

func TestFileInfoVideoAndAudioStreams(t *testing.T) {
	fi := &FileInfo{
		Streams: []Stream{
			&VideoStream{C: Common{Index: 0}},
			&AudioStream{C: Common{Index: 1}},
			&AudioStream{C: Common{Index: 2}},
			&SubtitleStream{C: Common{Index: 3}},
		},
	}
	if len(fi.VideoStreams()) != 1 {
		t.Fatalf("expected 1 video stream")
	}
	if len(fi.AudioStreams()) != 2 {
		t.Fatalf("expected 2 audio streams")
	}
}
