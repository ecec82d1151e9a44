package thumbnail

import (
	"testing"

	"github.com/streamforge/reencoder/internal/model"
)

func TestSelectStreamPrefersPlainDefaultOverAttachedPicWhenExcluded(t *testing.T) {
	fi := &model.FileInfo{
		Streams: []model.Stream{
			&model.VideoStream{C: model.Common{Index: 0, Disposition: model.DispositionAttachedPic}},
			&model.VideoStream{C: model.Common{Index: 1, Disposition: model.DispositionDefault}},
		},
	}
	got, err := selectStream(fi, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.C.Index != 1 {
		t.Fatalf("expected the plain default stream (index 1), got index %d", got.C.Index)
	}
}

func TestSelectStreamPrefersAttachedPicDefaultWhenIncluded(t *testing.T) {
	fi := &model.FileInfo{
		Streams: []model.Stream{
			&model.VideoStream{C: model.Common{Index: 0, Disposition: model.DispositionAttachedPic | model.DispositionDefault}},
			&model.VideoStream{C: model.Common{Index: 1, Disposition: model.DispositionDefault}},
		},
	}
	got, err := selectStream(fi, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.C.Index != 0 {
		t.Fatalf("expected the default attached-pic stream (index 0), got index %d", got.C.Index)
	}
}

func TestSelectStreamErrorsWithNoVideoStreams(t *testing.T) {
	fi := &model.FileInfo{Streams: []model.Stream{&model.AudioStream{C: model.Common{Index: 0}}}}
	_, err := selectStream(fi, true)
	if err == nil {
		t.Fatal("expected error for a file with no video streams")
	}
}

func TestSelectStreamBreaksTiesByInputOrder(t *testing.T) {
	fi := &model.FileInfo{
		Streams: []model.Stream{
			&model.VideoStream{C: model.Common{Index: 0}},
			&model.VideoStream{C: model.Common{Index: 1}},
		},
	}
	got, err := selectStream(fi, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.C.Index != 0 {
		t.Fatalf("expected first stream on a tie, got index %d", got.C.Index)
	}
}

func TestSelectStreamAvoidsBadCandidate(t *testing.T) {
	fi := &model.FileInfo{
		Streams: []model.Stream{
			&model.VideoStream{C: model.Common{Index: 0, Disposition: model.DispositionComment}},
			&model.VideoStream{C: model.Common{Index: 1}},
		},
	}
	got, err := selectStream(fi, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.C.Index != 1 {
		t.Fatalf("expected the non-bad-candidate stream (index 1), got index %d", got.C.Index)
	}
}
