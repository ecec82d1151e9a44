package catalog

import "testing"

func TestFormatNameMatchesMultiToken(t *testing.T) {
	if !FormatMP4.NameMatches("mov,mp4,m4a,3gp,3g2,mj2") {
		t.Fatal("expected exact multi-token probe name to match")
	}
	if !FormatMP4.NameMatches("mp4") {
		t.Fatal("expected single shared token to match multi-token declared name")
	}
	if FormatMP4.NameMatches("matroska") {
		t.Fatal("expected no match for unrelated single-token probe name")
	}
}

func TestFormatNameMatchesSingleTokenEquality(t *testing.T) {
	if !FormatAVI.NameMatches("avi") {
		t.Fatal("expected single-token equality match")
	}
	if FormatAVI.NameMatches("avi2") {
		t.Fatal("expected no match for differing single tokens")
	}
}

func TestFindFormat(t *testing.T) {
	if FindFormat("matroska,webm") != FormatMatroska {
		t.Fatal("expected matroska,webm to resolve to FormatMatroska")
	}
	if FindFormat("unknown_format") != nil {
		t.Fatal("expected nil for unrecognized format")
	}
}

func TestFormatHasExtension(t *testing.T) {
	if !FormatMP4.HasExtension("m4a") {
		t.Fatal("expected m4a to be a common extension of mp4")
	}
	if FormatMP4.HasExtension("mkv") {
		t.Fatal("expected mkv not to be a common extension of mp4")
	}
}
