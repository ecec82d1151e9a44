package planner

import (
	"testing"

	"github.com/streamforge/reencoder/internal/config"
)

func TestIdentifyContainerMatchesDeclaredSourceFormat(t *testing.T) {
	opts := &config.Options{SourceFormats: []string{"mp4", "mkv"}}
	f, err := identifyContainer(opts, "mov,mp4,m4a,3gp,3g2,mj2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.PrimaryExtension != "mp4" {
		t.Fatalf("expected mp4 format, got %s", f.PrimaryExtension)
	}
}

func TestIdentifyContainerFallsBackToFullCatalogWhenNoneDeclared(t *testing.T) {
	opts := &config.Options{}
	f, err := identifyContainer(opts, "matroska,webm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.PrimaryExtension != "mkv" {
		t.Fatalf("expected mkv format, got %s", f.PrimaryExtension)
	}
}

func TestIdentifyContainerRejectsUndeclaredFormat(t *testing.T) {
	opts := &config.Options{SourceFormats: []string{"mp4"}}
	_, err := identifyContainer(opts, "matroska,webm")
	if err == nil {
		t.Fatal("expected error for a format not in source_formats")
	}
	if _, ok := err.(*FormatError); !ok {
		t.Fatalf("expected *FormatError, got %T", err)
	}
}
