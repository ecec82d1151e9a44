// Package compat implements the per-stream copy-into-container
// compatibility prober (spec §4.6): a minimal invocation that tests
// whether one stream can be losslessly copied into the target
// container, used by the planner to decide between remux and
// transcode on a per-stream basis.
package compat

import (
	"context"
	"fmt"

	"github.com/streamforge/reencoder/internal/command"
)

// runner is the narrow supervisor surface the prober needs.
type runner interface {
	RunToStrings(ctx context.Context, path string, argv []string, shortLived bool) (stdout, stderr string, exitCode int, err error)
}

// Prober runs the toolchain's minimal "copy one stream into mp4" test
// invocation and reports whether it succeeded.
type Prober struct {
	sup        runner
	binaryPath string
}

// New builds a Prober bound to the transcoder binary.
func New(sup runner, binaryPath string) *Prober {
	return &Prober{sup: sup, binaryPath: binaryPath}
}

// IsCompatible runs "-map 0:<streamIndex> -c copy -f mp4 <outPath>"
// against sourcePath and reports exit_code == 0. outPath is a scratch
// file the caller owns and discards after the call; its contents are
// never inspected.
func (p *Prober) IsCompatible(ctx context.Context, sourcePath string, streamIndex int, outPath string) (bool, error) {
	cmd := &command.Command{
		Inputs: []string{sourcePath},
		InputOverrides: []command.InputOverride{
			{InputIndex: 0, Map: command.Selector{Kind: command.KindAbsolute, Index: streamIndex}},
		},
		OutputOverrides: []command.StreamOverride{
			{Codec: "copy"},
		},
		HideBanner: true,
		Overwrite:  true,
		OutputPath: outPath,
	}

	argv := cmd.Build()
	// Force the mp4 muxer just ahead of the output path.
	argv = append(argv[:len(argv)-1], "-f", "mp4", outPath)

	_, stderr, exitCode, err := p.sup.RunToStrings(ctx, p.binaryPath, argv, true)
	if err != nil {
		return false, fmt.Errorf("compat: probe stream %d: %w", streamIndex, err)
	}
	_ = stderr
	return exitCode == 0, nil
}
