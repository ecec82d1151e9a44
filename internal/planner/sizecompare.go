package planner

import (
	"context"
	"fmt"
	"os"

	"github.com/streamforge/reencoder/internal/command"
)

// sizeComparePass implements spec §4.4(j). For each tracked stream it
// extracts a single-stream copy from both the transcoded result and
// the normalized source, compares file sizes, and either returns the
// normalized source unchanged (every tracked stream was smaller there,
// and no guaranteed-required reencode reason exists) or synthesizes a
// second command mixing the smaller variant of each tracked stream
// into a new output.
func (p *Planner) sizeComparePass(
	ctx context.Context,
	sourcePath, transcodedPath string,
	streams []plannedStream,
	guaranteedRequired bool,
	newWorkFile func(extension string) (string, error),
) (string, error) {
	tracked := trackedStreams(streams)
	if len(tracked) == 0 {
		return transcodedPath, nil
	}

	keepOriginal := make(map[int]bool, len(tracked))
	allSmallerInSource := true

	for _, st := range tracked {
		transcodedExtract, err := newWorkFile("mp4")
		if err != nil {
			return "", err
		}
		sourceExtract, err := newWorkFile("mp4")
		if err != nil {
			return "", err
		}

		if err := p.extractStream(ctx, transcodedPath, st.AbsoluteIndex, transcodedExtract); err != nil {
			return "", err
		}
		if err := p.extractStream(ctx, sourcePath, st.AbsoluteIndex, sourceExtract); err != nil {
			return "", err
		}

		transcodedSize, err := fileSize(transcodedExtract)
		if err != nil {
			return "", err
		}
		sourceSize, err := fileSize(sourceExtract)
		if err != nil {
			return "", err
		}

		smaller := sourceSize < transcodedSize
		keepOriginal[st.AbsoluteIndex] = smaller
		if !smaller {
			allSmallerInSource = false
		}
	}

	if allSmallerInSource && !guaranteedRequired {
		return sourcePath, nil
	}

	mixOutput, err := newWorkFile("mp4")
	if err != nil {
		return "", err
	}

	mix := &command.Command{
		Inputs:      []string{sourcePath, transcodedPath},
		HideBanner:  true,
		XError:      true,
		Overwrite:   true,
		OutputPath:  mixOutput,
	}
	for _, st := range streams {
		fileIndex := 1
		if st.Tracked && keepOriginal[st.AbsoluteIndex] {
			fileIndex = 0
		}
		mix.InputOverrides = append(mix.InputOverrides, command.InputOverride{
			InputIndex: fileIndex,
			Map:        command.Selector{Kind: command.KindAbsolute, Index: st.AbsoluteIndex},
		})
		mix.OutputOverrides = append(mix.OutputOverrides, command.StreamOverride{
			Selector: command.Selector{Kind: command.KindAbsolute, Index: st.AbsoluteIndex},
			Codec:    "copy",
		})
	}

	if err := p.sup.RunWithError(ctx, p.transcoderPath, mix.Build(), discardWriter{}, false); err != nil {
		return "", &ToolchainError{Argv: mix.Build()}
	}

	return mixOutput, nil
}

func (p *Planner) extractStream(ctx context.Context, sourcePath string, absoluteIndex int, outPath string) error {
	extract := &command.Command{
		Inputs: []string{sourcePath},
		InputOverrides: []command.InputOverride{
			{InputIndex: 0, Map: command.Selector{Kind: command.KindAbsolute, Index: absoluteIndex}},
		},
		OutputOverrides: []command.StreamOverride{
			{Selector: command.Selector{Kind: command.KindAbsolute, Index: absoluteIndex}, Codec: "copy"},
		},
		HideBanner: true,
		Overwrite:  true,
		OutputPath: outPath,
	}
	if err := p.sup.RunWithError(ctx, p.transcoderPath, extract.Build(), discardWriter{}, true); err != nil {
		return fmt.Errorf("planner: size-compare extract stream %d: %w", absoluteIndex, err)
	}
	return nil
}

func trackedStreams(streams []plannedStream) []plannedStream {
	var out []plannedStream
	for _, s := range streams {
		if s.Tracked {
			out = append(out, s)
		}
	}
	return out
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

type discardWriter struct{}

func (discardWriter) Write(b []byte) (int, error) { return len(b), nil }
