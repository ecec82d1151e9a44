package thumbnail

import (
	"context"
	"errors"
	"io"
	"strconv"

	"github.com/streamforge/reencoder/internal/command"
	"github.com/streamforge/reencoder/internal/config"
	"github.com/streamforge/reencoder/internal/log"
	"github.com/streamforge/reencoder/internal/metrics"
	"github.com/streamforge/reencoder/internal/model"
	"github.com/streamforge/reencoder/internal/supervisor"
	"github.com/streamforge/reencoder/internal/telemetry"
	"github.com/streamforge/reencoder/internal/workctx"
)

// probeAdapter is the narrow probe.Adapter surface the pipeline needs.
type probeAdapter interface {
	Probe(ctx context.Context, path string) (*model.FileInfo, error)
}

// runner is the narrow supervisor.Supervisor surface the pipeline needs.
type runner interface {
	RunWithError(ctx context.Context, path string, argv []string, stdoutSink io.Writer, shortLived bool) error
}

// Pipeline extracts a single still-frame thumbnail from a source file
// (spec §4.5).
type Pipeline struct {
	probe          probeAdapter
	sup            runner
	transcoderPath string
}

// New builds a Pipeline bound to the given collaborators.
func New(probeAdapter probeAdapter, sup runner, transcoderPath string) *Pipeline {
	return &Pipeline{probe: probeAdapter, sup: sup, transcoderPath: transcoderPath}
}

// Extract selects a video stream, computes a seek timestamp, plans the
// filter chain, and attempts the toolchain invocation through a 3-step
// retry ladder (spec §4.5), writing a PNG still frame to a new work
// file. On exhausted retries it re-raises the *first* attempt's error,
// since it's usually the most diagnostic one.
func (p *Pipeline) Extract(ctx context.Context, wc workctx.Context, opts config.ThumbnailOptions) (string, error) {
	tracer := telemetry.Tracer("thumbnail")
	ctx, span := tracer.Start(ctx, "thumbnail.extract")
	defer span.End()

	logger := log.WithComponent("thumbnail").With().
		Str("file_id", wc.FileID()).
		Str("variant_id", wc.VariantID()).
		Logger()

	sourcePath, err := wc.GetSourceAsFile(ctx)
	if err != nil {
		return "", &ValidationError{Reason: "get_source_as_file: " + err.Error()}
	}
	fi, err := p.probe.Probe(ctx, sourcePath)
	if err != nil {
		return "", &ValidationError{Reason: "probe: " + err.Error()}
	}

	stream, err := selectStream(fi, opts.IncludeThumbnailVideoStreams)
	if err != nil {
		return "", err
	}

	plan, err := selectTimestamp(stream, opts.AbsoluteSeconds, opts.Fraction, fi.Duration)
	if err != nil {
		return "", err
	}

	filter := planFilters(stream, filterOptions{
		RemapHDRToSDR:     opts.RemapHDRToSDR,
		ForceSquarePixels: opts.ForceSquarePixels,
		MaxDimension:      opts.MaxDimension,
		PixelByteBudget:   opts.PixelByteBudget,
	})

	outPath, err := wc.GetNewWorkFile(ctx, "png")
	if err != nil {
		return "", &ValidationError{Reason: err.Error()}
	}

	var firstErr error
	for attempt, sp := range p.retryLadder(plan, fi.Duration) {
		step := strconv.Itoa(attempt)
		if err := p.attempt(ctx, sourcePath, stream.C.Index, filter, sp, outPath); err != nil {
			logger.Debug().Int("attempt", attempt).Err(err).Msg("thumbnail extraction attempt failed")
			if firstErr == nil {
				firstErr = err
			}
			metrics.ThumbnailRetries.WithLabelValues(step, "failure").Inc()
			continue
		}
		metrics.ThumbnailRetries.WithLabelValues(step, "success").Inc()
		return outPath, nil
	}

	return "", firstErr
}

// retryLadder enumerates the up-to-3 seek attempts spec §4.5 describes:
// the computed seek, (seek-duration, from_end), then (0, from_end)
// picking whichever end the original request was closer to. A seekless
// plan (still image/attached pic) yields exactly one no-seek attempt.
func (p *Pipeline) retryLadder(plan seekPlan, duration *float64) []seekPlan {
	if plan.Omit {
		return []seekPlan{{Omit: true}}
	}

	ladder := []seekPlan{{Seconds: plan.Seconds}}

	if duration != nil {
		ladder = append(ladder, seekPlan{Seconds: *duration - plan.Seconds, FromEnd: true})

		closerToEnd := plan.Seconds > *duration/2
		ladder = append(ladder, seekPlan{Seconds: 0, FromEnd: closerToEnd})
	}

	return ladder
}

func (p *Pipeline) attempt(ctx context.Context, sourcePath string, streamIndex int, filter string, sp seekPlan, outPath string) error {
	cmd := &command.Command{
		Inputs: []string{sourcePath},
		InputOverrides: []command.InputOverride{
			{InputIndex: 0, Map: command.Selector{Kind: command.KindAbsolute, Index: streamIndex}},
		},
		OutputOverrides: []command.StreamOverride{
			{
				Selector: command.Selector{Kind: command.KindAbsolute, Index: streamIndex},
				Codec:    "png",
				Filter:   filter,
			},
		},
		HideBanner: true,
		Overwrite:  true,
		OutputPath: outPath,
	}
	if !sp.Omit {
		cmd.Seek = &command.Seek{Seconds: sp.Seconds, FromEnd: sp.FromEnd}
	}

	if err := p.sup.RunWithError(ctx, p.transcoderPath, cmd.Build(), discardWriter{}, true); err != nil {
		te := &ToolchainError{Argv: cmd.Build()}
		var exitErr *supervisor.ExitError
		if errors.As(err, &exitErr) {
			te.ExitCode = exitErr.ExitCode
			te.Stderr = exitErr.Stderr
		}
		return te
	}
	return nil
}

type discardWriter struct{}

func (discardWriter) Write(b []byte) (int, error) { return len(b), nil }
