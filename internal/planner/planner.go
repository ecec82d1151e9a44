// Package planner implements the processing planner (spec §4.4): the
// decision engine that inspects a probed media file and emits a
// toolchain invocation plan honoring container compatibility, codec
// compatibility, re-encode policy, pixel format selection, HDR→SDR
// remapping, resize/fps retiming, audio downmix/resample,
// metadata-stripping, and thumbnail handling.
package planner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/streamforge/reencoder/internal/catalog"
	"github.com/streamforge/reencoder/internal/command"
	"github.com/streamforge/reencoder/internal/config"
	"github.com/streamforge/reencoder/internal/log"
	"github.com/streamforge/reencoder/internal/metrics"
	"github.com/streamforge/reencoder/internal/model"
	"github.com/streamforge/reencoder/internal/probe"
	"github.com/streamforge/reencoder/internal/supervisor"
	"github.com/streamforge/reencoder/internal/telemetry"
	"github.com/streamforge/reencoder/internal/workctx"
)

// probeAdapter is the narrow probe.Adapter surface the planner needs.
type probeAdapter interface {
	Probe(ctx context.Context, path string) (*model.FileInfo, error)
	CapabilityMatrix() *probe.Matrix
}

// runner is the narrow supervisor.Supervisor surface the planner needs.
type runner interface {
	RunWithError(ctx context.Context, path string, argv []string, stdoutSink io.Writer, shortLived bool) error
	RunRawWithProgress(ctx context.Context, path string, argv []string, cb supervisor.ProgressCallback, progressFile string, ensureAllRead bool) error
}

// compatProber is the narrow compat.Prober surface the planner needs.
type compatProber interface {
	IsCompatible(ctx context.Context, sourcePath string, streamIndex int, outPath string) (bool, error)
}

// Planner runs the stage machine of spec §4.4 against one Context and
// Options at a time. A single Planner is safe to reuse across
// invocations; all mutable state lives in the per-call stack frame.
type Planner struct {
	probe          probeAdapter
	sup            runner
	compat         compatProber
	transcoderPath string
}

// New builds a Planner bound to the given collaborators.
func New(probeAdapter probeAdapter, sup runner, compat compatProber, transcoderPath string) *Planner {
	return &Planner{probe: probeAdapter, sup: sup, compat: compat, transcoderPath: transcoderPath}
}

// Result is the planner's terminal output: the final file's path, and
// whether it differs from the original source (spec §4.4k).
type Result struct {
	Path       string
	HasChanges bool
}

const reservedTail = 0.05

// Process runs stages (a)-(k) of spec §4.4 against wc and opts,
// returning the final file or a typed error from the taxonomy in spec
// §7.
func (p *Planner) Process(ctx context.Context, wc workctx.Context, opts *config.Options) (*Result, error) {
	tracer := telemetry.Tracer("planner")
	ctx, span := tracer.Start(ctx, "planner.process")
	defer span.End()

	logger := log.WithComponent("planner").With().
		Str("file_id", wc.FileID()).
		Str("variant_id", wc.VariantID()).
		Logger()

	// (a) Acquire source, probe it.
	sourcePath, err := wc.GetSourceAsFile(ctx)
	if err != nil {
		return nil, &ProbeError{Reason: "get_source_as_file: " + err.Error()}
	}
	fi, err := p.probe.Probe(ctx, sourcePath)
	if err != nil {
		return nil, wrapFileError(wc, &ProbeError{Reason: err.Error()})
	}

	// (b) Identify container.
	container, err := identifyContainer(opts, fi.FormatName)
	if err != nil {
		return nil, wrapFileError(wc, err)
	}

	// (c) Normalize extension.
	extChanged := false
	ext := wc.Extension()
	if !container.HasExtension(ext) {
		normalized, nerr := p.normalizeExtension(ctx, wc, sourcePath, container)
		if nerr != nil {
			return nil, wrapFileError(wc, nerr)
		}
		sourcePath = normalized.path
		fi = normalized.fileInfo
		extChanged = true
	}

	progress := newProgressTracker(opts.ProgressCallback)

	// (d) Per-stream validation.
	validation, err := validateStreams(fi, opts)
	if err != nil {
		return nil, wrapFileError(wc, err)
	}

	// (e) Optional full-decode validation.
	if opts.ForceValidateAllStreams {
		if derr := p.validateAllStreams(ctx, wc, sourcePath, fi, progress); derr != nil {
			return nil, wrapFileError(wc, derr)
		}
	}

	matrix := p.probe.CapabilityMatrix()

	// (g) Container compatibility probing (runs ahead of the final
	// remux-necessity decision since stage h needs each stream's
	// compatibility bit; the "is remux needed at all" shortcut from
	// spec §4.4f/g is folded into whether we bother building overrides
	// at all).
	compatible, cerr := p.probeCompatibility(ctx, wc, sourcePath, fi, progress)
	if cerr != nil {
		return nil, wrapFileError(wc, cerr)
	}

	transcodedOutputPath, workErr := wc.GetNewWorkFile(ctx, container.PrimaryExtension)
	if workErr != nil {
		return nil, wrapFileError(wc, &ProbeError{Reason: workErr.Error()})
	}

	plan := buildOverrides(fi, opts, matrix, compatible, transcodedOutputPath)
	plan.Command.Inputs[0] = sourcePath

	remux := computeRemuxNecessity(fi, opts, validation, plan.AnyReencode, plan.AnyGuaranteedReencode)

	if !remux.Required {
		if opts.ThrowWhenReencodeOptional {
			return nil, &ReencodeOptional{}
		}
		logger.Debug().Msg("no remux required, returning normalized source")
		return &Result{Path: sourcePath, HasChanges: extChanged}, nil
	}

	// (i) Execute main command.
	ctxMain, spanMain := tracer.Start(ctx, "planner.transcode")
	progressFile, progressFileErr := wc.GetNewWorkFile(ctx, "progress")
	if progressFileErr != nil {
		spanMain.End()
		return nil, wrapFileError(wc, &ProbeError{Reason: progressFileErr.Error()})
	}
	plan.Command.Progress = &command.ProgressSink{URI: progressFile}
	cb := progress.scaledFromDuration(progress.used, 1.0-reservedTail, fi.Duration)
	if err := p.sup.RunRawWithProgress(ctxMain, p.transcoderPath, plan.Command.Build(), cb, progressFile, true); err != nil {
		spanMain.End()
		metrics.ProcessExits.WithLabelValues("error").Inc()
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, wrapFileError(wc, &ToolchainError{Argv: plan.Command.Build()})
	}
	spanMain.End()
	metrics.ProcessExits.WithLabelValues("success").Inc()
	progress.used = 1.0 - reservedTail

	// (j) Size-compare pass.
	finalPath, err := p.sizeComparePass(ctx, sourcePath, transcodedOutputPath, plan.Streams, remux.GuaranteedRequired, func(extension string) (string, error) {
		return wc.GetNewWorkFile(ctx, extension)
	})
	if err != nil {
		return nil, wrapFileError(wc, err)
	}
	progress.report(1.0)

	// (k) Return.
	return &Result{Path: finalPath, HasChanges: true}, nil
}

type normalizedSource struct {
	path     string
	fileInfo *model.FileInfo
}

// normalizeExtension implements spec §4.4(c): the source is copied to
// a new work file with the identified format's primary extension, then
// re-probed. Disagreement between the two probes' format names signals
// extension spoofing and fails the operation.
func (p *Planner) normalizeExtension(ctx context.Context, wc workctx.Context, sourcePath string, container *catalog.Format) (*normalizedSource, error) {
	newPath, err := wc.GetNewWorkFile(ctx, container.PrimaryExtension)
	if err != nil {
		return nil, err
	}
	if err := copyFile(sourcePath, newPath); err != nil {
		return nil, err
	}

	reprobed, err := p.probe.Probe(ctx, newPath)
	if err != nil {
		return nil, &ProbeError{Reason: err.Error()}
	}

	original, err := p.probe.Probe(ctx, sourcePath)
	if err != nil {
		return nil, &ProbeError{Reason: err.Error()}
	}
	if reprobed.FormatName != original.FormatName {
		return nil, &FormatError{Reason: "format name changed after extension normalization: spoofed extension"}
	}

	return &normalizedSource{path: newPath, fileInfo: reprobed}, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// validateAllStreams implements spec §4.4(e): a decode-only pass using
// the first 20% of the progress budget.
func (p *Planner) validateAllStreams(ctx context.Context, wc workctx.Context, sourcePath string, fi *model.FileInfo, progress *progressTracker) error {
	progressFile, err := wc.GetNewWorkFile(ctx, "progress")
	if err != nil {
		return err
	}

	cmd := &command.Command{
		Inputs:     []string{sourcePath},
		XError:     true,
		HideBanner: true,
		Overwrite:  true,
		OutputPath: "-",
		Progress:   &command.ProgressSink{URI: progressFile},
	}
	cmd.OutputOverrides = append(cmd.OutputOverrides, command.StreamOverride{Codec: "null"})

	cb := progress.scaledFromDuration(0, 0.20, fi.Duration)
	if err := p.sup.RunRawWithProgress(ctx, p.transcoderPath, cmd.Build(), cb, progressFile, true); err != nil {
		return &ToolchainError{Argv: cmd.Build()}
	}
	progress.used = 0.20
	return nil
}

// probeCompatibility implements spec §4.4(g): a fast path that skips
// probing entirely when every stream's codec is known mp4-muxable (or
// a thumbnail-safe mjpeg/png), otherwise a sequential per-stream copy
// test. The fast path is an optimization only — spec §9's open
// question about dead branches in the original compat fast path
// applies here too, so correctness always falls back to the real
// probe when any stream doesn't qualify.
func (p *Planner) probeCompatibility(ctx context.Context, wc workctx.Context, sourcePath string, fi *model.FileInfo, progress *progressTracker) (map[int]bool, error) {
	compatible := make(map[int]bool, len(fi.Streams))

	if allFastPathCompatible(fi) {
		for _, s := range fi.Streams {
			compatible[s.Common().Index] = true
		}
		return compatible, nil
	}

	for _, s := range fi.Streams {
		idx := s.Common().Index
		tmp, err := wc.GetNewWorkFile(ctx, "mp4")
		if err != nil {
			return nil, err
		}
		ok, err := p.compat.IsCompatible(ctx, sourcePath, idx, tmp)
		if err != nil {
			return nil, fmt.Errorf("planner: compatibility probe: %w", err)
		}
		compatible[idx] = ok
	}
	progress.used += 0.10

	return compatible, nil
}

func allFastPathCompatible(fi *model.FileInfo) bool {
	for _, s := range fi.Streams {
		switch v := s.(type) {
		case *model.VideoStream:
			codec := catalog.FindVideoCodec(v.C.CodecName)
			if codec != nil && codec.SupportsMP4Muxing {
				continue
			}
			if v.C.CodecName == catalog.VideoMJPEG.ProbeName || v.C.CodecName == catalog.VideoPNG.ProbeName {
				continue
			}
			return false
		case *model.AudioStream:
			codec := catalog.FindAudioCodec(v.C.CodecName, "")
			if codec == nil || !codec.SupportsMP4Muxing {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func wrapFileError(wc workctx.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &FileProcessingError{FileID: wc.FileID(), VariantID: wc.VariantID(), Err: err}
}
