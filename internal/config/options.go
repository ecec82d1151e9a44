// Package config holds the immutable per-invocation ProcessingOptions,
// the one-shot toolchain path latch, and an optional fsnotify-backed
// hot-reload watcher for Options presets.
package config

import (
	"fmt"

	"github.com/streamforge/reencoder/internal/catalog"
)

// ReencodeMode is one of Always, AvoidReencoding, SelectSmallest.
type ReencodeMode string

const (
	ReencodeAlways          ReencodeMode = "always"
	ReencodeAvoid           ReencodeMode = "avoid_reencoding"
	ReencodeSelectSmallest  ReencodeMode = "select_smallest"
)

// BitDepthLimit is one of Preserve, 8, 10, 12.
type BitDepthLimit int

const (
	BitDepthPreserve BitDepthLimit = 0
	BitDepth8        BitDepthLimit = 8
	BitDepth10       BitDepthLimit = 10
	BitDepth12       BitDepthLimit = 12
)

// ChromaSubsamplingLimit is one of Preserve, 420, 422, 444.
type ChromaSubsamplingLimit int

const (
	ChromaPreserve ChromaSubsamplingLimit = 0
	Chroma420      ChromaSubsamplingLimit = 420
	Chroma422      ChromaSubsamplingLimit = 422
	Chroma444      ChromaSubsamplingLimit = 444
)

// FPSMode selects how fps_options caps the output frame rate.
type FPSMode string

const (
	FPSLimitToExact           FPSMode = "limit_to_exact"
	FPSLimitByIntegerDivision FPSMode = "limit_by_integer_division"
)

// FPSOptions caps the output frame rate per spec §3.
type FPSOptions struct {
	Mode      FPSMode
	TargetFPS int
}

// ResizeOptions bounds output dimensions, fit-inside preserving aspect.
type ResizeOptions struct {
	Width, Height int
}

// MetadataStrippingMode is one of None, ThumbnailOnly, Preferred, Required.
type MetadataStrippingMode string

const (
	MetadataNone          MetadataStrippingMode = "none"
	MetadataThumbnailOnly MetadataStrippingMode = "thumbnail_only"
	MetadataPreferred     MetadataStrippingMode = "preferred"
	MetadataRequired      MetadataStrippingMode = "required"
)

// Bounds is a generic min/max pair; a nil pointer means "no bound".
type Bounds struct {
	Min, Max *int
}

// SourceValidation bounds acceptable source stream properties (spec
// §3's audio_source_validation / video_source_validation).
type SourceValidation struct {
	StreamCount   Bounds
	Width         Bounds
	Height        Bounds
	PixelCount    Bounds
	DurationSecs  Bounds
}

// ProgressCallback reports fractional completion in [0, 1].
type ProgressCallback func(fraction float64)

// Options is the immutable configuration consumed by one planner
// invocation. Construct via New, which validates invariants (i)-(iii)
// from spec §3.
type Options struct {
	SourceVideoCodecs []string
	SourceAudioCodecs []string
	SourceFormats     []string

	ResultVideoCodecs []string
	ResultAudioCodecs []string
	ResultFormats     []string

	VideoReencodeMode ReencodeMode
	AudioReencodeMode ReencodeMode

	MaxBitsPerChannel      BitDepthLimit
	MaxChromaSubsampling   ChromaSubsamplingLimit

	FPSOptions    *FPSOptions
	ResizeOptions *ResizeOptions

	RemapHDRToSDR bool

	MaxChannels   *int
	MaxSampleRate *int

	MetadataStrippingMode MetadataStrippingMode

	ForceProgressiveDownload      bool
	TryPreserveUnrecognizedStreams bool
	ForceValidateAllStreams       bool
	RemoveAudioStreams            bool
	ForceSquarePixels             bool
	ForceProgressiveFrames        bool

	AudioSourceValidation SourceValidation
	VideoSourceValidation SourceValidation

	ProgressCallback ProgressCallback

	ThrowWhenReencodeOptional bool
}

// Option configures an Options value during construction.
type Option func(*Options)

// New builds an immutable Options, applying opts in order and then
// validating invariants (i)-(iii) from spec §3.
func New(opts ...Option) (*Options, error) {
	o := &Options{
		VideoReencodeMode:     ReencodeAvoid,
		AudioReencodeMode:     ReencodeAvoid,
		MetadataStrippingMode: MetadataPreferred,
	}
	for _, apply := range opts {
		apply(o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func WithSourceVideoCodecs(codecs ...string) Option {
	return func(o *Options) { o.SourceVideoCodecs = dedupe(codecs) }
}
func WithSourceAudioCodecs(codecs ...string) Option {
	return func(o *Options) { o.SourceAudioCodecs = dedupe(codecs) }
}
func WithSourceFormats(formats ...string) Option {
	return func(o *Options) { o.SourceFormats = dedupe(formats) }
}
func WithResultVideoCodecs(codecs ...string) Option {
	return func(o *Options) { o.ResultVideoCodecs = dedupe(codecs) }
}
func WithResultAudioCodecs(codecs ...string) Option {
	return func(o *Options) { o.ResultAudioCodecs = dedupe(codecs) }
}
func WithResultFormats(formats ...string) Option {
	return func(o *Options) { o.ResultFormats = dedupe(formats) }
}
func WithReencodeModes(video, audio ReencodeMode) Option {
	return func(o *Options) { o.VideoReencodeMode = video; o.AudioReencodeMode = audio }
}
func WithBitDepthLimit(limit BitDepthLimit) Option {
	return func(o *Options) { o.MaxBitsPerChannel = limit }
}
func WithChromaLimit(limit ChromaSubsamplingLimit) Option {
	return func(o *Options) { o.MaxChromaSubsampling = limit }
}
func WithFPSOptions(mode FPSMode, targetFPS int) Option {
	return func(o *Options) { o.FPSOptions = &FPSOptions{Mode: mode, TargetFPS: targetFPS} }
}
func WithResizeOptions(width, height int) Option {
	return func(o *Options) { o.ResizeOptions = &ResizeOptions{Width: width, Height: height} }
}
func WithRemapHDRToSDR(v bool) Option { return func(o *Options) { o.RemapHDRToSDR = v } }
func WithMaxChannels(n int) Option    { return func(o *Options) { o.MaxChannels = &n } }
func WithMaxSampleRate(n int) Option  { return func(o *Options) { o.MaxSampleRate = &n } }
func WithMetadataStrippingMode(m MetadataStrippingMode) Option {
	return func(o *Options) { o.MetadataStrippingMode = m }
}
func WithForceProgressiveDownload(v bool) Option { return func(o *Options) { o.ForceProgressiveDownload = v } }
func WithTryPreserveUnrecognizedStreams(v bool) Option {
	return func(o *Options) { o.TryPreserveUnrecognizedStreams = v }
}
func WithForceValidateAllStreams(v bool) Option { return func(o *Options) { o.ForceValidateAllStreams = v } }
func WithRemoveAudioStreams(v bool) Option       { return func(o *Options) { o.RemoveAudioStreams = v } }
func WithForceSquarePixels(v bool) Option        { return func(o *Options) { o.ForceSquarePixels = v } }
func WithForceProgressiveFrames(v bool) Option   { return func(o *Options) { o.ForceProgressiveFrames = v } }
func WithProgressCallback(cb ProgressCallback) Option {
	return func(o *Options) { o.ProgressCallback = cb }
}
func WithThrowWhenReencodeOptional(v bool) Option {
	return func(o *Options) { o.ThrowWhenReencodeOptional = v }
}

// ThumbnailOptions configures the Thumbnail Pipeline (spec §4.5), a
// narrower parallel surface to the main Options above. AbsoluteSeconds
// and Fraction are both optional; at least one must be set for a
// non-still-image source, or timestamp selection fails.
type ThumbnailOptions struct {
	AbsoluteSeconds *float64
	Fraction        *float64

	IncludeThumbnailVideoStreams bool

	RemapHDRToSDR     bool
	ForceSquarePixels bool

	MaxDimension    int // per-side cap; 0 defaults to 32767
	PixelByteBudget int // 0 means unbounded
}

func (o *Options) validate() error {
	if len(o.ResultVideoCodecs) == 0 {
		return fmt.Errorf("config: result_video_codecs must be non-empty")
	}
	if len(o.ResultAudioCodecs) == 0 {
		return fmt.Errorf("config: result_audio_codecs must be non-empty")
	}
	if len(o.ResultFormats) == 0 {
		return fmt.Errorf("config: result_formats must be non-empty")
	}

	if vc := catalog.FindVideoCodec(o.ResultVideoCodecs[0]); vc == nil || !vc.SupportsMP4Muxing {
		return fmt.Errorf("config: first result_video_codecs entry %q is not encodable", o.ResultVideoCodecs[0])
	}
	if ac := catalog.FindAudioCodec(o.ResultAudioCodecs[0], ""); ac == nil || !ac.SupportsMP4Muxing {
		return fmt.Errorf("config: first result_audio_codecs entry %q is not encodable", o.ResultAudioCodecs[0])
	}
	if f := catalog.FindFormat(o.ResultFormats[0]); f == nil || !f.SupportsWriting {
		return fmt.Errorf("config: first result_formats entry %q is not writable", o.ResultFormats[0])
	}

	if err := checkBounds(o.AudioSourceValidation); err != nil {
		return fmt.Errorf("config: audio_source_validation: %w", err)
	}
	if err := checkBounds(o.VideoSourceValidation); err != nil {
		return fmt.Errorf("config: video_source_validation: %w", err)
	}

	return nil
}

func checkBounds(v SourceValidation) error {
	pairs := []Bounds{v.StreamCount, v.Width, v.Height, v.PixelCount, v.DurationSecs}
	for _, b := range pairs {
		if b.Min != nil && b.Max != nil && *b.Min > *b.Max {
			return fmt.Errorf("min bound %d exceeds max bound %d", *b.Min, *b.Max)
		}
	}
	return nil
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
