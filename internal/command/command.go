// Package command translates a structured Command into the argument
// vector the toolchain binary expects. It performs no I/O and makes no
// decisions about what to transcode; that's the planner's job.
package command

import (
	"fmt"
	"strconv"
)

// Selector identifies a stream by kind and input-order index, per spec
// §6's "<kind>:<index>" stream selector grammar. Kind is one of
// 'v', 'a', 's', 'g' (global/data), or 0 (unset, selector omitted
// entirely). Index of -1 means wildcard: the index portion is elided.
type Selector struct {
	Kind  byte
	Index int
}

// WildcardIndex elides the index portion of a Selector's string form.
const WildcardIndex = -1

// KindAbsolute selects a stream by its absolute, toolchain-reported
// index rather than a kind-relative one (ffmpeg's "-map 0:<n>" form,
// with no kind letter). Used by the compatibility prober, which works
// from Stream.Common().Index rather than a per-kind position.
const KindAbsolute byte = 0xff

func (s Selector) String() string {
	if s.Kind == 0 {
		return ""
	}
	if s.Kind == KindAbsolute {
		return fmt.Sprintf("%d", s.Index)
	}
	if s.Index == WildcardIndex {
		return string(s.Kind)
	}
	return fmt.Sprintf("%c:%d", s.Kind, s.Index)
}

// Empty reports whether the selector carries no kind, and therefore
// produces an empty selector string.
func (s Selector) Empty() bool { return s.Kind == 0 }

// StreamOverride bundles the per-output-stream flags the builder may
// emit for one mapped stream (spec §6's "per-output overrides" list).
// Every field is optional; a zero value means "don't emit this flag".
type StreamOverride struct {
	Selector Selector

	Codec string // "copy", or an encoder name

	PixFmt         string
	ColorRange     string
	ColorTransfer  string
	ColorPrimaries string
	ColorSpace     string
	Filter         string

	CRF        string
	VBRQuality string
	Cutoff     string
	Bitrate    string
	Preset     string
	Profile    string

	Channels   string // -ac
	SampleRate string // -ar
}

// InputOverride bundles per-input flags: a map selector against this
// input file. It carries no metadata mapping; -map_metadata is only
// emitted command-wide, from Command.MapMetadata.
type InputOverride struct {
	InputIndex int
	Map        Selector
}

// MovFlags controls the -movflags value (spec §6).
type MovFlags struct {
	Faststart       bool
	UseMetadataTags bool
}

// String renders the movflags value, or "" if neither flag is set (in
// which case the builder omits -movflags entirely).
func (m MovFlags) String() string {
	switch {
	case m.Faststart && m.UseMetadataTags:
		return "+faststart+use_metadata_tags"
	case m.UseMetadataTags:
		return "+use_metadata_tags"
	case m.Faststart:
		return "+faststart"
	default:
		return ""
	}
}

// ProgressSink configures the -progress/-stats_period pair.
type ProgressSink struct {
	URI string
}

// Seek configures a global input-level seek, rendered as -ss (from the
// start) or -sseof (from the end) ahead of the first input. Used by the
// thumbnail pipeline's retry ladder (spec §4.5).
type Seek struct {
	Seconds float64
	FromEnd bool
}

// Command is the structured, toolchain-agnostic description of one
// invocation. Build translates it into an argv.
type Command struct {
	Inputs []string

	Seek *Seek

	MapChapters *int // -map_chapters <n>; nil omits the flag
	GlobalMap   Selector
	MapMetadata string // e.g. "-1" to strip; "" omits the flag

	InputOverrides  []InputOverride
	OutputOverrides []StreamOverride

	MovFlags MovFlags
	Progress *ProgressSink

	CopyUnknown bool
	XError      bool
	HideBanner  bool
	Overwrite   bool

	OutputPath string
}

// Build renders the argv the toolchain binary should be invoked with,
// in the order spec §6 specifies: inputs, map_chapters, per-input
// overrides, per-output overrides, movflags, progress, then the
// trailing flag cluster and output path.
func (c *Command) Build() []string {
	var args []string

	if c.Seek != nil {
		flag := "-ss"
		seconds := c.Seek.Seconds
		if c.Seek.FromEnd {
			flag = "-sseof"
			if seconds > 0 {
				seconds = -seconds
			}
		}
		args = append(args, flag, strconv.FormatFloat(seconds, 'f', -1, 64))
	}

	for _, in := range c.Inputs {
		args = append(args, "-i", in)
	}

	if c.MapChapters != nil {
		args = append(args, "-map_chapters", fmt.Sprintf("%d", *c.MapChapters))
	}

	for _, io := range c.InputOverrides {
		if !io.Map.Empty() {
			args = append(args, "-map", fmt.Sprintf("%d:%s", io.InputIndex, io.Map))
		}
	}
	if !c.GlobalMap.Empty() {
		args = append(args, "-map", c.GlobalMap.String())
	}
	if c.MapMetadata != "" {
		args = append(args, "-map_metadata", c.MapMetadata)
	}

	for _, ov := range c.OutputOverrides {
		args = append(args, outputOverrideArgs(ov)...)
	}

	if mf := c.MovFlags.String(); mf != "" {
		args = append(args, "-movflags", mf)
	}

	if c.Progress != nil {
		args = append(args, "-progress", c.Progress.URI, "-stats_period", "0.016")
	}

	if c.CopyUnknown {
		args = append(args, "-copy_unknown")
	}
	if c.XError {
		args = append(args, "-xerror")
	}
	if c.HideBanner {
		args = append(args, "-hide_banner")
	}
	if c.Overwrite {
		args = append(args, "-y")
	}

	args = append(args, c.OutputPath)
	return args
}

func outputOverrideArgs(ov StreamOverride) []string {
	sel := ov.Selector.String()
	flag := func(name string) string {
		if sel == "" {
			return name
		}
		return name + ":" + sel
	}

	var args []string
	if ov.Codec != "" {
		args = append(args, flag("-c"), ov.Codec)
	}
	if ov.PixFmt != "" {
		args = append(args, "-pix_fmt", ov.PixFmt)
	}
	if ov.ColorRange != "" {
		args = append(args, "-color_range", ov.ColorRange)
	}
	if ov.ColorTransfer != "" {
		args = append(args, "-color_trc", ov.ColorTransfer)
	}
	if ov.ColorPrimaries != "" {
		args = append(args, "-color_primaries", ov.ColorPrimaries)
	}
	if ov.ColorSpace != "" {
		args = append(args, "-colorspace", ov.ColorSpace)
	}
	if ov.Filter != "" {
		args = append(args, flag("-filter"), ov.Filter)
	}
	if ov.CRF != "" {
		args = append(args, "-crf", ov.CRF)
	}
	if ov.VBRQuality != "" {
		args = append(args, flag("-vbr"), ov.VBRQuality)
	}
	if ov.Cutoff != "" {
		args = append(args, "-cutoff", ov.Cutoff)
	}
	if ov.Bitrate != "" {
		args = append(args, flag("-b"), ov.Bitrate)
	}
	if ov.Preset != "" {
		args = append(args, "-preset", ov.Preset)
	}
	if ov.Profile != "" {
		args = append(args, flag("-profile"), ov.Profile)
	}
	if ov.Channels != "" {
		args = append(args, "-ac", ov.Channels)
	}
	if ov.SampleRate != "" {
		args = append(args, "-ar", ov.SampleRate)
	}
	return args
}
