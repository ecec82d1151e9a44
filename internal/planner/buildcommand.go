package planner

import (
	"strconv"

	"github.com/streamforge/reencoder/internal/catalog"
	"github.com/streamforge/reencoder/internal/command"
	"github.com/streamforge/reencoder/internal/config"
	"github.com/streamforge/reencoder/internal/model"
	"github.com/streamforge/reencoder/internal/probe"
)

// plannedStream records, for one output stream, the absolute input
// index it's mapped from and whether it's part of the size-check list
// spec §4.4(h)'s last paragraph describes — tracked so the size-compare
// pass (stage j) can later re-map it from either the source or the
// transcoded result.
type plannedStream struct {
	AbsoluteIndex       int
	Kind                model.Kind
	Extension           string
	Tracked             bool
	NeedsReencodeForMP4 bool
}

// buildPlan is stage (h)'s output: the command to run plus enough
// bookkeeping for the size-compare pass.
type buildPlan struct {
	Command             *command.Command
	Streams             []plannedStream
	AnyReencode         bool
	AnyGuaranteedReencode bool
}

// buildOverrides walks fi.Streams in input order and assembles the
// toolchain invocation spec §4.4(h) describes: per-stream codec/filter
// overrides for video and audio, copy-or-transcode for subtitles, and
// keep-or-drop for unrecognized/thumbnail streams.
func buildOverrides(fi *model.FileInfo, opts *config.Options, matrix *probe.Matrix, compatible map[int]bool, outputPath string) buildPlan {
	var plan buildPlan
	plan.Command = &command.Command{
		Inputs:      []string{""}, // caller fills in Inputs[0] with the normalized source path
		OutputOverrides: nil,
		MovFlags: command.MovFlags{
			Faststart:       opts.ForceProgressiveDownload,
			UseMetadataTags: opts.MetadataStrippingMode != config.MetadataRequired,
		},
		CopyUnknown: opts.TryPreserveUnrecognizedStreams,
		XError:      true,
		HideBanner:  true,
		Overwrite:   true,
		OutputPath:  outputPath,
	}
	if opts.MetadataStrippingMode == config.MetadataRequired || opts.MetadataStrippingMode == config.MetadataPreferred {
		plan.Command.MapMetadata = "-1"
	}
	zero := 0
	plan.Command.MapChapters = &zero

	for _, s := range fi.Streams {
		idx := s.Common().Index

		switch v := s.(type) {
		case *model.VideoStream:
			if v.IsAttachedPic() || v.IsTimedThumbnails() {
				if opts.MetadataStrippingMode == config.MetadataNone && compatible[idx] {
					plan.addCopy(idx, model.KindVideo, catalog.VideoMJPEG.ProbeName)
				}
				continue
			}
			reasons := classifyVideoStream(v, opts, compatible[idx])
			plan.AnyGuaranteedReencode = plan.AnyGuaranteedReencode || reasons.Required()
			if !reasons.Reencode() {
				plan.addCopy(idx, model.KindVideo, "")
				continue
			}
			plan.AnyReencode = true
			plan.addVideoReencode(v, opts, reasons)
			if opts.VideoReencodeMode == config.ReencodeSelectSmallest && !reasons.Required() {
				plan.trackForSizeCheck(idx, model.KindVideo, reasons.CodecNotMP4Muxable)
			}

		case *model.AudioStream:
			if opts.RemoveAudioStreams {
				continue
			}
			reasons := classifyAudioStream(v, opts, compatible[idx])
			plan.AnyGuaranteedReencode = plan.AnyGuaranteedReencode || reasons.Required()
			if !reasons.Reencode() {
				plan.addCopy(idx, model.KindAudio, "")
				continue
			}
			plan.AnyReencode = true
			plan.addAudioReencode(v, opts, matrix, reasons)
			if opts.AudioReencodeMode == config.ReencodeSelectSmallest && !reasons.Required() {
				plan.trackForSizeCheck(idx, model.KindAudio, reasons.CodecNotMP4Muxable)
			}

		case *model.SubtitleStream:
			if !opts.TryPreserveUnrecognizedStreams {
				continue
			}
			if compatible[idx] {
				plan.addCopy(idx, model.KindSubtitle, "")
				continue
			}
			ov := command.StreamOverride{
				Selector: command.Selector{Kind: command.KindAbsolute, Index: idx},
				Codec:    catalog.SubtitleCodecMP4,
			}
			plan.Command.OutputOverrides = append(plan.Command.OutputOverrides, ov)
			plan.Streams = append(plan.Streams, plannedStream{AbsoluteIndex: idx, Kind: model.KindSubtitle})

		case *model.UnrecognizedStream:
			if opts.MetadataStrippingMode == config.MetadataNone && compatible[idx] {
				plan.addCopy(idx, model.KindUnrecognized, "")
			}
		}
	}

	return plan
}

func (p *buildPlan) addCopy(absoluteIndex int, kind model.Kind, extension string) {
	sel := command.Selector{Kind: command.KindAbsolute, Index: absoluteIndex}
	p.Command.OutputOverrides = append(p.Command.OutputOverrides, command.StreamOverride{Selector: sel, Codec: "copy"})
	p.Streams = append(p.Streams, plannedStream{AbsoluteIndex: absoluteIndex, Kind: kind, Extension: extension})
}

func (p *buildPlan) trackForSizeCheck(absoluteIndex int, kind model.Kind, needsReencodeForMP4 bool) {
	for i := range p.Streams {
		if p.Streams[i].AbsoluteIndex == absoluteIndex {
			p.Streams[i].Tracked = true
			p.Streams[i].NeedsReencodeForMP4 = needsReencodeForMP4
			return
		}
	}
}

func (p *buildPlan) addVideoReencode(v *model.VideoStream, opts *config.Options, reasons videoReasons) {
	sel := command.Selector{Kind: command.KindAbsolute, Index: v.C.Index}
	codec := catalog.FindVideoCodec(opts.ResultVideoCodecs[0])
	pixFmt := selectPixFmt(opts.MaxChromaSubsampling, opts.MaxBitsPerChannel, codec)

	ov := command.StreamOverride{
		Selector: sel,
		Codec:    encoderNameFor(codec),
		PixFmt:   pixFmt,
		ColorRange: "pc",
	}

	if reasons.HDRRemap {
		ov.Filter = hdrToSDRFilter(pixFmt)
		ov.ColorTransfer = "bt709"
		ov.ColorPrimaries = "bt709"
		ov.ColorSpace = "bt709"
	} else if v.ColorRange != "pc" {
		ov.Filter = rangeConversionFilter("pc")
	}

	if reasons.ResizeNeeded && opts.ResizeOptions != nil {
		w, h, _ := computeResize(v.Width, v.Height, opts.ResizeOptions.Width, opts.ResizeOptions.Height)
		scaleFilter := "scale=" + strconv.Itoa(w) + ":" + strconv.Itoa(h)
		if ov.Filter != "" {
			ov.Filter += "," + scaleFilter
		} else {
			ov.Filter = scaleFilter
		}
	}

	if reasons.FPSExceeded && opts.FPSOptions != nil {
		ov.Filter = appendFilter(ov.Filter, "fps="+strconv.Itoa(opts.FPSOptions.TargetFPS))
	}

	if codec == catalog.VideoH264 {
		ov.Profile = "high"
		ov.Preset = "slow"
		ov.CRF = "18"
	}

	p.Command.OutputOverrides = append(p.Command.OutputOverrides, ov)
	p.Streams = append(p.Streams, plannedStream{AbsoluteIndex: v.C.Index, Kind: model.KindVideo})
}

func appendFilter(existing, add string) string {
	if existing == "" {
		return add
	}
	return existing + "," + add
}

func encoderNameFor(codec *catalog.VideoCodec) string {
	switch codec {
	case catalog.VideoH264:
		return "libx264"
	case catalog.VideoHEVC:
		return "libx265"
	default:
		return "libx264"
	}
}

func (p *buildPlan) addAudioReencode(a *model.AudioStream, opts *config.Options, matrix *probe.Matrix, reasons audioReasons) {
	sel := command.Selector{Kind: command.KindAbsolute, Index: a.C.Index}
	ov := selectAudioEncoder(matrix, a.Channels)
	ov.Selector = sel

	// Downmix/resample per spec §3 and §4.4(h): exceeding max_channels or
	// max_sample_rate triggers -ac/-ar down to the configured bound.
	if reasons.ChannelsExceeded && opts.MaxChannels != nil {
		ov.Channels = strconv.Itoa(*opts.MaxChannels)
	}
	if reasons.SampleRateExceeded && opts.MaxSampleRate != nil {
		ov.SampleRate = strconv.Itoa(*opts.MaxSampleRate)
	}

	p.Command.OutputOverrides = append(p.Command.OutputOverrides, ov)
	p.Streams = append(p.Streams, plannedStream{AbsoluteIndex: a.C.Index, Kind: model.KindAudio})
}
