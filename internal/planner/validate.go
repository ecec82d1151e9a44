package planner

import (
	"github.com/streamforge/reencoder/internal/config"
	"github.com/streamforge/reencoder/internal/model"
)

// validationResult carries what stage (d) discovered while walking the
// streams, consumed by stage (f)'s remux-necessity computation.
type validationResult struct {
	AnyOptionalReencode bool
}

// validateStreams implements spec §4.4(d): per-stream bound checks,
// codec acceptance filters, and stream-count bounds, plus recording
// whether any stream would need a reencode for a purely optional
// reason (resize, bit-depth, chroma, fps, HDR, channel count, sample
// rate).
func validateStreams(fi *model.FileInfo, opts *config.Options) (validationResult, error) {
	var res validationResult

	videoStreams := fi.VideoStreams()
	audioStreams := fi.AudioStreams()

	playableVideo := 0
	for _, v := range videoStreams {
		if v.IsAttachedPic() || v.IsTimedThumbnails() {
			continue
		}
		playableVideo++

		if len(opts.SourceVideoCodecs) > 0 && !stringInList(opts.SourceVideoCodecs, v.C.CodecName) {
			return res, &ValidationError{Reason: "video stream uses codec " + v.C.CodecName + " not in source_video_codecs"}
		}
		if err := checkBound(opts.VideoSourceValidation.Width, v.Width, "video width"); err != nil {
			return res, err
		}
		if err := checkBound(opts.VideoSourceValidation.Height, v.Height, "video height"); err != nil {
			return res, err
		}
		if err := checkBound(opts.VideoSourceValidation.PixelCount, v.PixelCount(), "video pixel count"); err != nil {
			return res, err
		}
		if v.DurationSeconds != nil {
			if err := checkDurationBound(opts.VideoSourceValidation.DurationSecs, *v.DurationSeconds, "video duration"); err != nil {
				return res, err
			}
		}

		if videoOptionalReencodeNeeded(v, opts) {
			res.AnyOptionalReencode = true
		}
	}

	for _, a := range audioStreams {
		if len(opts.SourceAudioCodecs) > 0 && !stringInList(opts.SourceAudioCodecs, a.C.CodecName) {
			return res, &ValidationError{Reason: "audio stream uses codec " + a.C.CodecName + " not in source_audio_codecs"}
		}
		if a.DurationSeconds != nil {
			if err := checkDurationBound(opts.AudioSourceValidation.DurationSecs, *a.DurationSeconds, "audio duration"); err != nil {
				return res, err
			}
		}
		if audioOptionalReencodeNeeded(a, opts) {
			res.AnyOptionalReencode = true
		}
	}

	if err := checkCountBound(opts.VideoSourceValidation.StreamCount, playableVideo, "video stream count"); err != nil {
		return res, err
	}
	if err := checkCountBound(opts.AudioSourceValidation.StreamCount, len(audioStreams), "audio stream count"); err != nil {
		return res, err
	}

	if playableVideo == 0 && len(audioStreams) == 0 {
		return res, &ValidationError{Reason: "no audio or video streams"}
	}

	return res, nil
}

func videoOptionalReencodeNeeded(v *model.VideoStream, opts *config.Options) bool {
	if opts.ResizeOptions != nil {
		if _, _, needed := computeResize(v.Width, v.Height, opts.ResizeOptions.Width, opts.ResizeOptions.Height); needed {
			return true
		}
	}
	if opts.FPSOptions != nil && opts.FPSOptions.TargetFPS > 0 {
		if num, den := limitFPS(*opts.FPSOptions, v.FPSNum, v.FPSDen); num != v.FPSNum || den != v.FPSDen {
			return true
		}
	}
	if opts.MaxBitsPerChannel != config.BitDepthPreserve && v.BitsPerSample > int(opts.MaxBitsPerChannel) {
		return true
	}
	if opts.MaxChromaSubsampling != config.ChromaPreserve && chromaOf(v.PixFmt) > int(opts.MaxChromaSubsampling) {
		return true
	}
	if opts.RemapHDRToSDR && v.IsHDR() {
		return true
	}
	return false
}

func audioOptionalReencodeNeeded(a *model.AudioStream, opts *config.Options) bool {
	if opts.MaxChannels != nil && a.Channels > *opts.MaxChannels {
		return true
	}
	if opts.MaxSampleRate != nil && a.SampleRate != nil && *a.SampleRate > *opts.MaxSampleRate {
		return true
	}
	return false
}

func checkBound(b config.Bounds, v int, label string) error {
	if b.Min != nil && v < *b.Min {
		return &ValidationError{Reason: label + " below minimum"}
	}
	if b.Max != nil && v > *b.Max {
		return &ValidationError{Reason: label + " above maximum"}
	}
	return nil
}

func checkCountBound(b config.Bounds, v int, label string) error {
	return checkBound(b, v, label)
}

func checkDurationBound(b config.Bounds, v float64, label string) error {
	if b.Min != nil && v < float64(*b.Min) {
		return &ValidationError{Reason: label + " below minimum"}
	}
	if b.Max != nil && v > float64(*b.Max) {
		return &ValidationError{Reason: label + " above maximum"}
	}
	return nil
}
