package planner

import (
	"fmt"
	"strconv"

	"github.com/streamforge/reencoder/internal/catalog"
	"github.com/streamforge/reencoder/internal/command"
	"github.com/streamforge/reencoder/internal/config"
	"github.com/streamforge/reencoder/internal/model"
	"github.com/streamforge/reencoder/internal/probe"
)

// videoReasons records which spec §4.4h reencode triggers fired for one
// video stream. Required() covers the triggers that mandate a
// transcode outright; Optional() covers the fidelity-tuning triggers,
// which still cause a reencode (and so a remux) but don't count toward
// a guaranteed-required remux (spec §4.4f's "optional" reencode
// category).
type videoReasons struct {
	CodecMissingFromResult bool
	CodecNotMP4Muxable     bool
	ModeAlways             bool
	ModeNotAvoid           bool
	Incompatible           bool
	ResizeNeeded           bool
	FPSExceeded            bool
	BitDepthExcess         bool
	ChromaExceeds          bool
	HDRRemap               bool
	NonStandardPixFmt      bool
}

func (r videoReasons) Required() bool {
	return r.CodecMissingFromResult || r.CodecNotMP4Muxable || r.ModeAlways || r.Incompatible
}

func (r videoReasons) Optional() bool {
	return r.ResizeNeeded || r.FPSExceeded || r.BitDepthExcess || r.ChromaExceeds || r.HDRRemap || r.NonStandardPixFmt
}

func (r videoReasons) Reencode() bool {
	return r.Required() || r.Optional() || r.ModeNotAvoid
}

// classifyVideoStream evaluates every spec §4.4h trigger for a single
// video stream against the configured options and the stream's known
// container compatibility.
func classifyVideoStream(v *model.VideoStream, opts *config.Options, compatible bool) videoReasons {
	var r videoReasons

	codec := catalog.FindVideoCodec(v.C.CodecName)
	r.CodecMissingFromResult = !stringInList(opts.ResultVideoCodecs, v.C.CodecName)
	r.CodecNotMP4Muxable = codec == nil || !codec.SupportsMP4Muxing
	r.ModeAlways = opts.VideoReencodeMode == config.ReencodeAlways
	r.ModeNotAvoid = opts.VideoReencodeMode != config.ReencodeAvoid
	r.Incompatible = !compatible

	if opts.ResizeOptions != nil {
		_, _, needed := computeResize(v.Width, v.Height, opts.ResizeOptions.Width, opts.ResizeOptions.Height)
		r.ResizeNeeded = needed
	}
	if opts.FPSOptions != nil && opts.FPSOptions.TargetFPS > 0 {
		num, den := limitFPS(*opts.FPSOptions, v.FPSNum, v.FPSDen)
		r.FPSExceeded = num != v.FPSNum || den != v.FPSDen
	}
	if opts.MaxBitsPerChannel != config.BitDepthPreserve && v.BitsPerSample > int(opts.MaxBitsPerChannel) {
		r.BitDepthExcess = true
	}
	if opts.MaxChromaSubsampling != config.ChromaPreserve {
		if chromaOf(v.PixFmt) > int(opts.MaxChromaSubsampling) {
			r.ChromaExceeds = true
		}
	}
	r.HDRRemap = opts.RemapHDRToSDR && v.IsHDR()
	r.NonStandardPixFmt = !isStandardPixFmt(v.PixFmt)

	return r
}

// audioReasons mirrors videoReasons for audio streams.
type audioReasons struct {
	CodecMissingFromResult bool
	CodecNotMP4Muxable     bool
	ModeAlways             bool
	ModeNotAvoid           bool
	Incompatible           bool
	ChannelsExceeded       bool
	SampleRateExceeded     bool
}

func (r audioReasons) Required() bool {
	return r.CodecMissingFromResult || r.CodecNotMP4Muxable || r.ModeAlways || r.Incompatible
}

func (r audioReasons) Optional() bool {
	return r.ChannelsExceeded || r.SampleRateExceeded
}

func (r audioReasons) Reencode() bool {
	return r.Required() || r.Optional() || r.ModeNotAvoid
}

func classifyAudioStream(a *model.AudioStream, opts *config.Options, compatible bool) audioReasons {
	var r audioReasons

	codec := catalog.FindAudioCodec(a.C.CodecName, "")
	r.CodecMissingFromResult = !stringInList(opts.ResultAudioCodecs, a.C.CodecName)
	r.CodecNotMP4Muxable = codec == nil || !codec.SupportsMP4Muxing
	r.ModeAlways = opts.AudioReencodeMode == config.ReencodeAlways
	r.ModeNotAvoid = opts.AudioReencodeMode != config.ReencodeAvoid
	r.Incompatible = !compatible

	if opts.MaxChannels != nil && a.Channels > *opts.MaxChannels {
		r.ChannelsExceeded = true
	}
	if opts.MaxSampleRate != nil && a.SampleRate != nil && *a.SampleRate > *opts.MaxSampleRate {
		r.SampleRateExceeded = true
	}

	return r
}

func stringInList(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// chromaOf maps a pix_fmt token to its chroma-subsampling ratio; pix
// formats this planner doesn't recognize map to 0, so they never exceed
// a chroma limit (isStandardPixFmt flags them for reencode instead).
func chromaOf(pixFmt string) int {
	switch pixFmt {
	case "yuv420p", "yuv420p10le", "yuv420p12le", "nv12", "p010le":
		return 420
	case "yuv422p", "yuv422p10le", "yuv422p12le":
		return 422
	case "yuv444p", "yuv444p10le", "yuv444p12le":
		return 444
	default:
		return 0
	}
}

func isStandardPixFmt(pixFmt string) bool {
	return chromaOf(pixFmt) != 0
}

// pixFmtGrid is the (chroma x bit depth) lookup spec §4.4h describes.
var pixFmtGrid = map[[2]int]string{
	{420, 8}: "yuv420p", {420, 10}: "yuv420p10le", {420, 12}: "yuv420p12le",
	{422, 8}: "yuv422p", {422, 10}: "yuv422p10le", {422, 12}: "yuv422p12le",
	{444, 8}: "yuv444p", {444, 10}: "yuv444p10le", {444, 12}: "yuv444p12le",
}

// selectPixFmt picks an output pixel format from the chroma x bit-depth
// grid, clamping to the codec's maximum (H.264 tops out at 10-bit).
func selectPixFmt(chroma config.ChromaSubsamplingLimit, bits config.BitDepthLimit, codec *catalog.VideoCodec) string {
	c := int(chroma)
	if c == 0 {
		c = 420
	}
	b := int(bits)
	if b == 0 {
		b = 8
	}
	if codec == catalog.VideoH264 && b > 10 {
		b = 10
	}
	if pf, ok := pixFmtGrid[[2]int{c, b}]; ok {
		return pf
	}
	return "yuv420p"
}

// hdrToSDRFilter renders the fixed HDR→SDR tonemap chain spec §4.4h
// names: linearize, convert to a float RGB working space, reset to
// BT.709 primaries, Mobius tonemap, BT.709 transfer/matrix at PC
// range, then convert to the chosen output pixel format.
func hdrToSDRFilter(pixFmt string) string {
	return fmt.Sprintf(
		"zscale=transfer=linear,format=gbrpf32le,zscale=primaries=bt709,tonemap=tonemap=mobius,zscale=transfer=bt709:matrix=bt709:range=pc,format=%s",
		pixFmt,
	)
}

// rangeConversionFilter is the non-HDR scale-filter range fixup spec
// §4.4h calls for when only the color range needs correcting.
func rangeConversionFilter(outRange string) string {
	return fmt.Sprintf("scale=out_range=%s", outRange)
}

// limitFPS applies the configured FPS cap, returning the (possibly
// unchanged) rational. LimitToExact forces the target fps outright;
// LimitByIntegerDivision reduces the source fps by the smallest
// integer divisor that brings it at or under the target, per spec
// §8's boundary behaviors.
func limitFPS(opts config.FPSOptions, curNum, curDen int) (num, den int) {
	if curDen == 0 || opts.TargetFPS <= 0 {
		return curNum, curDen
	}
	switch opts.Mode {
	case config.FPSLimitToExact:
		return opts.TargetFPS, 1
	case config.FPSLimitByIntegerDivision:
		return limitByIntegerDivision(curNum, curDen, opts.TargetFPS)
	default:
		return curNum, curDen
	}
}

func limitByIntegerDivision(curNum, curDen, target int) (num, den int) {
	ratio := float64(curNum) / float64(curDen) / float64(target)
	div := ceilInt(ratio)
	if div <= 1 {
		return curNum, curDen
	}
	g := gcd(div, curNum)
	if g == 0 {
		g = 1
	}
	return curNum / g, curDen * (div / g)
}

func ceilInt(f float64) int {
	i := int(f)
	if float64(i) < f {
		i++
	}
	return i
}

func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// computeResize fits (width, height) inside (maxWidth, maxHeight),
// preserving aspect ratio. A source already within bounds is a no-op
// (needed = false); even one pixel over triggers a rescale (spec §8).
// Output dimensions are rounded down to even values, matching common
// codec macroblock constraints.
func computeResize(width, height, maxWidth, maxHeight int) (newWidth, newHeight int, needed bool) {
	if width <= 0 || height <= 0 || maxWidth <= 0 || maxHeight <= 0 {
		return width, height, false
	}
	if width <= maxWidth && height <= maxHeight {
		return width, height, false
	}
	scaleW := float64(maxWidth) / float64(width)
	scaleH := float64(maxHeight) / float64(height)
	scale := scaleW
	if scaleH < scaleW {
		scale = scaleH
	}
	newWidth = int(float64(width) * scale)
	newHeight = int(float64(height) * scale)
	if newWidth%2 != 0 {
		newWidth--
	}
	if newHeight%2 != 0 {
		newHeight--
	}
	if newWidth <= 0 || newHeight <= 0 {
		return width, height, false
	}
	return newWidth, newHeight, true
}

// aacDefaultVBRQuality is the libfdk_aac VBR quality this planner
// requests when the preferred encoder is available; 4 is high enough
// to also qualify for the 20kHz cutoff spec §4.4h describes.
const aacDefaultVBRQuality = 4

// selectAudioEncoder picks between the preferred high-fidelity AAC
// encoder and the toolchain's native fallback, per spec §4.4h.
func selectAudioEncoder(matrix *probe.Matrix, channels int) command.StreamOverride {
	if matrix != nil && matrix.HasEncoder(catalog.PreferredAACEncoder) {
		ov := command.StreamOverride{
			Codec:      catalog.PreferredAACEncoder,
			VBRQuality: strconv.Itoa(aacDefaultVBRQuality),
			Profile:    "lc",
		}
		if aacDefaultVBRQuality >= 4 {
			ov.Cutoff = "20000"
		}
		return ov
	}
	perChannelBitrate := channels * 64000
	return command.StreamOverride{
		Codec:   catalog.NativeAACEncoder,
		Bitrate: strconv.Itoa(perChannelBitrate),
	}
}
