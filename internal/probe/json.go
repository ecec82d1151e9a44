// Package probe invokes the toolchain's probe binary to build a
// model.FileInfo from a source file and to build the process-wide
// capability matrix recording which encoders, decoders, muxers,
// demuxers, and filters the toolchain provides.
package probe

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/streamforge/reencoder/internal/model"
)

type rawDisposition struct {
	Default         int `json:"default"`
	Dub             int `json:"dub"`
	Original        int `json:"original"`
	Comment         int `json:"comment"`
	Lyrics          int `json:"lyrics"`
	Karaoke         int `json:"karaoke"`
	Forced          int `json:"forced"`
	HearingImpaired int `json:"hearing_impaired"`
	VisualImpaired  int `json:"visual_impaired"`
	CleanEffects    int `json:"clean_effects"`
	AttachedPic     int `json:"attached_pic"`
	TimedThumbnails int `json:"timed_thumbnails"`
	NonDiegetic     int `json:"non_diegetic"`
	Captions        int `json:"captions"`
	Descriptions    int `json:"descriptions"`
	Metadata        int `json:"metadata"`
	Dependent       int `json:"dependent"`
	Multilayer      int `json:"multilayer"`
	StillImage      int `json:"still_image"`
}

func (d rawDisposition) toModel() model.Disposition {
	var out model.Disposition
	add := func(v int, flag model.Disposition) {
		if v != 0 {
			out |= flag
		}
	}
	add(d.Default, model.DispositionDefault)
	add(d.Dub, model.DispositionDub)
	add(d.Original, model.DispositionOriginal)
	add(d.Comment, model.DispositionComment)
	add(d.Lyrics, model.DispositionLyrics)
	add(d.Karaoke, model.DispositionKaraoke)
	add(d.Forced, model.DispositionForced)
	add(d.HearingImpaired, model.DispositionHearingImpaired)
	add(d.VisualImpaired, model.DispositionVisualImpaired)
	add(d.CleanEffects, model.DispositionCleanEffects)
	add(d.AttachedPic, model.DispositionAttachedPic)
	add(d.TimedThumbnails, model.DispositionTimedThumbnails)
	add(d.NonDiegetic, model.DispositionNonDiegetic)
	add(d.Captions, model.DispositionCaptions)
	add(d.Descriptions, model.DispositionDescriptions)
	add(d.Metadata, model.DispositionMetadata)
	add(d.Dependent, model.DispositionDependent)
	add(d.Multilayer, model.DispositionMultilayer)
	add(d.StillImage, model.DispositionStillImage)
	return out
}

type rawTags struct {
	Language  string `json:"language"`
	Title     string `json:"title"`
	AlphaMode string `json:"alpha_mode"`
}

type rawStream struct {
	Index            int             `json:"index"`
	CodecType        string          `json:"codec_type"`
	CodecName        string          `json:"codec_name"`
	CodecTagString   string          `json:"codec_tag_string"`
	Profile          string          `json:"profile"`
	Width            *int            `json:"width"`
	Height           *int            `json:"height"`
	RFrameRate       string          `json:"r_frame_rate"`
	SampleAspectRatio string         `json:"sample_aspect_ratio"`
	Duration         string          `json:"duration"`
	ColorRange       string          `json:"color_range"`
	ColorTransfer    string          `json:"color_transfer"`
	ColorPrimaries   string          `json:"color_primaries"`
	ColorSpace       string          `json:"color_space"`
	PixFmt           string          `json:"pix_fmt"`
	FieldOrder       string          `json:"field_order"`
	BitsPerRawSample string          `json:"bits_per_raw_sample"`
	Channels         *int            `json:"channels"`
	SampleRate       string          `json:"sample_rate"`
	ChannelLayout    string          `json:"channel_layout"`
	Disposition      rawDisposition  `json:"disposition"`
	Tags             rawTags         `json:"tags"`
}

type rawFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
}

type rawProbeOutput struct {
	Streams []rawStream `json:"streams"`
	Format  rawFormat   `json:"format"`
}

// sentinelInt is the documented sentinel for a missing integer field.
const sentinelInt = -1

// ParseFileInfo decodes raw ffprobe JSON output into a model.FileInfo.
func ParseFileInfo(data []byte) (*model.FileInfo, error) {
	var raw rawProbeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("probe: decode json: %w", err)
	}

	fi := &model.FileInfo{
		FormatName: raw.Format.FormatName,
		Duration:   parseOptionalFloat(raw.Format.Duration),
	}

	for _, s := range raw.Streams {
		fi.Streams = append(fi.Streams, parseStream(s))
	}

	return fi, nil
}

func parseStream(s rawStream) model.Stream {
	common := model.Common{
		Index:       s.Index,
		CodecName:   s.CodecName,
		CodecTag:    s.CodecTagString,
		Language:    s.Tags.Language,
		Disposition: s.Disposition.toModel(),
	}

	switch s.CodecType {
	case "video":
		fpsNum, fpsDen := parseRational(s.RFrameRate, "/")
		sarNum, sarDen := parseSAR(s.SampleAspectRatio)
		return &model.VideoStream{
			C:               common,
			Width:           intOrSentinel(s.Width),
			Height:          intOrSentinel(s.Height),
			FPSNum:          fpsNum,
			FPSDen:          fpsDen,
			SARNum:          sarNum,
			SARDen:          sarDen,
			PixFmt:          s.PixFmt,
			ColorRange:      s.ColorRange,
			ColorTransfer:   s.ColorTransfer,
			ColorPrimaries:  s.ColorPrimaries,
			ColorSpace:      s.ColorSpace,
			FieldOrder:      s.FieldOrder,
			BitsPerSample:   atoiOrSentinel(s.BitsPerRawSample),
			DurationSeconds: parseOptionalFloat(s.Duration),
			AlphaMode:       s.Tags.AlphaMode,
			Title:           s.Tags.Title,
		}
	case "audio":
		return &model.AudioStream{
			C:               common,
			Channels:        intOrSentinel(s.Channels),
			SampleRate:      parseOptionalIntString(s.SampleRate),
			ChannelLayout:   s.ChannelLayout,
			Title:           s.Tags.Title,
			DurationSeconds: parseOptionalFloat(s.Duration),
		}
	case "subtitle":
		return &model.SubtitleStream{C: common, Title: s.Tags.Title}
	default:
		return &model.UnrecognizedStream{C: common, CodecType: s.CodecType}
	}
}

func intOrSentinel(p *int) int {
	if p == nil {
		return sentinelInt
	}
	return *p
}

func atoiOrSentinel(s string) int {
	if s == "" {
		return sentinelInt
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return sentinelInt
	}
	return v
}

func parseOptionalFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseOptionalIntString(s string) *int {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}

// parseRational parses "num/den", rejecting either side <= 0 by
// returning (sentinel, sentinel).
func parseRational(s, sep string) (num, den int) {
	parts := strings.SplitN(s, sep, 2)
	if len(parts) != 2 {
		return sentinelInt, sentinelInt
	}
	n, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	d, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || n <= 0 || d <= 0 {
		return sentinelInt, sentinelInt
	}
	return n, d
}

// parseSAR parses "num:den". Missing defaults to 1:1 (square pixels);
// malformed or non-positive yields -1:-1 per spec §4.2.
func parseSAR(s string) (num, den int) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1, 1
	}
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return -1, -1
	}
	n, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	d, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || n <= 0 || d <= 0 {
		return -1, -1
	}
	return n, d
}
