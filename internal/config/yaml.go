package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlDoc mirrors the subset of Options fields exposed in a preset
// file; it exists because Options itself is built exclusively through
// functional options, not zero-value struct literals.
type yamlDoc struct {
	SourceVideoCodecs []string `yaml:"source_video_codecs"`
	SourceAudioCodecs []string `yaml:"source_audio_codecs"`
	SourceFormats     []string `yaml:"source_formats"`

	ResultVideoCodecs []string `yaml:"result_video_codecs"`
	ResultAudioCodecs []string `yaml:"result_audio_codecs"`
	ResultFormats     []string `yaml:"result_formats"`

	VideoReencodeMode string `yaml:"video_reencode_mode"`
	AudioReencodeMode string `yaml:"audio_reencode_mode"`

	MaxBitsPerChannel    int `yaml:"maximum_bits_per_channel"`
	MaxChromaSubsampling int `yaml:"maximum_chroma_subsampling"`

	RemapHDRToSDR bool `yaml:"remap_hdr_to_sdr"`

	MaxChannels   *int `yaml:"max_channels"`
	MaxSampleRate *int `yaml:"max_sample_rate"`

	MetadataStrippingMode string `yaml:"metadata_stripping_mode"`

	ForceProgressiveDownload       bool `yaml:"force_progressive_download"`
	TryPreserveUnrecognizedStreams bool `yaml:"try_preserve_unrecognized_streams"`
	ForceValidateAllStreams        bool `yaml:"force_validate_all_streams"`
	RemoveAudioStreams             bool `yaml:"remove_audio_streams"`
	ForceSquarePixels              bool `yaml:"force_square_pixels"`
	ForceProgressiveFrames         bool `yaml:"force_progressive_frames"`

	ThrowWhenReencodeOptional bool `yaml:"throw_when_reencode_optional"`
}

// LoadYAML reads a preset file and builds an Options from it. Keys
// absent from the document fall back to New's defaults.
func LoadYAML(path string) (*Options, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read preset %s: %w", path, err)
	}

	var doc yamlDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("config: parse preset %s: %w", path, err)
	}

	var opts []Option
	if len(doc.SourceVideoCodecs) > 0 {
		opts = append(opts, WithSourceVideoCodecs(doc.SourceVideoCodecs...))
	}
	if len(doc.SourceAudioCodecs) > 0 {
		opts = append(opts, WithSourceAudioCodecs(doc.SourceAudioCodecs...))
	}
	if len(doc.SourceFormats) > 0 {
		opts = append(opts, WithSourceFormats(doc.SourceFormats...))
	}
	if len(doc.ResultVideoCodecs) > 0 {
		opts = append(opts, WithResultVideoCodecs(doc.ResultVideoCodecs...))
	}
	if len(doc.ResultAudioCodecs) > 0 {
		opts = append(opts, WithResultAudioCodecs(doc.ResultAudioCodecs...))
	}
	if len(doc.ResultFormats) > 0 {
		opts = append(opts, WithResultFormats(doc.ResultFormats...))
	}
	if doc.VideoReencodeMode != "" || doc.AudioReencodeMode != "" {
		v, a := ReencodeMode(doc.VideoReencodeMode), ReencodeMode(doc.AudioReencodeMode)
		if v == "" {
			v = ReencodeAvoid
		}
		if a == "" {
			a = ReencodeAvoid
		}
		opts = append(opts, WithReencodeModes(v, a))
	}
	if doc.MaxBitsPerChannel != 0 {
		opts = append(opts, WithBitDepthLimit(BitDepthLimit(doc.MaxBitsPerChannel)))
	}
	if doc.MaxChromaSubsampling != 0 {
		opts = append(opts, WithChromaLimit(ChromaSubsamplingLimit(doc.MaxChromaSubsampling)))
	}
	if doc.RemapHDRToSDR {
		opts = append(opts, WithRemapHDRToSDR(true))
	}
	if doc.MaxChannels != nil {
		opts = append(opts, WithMaxChannels(*doc.MaxChannels))
	}
	if doc.MaxSampleRate != nil {
		opts = append(opts, WithMaxSampleRate(*doc.MaxSampleRate))
	}
	if doc.MetadataStrippingMode != "" {
		opts = append(opts, WithMetadataStrippingMode(MetadataStrippingMode(doc.MetadataStrippingMode)))
	}
	if doc.ForceProgressiveDownload {
		opts = append(opts, WithForceProgressiveDownload(true))
	}
	if doc.TryPreserveUnrecognizedStreams {
		opts = append(opts, WithTryPreserveUnrecognizedStreams(true))
	}
	if doc.ForceValidateAllStreams {
		opts = append(opts, WithForceValidateAllStreams(true))
	}
	if doc.RemoveAudioStreams {
		opts = append(opts, WithRemoveAudioStreams(true))
	}
	if doc.ForceSquarePixels {
		opts = append(opts, WithForceSquarePixels(true))
	}
	if doc.ForceProgressiveFrames {
		opts = append(opts, WithForceProgressiveFrames(true))
	}
	if doc.ThrowWhenReencodeOptional {
		opts = append(opts, WithThrowWhenReencodeOptional(true))
	}

	return New(opts...)
}
