package probe

import "strings"

// Matrix is a flat record of which encoders, decoders, muxers,
// demuxers, and filters the toolchain provides, built once per process
// and never mutated thereafter.
type Matrix struct {
	Encoders map[string]bool
	Decoders map[string]bool
	Muxers   map[string]bool
	Demuxers map[string]bool
	Filters  map[string]bool
}

// encoderTokens, decoderTokens, muxerTokens, demuxerTokens, and
// filterTokens are the fixed sets of names the planner may require
// (spec §4.2). Anything outside these sets is parsed but ignored.
var (
	encoderTokens = map[string]bool{"libx264": true, "libx265": true, "png": true, "libfdk_aac": true, "aac": true, "mov_text": true}
	decoderTokens = map[string]bool{"h264": true, "hevc": true, "av1": true, "vp9": true, "mpeg2video": true, "mjpeg": true,
		"aac": true, "ac3": true, "eac3": true, "flac": true, "opus": true, "mp3": true, "dts": true, "truehd": true}
	muxerTokens   = map[string]bool{"mp4": true}
	demuxerTokens = map[string]bool{"mov": true, "matroska": true, "avi": true, "mpegts": true, "mpeg": true}
	filterTokens  = map[string]bool{"zscale": true, "scale": true, "fps": true, "tonemap": true, "format": true, "bwdif": true, "setsar": true}
)

// ParseEncoders parses `-encoders` style tabular output. The dashed
// separator line only marks where entries begin; each later line is
// split on whitespace into a flags token and a name token, and the
// separator's column offset and length are not used. An entry is
// accepted when its flags token contains V, A or S at any position.
func ParseEncoders(output string) map[string]bool {
	return parseCodecTable(output, encoderTokens, 1, "VAS")
}

// ParseDecoders parses `-codecs` style tabular output, accepting only
// entries whose flags indicate a decoder ('D') of kind V or A.
func ParseDecoders(output string) map[string]bool {
	return parseCodecTable(output, decoderTokens, 0, "VA")
}

// ParseMuxers parses `-muxers` tabular output, accepting only entries
// whose flags indicate a writer ('E').
func ParseMuxers(output string) map[string]bool {
	return parseFlaggedTable(output, muxerTokens, 'E')
}

// ParseDemuxers parses `-demuxers` tabular output, accepting only
// entries whose flags indicate a demuxer ('D').
func ParseDemuxers(output string) map[string]bool {
	return parseFlaggedTable(output, demuxerTokens, 'D')
}

// ParseFilters parses the `-filters` listing, which has no dashed
// header: each non-empty line is split on whitespace and the name
// token (second field, after the flags column) is matched.
func ParseFilters(output string) map[string]bool {
	result := map[string]bool{}
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		name := fields[1]
		if filterTokens[name] {
			result[name] = true
		}
	}
	return result
}

// findSeparatorLine locates the dashed header separator (a line made
// only of '-' and whitespace) and returns its index, or -1.
func findSeparatorLine(lines []string) int {
	for i, l := range lines {
		trimmed := strings.TrimSpace(l)
		if trimmed == "" {
			continue
		}
		allDashes := true
		for _, r := range trimmed {
			if r != '-' {
				allDashes = false
				break
			}
		}
		if allDashes {
			return i
		}
	}
	return -1
}

// parseCodecTable handles -encoders/-codecs output. flagBytePos 0
// selects the decoder layout, which requires a 'D' as the first flag;
// any other value only requires the flags token to be longer than
// flagBytePos. In both layouts an entry is accepted when any character
// of wantedKinds appears anywhere in its flags token.
func parseCodecTable(output string, tokens map[string]bool, flagBytePos int, wantedKinds string) map[string]bool {
	result := map[string]bool{}
	lines := strings.Split(output, "\n")
	sep := findSeparatorLine(lines)
	if sep < 0 || sep+1 >= len(lines) {
		return result
	}

	for _, line := range lines[sep+1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		flags, name := sliceFlagsAndName(line)
		if name == "" || !tokens[name] {
			continue
		}
		if flagBytePos >= len(flags) {
			continue
		}
		if flagBytePos == 0 {
			// decoder table: position 0 must be 'D', kind elsewhere.
			if flags[0] != 'D' {
				continue
			}
			if !containsAnyKind(flags, wantedKinds) {
				continue
			}
		} else {
			if !containsAnyKind(flags, wantedKinds) {
				continue
			}
		}
		result[name] = true
	}
	return result
}

func parseFlaggedTable(output string, tokens map[string]bool, want byte) map[string]bool {
	result := map[string]bool{}
	lines := strings.Split(output, "\n")
	sep := findSeparatorLine(lines)
	if sep < 0 || sep+1 >= len(lines) {
		return result
	}
	for _, line := range lines[sep+1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		flags, name := sliceFlagsAndName(line)
		if name == "" || !tokens[name] {
			continue
		}
		if strings.IndexByte(flags, want) < 0 {
			continue
		}
		result[name] = true
	}
	return result
}

// sliceFlagsAndName splits a post-header listing line into its flags
// column (leading whitespace-delimited token) and name column (the
// following whitespace-delimited token).
func sliceFlagsAndName(line string) (flags, name string) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", ""
	}
	return fields[0], fields[1]
}

func containsAnyKind(flags, kinds string) bool {
	for _, k := range kinds {
		if strings.ContainsRune(flags, k) {
			return true
		}
	}
	return false
}

// HasEncoder, HasDecoder, HasMuxer, HasDemuxer, HasFilter report
// capability-matrix membership, treating a nil map as empty.
func (m *Matrix) HasEncoder(name string) bool { return m.Encoders[name] }
func (m *Matrix) HasDecoder(name string) bool { return m.Decoders[name] }
func (m *Matrix) HasMuxer(name string) bool   { return m.Muxers[name] }
func (m *Matrix) HasDemuxer(name string) bool { return m.Demuxers[name] }
func (m *Matrix) HasFilter(name string) bool  { return m.Filters[name] }
