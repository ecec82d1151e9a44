// Package catalog holds the closed, singleton-backed enumerations of
// video codecs, audio codecs, and container formats the planner
// reasons about. Entries carry identity by pointer; equality is
// reference equality, matching how the decision engine this package
// is modeled on treats its rule tables.
package catalog

// VideoCodec describes one video codec the toolchain may encounter or
// produce.
type VideoCodec struct {
	Name               string
	ProbeName          string
	SupportsMP4Muxing  bool
}

// NameMatches reports whether probeName identifies this codec.
func (c *VideoCodec) NameMatches(probeName string) bool {
	return c.ProbeName == probeName
}

var (
	VideoH264 = &VideoCodec{Name: "H.264", ProbeName: "h264", SupportsMP4Muxing: true}
	VideoHEVC = &VideoCodec{Name: "HEVC", ProbeName: "hevc", SupportsMP4Muxing: true}
	VideoAV1  = &VideoCodec{Name: "AV1", ProbeName: "av1", SupportsMP4Muxing: true}
	VideoVP9  = &VideoCodec{Name: "VP9", ProbeName: "vp9", SupportsMP4Muxing: false}
	VideoMPEG2 = &VideoCodec{Name: "MPEG-2", ProbeName: "mpeg2video", SupportsMP4Muxing: false}
	VideoMJPEG = &VideoCodec{Name: "MJPEG", ProbeName: "mjpeg", SupportsMP4Muxing: true}
	VideoPNG   = &VideoCodec{Name: "PNG", ProbeName: "png", SupportsMP4Muxing: true}
)

// VideoCodecs is the stable ordering consulted when matching a probed
// codec name; encodable/writable members are listed first so callers
// that pick "the first acceptable entry" get a sane default.
var VideoCodecs = []*VideoCodec{VideoH264, VideoHEVC, VideoAV1, VideoVP9, VideoMPEG2, VideoMJPEG, VideoPNG}

// FindVideoCodec returns the catalog entry whose probe name matches, or
// nil if the codec is unknown to the catalog.
func FindVideoCodec(probeName string) *VideoCodec {
	for _, c := range VideoCodecs {
		if c.NameMatches(probeName) {
			return c
		}
	}
	return nil
}

// AudioCodec describes one audio codec. Some entries carry a wildcard
// profile that matches any probed profile for that probe name (e.g.
// AAC's various profiles are interchangeable for acceptance purposes).
type AudioCodec struct {
	Name            string
	ProbeName       string
	Profile         string // "" means wildcard: matches any probed profile
	SupportsMP4Muxing bool
}

// NameMatches reports whether (probeName, profile) identifies this
// codec: probe name must match exactly, and either this entry's
// profile is the wildcard or it equals the probed profile.
func (c *AudioCodec) NameMatches(probeName, profile string) bool {
	if c.ProbeName != probeName {
		return false
	}
	return c.Profile == "" || c.Profile == profile
}

var (
	AudioAAC  = &AudioCodec{Name: "AAC", ProbeName: "aac", SupportsMP4Muxing: true}
	AudioAC3  = &AudioCodec{Name: "AC-3", ProbeName: "ac3", SupportsMP4Muxing: true}
	AudioEAC3 = &AudioCodec{Name: "E-AC-3", ProbeName: "eac3", SupportsMP4Muxing: true}
	AudioFLAC = &AudioCodec{Name: "FLAC", ProbeName: "flac", SupportsMP4Muxing: true}
	AudioOpus = &AudioCodec{Name: "Opus", ProbeName: "opus", SupportsMP4Muxing: true}
	AudioMP3  = &AudioCodec{Name: "MP3", ProbeName: "mp3", SupportsMP4Muxing: true}
	AudioDTS  = &AudioCodec{Name: "DTS", ProbeName: "dts", SupportsMP4Muxing: false}
	AudioTrueHD = &AudioCodec{Name: "TrueHD", ProbeName: "truehd", SupportsMP4Muxing: false}
)

// AudioCodecs is the stable ordering consulted when matching a probed
// (name, profile) pair.
var AudioCodecs = []*AudioCodec{AudioAAC, AudioAC3, AudioEAC3, AudioFLAC, AudioOpus, AudioMP3, AudioDTS, AudioTrueHD}

// FindAudioCodec returns the catalog entry matching (probeName,
// profile), or nil if unknown.
func FindAudioCodec(probeName, profile string) *AudioCodec {
	for _, c := range AudioCodecs {
		if c.NameMatches(probeName, profile) {
			return c
		}
	}
	return nil
}

// PreferredAACEncoder and NativeAACEncoder name the two encoder
// binaries the planner chooses between for AAC output (spec §4.4h):
// a higher-fidelity third-party encoder when the capability matrix
// reports it present, falling back to the toolchain's native encoder.
const (
	PreferredAACEncoder = "libfdk_aac"
	NativeAACEncoder    = "aac"
)

// SubtitleCodecMP4 is the one subtitle codec the mp4 container
// supports, used as the transcode target for incompatible subtitle
// streams (spec §4.4h).
const SubtitleCodecMP4 = "mov_text"
