package catalog

import "strings"

// Format describes a container format the planner may accept as
// source or target.
type Format struct {
	Name              string
	ProbeName         string // ffprobe's format_name token, possibly multi-token
	PrimaryExtension  string
	CommonExtensions  []string
	SupportsWriting   bool
}

// NameMatches performs the weak comma-list subset match spec §3
// requires for containers: ffprobe's format_name is often a
// comma-joined list of aliases (e.g. "mov,mp4,m4a,3gp,3g2,mj2"). Two
// formats match if they share any comma-delimited token, provided at
// least one side is multi-token. A single-token probed name still
// matches a single-token declared name by plain equality.
func (f *Format) NameMatches(probedName string) bool {
	declared := splitTokens(f.ProbeName)
	probed := splitTokens(probedName)

	if len(declared) == 1 && len(probed) == 1 {
		return declared[0] == probed[0]
	}

	for _, d := range declared {
		for _, p := range probed {
			if d == p {
				return true
			}
		}
	}
	return false
}

// HasExtension reports whether ext (without leading dot, case folded
// by the caller) is among this format's common extensions.
func (f *Format) HasExtension(ext string) bool {
	for _, e := range f.CommonExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

func splitTokens(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

var (
	FormatMP4 = &Format{
		Name:             "MP4",
		ProbeName:        "mov,mp4,m4a,3gp,3g2,mj2",
		PrimaryExtension: "mp4",
		CommonExtensions: []string{"mp4", "m4a", "m4v"},
		SupportsWriting:  true,
	}
	FormatMatroska = &Format{
		Name:             "Matroska",
		ProbeName:        "matroska,webm",
		PrimaryExtension: "mkv",
		CommonExtensions: []string{"mkv", "webm"},
		SupportsWriting:  false,
	}
	FormatAVI = &Format{
		Name:             "AVI",
		ProbeName:        "avi",
		PrimaryExtension: "avi",
		CommonExtensions: []string{"avi"},
		SupportsWriting:  false,
	}
	FormatMPEGTS = &Format{
		Name:             "MPEG-TS",
		ProbeName:        "mpegts",
		PrimaryExtension: "ts",
		CommonExtensions: []string{"ts", "m2ts"},
		SupportsWriting:  false,
	}
)

// Formats is the stable ordering consulted by the planner's container
// identification stage (spec §4.4b); writable members sort first.
var Formats = []*Format{FormatMP4, FormatMatroska, FormatAVI, FormatMPEGTS}

// FindFormat returns the first catalog entry whose NameMatches accepts
// probedName, or nil if none match.
func FindFormat(probedName string) *Format {
	for _, f := range Formats {
		if f.NameMatches(probedName) {
			return f
		}
	}
	return nil
}
