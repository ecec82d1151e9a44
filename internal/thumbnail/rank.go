// Package thumbnail implements the Thumbnail Pipeline (spec §4.5): a
// narrower surface parallel to the Planner that selects one video
// stream, computes a seek timestamp, plans resize/tonemap/square-pixel
// filters, and extracts a single still frame with a bounded retry
// ladder.
package thumbnail

import "github.com/streamforge/reencoder/internal/model"

// score ranks a video stream for thumbnail selection; lower is
// better. Ties break by input order (the caller's iteration order),
// per spec §4.5's stream-ranking table.
func score(v *model.VideoStream, includeThumbnailStreams bool) int {
	isThumbSource := v.IsAttachedPic() || v.IsTimedThumbnails()

	if isThumbSource {
		if !includeThumbnailStreams {
			return 7
		}
		if v.IsDefault() {
			return 0
		}
		return 1
	}

	if v.IsStillImage() {
		if v.IsDefault() {
			return 2
		}
		return 3
	}

	if v.IsBadCandidateForThumbnail() {
		return 6
	}

	if v.IsDefault() {
		return 4
	}
	return 5
}

// selectStream picks the lowest-scoring video stream among fi's
// streams, per spec §4.5. Returns an error if fi carries no video
// streams at all.
func selectStream(fi *model.FileInfo, includeThumbnailStreams bool) (*model.VideoStream, error) {
	videoStreams := fi.VideoStreams()
	if len(videoStreams) == 0 {
		return nil, &ValidationError{Reason: "no video streams to select a thumbnail from"}
	}

	best := videoStreams[0]
	bestScore := score(best, includeThumbnailStreams)
	for _, v := range videoStreams[1:] {
		s := score(v, includeThumbnailStreams)
		if s < bestScore {
			best, bestScore = v, s
		}
	}
	return best, nil
}

// isSeeklessSource reports whether v is a still image, attached
// picture, or timed-thumbnails track — sources for which a seek
// timestamp is meaningless and must be omitted (spec §4.5).
func isSeeklessSource(v *model.VideoStream) bool {
	return v.IsStillImage() || v.IsAttachedPic() || v.IsTimedThumbnails()
}
