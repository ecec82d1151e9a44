package thumbnail

import "github.com/streamforge/reencoder/internal/model"

// seekPlan is the result of timestamp selection: either a seek point
// (Seconds, FromEnd) or Omit = true for a seekless source.
type seekPlan struct {
	Seconds float64
	FromEnd bool
	Omit    bool
}

// selectTimestamp implements spec §4.5's timestamp selection: omitted
// entirely for still-image/attached-pic/timed-thumbnails sources;
// otherwise the minimum of absoluteSeconds and fraction*duration when
// both are given, whichever one is given when only one is, or an error
// when neither is given.
func selectTimestamp(v *model.VideoStream, absoluteSeconds, fraction *float64, duration *float64) (seekPlan, error) {
	if isSeeklessSource(v) {
		return seekPlan{Omit: true}, nil
	}

	switch {
	case absoluteSeconds != nil && fraction != nil:
		if duration == nil {
			return seekPlan{}, &ValidationError{Reason: "fraction given without a known duration"}
		}
		candidate := *fraction * *duration
		seconds := *absoluteSeconds
		if candidate < seconds {
			seconds = candidate
		}
		return seekPlan{Seconds: seconds}, nil
	case absoluteSeconds != nil:
		return seekPlan{Seconds: *absoluteSeconds}, nil
	case fraction != nil:
		if duration == nil {
			return seekPlan{}, &ValidationError{Reason: "fraction given without a known duration"}
		}
		return seekPlan{Seconds: *fraction * *duration}, nil
	default:
		return seekPlan{}, &ValidationError{Reason: "neither absolute_seconds nor fraction given"}
	}
}
