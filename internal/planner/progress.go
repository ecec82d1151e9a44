package planner

import (
	"sync"

	"github.com/streamforge/reencoder/internal/config"
	"github.com/streamforge/reencoder/internal/supervisor"
)

// progressTracker reports monotonically non-decreasing progress in
// [0,1] across the planner's stage budget (spec §6): up to 0.20
// validation, 0.10 compatibility probing, the bulk on the main
// transcode, and the remaining reservedTail for the size-compare pass.
type progressTracker struct {
	mu       sync.Mutex
	cb       config.ProgressCallback
	used     float64
	lastSeen float64
}

func newProgressTracker(cb config.ProgressCallback) *progressTracker {
	return &progressTracker{cb: cb}
}

// report invokes the callback with fraction, clamped to never move
// backward relative to the last reported value.
func (t *progressTracker) report(fraction float64) {
	if t.cb == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if fraction < t.lastSeen {
		fraction = t.lastSeen
	}
	if fraction > 1.0 {
		fraction = 1.0
	}
	t.lastSeen = fraction
	t.cb(fraction)
}

// scaledFromDuration returns a supervisor.ProgressCallback that
// receives the child's out_time in seconds (supervisor.pollProgress's
// samples) and maps it into [lo, hi] of the overall budget, dividing by
// durationSeconds -- the §4.4(e) authoritative duration -- to get a
// [0,1] fraction first. When durationSeconds is nil or non-positive the
// duration isn't trustworthy, so samples are dropped rather than
// reported against a meaningless denominator.
func (t *progressTracker) scaledFromDuration(lo, hi float64, durationSeconds *float64) supervisor.ProgressCallback {
	return func(seconds float64) {
		if durationSeconds == nil || *durationSeconds <= 0 {
			return
		}
		fraction := seconds / *durationSeconds
		if fraction < 0 {
			fraction = 0
		}
		if fraction > 1 {
			fraction = 1
		}
		t.report(lo + fraction*(hi-lo))
	}
}
