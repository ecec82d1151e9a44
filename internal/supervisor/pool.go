package supervisor

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/streamforge/reencoder/internal/metrics"
)

// DefaultMaxConcurrentProcesses is the main pool's default capacity
// (spec §4.1).
const DefaultMaxConcurrentProcesses = 32

// pool holds the two semaphores the supervisor arbitrates between: a
// bounded main pool for long-running transcodes and a 1-slot fast lane
// reserved for short-lived probes, so a burst of probes never queues
// behind a full bank of transcodes.
type pool struct {
	main     *semaphore.Weighted
	fastLane *semaphore.Weighted
}

func newPool(maxConcurrentProcesses int64) *pool {
	if maxConcurrentProcesses <= 0 {
		maxConcurrentProcesses = DefaultMaxConcurrentProcesses
	}
	return &pool{
		main:     semaphore.NewWeighted(maxConcurrentProcesses),
		fastLane: semaphore.NewWeighted(1),
	}
}

// lane identifies which semaphore a slot was drawn from, so callers
// know which one to release.
type lane int

const (
	laneMain lane = iota
	laneFast
)

func (l lane) String() string {
	if l == laneFast {
		return "fast"
	}
	return "main"
}

// acquire implements the four-step acquisition order from spec §4.1:
// try the main pool non-blocking; if short-lived, try the fast lane
// non-blocking; otherwise block on whichever lane applies; after
// blocking on the fast lane, attempt a non-blocking upgrade to the
// main pool so a long task that landed on the fast lane doesn't starve
// subsequent probes.
func (p *pool) acquire(ctx context.Context, shortLived bool) (lane, error) {
	if p.main.TryAcquire(1) {
		metrics.PoolOccupancy.WithLabelValues(laneMain.String()).Inc()
		return laneMain, nil
	}

	if shortLived && p.fastLane.TryAcquire(1) {
		metrics.PoolOccupancy.WithLabelValues(laneFast.String()).Inc()
		return laneFast, nil
	}

	target := p.main
	l := laneMain
	if shortLived {
		target = p.fastLane
		l = laneFast
	}
	if err := target.Acquire(ctx, 1); err != nil {
		return l, err
	}
	metrics.PoolOccupancy.WithLabelValues(l.String()).Inc()

	if l == laneFast {
		if p.main.TryAcquire(1) {
			p.fastLane.Release(1)
			metrics.PoolOccupancy.WithLabelValues(laneFast.String()).Dec()
			metrics.PoolOccupancy.WithLabelValues(laneMain.String()).Inc()
			return laneMain, nil
		}
	}

	return l, nil
}

func (p *pool) release(l lane) {
	metrics.PoolOccupancy.WithLabelValues(l.String()).Dec()
	if l == laneFast {
		p.fastLane.Release(1)
		return
	}
	p.main.Release(1)
}
