// Package metrics exposes the prometheus collectors shared across the
// supervisor, planner, and thumbnail pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProcessStarts counts toolchain subprocess launches by lane
	// ("main" or "fast") and binary basename.
	ProcessStarts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reencoder",
		Subsystem: "supervisor",
		Name:      "process_starts_total",
		Help:      "Toolchain subprocess launches by lane and binary.",
	}, []string{"lane", "binary"})

	// ProcessExits counts toolchain subprocess completions by outcome.
	// The supervisor records "ok", "nonzero", "cancelled", and "error"
	// (the wait itself failed); the planner also records "success" or
	// "error" for its main transcode.
	ProcessExits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reencoder",
		Subsystem: "supervisor",
		Name:      "process_exits_total",
		Help:      "Toolchain subprocess completions by outcome.",
	}, []string{"outcome"})

	// PoolOccupancy gauges the in-use slots of each semaphore lane.
	PoolOccupancy = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "reencoder",
		Subsystem: "supervisor",
		Name:      "pool_occupancy",
		Help:      "In-use semaphore slots by lane.",
	}, []string{"lane"})

	// PlannerPathDecisions is registered for planner terminal outcomes
	// by path and reason; nothing in this module increments it.
	PlannerPathDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reencoder",
		Subsystem: "planner",
		Name:      "path_decisions_total",
		Help:      "Planner terminal path decisions by reason.",
	}, []string{"path", "reason"})

	// ThumbnailRetries counts thumbnail extraction retry-ladder
	// outcomes by attempt number and result.
	ThumbnailRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reencoder",
		Subsystem: "thumbnail",
		Name:      "retry_outcomes_total",
		Help:      "Thumbnail retry-ladder attempts by step and result.",
	}, []string{"step", "result"})

	// ProbeCacheLookups counts probe-result cache hits/misses.
	ProbeCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reencoder",
		Subsystem: "probe",
		Name:      "cache_lookups_total",
		Help:      "Probe result cache lookups by outcome.",
	}, []string{"outcome"})
)
