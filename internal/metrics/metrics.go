package metrics

import (
	"errors"
	"sync"
	"time"
)

// failureKinder is implemented by upstream errors that carry a classification.
type failureKinder interface {
	FailureKind() string
}

// FailureLabel classifies err for metric attributes; nil yields "".
func FailureLabel(err error) string {
	if err == nil {
		return ""
	}
	var fk failureKinder
	if errors.As(err, &fk) {
		return fk.FailureKind()
	}
	return "unknown"
}

type upstreamStats struct {
	calls           int
	errors          int
	lastFailure     string
	lastCallLatency time.Duration
}

type cycleStats struct {
	cycles      int
	failed      int
	skipped     int
	fallbacks   int
	unavailable int
}

// Recorder captures lightweight, in-memory metrics about upstream fetches and
// poll cycles, mirrored into OpenTelemetry instruments when configured.
type Recorder struct {
	mu     sync.Mutex
	stats  map[string]*upstreamStats
	cycles cycleStats
	http   map[string]int
	otel   *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats: make(map[string]*upstreamStats),
		http:  make(map[string]int),
		otel:  otel,
	}
}

// RecordFetch increments counters for an upstream call and stores the last observed latency.
func (r *Recorder) RecordFetch(upstream string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	failure := FailureLabel(err)
	r.mu.Lock()
	stats := r.ensureStatsLocked(upstream)
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
		stats.lastFailure = failure
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordFetch(upstream, duration, failure)
	}
}

// RecordSampleFallback tracks that the first sample kind failed and the alternate was tried.
func (r *Recorder) RecordSampleFallback(from string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.cycles.fallbacks++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordFallback(from)
	}
}

// RecordSampleUnavailable tracks a sample fetch where both kinds failed.
func (r *Recorder) RecordSampleUnavailable() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.cycles.unavailable++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordUnavailable()
	}
}

// RecordCycle tracks a completed poll cycle and whether any stats fetch failed.
func (r *Recorder) RecordCycle(duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.cycles.cycles++
	if err != nil {
		r.cycles.failed++
	}
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordCycle(duration, err)
	}
}

// RecordCycleSkipped tracks a tick dropped because a cycle was still in flight.
func (r *Recorder) RecordCycleSkipped() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.cycles.skipped++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordSkip()
	}
}

// RecordHTTPRequest tracks basic HTTP metrics keyed by the normalized route.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.http[method+" "+path]++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordHTTPRequest(method, path, status, duration)
	}
}

// HTTPRequests returns how many requests were served for method and normalized path.
func (r *Recorder) HTTPRequests(method, path string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.http[method+" "+path]
}

// Snapshot returns a copy of the current stats for the upstream.
type Snapshot struct {
	Calls           int
	Errors          int
	LastFailure     string
	LastCallLatency time.Duration
}

func (r *Recorder) Snapshot(upstream string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.stats[upstream]
	if !ok || stats == nil {
		return Snapshot{}
	}
	return Snapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		LastFailure:     stats.lastFailure,
		LastCallLatency: stats.lastCallLatency,
	}
}

// CycleSnapshot summarizes poll cycle counters.
type CycleSnapshot struct {
	Cycles            int
	FailedCycles      int
	SkippedCycles     int
	SampleFallbacks   int
	SampleUnavailable int
}

func (r *Recorder) Cycles() CycleSnapshot {
	if r == nil {
		return CycleSnapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return CycleSnapshot{
		Cycles:            r.cycles.cycles,
		FailedCycles:      r.cycles.failed,
		SkippedCycles:     r.cycles.skipped,
		SampleFallbacks:   r.cycles.fallbacks,
		SampleUnavailable: r.cycles.unavailable,
	}
}

func (r *Recorder) ensureStatsLocked(upstream string) *upstreamStats {
	stats, ok := r.stats[upstream]
	if !ok {
		stats = &upstreamStats{}
		r.stats[upstream] = stats
	}
	return stats
}
