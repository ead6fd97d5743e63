// Package stats keeps rolling-window statistics about outline extractions.
package stats

import (
	"slices"
	"sync"
	"time"
)

// Outcome classifies a finished extraction.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeFailed  Outcome = "failed"
	OutcomeTimeout Outcome = "timeout"
)

type sample struct {
	at         time.Time
	durationMs int64
	outcome    Outcome
	entries    int
}

// Snapshot is a point-in-time aggregate of extraction samples.
type Snapshot struct {
	Count      int     `json:"count"`
	Failed     int     `json:"failed"`
	TimedOut   int     `json:"timed_out"`
	MinMs      int64   `json:"min_ms"`
	MaxMs      int64   `json:"max_ms"`
	AvgMs      float64 `json:"avg_ms"`
	P50Ms      float64 `json:"p50_ms"`
	P95Ms      float64 `json:"p95_ms"`
	P99Ms      float64 `json:"p99_ms"`
	AvgEntries float64 `json:"avg_entries"`
}

// Extraction tracks recent extraction latencies within a rolling window.
type Extraction struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
	now     func() time.Time
}

func NewExtraction(maxAge time.Duration) *Extraction {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Extraction{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
		now:     time.Now,
	}
}

// Record adds one finished extraction. entries is the outline length of a
// successful result.
func (s *Extraction) Record(d time.Duration, outcome Outcome, entries int) {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)
	s.samples = append(s.samples, sample{at: now, durationMs: ms, outcome: outcome, entries: entries})
}

func (s *Extraction) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(s.now())
	if len(s.samples) == 0 {
		return Snapshot{}
	}

	var snap Snapshot
	values := make([]int64, 0, len(s.samples))
	var sum int64
	var entries, ok int
	for _, sm := range s.samples {
		values = append(values, sm.durationMs)
		sum += sm.durationMs
		switch sm.outcome {
		case OutcomeFailed:
			snap.Failed++
		case OutcomeTimeout:
			snap.TimedOut++
		default:
			entries += sm.entries
			ok++
		}
	}
	slices.Sort(values)

	snap.Count = len(values)
	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = float64(sum) / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	snap.P99Ms = percentile(values, 99)
	if ok > 0 {
		snap.AvgEntries = float64(entries) / float64(ok)
	}
	return snap
}

func (s *Extraction) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	s.samples = slices.DeleteFunc(s.samples, func(sm sample) bool { return sm.at.Before(cutoff) })
}

// percentile interpolates linearly between the two closest ranks.
func percentile(sorted []int64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sorted[0])
	}
	if pct >= 100 {
		return float64(sorted[len(sorted)-1])
	}

	index := (float64(len(sorted)-1) * pct) / 100.0
	lower := int(index)
	if lower+1 >= len(sorted) {
		return float64(sorted[lower])
	}
	weight := index - float64(lower)
	lo := float64(sorted[lower])
	hi := float64(sorted[lower+1])
	return lo + (hi-lo)*weight
}
