package stats

import (
	"slices"
	"sync"
	"time"
)

type sample struct {
	at      time.Time
	format  string
	elapsed time.Duration
}

// Snapshot aggregates deck build latencies in the current window.
type Snapshot struct {
	Count    int            `json:"count"`
	MinMs    float64        `json:"min_ms"`
	MaxMs    float64        `json:"max_ms"`
	AvgMs    float64        `json:"avg_ms"`
	P50Ms    float64        `json:"p50_ms"`
	P95Ms    float64        `json:"p95_ms"`
	P99Ms    float64        `json:"p99_ms"`
	ByFormat map[string]int `json:"by_format"`
}

// BuildStats keeps a rolling window of parse+evaluate timings.
type BuildStats struct {
	mu      sync.Mutex
	samples []sample
	window  time.Duration
}

func NewBuildStats(window time.Duration) *BuildStats {
	if window <= 0 {
		window = time.Hour
	}
	return &BuildStats{
		samples: make([]sample, 0, 128),
		window:  window,
	}
}

// Record adds one build timing for the given source format (e.g. ".md").
func (s *BuildStats) Record(format string, elapsed time.Duration) {
	if elapsed < 0 {
		elapsed = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(now)
	s.samples = append(s.samples, sample{at: now, format: format, elapsed: elapsed})
}

func (s *BuildStats) Snapshot() Snapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(now)

	snap := Snapshot{ByFormat: map[string]int{}}
	if len(s.samples) == 0 {
		return snap
	}

	values := make([]float64, 0, len(s.samples))
	var sum float64
	for _, sm := range s.samples {
		ms := float64(sm.elapsed) / float64(time.Millisecond)
		values = append(values, ms)
		sum += ms
		snap.ByFormat[sm.format]++
	}
	slices.Sort(values)

	snap.Count = len(values)
	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = sum / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	snap.P99Ms = percentile(values, 99)
	return snap
}

func (s *BuildStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	s.samples = slices.DeleteFunc(s.samples, func(sm sample) bool {
		return sm.at.Before(cutoff)
	})
}

// percentile interpolates linearly between the two nearest ranks.
func percentile(sorted []float64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return sorted[0]
	case pct >= 100:
		return sorted[len(sorted)-1]
	}
	idx := float64(len(sorted)-1) * pct / 100
	lower := int(idx)
	if lower+1 >= len(sorted) {
		return sorted[lower]
	}
	weight := idx - float64(lower)
	return sorted[lower] + (sorted[lower+1]-sorted[lower])*weight
}
