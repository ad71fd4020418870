// Package stats summarizes round-trip samples taken against the node.
package stats

import (
	"math"
	"sort"
	"time"
)

// TailLatency holds the nearest-rank percentiles of a sample set.
type TailLatency struct {
	Samples       int
	P50, P95, Max time.Duration
}

// CalculateTailLatency summarizes latencies without mutating the input.
// An empty input yields the zero value.
func CalculateTailLatency(latencies []time.Duration) TailLatency {
	if len(latencies) == 0 {
		return TailLatency{}
	}

	sorted := make([]time.Duration, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	return TailLatency{
		Samples: len(sorted),
		P50:     Percentile(sorted, 0.50),
		P95:     Percentile(sorted, 0.95),
		Max:     sorted[len(sorted)-1],
	}
}

// Percentile returns the nearest-rank value for p in [0,1] from an
// ascending slice. With few samples high percentiles equal the maximum.
func Percentile(sorted []time.Duration, p float64) time.Duration {
	n := len(sorted)
	if n == 0 {
		return 0
	}

	index := int(math.Ceil(float64(n)*p)) - 1
	if index >= n {
		index = n - 1
	}
	if index < 0 {
		index = 0
	}
	return sorted[index]
}
