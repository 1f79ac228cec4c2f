package runq

import (
	"fmt"
	"sort"
)

// FormatRuntime renders a nanosecond duration as "D H:MM:SS.mmm" with
// integer truncation at every unit boundary, never rounding.
func FormatRuntime(ns uint64) string {
	msTotal := ns / 1_000_000
	secsTotal, ms := msTotal/1000, msTotal%1000
	minsTotal, secs := secsTotal/60, secsTotal%60
	hoursTotal, mins := minsTotal/60, minsTotal%60
	days, hours := hoursTotal/24, hoursTotal%24

	return fmt.Sprintf("%d %02d:%02d:%02d.%03d", days, hours, mins, secs, ms)
}

// LagEntry pairs a CPU with how far its run-queue clock trails the maximum
// clock observed across the requested set.
type LagEntry struct {
	CPU int
	Lag uint64 // ns
}

// Seconds converts the lag to seconds for display.
func (e LagEntry) Seconds() float64 {
	return float64(e.Lag) / 1e9
}

// ComputeLags derives per-CPU lag from a complete clock collection. It must
// only be called with clocks for every CPU in the requested set; the
// two-phase protocol (CollectClocks, then ComputeLags) keeps partial lag
// output impossible. Entries come back sorted ascending by lag, the most
// caught-up CPU first, ties broken by ascending CPU index.
func ComputeLags(clocks map[int]uint64) []LagEntry {
	var maxClock uint64
	for _, clock := range clocks {
		if clock > maxClock {
			maxClock = clock
		}
	}

	lags := make([]LagEntry, 0, len(clocks))
	for cpu, clock := range clocks {
		lags = append(lags, LagEntry{CPU: cpu, Lag: maxClock - clock})
	}
	sort.Slice(lags, func(i, j int) bool {
		if lags[i].Lag != lags[j].Lag {
			return lags[i].Lag < lags[j].Lag
		}
		return lags[i].CPU < lags[j].CPU
	})
	return lags
}
