package strategy

import (
	"sync"
	"time"
)

// ProbPoint records a single probability observation at a point in time.
type ProbPoint struct {
	Probability float64
	Time        time.Time
}

// ProbabilityTracker maintains a sliding window of probability observations
// per market. The orchestrator records one observation per market per cycle;
// the trend strategy reads the recent movement from it.
type ProbabilityTracker struct {
	history    map[string][]ProbPoint
	windowSize time.Duration
	mu         sync.RWMutex
}

// NewProbabilityTracker creates a tracker whose history extends windowSize
// into the past; older points are discarded on every Track call.
func NewProbabilityTracker(windowSize time.Duration) *ProbabilityTracker {
	return &ProbabilityTracker{
		history:    make(map[string][]ProbPoint),
		windowSize: windowSize,
	}
}

// Track records a new probability observation for the given market and trims
// points that have fallen outside the sliding window.
func (pt *ProbabilityTracker) Track(marketID string, probability float64, ts time.Time) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	pt.history[marketID] = append(pt.history[marketID], ProbPoint{
		Probability: probability,
		Time:        ts,
	})
	pt.trim(marketID, ts)
}

// Movement returns the probability change between the oldest and newest
// observation in the window, and whether at least two observations exist.
func (pt *ProbabilityTracker) Movement(marketID string) (float64, bool) {
	pt.mu.RLock()
	defer pt.mu.RUnlock()

	pts := pt.history[marketID]
	if len(pts) < 2 {
		return 0, false
	}
	return pts[len(pts)-1].Probability - pts[0].Probability, true
}

// Observations returns the number of points currently recorded for the market.
func (pt *ProbabilityTracker) Observations(marketID string) int {
	pt.mu.RLock()
	defer pt.mu.RUnlock()
	return len(pt.history[marketID])
}

// trim drops points older than the window. Caller must hold the write lock.
func (pt *ProbabilityTracker) trim(marketID string, now time.Time) {
	cutoff := now.Add(-pt.windowSize)
	pts := pt.history[marketID]
	keep := 0
	for keep < len(pts) && pts[keep].Time.Before(cutoff) {
		keep++
	}
	if keep > 0 {
		pt.history[marketID] = append([]ProbPoint(nil), pts[keep:]...)
	}
	if len(pt.history[marketID]) == 0 {
		delete(pt.history, marketID)
	}
}
