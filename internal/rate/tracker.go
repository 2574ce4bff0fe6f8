// Package rate turns monotonically increasing counters into per-second rates.
//
// A Tracker remembers the previous cumulative values and timestamp for every
// key it has seen. The first observation of a key establishes a baseline and
// reports zero; later observations report the non-negative delta divided by
// the elapsed time. Keys that disappear from the live set are dropped with
// Retain so a reused identity (a recycled pid, a reopened socket) starts over
// from a fresh baseline.
package rate

import "time"

// minElapsed guards against division by zero when two samples share a timestamp.
const minElapsed = time.Millisecond

type entry struct {
	values []uint64
	at     time.Time
}

// Tracker converts cumulative counters keyed by K into per-second rates.
// It is not safe for concurrent use.
type Tracker[K comparable] struct {
	entries map[K]entry
}

// NewTracker creates an empty tracker.
func NewTracker[K comparable]() *Tracker[K] {
	return &Tracker[K]{entries: make(map[K]entry)}
}

// Sample records the cumulative values for key at time now and returns one
// rate per value, in units per second. The first sample for a key returns
// zeros. A counter that went backwards (reset or wraparound) yields 0.
func (t *Tracker[K]) Sample(key K, now time.Time, cumulative ...uint64) []float64 {
	rates := make([]float64, len(cumulative))

	prev, ok := t.entries[key]
	t.entries[key] = entry{values: append([]uint64(nil), cumulative...), at: now}
	if !ok {
		return rates
	}

	elapsed := now.Sub(prev.at)
	if elapsed < minElapsed {
		elapsed = minElapsed
	}
	secs := elapsed.Seconds()

	for i, cur := range cumulative {
		if i >= len(prev.values) {
			break
		}
		// Handle counter wraparound or reset
		if cur <= prev.values[i] {
			continue
		}
		rates[i] = float64(cur-prev.values[i]) / secs
	}
	return rates
}

// Retain drops every entry whose key is not in live.
func (t *Tracker[K]) Retain(live map[K]struct{}) {
	for k := range t.entries {
		if _, ok := live[k]; !ok {
			delete(t.entries, k)
		}
	}
}

// RetainFunc drops every entry for which keep returns false.
func (t *Tracker[K]) RetainFunc(keep func(K) bool) {
	for k := range t.entries {
		if !keep(k) {
			delete(t.entries, k)
		}
	}
}

// Forget removes a single key.
func (t *Tracker[K]) Forget(key K) {
	delete(t.entries, key)
}

// Has reports whether key has a recorded baseline.
func (t *Tracker[K]) Has(key K) bool {
	_, ok := t.entries[key]
	return ok
}

// Len returns the number of tracked keys.
func (t *Tracker[K]) Len() int {
	return len(t.entries)
}
