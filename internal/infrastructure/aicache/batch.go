package aicache

import (
	"encoding/json"
	"sort"
	"sync"
)

// FlightGroup deduplicates concurrent identical generation requests
// within one process. It is a best-effort optimization, not a
// correctness mechanism: state is local and lost on restart, and two
// server instances may still generate the same response concurrently
// (the store's unique insert resolves that race).
type FlightGroup struct {
	mu      sync.Mutex
	pending map[string]*flight
}

type flight struct {
	done     chan struct{}
	response json.RawMessage
	err      error
}

// NewFlightGroup creates an empty in-process dedup group.
func NewFlightGroup() *FlightGroup {
	return &FlightGroup{pending: make(map[string]*flight)}
}

// Do runs fn for key unless an identical call is already in flight, in
// which case it waits for and shares that call's result. The second
// return value reports whether the result was shared.
func (g *FlightGroup) Do(key string, fn func() (json.RawMessage, error)) (json.RawMessage, bool, error) {
	g.mu.Lock()
	if f, inFlight := g.pending[key]; inFlight {
		g.mu.Unlock()
		<-f.done
		return f.response, true, f.err
	}

	f := &flight{done: make(chan struct{})}
	g.pending[key] = f
	g.mu.Unlock()

	f.response, f.err = fn()
	close(f.done)

	g.mu.Lock()
	delete(g.pending, key)
	g.mu.Unlock()

	return f.response, false, f.err
}

// FrequencyTracker counts how often each fingerprint is requested so the
// warming pass can pre-generate the most popular entries. Purely
// advisory; losing the counts is harmless.
type FrequencyTracker struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewFrequencyTracker creates an empty tracker.
func NewFrequencyTracker() *FrequencyTracker {
	return &FrequencyTracker{counts: make(map[string]int)}
}

// Record notes one request for the given cache key.
func (t *FrequencyTracker) Record(key string) {
	t.mu.Lock()
	t.counts[key]++
	t.mu.Unlock()
}

// Top returns up to n keys ordered by descending request count.
func (t *FrequencyTracker) Top(n int) []string {
	t.mu.Lock()
	keys := make([]string, 0, len(t.counts))
	for k := range t.counts {
		keys = append(keys, k)
	}
	counts := t.counts
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	t.mu.Unlock()

	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// Reset clears all counts, typically after a warming pass consumed them.
func (t *FrequencyTracker) Reset() {
	t.mu.Lock()
	t.counts = make(map[string]int)
	t.mu.Unlock()
}
