package performance

import (
	"sync"
	"time"
)

// Tracker manages performance markers and aggregates basic statistics.
type Tracker struct {
	markers    []*Marker
	maxMarkers int
	mu         sync.RWMutex
	started    time.Time
}

// NewTracker creates a performance tracker retaining at most maxMarkers
// recent markers.
func NewTracker(maxMarkers int) *Tracker {
	if maxMarkers <= 0 {
		maxMarkers = 10000
	}
	return &Tracker{
		maxMarkers: maxMarkers,
		started:    time.Now(),
	}
}

// StartOperation begins tracking a named operation for a user.
func (t *Tracker) StartOperation(operation, userID string) *Marker {
	marker := &Marker{
		Operation: operation,
		UserID:    userID,
		StartTime: time.Now(),
	}

	t.mu.Lock()
	t.markers = append(t.markers, marker)
	if len(t.markers) > t.maxMarkers {
		t.markers = t.markers[len(t.markers)-t.maxMarkers:]
	}
	t.mu.Unlock()

	return marker
}

// Stats summarizes completed operations since startup.
type Stats struct {
	Uptime          time.Duration `json:"uptime"`
	TotalOperations int           `json:"totalOperations"`
	Completed       int           `json:"completed"`
	Failed          int           `json:"failed"`
	AvgDuration     time.Duration `json:"avgDuration"`
	SlowestOp       string        `json:"slowestOp,omitempty"`
	SlowestDuration time.Duration `json:"slowestDuration"`
}

// GetStats aggregates the retained markers.
func (t *Tracker) GetStats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	stats := Stats{
		Uptime:          time.Since(t.started),
		TotalOperations: len(t.markers),
	}

	var totalDuration time.Duration
	for _, m := range t.markers {
		if !m.Completed {
			continue
		}
		stats.Completed++
		if !m.Success {
			stats.Failed++
		}
		totalDuration += m.Duration
		if m.Duration > stats.SlowestDuration {
			stats.SlowestDuration = m.Duration
			stats.SlowestOp = m.Operation
		}
	}
	if stats.Completed > 0 {
		stats.AvgDuration = totalDuration / time.Duration(stats.Completed)
	}
	return stats
}
