package aicache

import (
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlightGroupSharesInFlightResult(t *testing.T) {
	group := NewFlightGroup()

	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	type outcome struct {
		response json.RawMessage
		shared   bool
		err      error
	}
	results := make(chan outcome, 2)

	go func() {
		resp, shared, err := group.Do("k", func() (json.RawMessage, error) {
			calls.Add(1)
			close(started)
			<-release
			return json.RawMessage(`{"v":1}`), nil
		})
		results <- outcome{resp, shared, err}
	}()

	<-started
	go func() {
		resp, shared, err := group.Do("k", func() (json.RawMessage, error) {
			calls.Add(1)
			return json.RawMessage(`{"v":2}`), nil
		})
		results <- outcome{resp, shared, err}
	}()

	// Give the second caller time to join the pending flight.
	time.Sleep(50 * time.Millisecond)
	close(release)

	first := <-results
	second := <-results

	assert.Equal(t, int32(1), calls.Load(), "only one execution for concurrent identical requests")
	assert.JSONEq(t, `{"v":1}`, string(first.response))
	assert.JSONEq(t, `{"v":1}`, string(second.response))
	assert.NoError(t, first.err)
	assert.NoError(t, second.err)
	assert.True(t, first.shared != second.shared, "exactly one caller executed the flight")
}

func TestFlightGroupPropagatesError(t *testing.T) {
	group := NewFlightGroup()
	boom := errors.New("generator down")

	resp, shared, err := group.Do("k", func() (json.RawMessage, error) {
		return nil, boom
	})

	assert.Nil(t, resp)
	assert.False(t, shared)
	assert.ErrorIs(t, err, boom)
}

func TestFlightGroupRunsAgainAfterCompletion(t *testing.T) {
	group := NewFlightGroup()
	var calls int

	fn := func() (json.RawMessage, error) {
		calls++
		return json.RawMessage(`{}`), nil
	}

	_, _, err := group.Do("k", fn)
	require.NoError(t, err)
	_, _, err = group.Do("k", fn)
	require.NoError(t, err)

	assert.Equal(t, 2, calls, "sequential calls are not deduplicated")
}

func TestFrequencyTrackerTop(t *testing.T) {
	tracker := NewFrequencyTracker()
	for i := 0; i < 3; i++ {
		tracker.Record("popular")
	}
	tracker.Record("rare")
	tracker.Record("middle")
	tracker.Record("middle")

	assert.Equal(t, []string{"popular", "middle", "rare"}, tracker.Top(10))
	assert.Equal(t, []string{"popular"}, tracker.Top(1))

	tracker.Reset()
	assert.Empty(t, tracker.Top(10))
}

func TestFrequencyTrackerTieBreaksByKey(t *testing.T) {
	tracker := NewFrequencyTracker()
	tracker.Record("b")
	tracker.Record("a")

	assert.Equal(t, []string{"a", "b"}, tracker.Top(2))
}
