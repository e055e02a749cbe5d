package calllog

import (
	"fmt"
	"sync"
	"testing"

	"github.com/lapu-lapu-poc/server/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_AppendAndRecent(t *testing.T) {
	r := NewRecorder()
	for i := 0; i < 25; i++ {
		r.Append(model.EventCallStarted, fmt.Sprintf("call-%02d", i), nil)
	}

	total, recent := r.Recent(0)
	assert.Equal(t, 25, total)
	require.Len(t, recent, DefaultLimit)
	assert.Equal(t, "call-05", recent[0].CallID)
	assert.Equal(t, "call-24", recent[len(recent)-1].CallID)

	total, recent = r.Recent(3)
	assert.Equal(t, 25, total)
	assert.Equal(t, []string{"call-22", "call-23", "call-24"}, callIDs(recent))

	_, recent = r.Recent(100)
	assert.Len(t, recent, 25)
}

func TestRecorder_DefaultsCallID(t *testing.T) {
	r := NewRecorder()
	e := r.Append(model.EventUnknown, "", map[string]any{"garbage": true})

	assert.Equal(t, model.UnknownCallID, e.CallID)
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())
}

func TestRecorder_ByCallID(t *testing.T) {
	r := NewRecorder()
	r.Append(model.EventCallStarted, "a", nil)
	r.Append(model.EventCallStarted, "b", nil)
	r.Append(model.EventTransferRequested, "a", model.TransferRequest{CallID: "a"})

	got := r.ByCallID("a")
	require.Len(t, got, 2)
	assert.Equal(t, model.EventTransferRequested, got[1].Event)
}

func TestRecorder_ConcurrentAppends(t *testing.T) {
	r := NewRecorder()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Append(model.EventCallEnded, fmt.Sprint(i), nil)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, r.Len())
}

func TestRecentReturnsCopy(t *testing.T) {
	r := NewRecorder()
	r.Append(model.EventCallStarted, "x", nil)
	_, recent := r.Recent(1)
	recent[0].CallID = "mutated"

	_, again := r.Recent(1)
	assert.Equal(t, "x", again[0].CallID)
}

func callIDs(entries []model.CallLogEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.CallID)
	}
	return out
}
