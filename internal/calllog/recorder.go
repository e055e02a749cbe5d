// Package calllog keeps the append-only record of webhook events and transfer
// requests for debugging.
package calllog

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lapu-lapu-poc/server/internal/model"
)

// DefaultLimit is used when a reader does not supply a positive limit.
const DefaultLimit = 20

// Recorder is safe for concurrent use. Entries are kept for the process lifetime.
type Recorder struct {
	mu      sync.RWMutex
	entries []model.CallLogEntry
	now     func() time.Time
}

func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// Append records one entry and returns it.
func (r *Recorder) Append(event, callID string, data any) model.CallLogEntry {
	if callID == "" {
		callID = model.UnknownCallID
	}
	entry := model.CallLogEntry{
		ID:        uuid.NewString(),
		Timestamp: r.now().UTC(),
		Event:     event,
		CallID:    callID,
		Data:      data,
	}

	r.mu.Lock()
	r.entries = append(r.entries, entry)
	r.mu.Unlock()
	return entry
}

// Len returns the number of recorded entries.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Recent returns the total count and the last limit entries, oldest first.
func (r *Recorder) Recent(limit int) (int, []model.CallLogEntry) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries), tail(r.entries, limit)
}

// ByCallID returns all entries recorded for one call, oldest first.
func (r *Recorder) ByCallID(callID string) []model.CallLogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.CallLogEntry
	for _, e := range r.entries {
		if e.CallID == callID {
			out = append(out, e)
		}
	}
	return out
}

func tail[T any](items []T, limit int) []T {
	if limit <= 0 {
		limit = DefaultLimit
	}
	start := len(items) - limit
	if start < 0 {
		start = 0
	}
	out := make([]T, len(items)-start)
	copy(out, items[start:])
	return out
}
