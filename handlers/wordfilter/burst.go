package wordfilter

import (
	"sync"
	"time"
)

// BurstTracker keeps a bounded sliding window of message timestamps per
// (guild,user) key. It is constructed and injected explicitly so tests
// can build isolated instances; there is no package-level state.
type BurstTracker struct {
	mu     sync.Mutex
	events map[string][]time.Time
}

func NewBurstTracker() *BurstTracker {
	return &BurstTracker{events: make(map[string][]time.Time)}
}

// Record adds a message timestamp and reports whether the key just
// crossed the burst limit within the window. On a trigger the window is
// cleared so one burst fires exactly one signal.
func (t *BurstTracker) Record(guildID, userID string, now time.Time, limit int, window time.Duration) bool {
	if limit <= 0 || window <= 0 {
		return false
	}
	key := guildID + ":" + userID

	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := now.Add(-window)
	kept := t.events[key][:0]
	for _, ts := range t.events[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	kept = append(kept, now)

	if len(kept) >= limit {
		delete(t.events, key)
		return true
	}

	t.events[key] = kept
	return false
}

// Cleanup drops keys whose newest event is older than maxAge, bounding
// memory for users who went quiet.
func (t *BurstTracker) Cleanup(now time.Time, maxAge time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for key, timestamps := range t.events {
		if len(timestamps) == 0 || now.Sub(timestamps[len(timestamps)-1]) > maxAge {
			delete(t.events, key)
		}
	}
}

// Len reports the number of tracked keys.
func (t *BurstTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.events)
}
