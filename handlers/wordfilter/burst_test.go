package wordfilter

import (
	"testing"
	"time"
)

func TestRecordTriggersAtLimit(t *testing.T) {
	tracker := NewBurstTracker()
	now := time.Now()

	for i := 0; i < 4; i++ {
		if tracker.Record("g1", "u1", now.Add(time.Duration(i)*time.Second), 5, 10*time.Second) {
			t.Fatalf("triggered after %d messages, limit is 5", i+1)
		}
	}
	if !tracker.Record("g1", "u1", now.Add(4*time.Second), 5, 10*time.Second) {
		t.Fatal("expected the fifth message inside the window to trigger")
	}
}

func TestRecordClearsWindowOnTrigger(t *testing.T) {
	tracker := NewBurstTracker()
	now := time.Now()

	for i := 0; i < 3; i++ {
		tracker.Record("g1", "u1", now, 3, 10*time.Second)
	}
	// One burst fires one signal; the very next message starts a new window.
	if tracker.Record("g1", "u1", now.Add(time.Second), 3, 10*time.Second) {
		t.Fatal("message directly after a trigger should not trigger again")
	}
}

func TestRecordExpiresOldEvents(t *testing.T) {
	tracker := NewBurstTracker()
	now := time.Now()

	tracker.Record("g1", "u1", now, 3, 5*time.Second)
	tracker.Record("g1", "u1", now.Add(time.Second), 3, 5*time.Second)
	// The first two slid out of the window, so this is event one of a
	// fresh burst.
	if tracker.Record("g1", "u1", now.Add(20*time.Second), 3, 5*time.Second) {
		t.Fatal("expired events must not count toward the limit")
	}
}

func TestRecordDisabledConfig(t *testing.T) {
	tracker := NewBurstTracker()
	now := time.Now()

	for i := 0; i < 100; i++ {
		if tracker.Record("g1", "u1", now, 0, 10*time.Second) {
			t.Fatal("limit 0 disables burst tracking")
		}
	}
}

func TestCleanupDropsIdleKeys(t *testing.T) {
	tracker := NewBurstTracker()
	now := time.Now()

	tracker.Record("g1", "idle", now.Add(-2*time.Hour), 10, time.Minute)
	tracker.Record("g1", "active", now, 10, time.Minute)
	if tracker.Len() != 2 {
		t.Fatalf("tracked keys = %d, want 2", tracker.Len())
	}

	tracker.Cleanup(now, time.Hour)
	if tracker.Len() != 1 {
		t.Errorf("tracked keys after cleanup = %d, want 1", tracker.Len())
	}
}

func TestMatchBannedWord(t *testing.T) {
	banned := []string{"spamlink", "badword"}

	cases := []struct {
		content string
		want    string
	}{
		{"check out this SpamLink now", "spamlink"},
		{"completely fine message", ""},
		{"BADWORD!", "badword"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := matchBannedWord(tc.content, banned); got != tc.want {
			t.Errorf("matchBannedWord(%q) = %q, want %q", tc.content, got, tc.want)
		}
	}

	if got := matchBannedWord("anything", nil); got != "" {
		t.Errorf("matchBannedWord with no banned words = %q, want empty", got)
	}
}
