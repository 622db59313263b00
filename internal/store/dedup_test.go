package store

import (
	"fmt"
	"testing"
)

func TestTrackDedupSeenAndMark(t *testing.T) {
	td := NewTrackDedup(100, 0.001)

	if td.Seen("track-1") {
		t.Error("expected unmarked ID to be unseen")
	}

	td.Mark("track-1")
	if !td.Seen("track-1") {
		t.Error("expected marked ID to be seen")
	}
	if td.Seen("track-2") {
		t.Error("expected other ID to remain unseen")
	}
	if td.Size() != 1 {
		t.Errorf("Size() = %d, expected 1", td.Size())
	}
}

func TestTrackDedupMarkIdempotent(t *testing.T) {
	td := NewTrackDedup(100, 0.001)

	td.Mark("track-1")
	td.Mark("track-1")
	td.Mark("track-1")

	if td.Size() != 1 {
		t.Errorf("Size() = %d after repeated marks, expected 1", td.Size())
	}
}

func TestTrackDedupEviction(t *testing.T) {
	td := NewTrackDedup(3, 0.001)

	for i := 0; i < 4; i++ {
		td.Mark(fmt.Sprintf("track-%d", i))
	}

	if td.Size() != 3 {
		t.Errorf("Size() = %d after eviction, expected 3", td.Size())
	}
	if td.Seen("track-0") {
		t.Error("expected oldest ID to be evicted from backing map")
	}
	for i := 1; i < 4; i++ {
		if !td.Seen(fmt.Sprintf("track-%d", i)) {
			t.Errorf("expected track-%d to survive eviction", i)
		}
	}
}

func TestTrackDedupClear(t *testing.T) {
	td := NewTrackDedup(100, 0.001)

	td.Mark("track-1")
	td.Mark("track-2")
	td.Clear()

	if td.Size() != 0 {
		t.Errorf("Size() = %d after Clear, expected 0", td.Size())
	}
	if td.Seen("track-1") || td.Seen("track-2") {
		t.Error("expected no IDs to be seen after Clear")
	}
}

func TestNewTrackDedupPanicsOnBadCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for non-positive capacity")
		}
	}()
	NewTrackDedup(0, 0.001)
}
