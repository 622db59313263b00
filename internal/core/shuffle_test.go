package core

import (
	"testing"
)

func TestDrawYieldsFullPermutationPerCycle(t *testing.T) {
	for _, size := range []int{5, 8, 50} {
		q := NewShuffleQueue(size)

		seen := make(map[int]bool, size)
		for i := 0; i < size; i++ {
			idx := q.Draw()
			if idx < 0 || idx >= size {
				t.Fatalf("size %d: Draw() = %d, out of range", size, idx)
			}
			if seen[idx] {
				t.Fatalf("size %d: index %d drawn twice in one cycle", size, idx)
			}
			seen[idx] = true
		}

		if len(seen) != size {
			t.Errorf("size %d: cycle produced %d distinct indices", size, len(seen))
		}
	}
}

func TestDrawRefillsTransparently(t *testing.T) {
	const size = 5
	q := NewShuffleQueue(size)

	for i := 0; i < size; i++ {
		q.Draw()
	}
	if q.Remaining() != 0 {
		t.Fatalf("Remaining() = %d after full cycle, expected 0", q.Remaining())
	}

	// The next draw must succeed and start a fresh full cycle.
	seen := make(map[int]bool, size)
	for i := 0; i < size; i++ {
		seen[q.Draw()] = true
	}
	if len(seen) != size {
		t.Errorf("second cycle produced %d distinct indices, expected %d", len(seen), size)
	}
}

func TestCyclesAreIndependentPermutations(t *testing.T) {
	// With 50 indices the odds of several identical consecutive cycles are
	// negligible; identical output would mean the refill is not reshuffling.
	const size = 50
	q := NewShuffleQueue(size)

	first := make([]int, size)
	for i := range first {
		first[i] = q.Draw()
	}

	identical := true
	for attempt := 0; attempt < 3 && identical; attempt++ {
		for i := 0; i < size; i++ {
			if q.Draw() != first[i] {
				identical = false
			}
		}
	}
	if identical {
		t.Error("consecutive cycles were identical; refill does not reshuffle")
	}
}
