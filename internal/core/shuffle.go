package core

import (
	"math/rand"
	"time"
)

// Package-level random number generator shared by all shuffle queues
var rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // Track ordering doesn't require crypto-secure randomness

// ShuffleQueue hands out catalog indices in a uniformly random order, each
// index exactly once per cycle. When a cycle is exhausted the queue refills
// itself with a fresh permutation, so drawing never fails for a non-empty
// catalog and a track can only recur after every other track has been seen
// once in the current cycle.
type ShuffleQueue struct {
	size  int
	order []int
}

// NewShuffleQueue creates a queue over the index range [0, size).
// The catalog size precondition (size >= MinCatalogSize) is enforced by
// catalog construction before a queue is ever built.
func NewShuffleQueue(size int) *ShuffleQueue {
	q := &ShuffleQueue{size: size}
	q.refill()
	return q
}

// refill regenerates a fresh Fisher-Yates permutation of the full range.
func (q *ShuffleQueue) refill() {
	q.order = make([]int, q.size)
	for i := range q.order {
		q.order[i] = i
	}
	for i := q.size - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		q.order[i], q.order[j] = q.order[j], q.order[i]
	}
}

// Draw returns and removes the front index, refilling first if the current
// cycle is exhausted.
func (q *ShuffleQueue) Draw() int {
	if len(q.order) == 0 {
		q.refill()
	}
	idx := q.order[0]
	q.order = q.order[1:]
	return idx
}

// Remaining returns how many indices are left in the current cycle.
func (q *ShuffleQueue) Remaining() int {
	return len(q.order)
}
