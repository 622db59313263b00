// Package store provides local persistence: track-ID deduplication for
// catalog construction and a sqlite history of finished games.
package store

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// TrackDedup remembers which track IDs have already been accepted into a
// catalog. The Bloom filter answers the common "never seen" case without
// touching the map; the LRU bounds memory across repeated catalog loads.
type TrackDedup struct {
	trackIDs map[string]struct{}
	bloom    *bloom.BloomFilter
	lru      *lru.Cache[string, struct{}]
	mutex    sync.RWMutex
}

// NewTrackDedup creates a dedup store sized for maxTracks IDs with the given
// Bloom false positive rate.
func NewTrackDedup(maxTracks int, falsePositiveRate float64) *TrackDedup {
	if maxTracks <= 0 {
		panic("maxTracks must be positive")
	}

	lruCache, _ := lru.NewWithEvict[string, struct{}](maxTracks, nil)

	return &TrackDedup{
		trackIDs: make(map[string]struct{}),
		bloom:    bloom.NewWithEstimates(uint(maxTracks), falsePositiveRate),
		lru:      lruCache,
	}
}

// Seen reports whether a track ID was already marked.
func (td *TrackDedup) Seen(trackID string) bool {
	td.mutex.RLock()
	defer td.mutex.RUnlock()

	if !td.bloom.TestString(trackID) {
		return false
	}

	_, exists := td.trackIDs[trackID]
	return exists
}

// Mark records a track ID as accepted.
func (td *TrackDedup) Mark(trackID string) {
	td.mutex.Lock()
	defer td.mutex.Unlock()

	if _, exists := td.trackIDs[trackID]; exists {
		return
	}

	// Evict the LRU victim from the backing map when the cache is full.
	if td.lru.Len() >= td.lru.Cap() {
		if oldest, _, ok := td.lru.GetOldest(); ok {
			delete(td.trackIDs, oldest)
		}
	}

	td.trackIDs[trackID] = struct{}{}
	td.bloom.AddString(trackID)
	td.lru.Add(trackID, struct{}{})
}

// Size returns the number of marked IDs.
func (td *TrackDedup) Size() int {
	td.mutex.RLock()
	defer td.mutex.RUnlock()
	return len(td.trackIDs)
}

// Clear resets the store for a fresh catalog build.
func (td *TrackDedup) Clear() {
	td.mutex.Lock()
	defer td.mutex.Unlock()

	td.trackIDs = make(map[string]struct{})
	td.bloom.ClearAll()
	td.lru.Purge()
}
