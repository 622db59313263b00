package core

import (
	"fmt"
	"time"
)

// Catalog is the immutable-per-game ordered set of playable tracks. Every
// entry has already passed the year filter and duplicate-ID drop.
type Catalog struct {
	name   string
	tracks []Track
}

// NewCatalog filters the raw playlist entries down to playable tracks:
// entries without a stable ID or URI, entries whose release year is missing
// or outside [MinTrackYear, currentYear], and duplicate track IDs are all
// dropped. Fails with ErrCatalogTooSmall when fewer than MinCatalogSize
// tracks survive.
func NewCatalog(name string, raw []Track, dedup TrackDedup) (*Catalog, error) {
	maxYear := time.Now().Year()

	tracks := make([]Track, 0, len(raw))
	for _, t := range raw {
		if t.ID == "" || t.URI == "" {
			continue
		}
		if t.Year < MinTrackYear || t.Year > maxYear {
			continue
		}
		if dedup != nil {
			if dedup.Seen(t.ID) {
				continue
			}
			dedup.Mark(t.ID)
		}
		tracks = append(tracks, t)
	}

	if len(tracks) < MinCatalogSize {
		return nil, fmt.Errorf("playlist %q: %w (%d after filtering)", name, ErrCatalogTooSmall, len(tracks))
	}

	return &Catalog{name: name, tracks: tracks}, nil
}

// Name returns the display name of the source playlist.
func (c *Catalog) Name() string {
	return c.name
}

// Size returns the number of playable tracks.
func (c *Catalog) Size() int {
	return len(c.tracks)
}

// Track returns the track at a catalog index. The index comes from the
// shuffle queue and is always in range for a non-empty catalog.
func (c *Catalog) Track(idx int) Track {
	return c.tracks[idx]
}
