package core

import (
	"errors"
	"testing"
	"time"
)

type mapDedup map[string]struct{}

func (m mapDedup) Seen(trackID string) bool {
	_, ok := m[trackID]
	return ok
}

func (m mapDedup) Mark(trackID string) {
	m[trackID] = struct{}{}
}

func validTrack(id string, year int) Track {
	return Track{
		ID:    id,
		Title: "Song " + id,
		Year:  year,
		URI:   "spotify:track:" + id,
	}
}

func TestNewCatalogFiltersUnusableTracks(t *testing.T) {
	currentYear := time.Now().Year()

	raw := []Track{
		validTrack("a", 1975),
		{ID: "", Title: "no id", Year: 1980, URI: "spotify:track:x"},
		{ID: "no-uri", Title: "no uri", Year: 1980},
		validTrack("b", 1899), // before the minimum year
		validTrack("c", currentYear + 1),
		validTrack("d", 0), // missing release year
		validTrack("e", 1990),
		validTrack("f", currentYear),
		validTrack("g", 2003),
		validTrack("h", 2011),
	}

	catalog, err := NewCatalog("mix", raw, mapDedup{})
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	if catalog.Size() != 5 {
		t.Errorf("Size() = %d, expected 5 usable tracks", catalog.Size())
	}
	for i := 0; i < catalog.Size(); i++ {
		track := catalog.Track(i)
		if track.Year < MinTrackYear || track.Year > currentYear {
			t.Errorf("track %q has out-of-range year %d", track.ID, track.Year)
		}
	}
}

func TestNewCatalogDropsDuplicateIDs(t *testing.T) {
	raw := []Track{
		validTrack("a", 1990),
		validTrack("b", 1991),
		validTrack("a", 1990), // playlist contains the track twice
		validTrack("c", 1992),
		validTrack("d", 1993),
		validTrack("e", 1994),
	}

	catalog, err := NewCatalog("dupes", raw, mapDedup{})
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	if catalog.Size() != 5 {
		t.Errorf("Size() = %d, expected 5 after duplicate drop", catalog.Size())
	}
}

func TestNewCatalogRejectsTooSmall(t *testing.T) {
	raw := []Track{
		validTrack("a", 1990),
		validTrack("b", 1991),
		validTrack("c", 1992),
		validTrack("d", 1993),
	}

	_, err := NewCatalog("tiny", raw, nil)
	if !errors.Is(err, ErrCatalogTooSmall) {
		t.Errorf("NewCatalog() error = %v, expected ErrCatalogTooSmall", err)
	}
}

func TestNewCatalogKeepsName(t *testing.T) {
	raw := make([]Track, MinCatalogSize)
	for i := range raw {
		raw[i] = validTrack(string(rune('a'+i)), 1990+i)
	}

	catalog, err := NewCatalog("Road Trip", raw, nil)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	if catalog.Name() != "Road Trip" {
		t.Errorf("Name() = %q, expected %q", catalog.Name(), "Road Trip")
	}
}
