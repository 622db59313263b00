package core

import (
	"testing"
)

func TestCheckNameGuessUnavailableBeforeReveal(t *testing.T) {
	s := testSession(t, DifficultyPro, 2, 3, &mockTransport{}, nil)
	mustApply(t, s, Intent{Type: IntentPlay})

	if _, ok := s.CheckNameGuess("Song 0", "Test Artist"); ok {
		t.Error("CheckNameGuess available before reveal; the answer would leak")
	}
}

func TestCheckNameGuessUnavailableOnOriginal(t *testing.T) {
	s := testSession(t, DifficultyOriginal, 2, 3, &mockTransport{}, nil)
	mustApply(t, s, Intent{Type: IntentPlay})
	mustApply(t, s, Intent{Type: IntentReveal})

	if _, ok := s.CheckNameGuess("Song 0", "Test Artist"); ok {
		t.Error("CheckNameGuess available on original difficulty")
	}
}

func TestCheckNameGuessScoresRevealedTrack(t *testing.T) {
	s := testSession(t, DifficultyPro, 2, 3, &mockTransport{}, nil)
	mustApply(t, s, Intent{Type: IntentPlay})
	snap := mustApply(t, s, Intent{Type: IntentReveal})
	if snap.Track == nil {
		t.Fatal("no revealed track")
	}

	check, ok := s.CheckNameGuess(snap.Track.Title, snap.Track.Artist)
	if !ok {
		t.Fatal("CheckNameGuess unavailable after reveal")
	}
	if !check.Match {
		t.Errorf("exact guess did not match: %+v", check)
	}

	check, ok = s.CheckNameGuess("completely different", "nobody")
	if !ok {
		t.Fatal("CheckNameGuess unavailable after reveal")
	}
	if check.Match {
		t.Errorf("unrelated guess matched: %+v", check)
	}
}
