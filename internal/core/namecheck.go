package core

import (
	"norster/pkg/fuzzy"
)

// NameCheckThreshold is the similarity above which a guess counts as a match
// for the informational verdict.
const NameCheckThreshold = 0.75

// NameCheck is the informational result of comparing a player's spoken
// title/artist guess against the revealed track. It is a judge affordance
// in Pro/Expert only: granting the naming bonus stays a human decision.
type NameCheck struct {
	TitleSimilarity  float64 `json:"title_similarity"`
	ArtistSimilarity float64 `json:"artist_similarity"`
	Match            bool    `json:"match"`
}

// CheckNameGuess scores a guessed title and artist against the revealed
// track. It is only available after reveal and outside Original difficulty;
// otherwise ok is false and the check carries no information.
func (s *Session) CheckNameGuess(guessTitle, guessArtist string) (NameCheck, bool) {
	if s.difficulty == DifficultyOriginal {
		return NameCheck{}, false
	}
	track, ok := s.RevealedTrack()
	if !ok {
		return NameCheck{}, false
	}

	n := fuzzy.NewNormalizer()
	titleSim := n.CalculateSimilarity(n.NormalizeTitle(guessTitle), n.NormalizeTitle(track.Title))
	artistSim := n.CalculateSimilarity(n.NormalizeArtist(guessArtist), n.NormalizeArtist(track.Artist))

	return NameCheck{
		TitleSimilarity:  titleSim,
		ArtistSimilarity: artistSim,
		Match:            titleSim >= NameCheckThreshold && artistSim >= NameCheckThreshold,
	}, true
}
