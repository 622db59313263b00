package core

import (
	"fmt"
	"strings"
)

// Roster is the ordered list of players for one game. It is owned by the
// session; nothing else mutates player state.
type Roster struct {
	players        []Player
	startingTokens int
}

// NewRoster validates the player list and starting token count and builds
// the roster. Empty names default to "Player N"; names longer than
// MaxPlayerNameLength are truncated.
func NewRoster(names []string, startingTokens int) (*Roster, error) {
	if len(names) < MinPlayers || len(names) > MaxPlayers {
		return nil, fmt.Errorf("%w: got %d", ErrRosterSize, len(names))
	}
	if startingTokens < 1 || startingTokens > MaxTokens {
		return nil, fmt.Errorf("%w: got %d", ErrBadStartingTokens, startingTokens)
	}

	players := make([]Player, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("Player %d", i+1)
		}
		if len(name) > MaxPlayerNameLength {
			name = name[:MaxPlayerNameLength]
		}
		players[i] = Player{Name: name, Tokens: startingTokens}
	}

	return &Roster{players: players, startingTokens: startingTokens}, nil
}

// Size returns the number of players.
func (r *Roster) Size() int {
	return len(r.players)
}

// Player returns a pointer to the player at idx for session-owned mutation.
func (r *Roster) Player(idx int) *Player {
	return &r.players[idx]
}

// Reset refills every player's tokens to the starting count and zeroes
// scores, keeping names and order.
func (r *Roster) Reset() {
	for i := range r.players {
		r.players[i].Tokens = r.startingTokens
		r.players[i].Score = 0
	}
}

// Views returns the read-only projection of all players in roster order.
func (r *Roster) Views() []PlayerView {
	views := make([]PlayerView, len(r.players))
	for i, p := range r.players {
		views[i] = PlayerView{Name: p.Name, Score: p.Score, Tokens: p.Tokens}
	}
	return views
}
