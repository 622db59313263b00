package core

import (
	"context"
	"time"
)

const (
	// WinningScore is the number of correct placements needed to win a game
	WinningScore = 10
	// MaxTokens is the upper bound on a player's token count
	MaxTokens = 5
	// MinPlayers is the smallest allowed roster size
	MinPlayers = 2
	// MaxPlayers is the largest allowed roster size
	MaxPlayers = 8
	// MinCatalogSize is the minimum number of usable tracks required to start a game
	MinCatalogSize = 5
	// MinTrackYear is the oldest release year accepted into a catalog
	MinTrackYear = 1900
	// MaxPlayerNameLength caps the display length of a player name
	MaxPlayerNameLength = 20
)

// Track is one playable catalog entry. Tracks are immutable once constructed
// and always carry a release year inside [MinTrackYear, currentYear].
type Track struct {
	ID     string
	Title  string
	Artist string // joined display string, e.g. "Daft Punk, Pharrell Williams"
	Album  string
	Year   int
	ArtURL string
	URI    string // playback URI handed to the transport
	URL    string // open-in-Spotify web URL, used as the playback fallback
}

// Player is one roster entry. Tokens and score are mutated only by the
// session in response to judged outcomes and bonuses.
type Player struct {
	Name   string
	Tokens int
	Score  int
}

// addTokens clamps the result into [0, MaxTokens].
func (p *Player) addTokens(delta int) {
	p.Tokens += delta
	if p.Tokens < 0 {
		p.Tokens = 0
	}
	if p.Tokens > MaxTokens {
		p.Tokens = MaxTokens
	}
}

type Difficulty int

const (
	// DifficultyOriginal judges chronological placement only
	DifficultyOriginal Difficulty = iota
	// DifficultyPro adds the "named it" bonus path
	DifficultyPro
	// DifficultyExpert adds the exact-year guess sub-challenge on top of Pro
	DifficultyExpert
)

func (d Difficulty) String() string {
	switch d {
	case DifficultyPro:
		return "pro"
	case DifficultyExpert:
		return "expert"
	default:
		return "original"
	}
}

type Phase int

const (
	// PhaseAwaitingPlay means no playback has been started for the current turn
	PhaseAwaitingPlay Phase = iota
	// PhasePlaying means the playback request succeeded and the track is audible
	PhasePlaying
	// PhasePaused means playback is stopped but the track has not been revealed
	PhasePaused
	// PhaseRevealed means the track is visible to the judge, awaiting Correct/Wrong
	PhaseRevealed
	// PhaseEnded is terminal: a player won, or the game was abandoned
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	case PhaseRevealed:
		return "revealed"
	case PhaseEnded:
		return "ended"
	default:
		return "awaiting_play"
	}
}

type IntentType int

const (
	// IntentPlay starts playback of the current track, drawing one first if needed
	IntentPlay IntentType = iota
	// IntentPause stops playback without revealing
	IntentPause
	// IntentReveal exposes the track to the judge and locks in the year guess
	IntentReveal
	// IntentJudgeCorrect records a correct placement for the current player
	IntentJudgeCorrect
	// IntentJudgeWrong records a wrong placement for the current player
	IntentJudgeWrong
	// IntentSkip spends one token to abandon the current track
	IntentSkip
	// IntentNamedIt grants the Pro/Expert naming bonus
	IntentNamedIt
	// IntentYearGuess captures the Expert-mode year guess before reveal
	IntentYearGuess
	// IntentQuit abandons the game without a winner
	IntentQuit
)

func (t IntentType) String() string {
	switch t {
	case IntentPlay:
		return "play"
	case IntentPause:
		return "pause"
	case IntentReveal:
		return "reveal"
	case IntentJudgeCorrect:
		return "judge_correct"
	case IntentJudgeWrong:
		return "judge_wrong"
	case IntentSkip:
		return "skip"
	case IntentNamedIt:
		return "named_it"
	case IntentYearGuess:
		return "year_guess"
	case IntentQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Intent is one externally triggered command against the session. Year is
// only meaningful for IntentYearGuess.
type Intent struct {
	Type IntentType
	Year int
}

type PlaybackOutcome int

const (
	// OutcomeNone means no playback attempt has been made this turn
	OutcomeNone PlaybackOutcome = iota
	// OutcomeStarted means the remote playback request succeeded
	OutcomeStarted
	// OutcomeDeviceError means the target device was gone and the no-device retry also failed
	OutcomeDeviceError
	// OutcomePremiumRequired means the account tier forbids remote playback
	OutcomePremiumRequired
	// OutcomeOtherError covers any other remote failure
	OutcomeOtherError
)

func (o PlaybackOutcome) String() string {
	switch o {
	case OutcomeStarted:
		return "started"
	case OutcomeDeviceError:
		return "device_error"
	case OutcomePremiumRequired:
		return "premium_required"
	case OutcomeOtherError:
		return "other_error"
	default:
		return "none"
	}
}

// Device is one remote playback target.
type Device struct {
	ID     string
	Name   string
	Type   string
	Active bool
}

// PlayerView is the read-only projection of a player exposed in snapshots.
type PlayerView struct {
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Tokens int    `json:"tokens"`
}

// TrackReveal carries track identity. It appears in a snapshot only once the
// turn has been revealed; before that the renderer must not learn the answer.
type TrackReveal struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Year   int    `json:"year"`
	Album  string `json:"album"`
	ArtURL string `json:"art_url,omitempty"`
}

// Snapshot is the full render-facing view of the session after a transition.
type Snapshot struct {
	Phase            string          `json:"phase"`
	Difficulty       string          `json:"difficulty"`
	Players          []PlayerView    `json:"players"`
	CurrentPlayerIdx int             `json:"current_player_idx"`
	CurrentPlayer    PlayerView      `json:"current_player"`
	HasPlayed        bool            `json:"has_played"`
	LastPlayback     PlaybackOutcome `json:"-"`
	FallbackURL      string          `json:"fallback_url,omitempty"`
	Track            *TrackReveal    `json:"track,omitempty"`
	YearGuess        *int            `json:"year_guess,omitempty"`
	YearBonus        bool            `json:"year_bonus"`
	NamedItAvailable bool            `json:"named_it_available"`
	Winner           *PlayerView     `json:"winner,omitempty"`
	Standings        []PlayerView    `json:"standings,omitempty"`
}

// GameRecord is one finished game as persisted to the history store.
type GameRecord struct {
	ID         int64        `json:"id,omitempty"`
	Playlist   string       `json:"playlist"`
	Difficulty string       `json:"difficulty"`
	Standings  []PlayerView `json:"standings"`
	FinishedAt time.Time    `json:"finished_at"`
}

// PlaybackTransport is the raw remote playback surface. Implementations
// classify remote failures into ErrDeviceNotFound / ErrPremiumRequired so the
// coordinator can apply its retry policy without seeing transport details.
type PlaybackTransport interface {
	Play(ctx context.Context, uri string, deviceID string) error
	Pause(ctx context.Context) error
}

// CatalogLoader builds the per-game track catalog from a playlist.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context, playlistID string) (*Catalog, error)
}

// DeviceProvider lists remote playback targets.
type DeviceProvider interface {
	Devices(ctx context.Context) ([]Device, error)
}

// GameStore persists finished games.
type GameStore interface {
	RecordGame(ctx context.Context, rec GameRecord) error
	RecentGames(ctx context.Context, limit int) ([]GameRecord, error)
}

// TrackDedup tracks which catalog track IDs have already been accepted, so
// playlists containing the same track twice contribute it once.
type TrackDedup interface {
	Seen(trackID string) bool
	Mark(trackID string)
}
