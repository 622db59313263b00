package core

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// Session is the turn-based game state machine. It owns the roster, the
// shuffle queue, and all turn-scoped state, and drives the playback
// coordinator. All transitions run on the caller's goroutine; callers
// serialize intents (there is a single thread of control, see the HTTP
// surface), so the session itself carries no locking.
type Session struct {
	catalog     *Catalog
	queue       *ShuffleQueue
	roster      *Roster
	coordinator *PlaybackCoordinator
	difficulty  Difficulty
	store       GameStore
	logger      *zap.Logger

	currentIdx int
	phase      Phase
	winnerIdx  int // valid only once phase == PhaseEnded with a winner

	// Turn-scoped state, reset by nextPlayerTurn
	current      *Track
	hasPlayed    bool
	lastPlayback PlaybackOutcome
	fallbackURL  string
	yearGuess    *int
	yearBonus    bool
	namedItUsed  bool
}

// NewSession builds a session over an already validated catalog and roster.
func NewSession(
	catalog *Catalog,
	roster *Roster,
	coordinator *PlaybackCoordinator,
	difficulty Difficulty,
	store GameStore,
	logger *zap.Logger,
) *Session {
	return &Session{
		catalog:     catalog,
		queue:       NewShuffleQueue(catalog.Size()),
		roster:      roster,
		coordinator: coordinator,
		difficulty:  difficulty,
		store:       store,
		logger:      logger,
		winnerIdx:   -1,
	}
}

// Apply runs one intent through the state machine and returns the resulting
// snapshot. A guard violation returns the unchanged snapshot alongside the
// sentinel error; the renderer treats it as a no-op.
func (s *Session) Apply(ctx context.Context, intent Intent) (Snapshot, error) {
	if s.phase == PhaseEnded && intent.Type != IntentQuit {
		return s.Snapshot(), ErrGameEnded
	}

	var err error
	switch intent.Type {
	case IntentPlay:
		err = s.play(ctx)
	case IntentPause:
		err = s.pause(ctx)
	case IntentReveal:
		err = s.reveal(ctx)
	case IntentJudgeCorrect:
		err = s.judge(ctx, true)
	case IntentJudgeWrong:
		err = s.judge(ctx, false)
	case IntentSkip:
		err = s.skip(ctx)
	case IntentNamedIt:
		err = s.namedIt()
	case IntentYearGuess:
		err = s.captureYearGuess(intent.Year)
	case IntentQuit:
		err = s.quit(ctx)
	default:
		err = ErrBadPhase
	}

	if err != nil {
		return s.Snapshot(), err
	}

	s.logger.Debug("Intent applied",
		zap.String("intent", intent.Type.String()),
		zap.String("phase", s.phase.String()),
		zap.Int("player", s.currentIdx))

	return s.Snapshot(), nil
}

func (s *Session) currentPlayer() *Player {
	return s.roster.Player(s.currentIdx)
}

// play starts playback, drawing a fresh track on the first play of the turn.
// From PhasePaused it resumes the same track without redrawing.
func (s *Session) play(ctx context.Context) error {
	if s.phase != PhaseAwaitingPlay && s.phase != PhasePaused {
		return ErrBadPhase
	}

	if s.current == nil {
		track := s.catalog.Track(s.queue.Draw())
		s.current = &track
	}

	res := s.coordinator.Play(ctx, *s.current)
	s.lastPlayback = res.Outcome

	// Any attempt, failed or not, unblocks the guessing flow.
	s.hasPlayed = true

	if res.Outcome == OutcomeStarted {
		s.fallbackURL = ""
		s.phase = PhasePlaying
		return nil
	}

	// Playback could not be started; stay out of PhasePlaying and surface
	// the fallback link so the turn can continue.
	s.fallbackURL = res.FallbackURL
	return nil
}

func (s *Session) pause(ctx context.Context) error {
	if s.phase != PhasePlaying {
		return ErrBadPhase
	}

	s.coordinator.Pause(ctx)
	s.phase = PhasePaused
	return nil
}

// reveal exposes the track to the judge. Playback is stopped best-effort;
// in Expert mode the captured year guess is checked against the true year.
func (s *Session) reveal(ctx context.Context) error {
	if s.phase == PhaseRevealed {
		return ErrBadPhase
	}
	if s.current == nil || !s.hasPlayed {
		return ErrBadPhase
	}

	if s.phase == PhasePlaying {
		s.coordinator.Pause(ctx)
	}
	s.phase = PhaseRevealed

	if s.difficulty == DifficultyExpert && s.yearGuess != nil {
		if *s.yearGuess == s.current.Year {
			s.currentPlayer().addTokens(1)
			s.yearBonus = true
			s.logger.Info("Exact year guessed",
				zap.String("player", s.currentPlayer().Name),
				zap.Int("year", s.current.Year))
		}
	}

	return nil
}

// judge records the Correct/Wrong determination and advances the game.
func (s *Session) judge(ctx context.Context, correct bool) error {
	if s.phase != PhaseRevealed {
		return ErrBadPhase
	}

	if correct {
		p := s.currentPlayer()
		p.Score++
		if p.Score >= WinningScore {
			s.end(ctx, s.currentIdx)
			return nil
		}
	}

	s.nextPlayerTurn()
	return nil
}

// skip spends one token to abandon the current track. The same player
// immediately gets a fresh turn; the skipped track is not requeued and can
// recur only after the cycle refills.
func (s *Session) skip(ctx context.Context) error {
	if s.phase != PhaseAwaitingPlay && s.phase != PhasePlaying && s.phase != PhasePaused {
		return ErrBadPhase
	}

	p := s.currentPlayer()
	if p.Tokens < 1 {
		return ErrNoTokens
	}
	p.addTokens(-1)

	if s.phase == PhasePlaying {
		s.coordinator.Pause(ctx)
	}
	s.resetTurn()
	return nil
}

// namedIt grants the Pro/Expert naming bonus, at most once per turn and only
// after reveal. The determination itself stays with the human judge.
func (s *Session) namedIt() error {
	if s.difficulty == DifficultyOriginal {
		return ErrBadDifficulty
	}
	if s.phase != PhaseRevealed {
		return ErrBadPhase
	}
	if s.namedItUsed {
		return ErrBonusUsed
	}

	s.currentPlayer().addTokens(1)
	s.namedItUsed = true
	return nil
}

// captureYearGuess stores the Expert-mode guess; it is checked at reveal.
func (s *Session) captureYearGuess(year int) error {
	if s.difficulty != DifficultyExpert {
		return ErrBadDifficulty
	}
	if s.phase == PhaseRevealed {
		return ErrBadPhase
	}

	guess := year
	s.yearGuess = &guess
	return nil
}

// quit abandons the game without a winner.
func (s *Session) quit(ctx context.Context) error {
	if s.phase == PhaseEnded {
		return ErrGameEnded
	}
	if s.phase == PhasePlaying {
		s.coordinator.Pause(ctx)
	}
	s.phase = PhaseEnded
	s.winnerIdx = -1
	return nil
}

// end transitions to the terminal state and persists the finished game.
func (s *Session) end(ctx context.Context, winnerIdx int) {
	s.phase = PhaseEnded
	s.winnerIdx = winnerIdx

	s.logger.Info("Game won",
		zap.String("winner", s.roster.Player(winnerIdx).Name),
		zap.Int("score", s.roster.Player(winnerIdx).Score))

	if s.store == nil {
		return
	}
	rec := GameRecord{
		Playlist:   s.catalog.Name(),
		Difficulty: s.difficulty.String(),
		Standings:  s.standings(),
	}
	if err := s.store.RecordGame(ctx, rec); err != nil {
		s.logger.Warn("Failed to persist finished game", zap.Error(err))
	}
}

// nextPlayerTurn advances the player index and resets all turn-scoped state.
func (s *Session) nextPlayerTurn() {
	s.currentIdx = (s.currentIdx + 1) % s.roster.Size()
	s.resetTurn()
}

func (s *Session) resetTurn() {
	s.phase = PhaseAwaitingPlay
	s.current = nil
	s.hasPlayed = false
	s.lastPlayback = OutcomeNone
	s.fallbackURL = ""
	s.yearGuess = nil
	s.yearBonus = false
	s.namedItUsed = false
}

// Reset starts a new game with the same roster and catalog: scores zeroed,
// tokens refilled, fresh shuffle cycle, first player up.
func (s *Session) Reset() {
	s.roster.Reset()
	s.queue = NewShuffleQueue(s.catalog.Size())
	s.currentIdx = 0
	s.winnerIdx = -1
	s.resetTurn()
}

// standings returns all players sorted by descending score, stable on ties
// so equal scores keep roster order.
func (s *Session) standings() []PlayerView {
	views := s.roster.Views()
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Score > views[j].Score
	})
	return views
}

// Snapshot projects the current state into the read-only render view. Track
// identity is withheld until the turn is revealed.
func (s *Session) Snapshot() Snapshot {
	views := s.roster.Views()
	snap := Snapshot{
		Phase:            s.phase.String(),
		Difficulty:       s.difficulty.String(),
		Players:          views,
		CurrentPlayerIdx: s.currentIdx,
		CurrentPlayer:    views[s.currentIdx],
		HasPlayed:        s.hasPlayed,
		LastPlayback:     s.lastPlayback,
		FallbackURL:      s.fallbackURL,
		YearGuess:        s.yearGuess,
		YearBonus:        s.yearBonus,
		NamedItAvailable: s.phase == PhaseRevealed && s.difficulty != DifficultyOriginal && !s.namedItUsed,
	}

	if s.phase == PhaseRevealed && s.current != nil {
		snap.Track = &TrackReveal{
			Title:  s.current.Title,
			Artist: s.current.Artist,
			Year:   s.current.Year,
			Album:  s.current.Album,
			ArtURL: s.current.ArtURL,
		}
	}

	if s.phase == PhaseEnded {
		snap.Standings = s.standings()
		if s.winnerIdx >= 0 {
			w := views[s.winnerIdx]
			snap.Winner = &w
		}
	}

	return snap
}

// RevealedTrack returns the current track once revealed, for the name-check
// assist. It returns false before reveal so the answer cannot leak.
func (s *Session) RevealedTrack() (Track, bool) {
	if s.phase != PhaseRevealed || s.current == nil {
		return Track{}, false
	}
	return *s.current, true
}
