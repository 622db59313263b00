package core

import "errors"

// Guard-condition and precondition errors. Intent-guard violations are
// surfaced to the caller but leave the session untouched.
var (
	// ErrBadPhase is returned when an intent is not valid in the current phase.
	ErrBadPhase = errors.New("intent not valid in current phase")
	// ErrBadDifficulty is returned when an intent requires a difficulty mode
	// the session is not running.
	ErrBadDifficulty = errors.New("intent not available in this difficulty")
	// ErrNoTokens is returned when a skip is requested with zero tokens.
	ErrNoTokens = errors.New("no tokens left to skip")
	// ErrBonusUsed is returned when the naming bonus is invoked twice in one turn.
	ErrBonusUsed = errors.New("naming bonus already granted this turn")
	// ErrGameEnded is returned when any intent reaches a terminal session.
	ErrGameEnded = errors.New("game has ended")

	// ErrCatalogTooSmall is returned when a playlist yields fewer than
	// MinCatalogSize usable tracks.
	ErrCatalogTooSmall = errors.New("catalog has fewer than 5 usable tracks")
	// ErrRosterSize is returned when the player count is outside [2, 8].
	ErrRosterSize = errors.New("roster must have between 2 and 8 players")
	// ErrBadStartingTokens is returned when the configured starting token
	// count is outside [1, 5].
	ErrBadStartingTokens = errors.New("starting tokens must be between 1 and 5")

	// ErrDeviceNotFound is the transport classification for a playback call
	// that failed because the target device is gone or inactive.
	ErrDeviceNotFound = errors.New("playback device not found")
	// ErrPremiumRequired is the transport classification for a playback call
	// rejected because of the account's subscription tier.
	ErrPremiumRequired = errors.New("spotify premium required for remote playback")
)
