package core

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// PlayResult is the coordinator's classified answer to a play intent.
// FallbackURL is set whenever playback could not be started so the renderer
// can offer a direct open-in-Spotify link and the turn stays unblocked.
type PlayResult struct {
	Outcome     PlaybackOutcome
	FallbackURL string
}

// PlaybackCoordinator translates session intents into remote playback calls
// and folds transport failures into the fixed outcome enumeration. The
// session never sees a raw transport error.
type PlaybackCoordinator struct {
	transport PlaybackTransport
	deviceID  string
	logger    *zap.Logger
}

func NewPlaybackCoordinator(transport PlaybackTransport, deviceID string, logger *zap.Logger) *PlaybackCoordinator {
	return &PlaybackCoordinator{
		transport: transport,
		deviceID:  deviceID,
		logger:    logger,
	}
}

// Play attempts to start remote playback of track on the configured device.
// On a device error it retries once with no explicit device, letting the
// remote service pick whatever is active. Premium rejections are never
// retried. Any failure yields a fallback link instead of blocking the turn.
func (pc *PlaybackCoordinator) Play(ctx context.Context, track Track) PlayResult {
	err := pc.transport.Play(ctx, track.URI, pc.deviceID)
	if err == nil {
		return PlayResult{Outcome: OutcomeStarted}
	}

	switch {
	case errors.Is(err, ErrPremiumRequired):
		pc.logger.Warn("Remote playback forbidden by subscription tier",
			zap.String("trackID", track.ID))
		return PlayResult{Outcome: OutcomePremiumRequired, FallbackURL: track.URL}

	case errors.Is(err, ErrDeviceNotFound):
		pc.logger.Warn("Playback device went inactive, retrying without device",
			zap.String("deviceID", pc.deviceID),
			zap.String("trackID", track.ID))

		if retryErr := pc.transport.Play(ctx, track.URI, ""); retryErr == nil {
			return PlayResult{Outcome: OutcomeStarted}
		} else if errors.Is(retryErr, ErrPremiumRequired) {
			return PlayResult{Outcome: OutcomePremiumRequired, FallbackURL: track.URL}
		}
		return PlayResult{Outcome: OutcomeDeviceError, FallbackURL: track.URL}

	default:
		pc.logger.Warn("Playback failed",
			zap.String("trackID", track.ID),
			zap.Error(err))
		return PlayResult{Outcome: OutcomeOtherError, FallbackURL: track.URL}
	}
}

// Pause stops playback best-effort. Pausing is not on the critical path of
// scoring correctness, so failures are logged and swallowed.
func (pc *PlaybackCoordinator) Pause(ctx context.Context) {
	if err := pc.transport.Pause(ctx); err != nil {
		pc.logger.Debug("Pause failed", zap.Error(err))
	}
}
