// Package http exposes the game over a small local HTTP surface: health and
// metrics endpoints plus the snapshot/intent API consumed by the renderer.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"norster/internal/core"
)

const historyLimit = 20

// Game is the session surface the server drives. Intents are serialized by
// the server's mutex; the session itself is single-threaded.
type Game interface {
	Apply(ctx context.Context, intent core.Intent) (core.Snapshot, error)
	Snapshot() core.Snapshot
	CheckNameGuess(guessTitle, guessArtist string) (core.NameCheck, bool)
	Reset()
}

type Server struct {
	config   *core.ServerConfig
	logger   *zap.Logger
	server   *http.Server
	game     Game
	history  core.GameStore
	metrics  *Metrics
	registry *prometheus.Registry

	// Serializes intents: one state transition runs to completion before
	// the next trigger is accepted.
	mu sync.Mutex
}

type Metrics struct {
	IntentsTotal     *prometheus.CounterVec
	TurnsJudgedTotal *prometheus.CounterVec
	SkipsTotal       prometheus.Counter
	BonusTokensTotal *prometheus.CounterVec
	PlaybackFailures *prometheus.CounterVec
	GamesFinished    prometheus.Counter
	CatalogSize      prometheus.Gauge
}

func newMetrics(registry *prometheus.Registry) *Metrics {
	metrics := &Metrics{
		IntentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "norster_intents_total",
				Help: "Total number of game intents processed",
			},
			[]string{"intent", "status"},
		),
		TurnsJudgedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "norster_turns_judged_total",
				Help: "Total number of judged turns",
			},
			[]string{"outcome"},
		),
		SkipsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "norster_skips_total",
				Help: "Total number of tracks skipped",
			},
		),
		BonusTokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "norster_bonus_tokens_total",
				Help: "Total number of bonus tokens granted",
			},
			[]string{"kind"},
		),
		PlaybackFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "norster_playback_failures_total",
				Help: "Total number of failed remote playback attempts",
			},
			[]string{"kind"},
		),
		GamesFinished: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "norster_games_finished_total",
				Help: "Total number of games finished with a winner",
			},
		),
		CatalogSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "norster_catalog_size",
				Help: "Number of playable tracks in the current catalog",
			},
		),
	}

	registry.MustRegister(
		metrics.IntentsTotal,
		metrics.TurnsJudgedTotal,
		metrics.SkipsTotal,
		metrics.BonusTokensTotal,
		metrics.PlaybackFailures,
		metrics.GamesFinished,
		metrics.CatalogSize,
	)

	return metrics
}

func NewServer(config *core.ServerConfig, game Game, history core.GameStore, logger *zap.Logger) *Server {
	registry := prometheus.NewRegistry()

	s := &Server{
		config:   config,
		logger:   logger,
		game:     game,
		history:  history,
		metrics:  newMetrics(registry),
		registry: registry,
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      s.routes(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"norster"}`))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready","service":"norster"}`))
	})

	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/api/intent", s.handleIntent)
	mux.HandleFunc("/api/namecheck", s.handleNameCheck)
	mux.HandleFunc("/api/history", s.handleHistory)

	return mux
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	snap := s.game.Snapshot()
	s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, snap)
}

type intentRequest struct {
	Type string `json:"type"`
	Year int    `json:"year,omitempty"`
}

type intentResponse struct {
	Snapshot core.Snapshot `json:"snapshot"`
	Error    string        `json:"error,omitempty"`
}

// parseIntentType maps the wire names onto the intent enumeration. The
// pseudo-intent "reset" (play again) is handled separately.
func parseIntentType(name string) (core.IntentType, bool) {
	switch name {
	case "play":
		return core.IntentPlay, true
	case "pause":
		return core.IntentPause, true
	case "reveal":
		return core.IntentReveal, true
	case "judge_correct":
		return core.IntentJudgeCorrect, true
	case "judge_wrong":
		return core.IntentJudgeWrong, true
	case "skip":
		return core.IntentSkip, true
	case "named_it":
		return core.IntentNamedIt, true
	case "year_guess":
		return core.IntentYearGuess, true
	case "quit":
		return core.IntentQuit, true
	default:
		return 0, false
	}
}

func (s *Server) handleIntent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req intentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid intent body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Type == "reset" {
		s.game.Reset()
		s.metrics.IntentsTotal.WithLabelValues("reset", "ok").Inc()
		s.writeJSON(w, http.StatusOK, intentResponse{Snapshot: s.game.Snapshot()})
		return
	}

	intentType, ok := parseIntentType(req.Type)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown intent %q", req.Type), http.StatusBadRequest)
		return
	}

	before := s.game.Snapshot()
	snap, err := s.game.Apply(r.Context(), core.Intent{Type: intentType, Year: req.Year})
	s.record(intentType, before, snap, err)

	resp := intentResponse{Snapshot: snap}
	status := http.StatusOK
	if err != nil {
		// Guard violations are no-ops, not server errors; the renderer
		// shows the message and keeps the unchanged snapshot.
		resp.Error = err.Error()
		status = http.StatusConflict
	}
	s.writeJSON(w, status, resp)
}

// record derives the game metrics from an applied intent and the snapshots
// around it.
func (s *Server) record(intentType core.IntentType, before, after core.Snapshot, err error) {
	status := "ok"
	if err != nil {
		status = "rejected"
	}
	s.metrics.IntentsTotal.WithLabelValues(intentType.String(), status).Inc()

	if err != nil {
		return
	}

	switch intentType {
	case core.IntentPlay:
		if after.LastPlayback != core.OutcomeStarted && after.LastPlayback != core.OutcomeNone {
			s.metrics.PlaybackFailures.WithLabelValues(after.LastPlayback.String()).Inc()
		}
	case core.IntentJudgeCorrect:
		s.metrics.TurnsJudgedTotal.WithLabelValues("correct").Inc()
		if after.Winner != nil {
			s.metrics.GamesFinished.Inc()
		}
	case core.IntentJudgeWrong:
		s.metrics.TurnsJudgedTotal.WithLabelValues("wrong").Inc()
	case core.IntentSkip:
		s.metrics.SkipsTotal.Inc()
	case core.IntentNamedIt:
		s.metrics.BonusTokensTotal.WithLabelValues("named_it").Inc()
	case core.IntentReveal:
		if !before.YearBonus && after.YearBonus {
			s.metrics.BonusTokensTotal.WithLabelValues("exact_year").Inc()
		}
	}
}

type nameCheckRequest struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

func (s *Server) handleNameCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req nameCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid namecheck body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	check, ok := s.game.CheckNameGuess(req.Title, req.Artist)
	s.mu.Unlock()

	if !ok {
		http.Error(w, "name check not available in this phase or difficulty", http.StatusConflict)
		return
	}

	s.writeJSON(w, http.StatusOK, check)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.history == nil {
		s.writeJSON(w, http.StatusOK, []core.GameRecord{})
		return
	}

	records, err := s.history.RecentGames(r.Context(), historyLimit)
	if err != nil {
		s.logger.Error("Failed to read game history", zap.Error(err))
		http.Error(w, "failed to read history", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []core.GameRecord{}
	}

	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("Failed to write response", zap.Error(err))
	}
}

// SetCatalogSize publishes the catalog size gauge.
func (s *Server) SetCatalogSize(size int) {
	s.metrics.CatalogSize.Set(float64(size))
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}
