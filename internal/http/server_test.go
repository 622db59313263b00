package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"norster/internal/core"
)

type fakeGame struct {
	snap     core.Snapshot
	applyErr error
	applied  []core.Intent
	resets   int
	check    core.NameCheck
	checkOK  bool
}

func (g *fakeGame) Apply(_ context.Context, intent core.Intent) (core.Snapshot, error) {
	g.applied = append(g.applied, intent)
	return g.snap, g.applyErr
}

func (g *fakeGame) Snapshot() core.Snapshot { return g.snap }

func (g *fakeGame) CheckNameGuess(_, _ string) (core.NameCheck, bool) {
	return g.check, g.checkOK
}

func (g *fakeGame) Reset() { g.resets++ }

type fakeGameStore struct {
	records []core.GameRecord
	err     error
}

func (s *fakeGameStore) RecordGame(_ context.Context, rec core.GameRecord) error {
	s.records = append(s.records, rec)
	return nil
}

func (s *fakeGameStore) RecentGames(_ context.Context, _ int) ([]core.GameRecord, error) {
	return s.records, s.err
}

func testSnapshot() core.Snapshot {
	return core.Snapshot{
		Phase:      core.PhaseAwaitingPlay.String(),
		Difficulty: core.DifficultyOriginal.String(),
		Players: []core.PlayerView{
			{Name: "Alice", Score: 0, Tokens: 3},
			{Name: "Bob", Score: 0, Tokens: 3},
		},
		CurrentPlayer: core.PlayerView{Name: "Alice", Score: 0, Tokens: 3},
	}
}

func testServer(t *testing.T, game Game, history core.GameStore) *Server {
	t.Helper()

	config := &core.ServerConfig{
		Host:         "127.0.0.1",
		Port:         0,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	return NewServer(config, game, history, zap.NewNop())
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)

	return rec
}

func TestHandleState(t *testing.T) {
	game := &fakeGame{snap: testSnapshot()}
	s := testServer(t, game, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/state", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}

	var snap core.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	if snap.Phase != "awaiting_play" {
		t.Errorf("phase = %q, expected awaiting_play", snap.Phase)
	}
	if len(snap.Players) != 2 {
		t.Errorf("expected 2 players, got %d", len(snap.Players))
	}
}

func TestHandleStateMethodNotAllowed(t *testing.T) {
	s := testServer(t, &fakeGame{snap: testSnapshot()}, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/state", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, expected 405", rec.Code)
	}
}

func TestHandleIntent(t *testing.T) {
	game := &fakeGame{snap: testSnapshot()}
	s := testServer(t, game, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/intent", `{"type":"play"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}

	if len(game.applied) != 1 {
		t.Fatalf("expected 1 applied intent, got %d", len(game.applied))
	}
	if game.applied[0].Type != core.IntentPlay {
		t.Errorf("applied intent = %v, expected play", game.applied[0].Type)
	}

	var resp intentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error != "" {
		t.Errorf("unexpected error in response: %q", resp.Error)
	}
}

func TestHandleIntentYearGuess(t *testing.T) {
	game := &fakeGame{snap: testSnapshot()}
	s := testServer(t, game, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/intent", `{"type":"year_guess","year":1987}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}
	if len(game.applied) != 1 || game.applied[0].Year != 1987 {
		t.Fatalf("expected year 1987 to pass through, got %+v", game.applied)
	}
}

func TestHandleIntentUnknownType(t *testing.T) {
	game := &fakeGame{snap: testSnapshot()}
	s := testServer(t, game, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/intent", `{"type":"dance"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", rec.Code)
	}
	if len(game.applied) != 0 {
		t.Errorf("expected no intents applied, got %d", len(game.applied))
	}
}

func TestHandleIntentBadBody(t *testing.T) {
	s := testServer(t, &fakeGame{snap: testSnapshot()}, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/intent", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", rec.Code)
	}
}

func TestHandleIntentGuardViolation(t *testing.T) {
	game := &fakeGame{snap: testSnapshot(), applyErr: core.ErrBadPhase}
	s := testServer(t, game, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/intent", `{"type":"reveal"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, expected 409", rec.Code)
	}

	var resp intentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error == "" {
		t.Error("expected error message in response")
	}
	if resp.Snapshot.Phase != "awaiting_play" {
		t.Errorf("expected unchanged snapshot alongside the error, got phase %q", resp.Snapshot.Phase)
	}
}

func TestHandleIntentReset(t *testing.T) {
	game := &fakeGame{snap: testSnapshot()}
	s := testServer(t, game, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/intent", `{"type":"reset"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}
	if game.resets != 1 {
		t.Errorf("resets = %d, expected 1", game.resets)
	}
	if len(game.applied) != 0 {
		t.Errorf("expected reset to bypass Apply, got %d intents", len(game.applied))
	}
}

func TestHandleNameCheck(t *testing.T) {
	game := &fakeGame{
		snap:    testSnapshot(),
		check:   core.NameCheck{TitleSimilarity: 0.9, ArtistSimilarity: 0.8, Match: true},
		checkOK: true,
	}
	s := testServer(t, game, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/namecheck", `{"title":"Get Lucky","artist":"Daft Punk"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}

	var check core.NameCheck
	if err := json.Unmarshal(rec.Body.Bytes(), &check); err != nil {
		t.Fatalf("failed to decode check: %v", err)
	}
	if !check.Match {
		t.Error("expected match verdict")
	}
}

func TestHandleNameCheckUnavailable(t *testing.T) {
	game := &fakeGame{snap: testSnapshot(), checkOK: false}
	s := testServer(t, game, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/namecheck", `{"title":"x","artist":"y"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, expected 409", rec.Code)
	}
}

func TestHandleHistory(t *testing.T) {
	history := &fakeGameStore{
		records: []core.GameRecord{
			{
				ID:         1,
				Playlist:   "Road Trip",
				Difficulty: "pro",
				Standings:  []core.PlayerView{{Name: "Alice", Score: 10}},
				FinishedAt: time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC),
			},
		},
	}
	s := testServer(t, &fakeGame{snap: testSnapshot()}, history)

	rec := doRequest(t, s, http.MethodGet, "/api/history", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}

	var records []core.GameRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("failed to decode records: %v", err)
	}
	if len(records) != 1 || records[0].Playlist != "Road Trip" {
		t.Errorf("records = %+v, expected the recorded game", records)
	}
}

func TestHandleHistoryWithoutStore(t *testing.T) {
	s := testServer(t, &fakeGame{snap: testSnapshot()}, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/history", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("body = %q, expected empty array", body)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := testServer(t, &fakeGame{snap: testSnapshot()}, nil)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doRequest(t, s, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, expected 200", path, rec.Code)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	game := &fakeGame{snap: testSnapshot()}
	s := testServer(t, game, nil)
	s.SetCatalogSize(42)

	doRequest(t, s, http.MethodPost, "/api/intent", `{"type":"play"}`)

	rec := doRequest(t, s, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "norster_catalog_size 42") {
		t.Error("expected catalog size gauge in metrics output")
	}
	if !strings.Contains(body, `norster_intents_total{intent="play",status="ok"} 1`) {
		t.Error("expected intent counter in metrics output")
	}
}
