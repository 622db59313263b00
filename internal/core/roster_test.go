package core

import (
	"errors"
	"strings"
	"testing"
)

func TestNewRosterValidatesPlayerCount(t *testing.T) {
	tests := []struct {
		name    string
		players int
		wantErr bool
	}{
		{"one player", 1, true},
		{"two players", 2, false},
		{"eight players", 8, false},
		{"nine players", 9, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names := make([]string, tt.players)
			_, err := NewRoster(names, 3)
			if tt.wantErr && !errors.Is(err, ErrRosterSize) {
				t.Errorf("NewRoster(%d players) error = %v, expected ErrRosterSize", tt.players, err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("NewRoster(%d players) error = %v", tt.players, err)
			}
		})
	}
}

func TestNewRosterValidatesStartingTokens(t *testing.T) {
	for _, tokens := range []int{0, 6, -1} {
		if _, err := NewRoster([]string{"A", "B"}, tokens); !errors.Is(err, ErrBadStartingTokens) {
			t.Errorf("NewRoster(tokens=%d) error = %v, expected ErrBadStartingTokens", tokens, err)
		}
	}
	for tokens := 1; tokens <= 5; tokens++ {
		roster, err := NewRoster([]string{"A", "B"}, tokens)
		if err != nil {
			t.Fatalf("NewRoster(tokens=%d) error = %v", tokens, err)
		}
		if roster.Player(0).Tokens != tokens {
			t.Errorf("starting tokens = %d, expected %d", roster.Player(0).Tokens, tokens)
		}
	}
}

func TestNewRosterDefaultsAndTruncatesNames(t *testing.T) {
	long := strings.Repeat("x", 30)
	roster, err := NewRoster([]string{"", "  ", long}, 3)
	if err != nil {
		t.Fatalf("NewRoster() error = %v", err)
	}

	if got := roster.Player(0).Name; got != "Player 1" {
		t.Errorf("empty name became %q, expected %q", got, "Player 1")
	}
	if got := roster.Player(1).Name; got != "Player 2" {
		t.Errorf("blank name became %q, expected %q", got, "Player 2")
	}
	if got := roster.Player(2).Name; len(got) != MaxPlayerNameLength {
		t.Errorf("long name length = %d, expected %d", len(got), MaxPlayerNameLength)
	}
}

func TestAddTokensClamps(t *testing.T) {
	p := Player{Tokens: 4}

	p.addTokens(3)
	if p.Tokens != MaxTokens {
		t.Errorf("tokens = %d, expected cap at %d", p.Tokens, MaxTokens)
	}

	p.addTokens(-10)
	if p.Tokens != 0 {
		t.Errorf("tokens = %d, expected floor at 0", p.Tokens)
	}
}

func TestRosterReset(t *testing.T) {
	roster, err := NewRoster([]string{"A", "B"}, 2)
	if err != nil {
		t.Fatalf("NewRoster() error = %v", err)
	}

	roster.Player(0).Score = 7
	roster.Player(0).addTokens(-2)
	roster.Reset()

	if roster.Player(0).Score != 0 {
		t.Errorf("score = %d after reset, expected 0", roster.Player(0).Score)
	}
	if roster.Player(0).Tokens != 2 {
		t.Errorf("tokens = %d after reset, expected 2", roster.Player(0).Tokens)
	}
	if roster.Player(0).Name != "A" {
		t.Errorf("name = %q after reset, expected %q", roster.Player(0).Name, "A")
	}
}
