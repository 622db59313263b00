package core

import (
	"time"
)

type Config struct {
	Spotify SpotifyConfig
	Game    GameConfig
	Server  ServerConfig
	Log     LogConfig
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	PlaylistID   string
	TokenPath    string
	DeviceID     string // optional; empty means pick the active device at startup
}

type GameConfig struct {
	Players        []string
	StartingTokens int
	Difficulty     string
	HistoryPath    string
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

func DefaultConfig() *Config {
	return &Config{
		Spotify: SpotifyConfig{
			RedirectURL: "http://localhost:8080/callback",
			TokenPath:   "./spotify_token.json",
		},
		Game: GameConfig{
			Players:        []string{"Player 1", "Player 2"},
			StartingTokens: 3,
			Difficulty:     "original",
			HistoryPath:    "./norster_history.db",
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// ParseDifficulty maps the configured difficulty name onto its mode.
// Unrecognized names fall back to the original rules.
func ParseDifficulty(name string) Difficulty {
	switch name {
	case "pro":
		return DifficultyPro
	case "expert":
		return DifficultyExpert
	default:
		return DifficultyOriginal
	}
}
