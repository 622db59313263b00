// Package main provides the norster game server entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"norster/internal/core"
	httpserver "norster/internal/http"
	"norster/internal/spotify"
	"norster/internal/store"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "norster",
	Short: "Norster - name that song's year",
	Long: `Norster hosts a turn-based party game: players guess where a song belongs
chronologically while playback is remote-controlled through Spotify. The game
state is exposed over a local HTTP API for the render layer.`,
	RunE: runNorster,
}

var listPlaylistsCmd = &cobra.Command{
	Use:   "list-playlists",
	Short: "List the authenticated user's playlists and their IDs",
	RunE:  runListPlaylists,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(listPlaylistsCmd)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("spotify-client-id", "", "Spotify client ID")
	rootCmd.PersistentFlags().String("spotify-client-secret", "", "Spotify client secret")
	rootCmd.PersistentFlags().String("spotify-playlist-id", "", "Spotify playlist ID to draw tracks from")
	rootCmd.PersistentFlags().String("spotify-device-id", "", "playback device ID (default: the active device)")
	rootCmd.PersistentFlags().StringSlice("players", nil, "player names (2 to 8)")
	rootCmd.PersistentFlags().String("difficulty", "original", "difficulty (original, pro, expert)")
	rootCmd.PersistentFlags().Int("starting-tokens", 3, "skip tokens per player at game start (1 to 5)")
	rootCmd.PersistentFlags().Int("server-port", 8080, "HTTP server port")
	rootCmd.PersistentFlags().String("history-path", "", "path to the game history database")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(".env")
		viper.SetConfigType("env")
	}

	viper.SetEnvPrefix("NORSTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}

	config = buildConfig()
	logger = buildLogger(config.Log.Level)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	cfg.Spotify.ClientID = viper.GetString("spotify-client-id")
	cfg.Spotify.ClientSecret = viper.GetString("spotify-client-secret")
	cfg.Spotify.PlaylistID = viper.GetString("spotify-playlist-id")
	cfg.Spotify.DeviceID = viper.GetString("spotify-device-id")
	if redirectURL := viper.GetString("spotify-redirect-url"); redirectURL != "" {
		cfg.Spotify.RedirectURL = redirectURL
	}
	if tokenPath := viper.GetString("spotify-token-path"); tokenPath != "" {
		cfg.Spotify.TokenPath = tokenPath
	}

	if players := viper.GetStringSlice("players"); len(players) > 0 {
		cfg.Game.Players = players
	}
	if tokens := viper.GetInt("starting-tokens"); tokens != 0 {
		cfg.Game.StartingTokens = tokens
	}
	cfg.Game.Difficulty = viper.GetString("difficulty")
	if historyPath := viper.GetString("history-path"); historyPath != "" {
		cfg.Game.HistoryPath = historyPath
	}

	if host := viper.GetString("server-host"); host != "" {
		cfg.Server.Host = host
	}
	cfg.Server.Port = viper.GetInt("server-port")

	cfg.Log.Level = viper.GetString("log-level")

	return cfg
}

func buildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func runNorster(_ *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting norster",
		zap.String("difficulty", config.Game.Difficulty),
		zap.Int("players", len(config.Game.Players)),
		zap.String("spotify_playlist", config.Spotify.PlaylistID))

	if err := validateConfig(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	spotifyClient := spotify.NewClient(&config.Spotify, logger.Named("spotify"))
	if err := spotifyClient.Authenticate(ctx); err != nil {
		return fmt.Errorf("failed to authenticate with Spotify: %w", err)
	}

	catalog, err := spotifyClient.LoadCatalog(ctx, config.Spotify.PlaylistID)
	if err != nil {
		return fmt.Errorf("failed to load track catalog: %w", err)
	}

	roster, err := core.NewRoster(config.Game.Players, config.Game.StartingTokens)
	if err != nil {
		return fmt.Errorf("invalid roster: %w", err)
	}

	deviceID := config.Spotify.DeviceID
	if deviceID == "" {
		devices, devErr := spotifyClient.Devices(ctx)
		if devErr != nil {
			logger.Warn("Failed to list playback devices", zap.Error(devErr))
		}
		deviceID = spotify.PickDevice(devices)
		if deviceID == "" {
			logger.Warn("No playback device found; playback will rely on the fallback link")
		}
	}

	historyStore, err := store.NewHistoryStore(config.Game.HistoryPath, logger.Named("store"))
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer historyStore.Close()

	coordinator := core.NewPlaybackCoordinator(spotifyClient, deviceID, logger.Named("playback"))

	session := core.NewSession(
		catalog,
		roster,
		coordinator,
		core.ParseDifficulty(config.Game.Difficulty),
		historyStore,
		logger.Named("session"),
	)

	httpServer := httpserver.NewServer(&config.Server, session, historyStore, logger.Named("http"))
	httpServer.SetCatalogSize(catalog.Size())

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return httpServer.Start(gCtx)
	})

	logger.Info("Norster started",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)),
		zap.Int("catalog_size", catalog.Size()),
		zap.String("device_id", deviceID))

	if err := g.Wait(); err != nil {
		logger.Error("Norster stopped with error", zap.Error(err))
		return err
	}

	logger.Info("Norster stopped gracefully")
	return nil
}

func runListPlaylists(_ *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if config.Spotify.ClientID == "" || config.Spotify.ClientSecret == "" {
		return fmt.Errorf("spotify client ID and secret are required")
	}

	spotifyClient := spotify.NewClient(&config.Spotify, logger.Named("spotify"))
	if err := spotifyClient.Authenticate(ctx); err != nil {
		return fmt.Errorf("failed to authenticate with Spotify: %w", err)
	}

	playlists, err := spotifyClient.ListPlaylists(ctx)
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}

	for _, p := range playlists {
		fmt.Println(p)
	}

	return nil
}

func validateConfig() error {
	if config.Spotify.ClientID == "" {
		return fmt.Errorf("spotify client ID is required")
	}

	if config.Spotify.ClientSecret == "" {
		return fmt.Errorf("spotify client secret is required")
	}

	if config.Spotify.PlaylistID == "" {
		return fmt.Errorf("spotify playlist ID is required")
	}

	if len(config.Game.Players) < core.MinPlayers || len(config.Game.Players) > core.MaxPlayers {
		return fmt.Errorf("player count must be between %d and %d, got %d",
			core.MinPlayers, core.MaxPlayers, len(config.Game.Players))
	}

	if config.Game.StartingTokens < 1 || config.Game.StartingTokens > core.MaxTokens {
		return fmt.Errorf("starting tokens must be between 1 and %d, got %d",
			core.MaxTokens, config.Game.StartingTokens)
	}

	return nil
}
