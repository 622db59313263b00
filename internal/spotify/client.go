// Package spotify provides the Spotify Web API integration: catalog loading
// from playlists, device discovery, and remote playback control.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"norster/internal/core"
	"norster/internal/store"
)

const (
	// FilePermission is the permission for token files
	FilePermission = 0600
	// PlaylistPageSize is the page size used when walking playlist items
	PlaylistPageSize = 100
	// ReleaseDateYearLength is the expected length of a release date year string
	ReleaseDateYearLength = 4
	// CatalogCacheSize is how many built catalogs are kept per process
	CatalogCacheSize = 8
	// DedupCapacity sizes the per-build track ID dedup store
	DedupCapacity = 10000
	// DedupFalsePositiveRate is the Bloom false positive rate for the dedup store
	DedupFalsePositiveRate = 0.001
)

type Client struct {
	config   *core.SpotifyConfig
	logger   *zap.Logger
	client   *spotify.Client
	auth     *spotifyauth.Authenticator
	catalogs *lru.Cache[string, *core.Catalog]
}

type TokenData struct {
	Token *oauth2.Token `json:"token"`
}

func NewClient(config *core.SpotifyConfig, logger *zap.Logger) *Client {
	auth := spotifyauth.New(
		spotifyauth.WithRedirectURL(config.RedirectURL),
		spotifyauth.WithScopes(
			spotifyauth.ScopePlaylistReadPrivate,
			spotifyauth.ScopePlaylistReadCollaborative,
			spotifyauth.ScopeUserLibraryRead,
			spotifyauth.ScopeUserModifyPlaybackState,
			spotifyauth.ScopeUserReadCurrentlyPlaying,
			spotifyauth.ScopeUserReadPlaybackState,
		),
		spotifyauth.WithClientID(config.ClientID),
		spotifyauth.WithClientSecret(config.ClientSecret),
	)

	catalogs, _ := lru.New[string, *core.Catalog](CatalogCacheSize)

	return &Client{
		config:   config,
		logger:   logger,
		auth:     auth,
		catalogs: catalogs,
	}
}

func (c *Client) Authenticate(ctx context.Context) error {
	token, err := c.loadToken()
	if err != nil {
		c.logger.Info("No saved token found, starting OAuth flow")
		return c.startOAuthFlow(ctx)
	}

	client := spotify.New(c.auth.Client(ctx, token))
	c.client = client

	user, err := client.CurrentUser(ctx)
	if err != nil {
		c.logger.Warn("Saved token invalid, starting OAuth flow", zap.Error(err))
		return c.startOAuthFlow(ctx)
	}

	c.logger.Info("Authenticated successfully", zap.String("user", user.DisplayName))
	return nil
}

// ListPlaylists returns the current user's playlists, walking all pages.
func (c *Client) ListPlaylists(ctx context.Context) ([]string, error) {
	if c.client == nil {
		return nil, fmt.Errorf("client not authenticated")
	}

	page, err := c.client.CurrentUsersPlaylists(ctx, spotify.Limit(50))
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}

	var names []string
	for {
		for _, p := range page.Playlists {
			names = append(names, fmt.Sprintf("%s (%s)", p.Name, p.ID))
		}
		if err := c.client.NextPage(ctx, page); err != nil {
			if errors.Is(err, spotify.ErrNoMorePages) {
				break
			}
			return nil, fmt.Errorf("failed to page playlists: %w", err)
		}
	}

	return names, nil
}

// LoadCatalog builds the game catalog from a playlist: all pages of items,
// filtered to playable tracks with a usable release year. Built catalogs are
// cached per playlist ID for the life of the process.
func (c *Client) LoadCatalog(ctx context.Context, playlistID string) (*core.Catalog, error) {
	if c.client == nil {
		return nil, fmt.Errorf("client not authenticated")
	}

	if catalog, ok := c.catalogs.Get(playlistID); ok {
		c.logger.Debug("Catalog cache hit", zap.String("playlistID", playlistID))
		return catalog, nil
	}

	playlist, err := c.client.GetPlaylist(ctx, spotify.ID(playlistID))
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}

	page, err := c.client.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(PlaylistPageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	var raw []core.Track
	for {
		for i := range page.Items {
			item := &page.Items[i]
			if item.IsLocal || item.Track.Track == nil {
				continue
			}
			raw = append(raw, convertPlaylistTrack(item.Track.Track))
		}
		if err := c.client.NextPage(ctx, page); err != nil {
			if errors.Is(err, spotify.ErrNoMorePages) {
				break
			}
			return nil, fmt.Errorf("failed to page playlist items: %w", err)
		}
	}

	dedup := store.NewTrackDedup(DedupCapacity, DedupFalsePositiveRate)
	catalog, err := core.NewCatalog(playlist.Name, raw, dedup)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Catalog loaded",
		zap.String("playlist", playlist.Name),
		zap.Int("rawTracks", len(raw)),
		zap.Int("usableTracks", catalog.Size()))

	c.catalogs.Add(playlistID, catalog)
	return catalog, nil
}

// Devices lists the available playback targets.
func (c *Client) Devices(ctx context.Context) ([]core.Device, error) {
	if c.client == nil {
		return nil, fmt.Errorf("client not authenticated")
	}

	devices, err := c.client.PlayerDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get player devices: %w", err)
	}

	result := make([]core.Device, 0, len(devices))
	for _, d := range devices {
		result = append(result, core.Device{
			ID:     d.ID.String(),
			Name:   d.Name,
			Type:   d.Type,
			Active: d.Active,
		})
	}

	return result, nil
}

// PickDevice chooses a sensible playback default: the active device if one
// exists, otherwise the first listed. Empty result means no device at all.
func PickDevice(devices []core.Device) string {
	for _, d := range devices {
		if d.Active {
			return d.ID
		}
	}
	if len(devices) > 0 {
		return devices[0].ID
	}
	return ""
}

// Play starts playback of a track URI on the given device. An empty device
// ID lets Spotify pick whatever is active. Device-gone and subscription-tier
// failures are classified into the core sentinel errors so the coordinator
// can apply its retry policy.
func (c *Client) Play(ctx context.Context, uri string, deviceID string) error {
	if c.client == nil {
		return fmt.Errorf("client not authenticated")
	}

	opts := &spotify.PlayOptions{
		URIs: []spotify.URI{spotify.URI(uri)},
	}
	if deviceID != "" {
		id := spotify.ID(deviceID)
		opts.DeviceID = &id
	}

	if err := c.client.PlayOpt(ctx, opts); err != nil {
		return classifyPlaybackError(err)
	}

	c.logger.Debug("Playback started",
		zap.String("uri", uri),
		zap.String("deviceID", deviceID))

	return nil
}

// Pause stops playback on whatever device is active.
func (c *Client) Pause(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("client not authenticated")
	}

	if err := c.client.Pause(ctx); err != nil {
		return classifyPlaybackError(err)
	}

	return nil
}

// classifyPlaybackError maps the Web API status codes onto the sentinel
// errors the coordinator's policy keys on: 404 means the device is gone,
// 403 means the account tier forbids remote control.
func classifyPlaybackError(err error) error {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", core.ErrDeviceNotFound, apiErr.Message)
		case http.StatusForbidden:
			return fmt.Errorf("%w: %s", core.ErrPremiumRequired, apiErr.Message)
		}
	}
	return fmt.Errorf("playback request failed: %w", err)
}

func convertPlaylistTrack(track *spotify.FullTrack) core.Track {
	var artists []string
	for _, artist := range track.Artists {
		artists = append(artists, artist.Name)
	}

	var year int
	if len(track.Album.ReleaseDate) >= ReleaseDateYearLength {
		if _, err := fmt.Sscanf(track.Album.ReleaseDate[:4], "%d", &year); err != nil {
			year = 0
		}
	}

	var artURL string
	if len(track.Album.Images) > 0 {
		artURL = track.Album.Images[0].URL
	}

	return core.Track{
		ID:     string(track.ID),
		Title:  track.Name,
		Artist: strings.Join(artists, ", "),
		Album:  track.Album.Name,
		Year:   year,
		ArtURL: artURL,
		URI:    string(track.URI),
		URL:    track.ExternalURLs["spotify"],
	}
}

func (c *Client) startOAuthFlow(ctx context.Context) error {
	state := fmt.Sprintf("norster-auth-%d", time.Now().Unix())
	authURL := c.auth.AuthURL(state)

	fmt.Printf("Please visit the following URL to authorize the application:\n%s\n", authURL)
	fmt.Print("Enter the authorization code: ")

	var code string
	if _, err := fmt.Scanln(&code); err != nil {
		return fmt.Errorf("failed to read authorization code: %w", err)
	}

	token, err := c.auth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange code for token: %w", err)
	}

	if saveErr := c.saveToken(token); saveErr != nil {
		c.logger.Warn("Failed to save token", zap.Error(saveErr))
	}

	client := spotify.New(c.auth.Client(ctx, token))
	c.client = client

	user, err := client.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	c.logger.Info("OAuth flow completed successfully", zap.String("user", user.DisplayName))
	return nil
}

func (c *Client) loadToken() (*oauth2.Token, error) {
	file, err := os.Open(c.config.TokenPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	var tokenData TokenData
	if err := json.Unmarshal(data, &tokenData); err != nil {
		return nil, err
	}

	return tokenData.Token, nil
}

func (c *Client) saveToken(token *oauth2.Token) error {
	tokenData := TokenData{Token: token}

	data, err := json.MarshalIndent(tokenData, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.config.TokenPath, data, FilePermission)
}
