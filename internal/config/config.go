// jellyfin-suggested - Personalized "Suggested For You" playlists for Jellyfin
// https://github.com/jessedye/jellyfin-suggested

// Package config loads and validates process configuration.
//
// Configuration is environment-sourced only, loaded once per run via Koanf v2
// with two layers (highest priority wins):
//
//  1. Environment variables (JELLYFIN_URL, TMDB_API_KEY, ...)
//  2. Built-in defaults
//
// JELLYFIN_URL, JELLYFIN_API_KEY and TMDB_API_KEY are mandatory; a missing
// value is a fatal startup error reported before any network activity.
// The Config value is immutable after Load and safe for concurrent reads.
package config

import (
	"fmt"
	"time"
)

// DefaultPlaylistName is the playlist created or replaced for each user
// unless PLAYLIST_NAME overrides it.
const DefaultPlaylistName = "Suggested For You"

// Config holds all settings for one generation run.
type Config struct {
	Jellyfin JellyfinConfig `koanf:"jellyfin"`
	TMDB     TMDBConfig     `koanf:"tmdb"`
	Playlist PlaylistConfig `koanf:"playlist"`
	Runtime  RuntimeConfig  `koanf:"runtime"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// JellyfinConfig holds Jellyfin server connection settings.
//
// Environment Variables:
//   - JELLYFIN_URL: server base URL, e.g. http://localhost:8096 (required)
//   - JELLYFIN_API_KEY: API key from Dashboard > API Keys (required)
type JellyfinConfig struct {
	URL    string `koanf:"url"`
	APIKey string `koanf:"api_key"`
}

// TMDBConfig holds TMDB API settings and the quality thresholds applied to
// similarity results before they become suggestion candidates.
//
// Environment Variables:
//   - TMDB_API_KEY: TMDB API key (required)
//   - MIN_TMDB_RATING: minimum vote average, inclusive (default 6.0)
//   - MIN_TMDB_VOTES: minimum vote count, inclusive (default 50)
type TMDBConfig struct {
	APIKey    string  `koanf:"api_key"`
	MinRating float64 `koanf:"min_rating"`
	MinVotes  int     `koanf:"min_votes"`
}

// PlaylistConfig holds the playlist name and the size limits bounding the
// suggestion volume.
//
// Environment Variables:
//   - PLAYLIST_NAME: playlist display name (default "Suggested For You")
//   - MAX_WATCHED_ITEMS: watched movies/series considered per user (default 20)
//   - MAX_SIMILAR_PER_ITEM: similarity results kept per watched item (default 5)
//   - MAX_PLAYLIST_ITEMS: total playlist size cap (default 50)
type PlaylistConfig struct {
	Name              string `koanf:"name"`
	MaxWatchedItems   int    `koanf:"max_watched_items"`
	MaxSimilarPerItem int    `koanf:"max_similar_per_item"`
	MaxPlaylistItems  int    `koanf:"max_playlist_items"`
}

// RuntimeConfig holds per-run execution settings.
//
// Environment Variables:
//   - REQUEST_TIMEOUT: per-request timeout in seconds (default 30)
//   - MAX_CONCURRENT_USERS: bounded worker pool size; 1 processes users
//     strictly in sequence (default 1)
type RuntimeConfig struct {
	RequestTimeoutSeconds int `koanf:"request_timeout"`
	MaxConcurrentUsers    int `koanf:"max_concurrent_users"`
}

// RequestTimeout returns the per-request timeout as a duration.
func (r RuntimeConfig) RequestTimeout() time.Duration {
	return time.Duration(r.RequestTimeoutSeconds) * time.Second
}

// LoggingConfig holds log output settings.
//
// Environment Variables:
//   - LOG_LEVEL: debug, info, warn, error (default info)
//   - LOG_FORMAT: json, console (default json)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// defaultConfig returns a Config with all optional settings at their
// documented defaults. Required values stay empty and must come from the
// environment.
func defaultConfig() *Config {
	return &Config{
		Jellyfin: JellyfinConfig{
			URL:    "",
			APIKey: "",
		},
		TMDB: TMDBConfig{
			APIKey:    "",
			MinRating: 6.0,
			MinVotes:  50,
		},
		Playlist: PlaylistConfig{
			Name:              DefaultPlaylistName,
			MaxWatchedItems:   20,
			MaxSimilarPerItem: 5,
			MaxPlaylistItems:  50,
		},
		Runtime: RuntimeConfig{
			RequestTimeoutSeconds: 30,
			MaxConcurrentUsers:    1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks that required configuration is present and valid.
// Error messages name the environment variable to fix.
func (c *Config) Validate() error {
	if err := c.validateJellyfin(); err != nil {
		return err
	}
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validatePlaylist(); err != nil {
		return err
	}
	return c.validateRuntime()
}

func (c *Config) validateJellyfin() error {
	if c.Jellyfin.URL == "" {
		return fmt.Errorf("JELLYFIN_URL is required")
	}
	if err := validateHTTPURL(c.Jellyfin.URL, "JELLYFIN_URL"); err != nil {
		return err
	}
	if c.Jellyfin.APIKey == "" {
		return fmt.Errorf("JELLYFIN_API_KEY is required")
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if c.TMDB.APIKey == "" {
		return fmt.Errorf("TMDB_API_KEY is required")
	}
	if c.TMDB.MinRating < 0 || c.TMDB.MinRating > 10 {
		return fmt.Errorf("MIN_TMDB_RATING must be between 0 and 10, got %v", c.TMDB.MinRating)
	}
	if c.TMDB.MinVotes < 0 {
		return fmt.Errorf("MIN_TMDB_VOTES must not be negative, got %d", c.TMDB.MinVotes)
	}
	return nil
}

func (c *Config) validatePlaylist() error {
	if c.Playlist.Name == "" {
		return fmt.Errorf("PLAYLIST_NAME must not be empty")
	}
	if c.Playlist.MaxWatchedItems <= 0 {
		return fmt.Errorf("MAX_WATCHED_ITEMS must be positive, got %d", c.Playlist.MaxWatchedItems)
	}
	if c.Playlist.MaxSimilarPerItem <= 0 {
		return fmt.Errorf("MAX_SIMILAR_PER_ITEM must be positive, got %d", c.Playlist.MaxSimilarPerItem)
	}
	if c.Playlist.MaxPlaylistItems <= 0 {
		return fmt.Errorf("MAX_PLAYLIST_ITEMS must be positive, got %d", c.Playlist.MaxPlaylistItems)
	}
	return nil
}

func (c *Config) validateRuntime() error {
	if c.Runtime.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %d", c.Runtime.RequestTimeoutSeconds)
	}
	if c.Runtime.MaxConcurrentUsers <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_USERS must be positive, got %d", c.Runtime.MaxConcurrentUsers)
	}
	return nil
}
