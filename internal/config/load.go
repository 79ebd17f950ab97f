// jellyfin-suggested - Personalized "Suggested For You" playlists for Jellyfin
// https://github.com/jessedye/jellyfin-suggested

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Load builds the run configuration with layered sources:
//  1. Defaults: built-in values for all optional settings
//  2. Environment variables: override any setting, supply the required ones
//
// The result is validated before it is returned; a missing mandatory value
// yields an error naming the environment variable.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: environment variables (highest priority)
	// Variable names are mapped to koanf paths: JELLYFIN_URL -> jellyfin.url
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Normalize the server URL the way the rest of the code expects it
	cfg.Jellyfin.URL = strings.TrimRight(cfg.Jellyfin.URL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// envTransformFunc maps environment variable names to koanf config paths.
//
// Examples:
//   - JELLYFIN_URL -> jellyfin.url
//   - MAX_WATCHED_ITEMS -> playlist.max_watched_items
//   - REQUEST_TIMEOUT -> runtime.request_timeout
func envTransformFunc(key string) string {
	envMappings := map[string]string{
		// Jellyfin mappings
		"jellyfin_url":     "jellyfin.url",
		"jellyfin_api_key": "jellyfin.api_key",

		// TMDB mappings
		"tmdb_api_key":    "tmdb.api_key",
		"min_tmdb_rating": "tmdb.min_rating",
		"min_tmdb_votes":  "tmdb.min_votes",

		// Playlist mappings
		"playlist_name":        "playlist.name",
		"max_watched_items":    "playlist.max_watched_items",
		"max_similar_per_item": "playlist.max_similar_per_item",
		"max_playlist_items":   "playlist.max_playlist_items",

		// Runtime mappings
		"request_timeout":      "runtime.request_timeout",
		"max_concurrent_users": "runtime.max_concurrent_users",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
	}

	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}

// validateHTTPURL validates that a URL is usable as an HTTP/HTTPS base URL.
// A base path is allowed (reverse-proxy setups), query parameters are not.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}

	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}

	return nil
}
