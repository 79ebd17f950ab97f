// jellyfin-suggested - Personalized "Suggested For You" playlists for Jellyfin
// https://github.com/jessedye/jellyfin-suggested

package config

import (
	"strings"
	"testing"
)

// setRequiredEnv sets the three mandatory variables so tests can focus on
// the setting under test.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JELLYFIN_URL", "http://localhost:8096")
	t.Setenv("JELLYFIN_API_KEY", "jf-key")
	t.Setenv("TMDB_API_KEY", "tmdb-key")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Playlist.Name != "Suggested For You" {
		t.Errorf("Playlist.Name = %q, want %q", cfg.Playlist.Name, "Suggested For You")
	}
	if cfg.Playlist.MaxWatchedItems != 20 {
		t.Errorf("MaxWatchedItems = %d, want 20", cfg.Playlist.MaxWatchedItems)
	}
	if cfg.Playlist.MaxSimilarPerItem != 5 {
		t.Errorf("MaxSimilarPerItem = %d, want 5", cfg.Playlist.MaxSimilarPerItem)
	}
	if cfg.Playlist.MaxPlaylistItems != 50 {
		t.Errorf("MaxPlaylistItems = %d, want 50", cfg.Playlist.MaxPlaylistItems)
	}
	if cfg.TMDB.MinRating != 6.0 {
		t.Errorf("MinRating = %v, want 6.0", cfg.TMDB.MinRating)
	}
	if cfg.TMDB.MinVotes != 50 {
		t.Errorf("MinVotes = %d, want 50", cfg.TMDB.MinVotes)
	}
	if cfg.Runtime.RequestTimeoutSeconds != 30 {
		t.Errorf("RequestTimeoutSeconds = %d, want 30", cfg.Runtime.RequestTimeoutSeconds)
	}
	if cfg.Runtime.MaxConcurrentUsers != 1 {
		t.Errorf("MaxConcurrentUsers = %d, want 1", cfg.Runtime.MaxConcurrentUsers)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PLAYLIST_NAME", "Picked For You")
	t.Setenv("MAX_WATCHED_ITEMS", "10")
	t.Setenv("MAX_SIMILAR_PER_ITEM", "3")
	t.Setenv("MAX_PLAYLIST_ITEMS", "25")
	t.Setenv("MIN_TMDB_RATING", "7.5")
	t.Setenv("MIN_TMDB_VOTES", "100")
	t.Setenv("REQUEST_TIMEOUT", "10")
	t.Setenv("MAX_CONCURRENT_USERS", "4")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Playlist.Name != "Picked For You" {
		t.Errorf("Playlist.Name = %q, want %q", cfg.Playlist.Name, "Picked For You")
	}
	if cfg.Playlist.MaxWatchedItems != 10 {
		t.Errorf("MaxWatchedItems = %d, want 10", cfg.Playlist.MaxWatchedItems)
	}
	if cfg.Playlist.MaxSimilarPerItem != 3 {
		t.Errorf("MaxSimilarPerItem = %d, want 3", cfg.Playlist.MaxSimilarPerItem)
	}
	if cfg.Playlist.MaxPlaylistItems != 25 {
		t.Errorf("MaxPlaylistItems = %d, want 25", cfg.Playlist.MaxPlaylistItems)
	}
	if cfg.TMDB.MinRating != 7.5 {
		t.Errorf("MinRating = %v, want 7.5", cfg.TMDB.MinRating)
	}
	if cfg.TMDB.MinVotes != 100 {
		t.Errorf("MinVotes = %d, want 100", cfg.TMDB.MinVotes)
	}
	if cfg.Runtime.RequestTimeoutSeconds != 10 {
		t.Errorf("RequestTimeoutSeconds = %d, want 10", cfg.Runtime.RequestTimeoutSeconds)
	}
	if cfg.Runtime.MaxConcurrentUsers != 4 {
		t.Errorf("MaxConcurrentUsers = %d, want 4", cfg.Runtime.MaxConcurrentUsers)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "console")
	}
}

func TestLoadMissingRequired(t *testing.T) {
	tests := []struct {
		name   string
		unset  string
		errVar string
	}{
		{"missing jellyfin url", "JELLYFIN_URL", "JELLYFIN_URL"},
		{"missing jellyfin api key", "JELLYFIN_API_KEY", "JELLYFIN_API_KEY"},
		{"missing tmdb api key", "TMDB_API_KEY", "TMDB_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.unset, "")

			_, err := Load()
			if err == nil {
				t.Fatalf("Load() should fail without %s", tt.unset)
			}
			if !strings.Contains(err.Error(), tt.errVar) {
				t.Errorf("error should name %s, got %q", tt.errVar, err.Error())
			}
		})
	}
}

func TestLoadTrimsTrailingSlash(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JELLYFIN_URL", "http://localhost:8096/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Jellyfin.URL != "http://localhost:8096" {
		t.Errorf("Jellyfin.URL = %q, want trailing slash removed", cfg.Jellyfin.URL)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		envVar  string
		value   string
		errText string
	}{
		{"bad scheme", "JELLYFIN_URL", "ftp://localhost", "scheme must be http or https"},
		{"url with query", "JELLYFIN_URL", "http://localhost:8096?x=1", "query parameters"},
		{"zero watched items", "MAX_WATCHED_ITEMS", "0", "MAX_WATCHED_ITEMS"},
		{"negative similar cap", "MAX_SIMILAR_PER_ITEM", "-1", "MAX_SIMILAR_PER_ITEM"},
		{"zero playlist size", "MAX_PLAYLIST_ITEMS", "0", "MAX_PLAYLIST_ITEMS"},
		{"rating out of range", "MIN_TMDB_RATING", "11", "MIN_TMDB_RATING"},
		{"negative votes", "MIN_TMDB_VOTES", "-5", "MIN_TMDB_VOTES"},
		{"zero timeout", "REQUEST_TIMEOUT", "0", "REQUEST_TIMEOUT"},
		{"zero workers", "MAX_CONCURRENT_USERS", "0", "MAX_CONCURRENT_USERS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.envVar, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("Load() should fail with %s=%s", tt.envVar, tt.value)
			}
			if !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("error %q should contain %q", err.Error(), tt.errText)
			}
		})
	}
}

func TestRequestTimeoutDuration(t *testing.T) {
	r := RuntimeConfig{RequestTimeoutSeconds: 45}
	if got := r.RequestTimeout().Seconds(); got != 45 {
		t.Errorf("RequestTimeout() = %vs, want 45s", got)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"JELLYFIN_URL", "jellyfin.url"},
		{"JELLYFIN_API_KEY", "jellyfin.api_key"},
		{"TMDB_API_KEY", "tmdb.api_key"},
		{"MIN_TMDB_RATING", "tmdb.min_rating"},
		{"PLAYLIST_NAME", "playlist.name"},
		{"MAX_WATCHED_ITEMS", "playlist.max_watched_items"},
		{"REQUEST_TIMEOUT", "runtime.request_timeout"},
		{"LOG_LEVEL", "logging.level"},
		{"HOME", ""},
		{"PATH", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := envTransformFunc(tt.key); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}
