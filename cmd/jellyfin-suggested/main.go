// jellyfin-suggested - Personalized "Suggested For You" playlists for Jellyfin
// https://github.com/jessedye/jellyfin-suggested

// Package main is the entry point for the jellyfin-suggested generator.
//
// jellyfin-suggested builds a personalized "Suggested For You" playlist for
// every Jellyfin user by combining their watch history with TMDB's
// similar-content API. It runs one complete pass and exits, making it
// suitable for cron or a scheduled container.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 from environment variables over
// built-in defaults. Required:
//
//	export JELLYFIN_URL=http://localhost:8096
//	export JELLYFIN_API_KEY=your-jellyfin-api-key
//	export TMDB_API_KEY=your-tmdb-api-key
//	./jellyfin-suggested
//
// Optional knobs cover playlist naming (PLAYLIST_NAME), quality thresholds
// (MIN_TMDB_RATING, MIN_TMDB_VOTES), sizing (MAX_WATCHED_ITEMS,
// MAX_SIMILAR_PER_ITEM, MAX_PLAYLIST_ITEMS), concurrency
// (MAX_CONCURRENT_USERS), request timeout (REQUEST_TIMEOUT) and logging
// (LOG_LEVEL, LOG_FORMAT).
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the run context; in-flight users finish their
// current API call and the run stops with a non-zero exit.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessedye/jellyfin-suggested/internal/config"
	"github.com/jessedye/jellyfin-suggested/internal/jellyfin"
	"github.com/jessedye/jellyfin-suggested/internal/logging"
	"github.com/jessedye/jellyfin-suggested/internal/runner"
	"github.com/jessedye/jellyfin-suggested/internal/tmdb"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	runID := logging.NewRunID()
	logging.Info().
		Str("run_id", runID).
		Str("jellyfin_url", cfg.Jellyfin.URL).
		Str("playlist", cfg.Playlist.Name).
		Msg("Starting jellyfin-suggested")

	jellyfinClient := jellyfin.NewClient(cfg.Jellyfin.URL, cfg.Jellyfin.APIKey, cfg.Runtime.RequestTimeout())
	tmdbClient := tmdb.NewClient(tmdb.Config{
		APIKey:     cfg.TMDB.APIKey,
		MinRating:  cfg.TMDB.MinRating,
		MinVotes:   cfg.TMDB.MinVotes,
		MaxResults: cfg.Playlist.MaxSimilarPerItem,
		Timeout:    cfg.Runtime.RequestTimeout(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := runner.New(cfg, jellyfinClient, tmdbClient)
	if err := r.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logging.Warn().Str("run_id", runID).Msg("Run interrupted")
		} else {
			logging.Error().Err(err).Str("run_id", runID).Msg("Run failed")
		}
		stop()
		os.Exit(1)
	}

	logging.Info().Str("run_id", runID).Msg("Run finished")
}
