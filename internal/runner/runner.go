// jellyfin-suggested - Personalized "Suggested For You" playlists for Jellyfin
// https://github.com/jessedye/jellyfin-suggested

// Package runner orchestrates one full generation pass: build the library
// indexes, enumerate users, and produce a suggestion playlist per user.
package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jessedye/jellyfin-suggested/internal/config"
	"github.com/jessedye/jellyfin-suggested/internal/jellyfin"
	"github.com/jessedye/jellyfin-suggested/internal/logging"
	"github.com/jessedye/jellyfin-suggested/internal/models"
	"github.com/jessedye/jellyfin-suggested/internal/playlist"
	"github.com/jessedye/jellyfin-suggested/internal/suggest"
	"github.com/jessedye/jellyfin-suggested/internal/tmdb"
)

// Runner drives a single generation run across all server users.
type Runner struct {
	cfg      *config.Config
	client   jellyfin.ClientInterface
	provider tmdb.SimilarProvider
	logger   zerolog.Logger
}

// New creates a runner from an already-validated configuration and the two
// API clients.
func New(cfg *config.Config, client jellyfin.ClientInterface, provider tmdb.SimilarProvider) *Runner {
	return &Runner{
		cfg:      cfg,
		client:   client,
		provider: provider,
		logger:   logging.With().Str("component", "runner").Logger(),
	}
}

// Run executes one complete pass. Per-user failures are logged and skipped;
// only the inability to enumerate users fails the run as a whole.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.client.Ping(ctx); err != nil {
		// The individual calls below surface their own errors; a failed
		// ping is an early warning, not a reason to abort.
		r.logger.Warn().Err(err).Msg("Jellyfin server ping failed")
	} else {
		r.logger.Info().Msg("Connected to Jellyfin server")
	}

	// The library indexes are user-independent and shared across the run.
	movieIndex := r.libraryIndex(ctx, models.KindMovie)
	seriesIndex := r.libraryIndex(ctx, models.KindSeries)

	users, err := r.client.GetUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	if len(users) == 0 {
		r.logger.Info().Msg("No users found, nothing to do")
		return nil
	}

	aggregator := suggest.NewAggregator(movieIndex, seriesIndex, r.provider, suggest.Limits{
		MaxWatchedItems:  r.cfg.Playlist.MaxWatchedItems,
		MaxPlaylistItems: r.cfg.Playlist.MaxPlaylistItems,
	})
	synchronizer := playlist.NewSynchronizer(r.client, r.cfg.Playlist.Name)

	workers := r.cfg.Runtime.MaxConcurrentUsers
	if workers < 1 {
		workers = 1
	}

	var (
		wg        sync.WaitGroup
		sem       = make(chan struct{}, workers)
		mu        sync.Mutex
		written   int
		processed int
	)

	for i := range users {
		if ctx.Err() != nil {
			break
		}
		user := users[i]

		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			ok := r.processUser(ctx, user, aggregator, synchronizer)

			mu.Lock()
			processed++
			if ok {
				written++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	r.logger.Info().
		Int("users_processed", processed).
		Int("playlists_written", written).
		Msg("Run complete")
	return ctx.Err()
}

// libraryIndex fetches one library index, treating failure as an empty
// library so the run can still cover the other kind.
func (r *Runner) libraryIndex(ctx context.Context, kind models.MediaKind) models.LibraryIndex {
	index, err := r.client.GetLibraryIndex(ctx, kind)
	if err != nil {
		r.logger.Warn().Err(err).Str("kind", string(kind)).Msg("Failed to build library index, treating as empty")
		return models.LibraryIndex{}
	}
	r.logger.Debug().Str("kind", string(kind)).Int("items", len(index)).Msg("Library index built")
	return index
}

// processUser builds and writes one user's playlist. Returns true when a
// playlist was written.
func (r *Runner) processUser(ctx context.Context, user models.User, aggregator *suggest.Aggregator, synchronizer *playlist.Synchronizer) bool {
	logger := r.logger.With().Str("user", user.Name).Logger()

	watchedMovies := r.watchedItems(ctx, logger, user, models.ItemTypeMovie)
	watchedEpisodes := r.watchedItems(ctx, logger, user, models.ItemTypeEpisode)
	watchedSeries := r.resolveSeries(ctx, logger, user, watchedEpisodes)

	if len(watchedMovies) == 0 && len(watchedSeries) == 0 {
		logger.Info().Msg("No watch history, skipping user")
		return false
	}

	candidates, err := aggregator.Build(ctx, watchedMovies, watchedSeries)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to build suggestions")
		return false
	}
	if len(candidates) == 0 {
		logger.Info().Msg("No suggestions found, leaving playlist untouched")
		return false
	}

	if err := synchronizer.Sync(ctx, user, candidates); err != nil {
		logger.Error().Err(err).Msg("Failed to synchronize playlist")
		return false
	}
	return true
}

// watchedItems fetches one slice of a user's watch history, treating any
// failure as empty history for that type.
func (r *Runner) watchedItems(ctx context.Context, logger zerolog.Logger, user models.User, itemType string) []models.Item {
	items, err := r.client.GetWatchedItems(ctx, user.ID, itemType, r.cfg.Playlist.MaxWatchedItems)
	if err != nil {
		logger.Warn().Err(err).Str("item_type", itemType).Msg("Failed to fetch watch history")
		return nil
	}
	return items
}

// resolveSeries maps watched episodes to their parent series, most recently
// watched first, one entry per series. Episodes whose parent cannot be
// resolved are skipped.
func (r *Runner) resolveSeries(ctx context.Context, logger zerolog.Logger, user models.User, episodes []models.Item) []models.Item {
	seen := make(map[string]struct{})
	var series []models.Item

	for i := range episodes {
		ep := &episodes[i]
		if ep.SeriesID == "" {
			continue
		}
		if _, dup := seen[ep.SeriesID]; dup {
			continue
		}
		seen[ep.SeriesID] = struct{}{}

		parent, err := r.client.GetItem(ctx, user.ID, ep.SeriesID)
		if err != nil {
			logger.Warn().Err(err).Str("series", ep.SeriesName).Msg("Failed to resolve series, skipping")
			continue
		}
		series = append(series, *parent)

		if len(series) == r.cfg.Playlist.MaxWatchedItems {
			break
		}
	}

	return series
}
