// jellyfin-suggested - Personalized "Suggested For You" playlists for Jellyfin
// https://github.com/jessedye/jellyfin-suggested

// Package suggest turns a user's watch history into a ranked candidate list.
//
// For each recently watched title with a known TMDB ID, the aggregator asks
// the similarity provider for quality-filtered neighbours, keeps only those
// present in the server's library, drops anything the user has already
// watched, deduplicates across seeds, and ranks what remains by rating.
package suggest

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/jessedye/jellyfin-suggested/internal/logging"
	"github.com/jessedye/jellyfin-suggested/internal/models"
	"github.com/jessedye/jellyfin-suggested/internal/tmdb"
)

// Candidate is one suggested library item with its ranking score.
type Candidate struct {
	// ID is the Jellyfin item ID, usable directly in playlist writes.
	ID string
	// Name is the library item's display name.
	Name string
	// Kind distinguishes movie candidates from series candidates.
	Kind models.MediaKind
	// Score is the TMDB vote average of the similarity result that
	// produced this candidate. First sighting wins on duplicates.
	Score float64
}

// Limits bound how much history is consulted and how long the final list is.
type Limits struct {
	// MaxWatchedItems caps how many watched titles per kind seed lookups.
	MaxWatchedItems int
	// MaxPlaylistItems caps the final ranked candidate list.
	MaxPlaylistItems int
}

// Aggregator builds ranked suggestion lists from watch history.
type Aggregator struct {
	movies   models.LibraryIndex
	series   models.LibraryIndex
	provider tmdb.SimilarProvider
	limits   Limits
	logger   zerolog.Logger
}

// NewAggregator creates an aggregator over the given library indexes.
// Both indexes map TMDB IDs to local library items and are shared across
// users; the aggregator never mutates them.
func NewAggregator(movies, series models.LibraryIndex, provider tmdb.SimilarProvider, limits Limits) *Aggregator {
	return &Aggregator{
		movies:   movies,
		series:   series,
		provider: provider,
		limits:   limits,
		logger:   logging.With().Str("component", "aggregator").Logger(),
	}
}

// Build produces the ranked candidate list for one user from their watched
// movies and watched series. Items the user has already watched are never
// suggested, even when a similarity lookup returns them. A failed lookup
// for one seed is logged and skipped; it never fails the whole build.
func (a *Aggregator) Build(ctx context.Context, watchedMovies, watchedSeries []models.Item) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Everything the user has watched, by TMDB ID, is excluded from the
	// output regardless of which seed surfaced it.
	watched := make(map[int]struct{})
	collectWatchedIDs(watched, watchedMovies)
	collectWatchedIDs(watched, watchedSeries)

	seen := make(map[string]struct{})
	var candidates []Candidate

	candidates = a.gather(ctx, candidates, seen, watched, watchedMovies, a.movies, models.KindMovie)
	candidates = a.gather(ctx, candidates, seen, watched, watchedSeries, a.series, models.KindSeries)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stable sort keeps discovery order among equal scores deterministic.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if a.limits.MaxPlaylistItems > 0 && len(candidates) > a.limits.MaxPlaylistItems {
		candidates = candidates[:a.limits.MaxPlaylistItems]
	}

	return candidates, nil
}

// gather runs similarity lookups for one kind and appends in-library,
// unwatched, not-yet-seen results to the candidate list.
func (a *Aggregator) gather(ctx context.Context, candidates []Candidate, seen map[string]struct{}, watched map[int]struct{}, history []models.Item, index models.LibraryIndex, kind models.MediaKind) []Candidate {
	seeds := history
	if a.limits.MaxWatchedItems > 0 && len(seeds) > a.limits.MaxWatchedItems {
		seeds = seeds[:a.limits.MaxWatchedItems]
	}

	for i := range seeds {
		if ctx.Err() != nil {
			return candidates
		}

		seed := &seeds[i]
		tmdbID, ok := seed.TMDBID()
		if !ok {
			a.logger.Debug().
				Str("item", seed.Name).
				Str("kind", string(kind)).
				Msg("Skipping watched item without TMDB ID")
			continue
		}

		similar, err := a.provider.GetSimilar(ctx, tmdbID, kind)
		if err != nil {
			a.logger.Warn().
				Err(err).
				Str("item", seed.Name).
				Int("tmdb_id", tmdbID).
				Msg("Similarity lookup failed, skipping item")
			continue
		}

		for _, s := range similar {
			if _, isWatched := watched[s.ID]; isWatched {
				continue
			}
			libItem, inLibrary := index[s.ID]
			if !inLibrary {
				continue
			}
			if _, dup := seen[libItem.ID]; dup {
				continue
			}
			seen[libItem.ID] = struct{}{}
			candidates = append(candidates, Candidate{
				ID:    libItem.ID,
				Name:  libItem.Name,
				Kind:  kind,
				Score: s.Rating,
			})
		}
	}

	return candidates
}

// collectWatchedIDs records the TMDB IDs of all watched items into the set.
// Items without a parseable TMDB ID contribute nothing.
func collectWatchedIDs(set map[int]struct{}, items []models.Item) {
	for i := range items {
		if id, ok := items[i].TMDBID(); ok {
			set[id] = struct{}{}
		}
	}
}
