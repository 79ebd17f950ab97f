// jellyfin-suggested - Personalized "Suggested For You" playlists for Jellyfin
// https://github.com/jessedye/jellyfin-suggested

// Package playlist writes ranked suggestion lists to a user's Jellyfin
// playlist, reusing an existing playlist of the configured name when one
// exists and creating it otherwise.
package playlist

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jessedye/jellyfin-suggested/internal/jellyfin"
	"github.com/jessedye/jellyfin-suggested/internal/logging"
	"github.com/jessedye/jellyfin-suggested/internal/models"
	"github.com/jessedye/jellyfin-suggested/internal/suggest"
)

// previewSize is how many top candidates each sync log line lists.
const previewSize = 5

// Synchronizer replaces the contents of a user's suggestion playlist.
type Synchronizer struct {
	client jellyfin.ClientInterface
	name   string
	logger zerolog.Logger
}

// NewSynchronizer creates a synchronizer writing playlists with the given
// display name.
func NewSynchronizer(client jellyfin.ClientInterface, name string) *Synchronizer {
	return &Synchronizer{
		client: client,
		name:   name,
		logger: logging.With().Str("component", "synchronizer").Logger(),
	}
}

// Sync writes the candidates to the user's suggestion playlist in rank
// order. An existing playlist with the configured name is emptied and
// refilled in place so clients keep their reference to it; the first
// name match wins if several exist. Without a match a new playlist is
// created. Any write failure aborts the sync and is returned.
func (s *Synchronizer) Sync(ctx context.Context, user models.User, candidates []suggest.Candidate) error {
	itemIDs := make([]string, len(candidates))
	for i, c := range candidates {
		itemIDs[i] = c.ID
	}

	existing, err := s.findExisting(ctx, user)
	if err != nil {
		return err
	}

	var playlistID string
	if existing != "" {
		playlistID = existing
		if err := s.refill(ctx, user, playlistID, itemIDs); err != nil {
			return err
		}
	} else {
		playlistID, err = s.client.CreatePlaylist(ctx, user.ID, s.name, itemIDs)
		if err != nil {
			return fmt.Errorf("failed to create playlist for user %s: %w", user.Name, err)
		}
	}

	s.logResult(user, playlistID, existing != "", candidates)
	return nil
}

// findExisting returns the ID of the user's first playlist matching the
// configured name, or empty when none does.
func (s *Synchronizer) findExisting(ctx context.Context, user models.User) (string, error) {
	playlists, err := s.client.GetUserPlaylists(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to list playlists for user %s: %w", user.Name, err)
	}
	for i := range playlists {
		if playlists[i].Name == s.name {
			return playlists[i].ID, nil
		}
	}
	return "", nil
}

// refill empties an existing playlist and appends the new items in order.
func (s *Synchronizer) refill(ctx context.Context, user models.User, playlistID string, itemIDs []string) error {
	entries, err := s.client.GetPlaylistEntries(ctx, playlistID, user.ID)
	if err != nil {
		return fmt.Errorf("failed to read playlist %s entries: %w", playlistID, err)
	}

	entryIDs := make([]string, len(entries))
	for i := range entries {
		entryIDs[i] = entries[i].PlaylistItemID
	}
	if err := s.client.ClearPlaylist(ctx, playlistID, entryIDs); err != nil {
		return fmt.Errorf("failed to clear playlist %s: %w", playlistID, err)
	}

	if err := s.client.AddToPlaylist(ctx, playlistID, user.ID, itemIDs); err != nil {
		return fmt.Errorf("failed to add items to playlist %s: %w", playlistID, err)
	}
	return nil
}

// logResult emits the per-user summary with a short preview of the top picks.
func (s *Synchronizer) logResult(user models.User, playlistID string, reused bool, candidates []suggest.Candidate) {
	preview := zerolog.Arr()
	limit := len(candidates)
	if limit > previewSize {
		limit = previewSize
	}
	for _, c := range candidates[:limit] {
		preview.Str(fmt.Sprintf("%s (%s, %.1f)", c.Name, c.Kind, c.Score))
	}

	event := s.logger.Info().
		Str("user", user.Name).
		Str("playlist_id", playlistID).
		Bool("reused", reused).
		Int("items", len(candidates)).
		Array("top", preview)
	if len(candidates) > previewSize {
		event = event.Int("more", len(candidates)-previewSize)
	}
	event.Msg("Playlist synchronized")
}
