// jellyfin-suggested - Personalized "Suggested For You" playlists for Jellyfin
// https://github.com/jessedye/jellyfin-suggested

/*
client.go - Jellyfin REST API Client

This file implements a REST API client for Jellyfin media server. It covers
the read operations the suggestion run needs (users, watch history, library
contents, playlists) and the playlist write operations (create, clear,
append).

API Reference: https://api.jellyfin.org/
*/

// Package jellyfin wraps the Jellyfin REST API behind typed operations.
package jellyfin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/jessedye/jellyfin-suggested/internal/models"
)

// maxErrorBodySize limits how much of a response body is read for error
// reporting, preventing unbounded allocation on large error responses.
const maxErrorBodySize = 64 * 1024 // 64KB

// readBodyForError reads the response body for error reporting (max 64KB).
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("... (truncated)")...)
	}
	return body
}

// ClientInterface defines the Jellyfin API operations the generator uses.
// Implemented by Client for production and by fakes in tests.
//
// All methods accept a context for cancellation and return an error on
// transport failure, non-success status, or JSON parse failure. Callers
// decide whether an error is fatal; for this tool every read failure is
// treated as "no data" and logged.
type ClientInterface interface {
	Ping(ctx context.Context) error
	GetUsers(ctx context.Context) ([]models.User, error)
	GetWatchedItems(ctx context.Context, userID, itemType string, limit int) ([]models.Item, error)
	GetLibraryIndex(ctx context.Context, kind models.MediaKind) (models.LibraryIndex, error)
	GetUserPlaylists(ctx context.Context, userID string) ([]models.Item, error)
	GetItem(ctx context.Context, userID, itemID string) (*models.Item, error)
	CreatePlaylist(ctx context.Context, userID, name string, itemIDs []string) (string, error)
	GetPlaylistEntries(ctx context.Context, playlistID, userID string) ([]models.PlaylistEntry, error)
	ClearPlaylist(ctx context.Context, playlistID string, entryIDs []string) error
	AddToPlaylist(ctx context.Context, playlistID, userID string, itemIDs []string) error
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// Client provides access to the Jellyfin REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new Jellyfin API client.
//
// Parameters:
//   - baseURL: Jellyfin server URL (e.g., http://localhost:8096)
//   - apiKey: Jellyfin API key from Admin Dashboard > API Keys
//   - timeout: per-request timeout applied to every call
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	// Normalize URL (remove trailing slash)
	baseURL = strings.TrimSuffix(baseURL, "/")

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Ping tests connectivity to the Jellyfin server.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/System/Ping", nil)
	if err != nil {
		return fmt.Errorf("jellyfin ping failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jellyfin ping returned status %d", resp.StatusCode)
	}

	return nil
}

// GetUsers retrieves all users from Jellyfin, in server listing order.
func (c *Client) GetUsers(ctx context.Context) ([]models.User, error) {
	resp, err := c.do(ctx, http.MethodGet, "/Users", nil)
	if err != nil {
		return nil, fmt.Errorf("jellyfin users request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jellyfin users returned status %d: %s", resp.StatusCode, readBodyForError(resp.Body))
	}

	var users []models.User
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("failed to decode jellyfin users: %w", err)
	}

	return users, nil
}

// GetWatchedItems retrieves the user's most recently watched items of the
// given Jellyfin item type (models.ItemTypeMovie or models.ItemTypeEpisode),
// newest first, truncated to limit. ProviderIds are requested so watched
// items carry their TMDB catalog ID.
func (c *Client) GetWatchedItems(ctx context.Context, userID, itemType string, limit int) ([]models.Item, error) {
	params := url.Values{}
	params.Set("userId", userID)
	params.Set("isPlayed", "true")
	params.Set("sortBy", "DatePlayed")
	params.Set("sortOrder", "Descending")
	params.Set("recursive", "true")
	params.Set("includeItemTypes", itemType)
	params.Set("limit", fmt.Sprintf("%d", limit))
	params.Set("fields", "ProviderIds")

	resp, err := c.do(ctx, http.MethodGet, "/Items", params)
	if err != nil {
		return nil, fmt.Errorf("jellyfin watched items request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jellyfin watched items returned status %d: %s", resp.StatusCode, readBodyForError(resp.Body))
	}

	var page models.ItemsPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode jellyfin watched items: %w", err)
	}

	return page.Items, nil
}

// GetLibraryIndex retrieves the entire library of the given kind as a
// mapping from TMDB catalog ID to library item. Items without a parseable
// TMDB provider ID are omitted; that is an expected filter, not an error.
func (c *Client) GetLibraryIndex(ctx context.Context, kind models.MediaKind) (models.LibraryIndex, error) {
	params := url.Values{}
	params.Set("recursive", "true")
	params.Set("includeItemTypes", kind.ItemType())
	params.Set("fields", "ProviderIds")

	resp, err := c.do(ctx, http.MethodGet, "/Items", params)
	if err != nil {
		return nil, fmt.Errorf("jellyfin library request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jellyfin library returned status %d: %s", resp.StatusCode, readBodyForError(resp.Body))
	}

	var page models.ItemsPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode jellyfin library: %w", err)
	}

	index := make(models.LibraryIndex, len(page.Items))
	for i := range page.Items {
		item := &page.Items[i]
		tmdbID, ok := item.TMDBID()
		if !ok {
			continue
		}
		index[tmdbID] = models.LibraryItem{
			ID:   item.ID,
			Name: item.Name,
			Kind: kind,
		}
	}

	return index, nil
}

// GetUserPlaylists retrieves all playlists visible to the user.
func (c *Client) GetUserPlaylists(ctx context.Context, userID string) ([]models.Item, error) {
	params := url.Values{}
	params.Set("userId", userID)
	params.Set("includeItemTypes", models.ItemTypePlaylist)
	params.Set("recursive", "true")

	resp, err := c.do(ctx, http.MethodGet, "/Items", params)
	if err != nil {
		return nil, fmt.Errorf("jellyfin playlists request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jellyfin playlists returned status %d: %s", resp.StatusCode, readBodyForError(resp.Body))
	}

	var page models.ItemsPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode jellyfin playlists: %w", err)
	}

	return page.Items, nil
}

// GetItem retrieves full metadata for one item as seen by the user.
// Used to resolve a series' TMDB catalog ID from an episode's parent-series
// reference.
func (c *Client) GetItem(ctx context.Context, userID, itemID string) (*models.Item, error) {
	params := url.Values{}
	params.Set("userId", userID)
	params.Set("fields", "ProviderIds")

	resp, err := c.do(ctx, http.MethodGet, "/Items/"+itemID, params)
	if err != nil {
		return nil, fmt.Errorf("jellyfin item request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jellyfin item %s returned status %d: %s", itemID, resp.StatusCode, readBodyForError(resp.Body))
	}

	var item models.Item
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, fmt.Errorf("failed to decode jellyfin item: %w", err)
	}

	return &item, nil
}

// CreatePlaylist creates a new playlist for the user containing exactly
// itemIDs in order, and returns the new playlist's ID. The mediaType is
// fixed to Mixed because suggestions span movies and series.
func (c *Client) CreatePlaylist(ctx context.Context, userID, name string, itemIDs []string) (string, error) {
	params := url.Values{}
	params.Set("userId", userID)
	params.Set("name", name)
	params.Set("ids", strings.Join(itemIDs, ","))
	params.Set("mediaType", "Mixed")

	resp, err := c.do(ctx, http.MethodPost, "/Playlists", params)
	if err != nil {
		return "", fmt.Errorf("jellyfin create playlist request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("jellyfin create playlist returned status %d: %s", resp.StatusCode, readBodyForError(resp.Body))
	}

	var created models.CreatePlaylistResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("failed to decode jellyfin create playlist response: %w", err)
	}

	return created.ID, nil
}

// GetPlaylistEntries retrieves the playlist's current entries. Each entry
// carries both the item ID and the playlist-entry ID needed for removal.
func (c *Client) GetPlaylistEntries(ctx context.Context, playlistID, userID string) ([]models.PlaylistEntry, error) {
	params := url.Values{}
	params.Set("userId", userID)

	resp, err := c.do(ctx, http.MethodGet, "/Playlists/"+playlistID+"/Items", params)
	if err != nil {
		return nil, fmt.Errorf("jellyfin playlist entries request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jellyfin playlist entries returned status %d: %s", resp.StatusCode, readBodyForError(resp.Body))
	}

	var page models.PlaylistEntriesPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode jellyfin playlist entries: %w", err)
	}

	return page.Items, nil
}

// ClearPlaylist removes exactly the given entries from the playlist.
// An empty entry set is a no-op success. Jellyfin acknowledges removal
// with 204 No Content.
func (c *Client) ClearPlaylist(ctx context.Context, playlistID string, entryIDs []string) error {
	if len(entryIDs) == 0 {
		return nil
	}

	params := url.Values{}
	params.Set("entryIds", strings.Join(entryIDs, ","))

	resp, err := c.do(ctx, http.MethodDelete, "/Playlists/"+playlistID+"/Items", params)
	if err != nil {
		return fmt.Errorf("jellyfin clear playlist request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("jellyfin clear playlist returned status %d: %s", resp.StatusCode, readBodyForError(resp.Body))
	}

	return nil
}

// AddToPlaylist appends items to the playlist in the given order.
// An empty item set is a no-op success. Jellyfin acknowledges the append
// with 204 No Content.
func (c *Client) AddToPlaylist(ctx context.Context, playlistID, userID string, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}

	params := url.Values{}
	params.Set("userId", userID)
	params.Set("ids", strings.Join(itemIDs, ","))

	resp, err := c.do(ctx, http.MethodPost, "/Playlists/"+playlistID+"/Items", params)
	if err != nil {
		return fmt.Errorf("jellyfin add to playlist request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("jellyfin add to playlist returned status %d: %s", resp.StatusCode, readBodyForError(resp.Body))
	}

	return nil
}

// do performs an HTTP request against the Jellyfin API with the API token
// and client identification headers set.
func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values) (*http.Response, error) {
	fullURL := c.baseURL + endpoint
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Emby-Token", c.apiKey)
	req.Header.Set("X-Emby-Client", "JellyfinSuggested")
	req.Header.Set("X-Emby-Device-Name", "JellyfinSuggested")
	req.Header.Set("X-Emby-Device-Id", "jellyfin-suggested")
	req.Header.Set("X-Emby-Client-Version", "1.0.0")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}
