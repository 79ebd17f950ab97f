// jellyfin-suggested - Personalized "Suggested For You" playlists for Jellyfin
// https://github.com/jessedye/jellyfin-suggested

// Package models defines the typed records exchanged with the Jellyfin API
// and the run-scoped domain values built from them. All JSON parsing happens
// at the service boundary; internal logic never touches raw maps beyond the
// ProviderIds bag Jellyfin itself models as one.
package models

import "strconv"

// MediaKind identifies the two media categories the generator works with.
type MediaKind string

const (
	// KindMovie covers standalone feature content.
	KindMovie MediaKind = "movie"
	// KindSeries covers episodic content, suggested at series granularity.
	KindSeries MediaKind = "series"
)

// ItemType returns the Jellyfin includeItemTypes value for the kind.
func (k MediaKind) ItemType() string {
	if k == KindSeries {
		return "Series"
	}
	return "Movie"
}

// Jellyfin includeItemTypes values used in history and playlist queries.
// Watch history for series is collected at episode granularity and resolved
// to the parent series afterward.
const (
	ItemTypeMovie    = "Movie"
	ItemTypeSeries   = "Series"
	ItemTypeEpisode  = "Episode"
	ItemTypePlaylist = "Playlist"
)

// User represents a Jellyfin user account.
type User struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
}

// Item represents a Jellyfin library or history item. The same shape is
// returned for movies, episodes, series, and playlists; unused fields stay
// empty.
type Item struct {
	ID         string            `json:"Id"`
	Name       string            `json:"Name"`
	Type       string            `json:"Type,omitempty"`
	SeriesID   string            `json:"SeriesId,omitempty"`
	SeriesName string            `json:"SeriesName,omitempty"`
	ProviderIDs map[string]string `json:"ProviderIds,omitempty"`
}

// TMDBID extracts the TMDB catalog ID from the item's provider IDs.
// Returns false if the ID is absent or not an integer; both are expected
// for items Jellyfin never matched against TMDB.
func (i *Item) TMDBID() (int, bool) {
	raw, ok := i.ProviderIDs["Tmdb"]
	if !ok || raw == "" {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}

// ItemsPage is the envelope Jellyfin wraps item listings in.
type ItemsPage struct {
	Items            []Item `json:"Items"`
	TotalRecordCount int    `json:"TotalRecordCount,omitempty"`
}

// PlaylistEntry is one row of a playlist's contents. ID is the underlying
// item; PlaylistItemID addresses this entry for removal, which Jellyfin
// keys by entry rather than by item.
type PlaylistEntry struct {
	ID             string `json:"Id"`
	Name           string `json:"Name,omitempty"`
	PlaylistItemID string `json:"PlaylistItemId"`
}

// PlaylistEntriesPage is the envelope of GET /Playlists/{id}/Items.
type PlaylistEntriesPage struct {
	Items []PlaylistEntry `json:"Items"`
}

// CreatePlaylistResponse is the body of a successful POST /Playlists.
type CreatePlaylistResponse struct {
	ID string `json:"Id"`
}

// LibraryItem is a library entry reachable through its TMDB catalog ID.
type LibraryItem struct {
	// ID is the Jellyfin server-local item identifier.
	ID string
	// Name is the display title.
	Name string
	// Kind is the media category the item was indexed under.
	Kind MediaKind
}

// LibraryIndex maps TMDB catalog IDs to library items of one media kind.
// Built once per run and read-only afterward, so concurrent per-user
// workers can share it without synchronization.
type LibraryIndex map[int]LibraryItem
