// jellyfin-suggested - Personalized "Suggested For You" playlists for Jellyfin
// https://github.com/jessedye/jellyfin-suggested

// Package tmdb wraps the TMDB similar-content API with quality filtering.
//
// Results are filtered to the configured minimum rating and vote count
// before the per-item result cap applies, so the cap always operates on the
// already-filtered, provider-ordered list. Any transport failure or
// non-success response is returned as an error; callers treat it as an
// empty result for that call rather than aborting the surrounding user.
package tmdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/jessedye/jellyfin-suggested/internal/models"
)

// DefaultBaseURL is the TMDB v3 API root.
const DefaultBaseURL = "https://api.themoviedb.org/3"

// maxErrorBodySize bounds error-body reads, matching the Jellyfin client.
const maxErrorBodySize = 64 * 1024 // 64KB

// SimilarItem is one quality-filtered similarity result.
type SimilarItem struct {
	// ID is the TMDB catalog ID of the similar title.
	ID int
	// Title is the display title (TMDB "title" for movies, "name" for TV).
	Title string
	// Rating is TMDB's vote average, used as the suggestion score.
	Rating float64
}

// SimilarProvider is the similarity lookup the aggregator depends on.
type SimilarProvider interface {
	GetSimilar(ctx context.Context, catalogID int, kind models.MediaKind) ([]SimilarItem, error)
}

// Ensure Client implements SimilarProvider
var _ SimilarProvider = (*Client)(nil)

// Config holds the TMDB client settings.
type Config struct {
	// APIKey authenticates every request via the api_key query parameter.
	APIKey string
	// MinRating is the minimum vote average, inclusive.
	MinRating float64
	// MinVotes is the minimum vote count, inclusive.
	MinVotes int
	// MaxResults caps how many filtered results are kept per lookup.
	MaxResults int
	// Timeout is the per-request timeout.
	Timeout time.Duration
	// BaseURL overrides the API root; empty means DefaultBaseURL.
	// Used by tests to point at a local server.
	BaseURL string
}

// Client provides access to the TMDB similar-content API.
type Client struct {
	baseURL    string
	apiKey     string
	minRating  float64
	minVotes   int
	maxResults int
	httpClient *http.Client
}

// NewClient creates a new TMDB API client.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		minRating:  cfg.MinRating,
		minVotes:   cfg.MinVotes,
		maxResults: cfg.MaxResults,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// similarResponse is the wire shape of GET /{movie|tv}/{id}/similar.
type similarResponse struct {
	Results []similarResult `json:"results"`
}

type similarResult struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Name        string  `json:"name"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
}

// displayTitle returns the movie title, falling back to the TV name.
func (r *similarResult) displayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// tmdbPath maps a media kind to its TMDB endpoint segment.
func tmdbPath(kind models.MediaKind) string {
	if kind == models.KindSeries {
		return "tv"
	}
	return "movie"
}

// GetSimilar returns up to MaxResults similar titles for the given catalog
// entry, keeping only results meeting both the rating and vote-count
// thresholds. TMDB's own relevance ordering is preserved; no re-sorting
// happens here.
func (c *Client) GetSimilar(ctx context.Context, catalogID int, kind models.MediaKind) ([]SimilarItem, error) {
	endpoint := fmt.Sprintf("%s/%s/%d/similar", c.baseURL, tmdbPath(kind), catalogID)

	params := url.Values{}
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tmdb similar request for %d failed: %w", catalogID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		if readErr != nil {
			return nil, fmt.Errorf("tmdb similar for %d returned status %d (failed to read body)", catalogID, resp.StatusCode)
		}
		return nil, fmt.Errorf("tmdb similar for %d returned status %d: %s", catalogID, resp.StatusCode, body)
	}

	var decoded similarResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode tmdb similar response: %w", err)
	}

	// Filter first, then cap: the cap applies to the already-filtered,
	// provider-ordered list.
	results := make([]SimilarItem, 0, c.maxResults)
	for i := range decoded.Results {
		r := &decoded.Results[i]
		if r.VoteAverage < c.minRating || r.VoteCount < c.minVotes {
			continue
		}
		results = append(results, SimilarItem{
			ID:     r.ID,
			Title:  r.displayTitle(),
			Rating: r.VoteAverage,
		})
		if len(results) == c.maxResults {
			break
		}
	}

	return results, nil
}
