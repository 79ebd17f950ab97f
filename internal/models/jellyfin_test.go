// jellyfin-suggested - Personalized "Suggested For You" playlists for Jellyfin
// https://github.com/jessedye/jellyfin-suggested

package models

import "testing"

func TestItemTMDBID(t *testing.T) {
	tests := []struct {
		name     string
		item     Item
		wantID   int
		wantOK   bool
	}{
		{
			name:   "valid id",
			item:   Item{ProviderIDs: map[string]string{"Tmdb": "27205"}},
			wantID: 27205,
			wantOK: true,
		},
		{
			name:   "missing provider ids",
			item:   Item{},
			wantOK: false,
		},
		{
			name:   "no tmdb key",
			item:   Item{ProviderIDs: map[string]string{"Imdb": "tt1375666"}},
			wantOK: false,
		},
		{
			name:   "empty value",
			item:   Item{ProviderIDs: map[string]string{"Tmdb": ""}},
			wantOK: false,
		},
		{
			name:   "non-numeric value",
			item:   Item{ProviderIDs: map[string]string{"Tmdb": "abc"}},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := tt.item.TMDBID()
			if ok != tt.wantOK {
				t.Fatalf("TMDBID() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && id != tt.wantID {
				t.Errorf("TMDBID() = %d, want %d", id, tt.wantID)
			}
		})
	}
}

func TestMediaKindItemType(t *testing.T) {
	if got := KindMovie.ItemType(); got != "Movie" {
		t.Errorf("KindMovie.ItemType() = %q, want %q", got, "Movie")
	}
	if got := KindSeries.ItemType(); got != "Series" {
		t.Errorf("KindSeries.ItemType() = %q, want %q", got, "Series")
	}
}
