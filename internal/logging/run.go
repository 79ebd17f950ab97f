// jellyfin-suggested - Personalized "Suggested For You" playlists for Jellyfin
// https://github.com/jessedye/jellyfin-suggested

package logging

import (
	"github.com/google/uuid"
)

// NewRunID creates a short unique identifier for one generation run.
// Every log line of a run carries it, so interleaved output from
// scheduled invocations stays attributable.
func NewRunID() string {
	return uuid.New().String()[:8]
}
