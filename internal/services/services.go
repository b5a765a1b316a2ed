// package services defines interface Provider for looking up tracks and playlists
package services

import (
	"context"

	"github.com/desertthunder/ytmd/internal/models"
)

// Provider supplies the track records the download pipeline consumes.
type Provider interface {
	// GetPlaylist retrieves up to limit tracks of a playlist. Requires authentication.
	GetPlaylist(ctx context.Context, playlistID string, limit int) (*models.PlaylistRecord, error)

	// GetLikedSongs retrieves up to limit tracks of the user's liked songs. Requires authentication.
	GetLikedSongs(ctx context.Context, limit int) (*models.PlaylistRecord, error)

	// GetTrackRadio retrieves the radio playlist seeded by videoID; its first element
	// is the requested track. Works without authentication.
	GetTrackRadio(ctx context.Context, videoID string) (*models.PlaylistRecord, error)

	// Name returns the name of the provider (e.g., "YouTube Music")
	Name() string
}
