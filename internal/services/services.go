// package services defines interfaces for interacting with music service HTTP APIs
package services

import (
	"context"

	"github.com/desertthunder/csvlist/internal/models"
	"golang.org/x/oauth2"
)

// Catalog searches a remote track catalog.
type Catalog interface {
	// SearchTracks returns up to limit tracks for query, in the service's relevance order.
	SearchTracks(ctx context.Context, query string, limit int) ([]models.Candidate, error)
}

// PlaylistService creates playlists and appends tracks to them.
type PlaylistService interface {
	// CurrentUserID returns the id of the authenticated user, who owns created playlists.
	CurrentUserID(ctx context.Context) (string, error)

	// CreatePlaylist creates a playlist owned by ownerID.
	CreatePlaylist(ctx context.Context, ownerID, name, description string, public bool) (*models.Playlist, error)

	// AddItems appends trackIDs, in order, to the end of the playlist. At most 100 ids per call.
	AddItems(ctx context.Context, playlistID string, trackIDs []string) error
}

// MusicService is a [Catalog] that can also manage playlists.
type MusicService interface {
	Catalog
	PlaylistService

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// OAuthService is implemented by services that authenticate with the OAuth2 authorization code flow.
type OAuthService interface {
	GetAuthURL(state string) string
	GetOAuthConfig() *oauth2.Config
	OAuthenticate(ctx context.Context, token *oauth2.Token) error
}
