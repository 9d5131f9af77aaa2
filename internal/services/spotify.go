// Spotify API implementation of [MusicService]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/desertthunder/csvlist/internal/models"
	"github.com/desertthunder/csvlist/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// DefaultRedirectURI is used when no redirect_uri is configured.
	DefaultRedirectURI = "http://127.0.0.1:3000/callback"

	maxSearchLimit = 50
	trackURIPrefix = "spotify:track:"
)

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Country     string `json:"country"`
	Product     string `json:"product"` // premium, free, etc.
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyArtist represents a simplified Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	DurationMS int             `json:"duration_ms"`
	URI        string          `json:"uri"`
}

type trackPage struct {
	Items []*SpotifyTrack `json:"items"`
	Total int             `json:"total"`
}

// SpotifySearchResponse is the body of GET /search with type=track.
type SpotifySearchResponse struct {
	Tracks trackPage `json:"tracks"`
}

type playlistTracks struct {
	Total int `json:"total"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Public       bool           `json:"public"`
	ExternalURLs externalURLs   `json:"external_urls"`
	Tracks       playlistTracks `json:"tracks"`
	URI          string         `json:"uri"`
}

type createPlaylistRequest struct {
	Name        string `json:"name"`
	Public      bool   `json:"public"`
	Description string `json:"description,omitempty"`
}

type addItemsRequest struct {
	URIs []string `json:"uris"`
}

type spotifyError struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// SpotifyService implements [MusicService] and [OAuthService] for the Spotify Web API.
type SpotifyService struct {
	config         *oauth2.Config
	token          *oauth2.Token
	httpClient     *http.Client
	baseURL        string
	limiter        *rate.Limiter
	onTokenRefresh func(*oauth2.Token)
	userID         string
}

var (
	_ MusicService = (*SpotifyService)(nil)
	_ OAuthService = (*SpotifyService)(nil)
)

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = DefaultRedirectURI
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-private",
			"playlist-modify-public",
			"playlist-modify-private",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		httpClient: http.DefaultClient,
		baseURL:    spotifyBaseURL,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// SetBaseURL points the service at a different API root. Used by tests.
func (s *SpotifyService) SetBaseURL(baseURL string) {
	s.baseURL = strings.TrimRight(baseURL, "/")
}

// SetRateLimit caps outgoing requests at rps per second. Zero or less disables the limiter.
func (s *SpotifyService) SetRateLimit(rps float64) {
	if rps <= 0 {
		s.limiter = nil
		return
	}
	s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
}

// SetTokenRefreshCallback registers fn to be called whenever the token source hands out a new access token.
func (s *SpotifyService) SetTokenRefreshCallback(fn func(*oauth2.Token)) {
	s.onTokenRefresh = fn
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig returns the OAuth2 configuration used for the code exchange.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// Authenticate performs OAuth2 authentication with Spotify. Expects either an "access_token" or "auth_code" in
// credentials; a "refresh_token" alongside the access token enables automatic refresh.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		return s.OAuthenticate(ctx, &oauth2.Token{
			AccessToken:  accessToken,
			RefreshToken: credentials["refresh_token"],
		})
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
		}
		return s.OAuthenticate(ctx, token)
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

// OAuthenticate installs token and builds an HTTP client that refreshes it when it expires.
func (s *SpotifyService) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || (token.AccessToken == "" && token.RefreshToken == "") {
		return fmt.Errorf("%w: empty token", shared.ErrMissingCredentials)
	}

	var source oauth2.TokenSource
	if token.RefreshToken != "" {
		source = s.config.TokenSource(ctx, token)
	} else {
		source = oauth2.StaticTokenSource(token)
	}

	s.token = token
	s.httpClient = oauth2.NewClient(ctx, &refreshableTokenSource{
		source:   source,
		last:     token.AccessToken,
		callback: s.onTokenRefresh,
	})
	return nil
}

// refreshableTokenSource reports each new access token to callback.
type refreshableTokenSource struct {
	mu       sync.Mutex
	source   oauth2.TokenSource
	last     string
	callback func(*oauth2.Token)
}

func (r *refreshableTokenSource) Token() (*oauth2.Token, error) {
	token, err := r.source.Token()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	changed := token.AccessToken != r.last
	r.last = token.AccessToken
	r.mu.Unlock()

	if changed && r.callback != nil {
		r.callback(token)
	}
	return token, nil
}

// doRequest performs an authenticated HTTP request to the Spotify API.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: rate limiter: %v", shared.ErrAPIRequest, err)
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
		}
	}

	return nil
}

// statusError maps a non-2xx response to a wrapped sentinel, including Spotify's error message when present.
func statusError(resp *http.Response) error {
	msg := http.StatusText(resp.StatusCode)
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var apiErr spotifyError
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
		msg = apiErr.Error.Message
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", shared.ErrTokenExpired, msg)
	case http.StatusTooManyRequests:
		if after := resp.Header.Get("Retry-After"); after != "" {
			return fmt.Errorf("%w: retry after %ss", shared.ErrRateLimited, after)
		}
		return fmt.Errorf("%w: %s", shared.ErrRateLimited, msg)
	default:
		return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, msg)
	}
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentUserID returns the authenticated user's id, caching it after the first lookup.
func (s *SpotifyService) CurrentUserID(ctx context.Context) (string, error) {
	if s.userID != "" {
		return s.userID, nil
	}

	user, err := s.UserProfile(ctx)
	if err != nil {
		return "", err
	}
	if user.ID == "" {
		return "", fmt.Errorf("%w: profile has no id", shared.ErrAPIRequest)
	}

	s.userID = user.ID
	return s.userID, nil
}

// SearchTracks runs a track search. limit is clamped to Spotify's 1..50 range.
func (s *SpotifyService) SearchTracks(ctx context.Context, query string, limit int) ([]models.Candidate, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrInvalidArgument)
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(limit))

	var response SpotifySearchResponse
	if err := s.doRequest(ctx, http.MethodGet, "/search?"+params.Encode(), nil, &response); err != nil {
		return nil, err
	}

	candidates := make([]models.Candidate, 0, len(response.Tracks.Items))
	for i, track := range response.Tracks.Items {
		// Unavailable and local tracks come back as null or without an id.
		if track == nil || track.ID == "" {
			if i == 0 {
				return nil, fmt.Errorf("%w: malformed search result: top item has no track id", shared.ErrAPIRequest)
			}
			continue
		}
		c := models.Candidate{ID: track.ID, Title: track.Name}
		if len(track.Artists) > 0 {
			c.Artist = track.Artists[0].Name
		}
		candidates = append(candidates, c)
	}

	return candidates, nil
}

// CreatePlaylist creates a playlist for ownerID.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, ownerID, name, description string, public bool) (*models.Playlist, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", shared.ErrMissingArgument)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: playlist name is required", shared.ErrMissingArgument)
	}

	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(ownerID))
	body := createPlaylistRequest{Name: name, Public: public, Description: description}

	var sp SpotifyPlaylist
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &sp); err != nil {
		return nil, err
	}

	return &models.Playlist{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
		Public:      sp.Public,
		URL:         sp.ExternalURLs.Spotify,
		TrackCount:  sp.Tracks.Total,
	}, nil
}

// AddItems appends up to [shared.MaxBatchSize] tracks to a playlist in one call.
//
// Bare ids are converted to spotify:track: URIs.
func (s *SpotifyService) AddItems(ctx context.Context, playlistID string, trackIDs []string) error {
	if playlistID == "" {
		return fmt.Errorf("%w: playlist id is required", shared.ErrMissingArgument)
	}
	if len(trackIDs) > shared.MaxBatchSize {
		return fmt.Errorf("%w: %d items, max %d", shared.ErrBatchTooLarge, len(trackIDs), shared.MaxBatchSize)
	}
	if len(trackIDs) == 0 {
		return nil
	}

	uris := make([]string, len(trackIDs))
	for i, id := range trackIDs {
		uris[i] = TrackURI(id)
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	return s.doRequest(ctx, http.MethodPost, endpoint, addItemsRequest{URIs: uris}, nil)
}

// TrackURI converts a bare track id to a spotify:track: URI; URIs pass through unchanged.
func TrackURI(id string) string {
	if strings.HasPrefix(id, "spotify:") {
		return id
	}
	return trackURIPrefix + id
}

// SearchQuery builds the field-filtered query used to look up a song by artist.
func SearchQuery(artist, song string) string {
	return fmt.Sprintf("track:%s artist:%s", song, artist)
}
