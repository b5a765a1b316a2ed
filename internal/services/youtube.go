// YouTube Music API [Provider] implementation
//
// Communicates with the FastAPI proxy server running on port 8080.
// The proxy wraps ytmusicapi Python library for YouTube Music operations.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/desertthunder/ytmd/internal/models"
	"github.com/desertthunder/ytmd/internal/shared"
)

const defaultYTBaseURL string = "http://localhost:8080"

// YouTubeArtist represents an artist in YouTube Music responses.
type YouTubeArtist struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// YouTubeAlbum represents the album reference of a track.
type YouTubeAlbum struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// YouTubeTrack represents a track/video in YouTube Music responses.
type YouTubeTrack struct {
	VideoID     string          `json:"videoId"`
	Title       string          `json:"title"`
	Artists     []YouTubeArtist `json:"artists"`
	Album       *YouTubeAlbum   `json:"album"`
	Duration    string          `json:"duration"`
	DurationSec int             `json:"duration_seconds"`
}

// YouTubePlaylist represents a playlist (or liked songs, or a watch playlist) from YouTube Music.
type YouTubePlaylist struct {
	ID         string         `json:"id"`
	PlaylistID string         `json:"playlistId"`
	Title      string         `json:"title"`
	TrackCount int            `json:"trackCount"`
	Tracks     []YouTubeTrack `json:"tracks"`
}

// Option configures a [YouTubeService].
type Option func(*YouTubeService)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(y *YouTubeService) { y.httpClient = c }
}

// WithLanguage sets the UI language requested from YouTube Music.
func WithLanguage(lang string) Option {
	return func(y *YouTubeService) { y.language = lang }
}

// WithRateLimit paces requests to rps per second; rps <= 0 disables pacing.
func WithRateLimit(rps float64) Option {
	return func(y *YouTubeService) {
		if rps <= 0 {
			y.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		y.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// YouTubeService implements the Provider interface for YouTube Music via proxy.
type YouTubeService struct {
	baseURL    string
	authFile   string
	language   string
	limiter    *rate.Limiter
	httpClient *http.Client
}

// NewYouTubeService creates a new YouTube Music service instance.
func NewYouTubeService(baseURL string, opts ...Option) *YouTubeService {
	if baseURL == "" {
		baseURL = defaultYTBaseURL
	}

	y := &YouTubeService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   "en",
		limiter:    rate.NewLimiter(rate.Inf, 1),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube Music"
}

// Authenticate stores the headers file path for subsequent requests.
//
// Expects credentials["auth_file"] to contain the path written by "ytmd auth".
func (y *YouTubeService) Authenticate(ctx context.Context, credentials map[string]string) error {
	authFile, ok := credentials["auth_file"]
	if !ok || authFile == "" {
		return fmt.Errorf("%w: missing auth_file in credentials", shared.ErrMissingCredentials)
	}

	y.authFile = authFile
	return nil
}

// Authenticated reports whether Authenticate succeeded.
func (y *YouTubeService) Authenticated() bool {
	return y.authFile != ""
}

func (y *YouTubeService) doRequest(ctx context.Context, endpoint string, authenticated bool, notFound error, result any) error {
	if err := y.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if authenticated {
		req.Header.Set("X-Auth-File", y.authFile)
	}
	if y.language != "" {
		req.Header.Set("Accept-Language", y.language)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Detail string `json:"detail"`
		}
		detail := fmt.Sprintf("status %d", resp.StatusCode)
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
			detail = fmt.Sprintf("status %d: %s", resp.StatusCode, errResp.Detail)
		}
		return fmt.Errorf("%w: youtube music API error (%s)", statusError(resp.StatusCode, notFound), detail)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
		}
	}

	return nil
}

func statusError(code int, notFound error) error {
	switch {
	case code == http.StatusNotFound && notFound != nil:
		return notFound
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return shared.ErrNotAuthenticated
	case code >= 500:
		return shared.ErrServiceUnavailable
	default:
		return shared.ErrAPIRequest
	}
}

func (y *YouTubeService) requireAuth() error {
	if !y.Authenticated() {
		return fmt.Errorf("%w: run \"ytmd auth\" first", shared.ErrNotAuthenticated)
	}
	return nil
}

// GetPlaylist retrieves a playlist with up to limit tracks.
//
// Calls GET /api/playlists/{id}?limit={limit} on the proxy. URLs are reduced to their list= value.
func (y *YouTubeService) GetPlaylist(ctx context.Context, playlistID string, limit int) (*models.PlaylistRecord, error) {
	if err := y.requireAuth(); err != nil {
		return nil, err
	}

	id := models.NormalizePlaylistID(playlistID)
	if id == "" {
		return nil, fmt.Errorf("%w: empty playlist id", shared.ErrInvalidArgument)
	}

	var ytPlaylist YouTubePlaylist
	endpoint := fmt.Sprintf("/api/playlists/%s%s", url.PathEscape(id), limitQuery(limit))
	if err := y.doRequest(ctx, endpoint, true, shared.ErrPlaylistNotFound, &ytPlaylist); err != nil {
		return nil, err
	}

	if ytPlaylist.ID == "" {
		ytPlaylist.ID = id
	}
	return toPlaylistRecord(ytPlaylist, limit), nil
}

// GetLikedSongs retrieves the liked songs playlist with up to limit tracks.
//
// Calls GET /api/library/liked-songs?limit={limit} on the proxy.
func (y *YouTubeService) GetLikedSongs(ctx context.Context, limit int) (*models.PlaylistRecord, error) {
	if err := y.requireAuth(); err != nil {
		return nil, err
	}

	var ytPlaylist YouTubePlaylist
	if err := y.doRequest(ctx, "/api/library/liked-songs"+limitQuery(limit), true, shared.ErrPlaylistNotFound, &ytPlaylist); err != nil {
		return nil, err
	}

	if ytPlaylist.Title == "" {
		ytPlaylist.Title = "Liked Music"
	}
	return toPlaylistRecord(ytPlaylist, limit), nil
}

// GetTrackRadio retrieves the watch playlist seeded by a video.
//
// Calls GET /api/watch/{videoId} on the proxy without credentials.
func (y *YouTubeService) GetTrackRadio(ctx context.Context, videoID string) (*models.PlaylistRecord, error) {
	id := models.NormalizeTrackID(videoID)
	if id == "" {
		return nil, fmt.Errorf("%w: empty video id", shared.ErrInvalidArgument)
	}

	var ytPlaylist YouTubePlaylist
	if err := y.doRequest(ctx, "/api/watch/"+url.PathEscape(id), false, shared.ErrTrackNotFound, &ytPlaylist); err != nil {
		return nil, err
	}

	if len(ytPlaylist.Tracks) == 0 {
		return nil, fmt.Errorf("%w: no radio for %s", shared.ErrTrackNotFound, id)
	}
	return toPlaylistRecord(ytPlaylist, 0), nil
}

// LookupTrack returns the first track of the radio for videoID.
func LookupTrack(ctx context.Context, p Provider, videoID string) (models.TrackRecord, error) {
	radio, err := p.GetTrackRadio(ctx, videoID)
	if err != nil {
		return models.TrackRecord{}, err
	}
	if len(radio.Tracks) == 0 {
		return models.TrackRecord{}, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, videoID)
	}
	return radio.Tracks[0], nil
}

// IsNotFound reports whether err means the requested playlist or track does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, shared.ErrPlaylistNotFound) || errors.Is(err, shared.ErrTrackNotFound)
}

func limitQuery(limit int) string {
	if limit <= 0 {
		return ""
	}
	return "?limit=" + strconv.Itoa(limit)
}

func toPlaylistRecord(p YouTubePlaylist, limit int) *models.PlaylistRecord {
	id := p.ID
	if id == "" {
		id = p.PlaylistID
	}

	tracks := p.Tracks
	if limit > 0 && len(tracks) > limit {
		tracks = tracks[:limit]
	}

	record := &models.PlaylistRecord{ID: id, Title: p.Title, Tracks: make([]models.TrackRecord, 0, len(tracks))}
	for _, t := range tracks {
		record.Tracks = append(record.Tracks, toTrackRecord(t))
	}
	return record
}

func toTrackRecord(t YouTubeTrack) models.TrackRecord {
	track := models.TrackRecord{ID: t.VideoID, Title: t.Title}

	for _, a := range t.Artists {
		track.Artists = append(track.Artists, models.Artist{Name: a.Name, ID: a.ID})
	}

	if t.Album != nil && t.Album.Name != "" {
		track.Album = &models.Album{Name: t.Album.Name, ID: t.Album.ID}
	}
	return track
}
