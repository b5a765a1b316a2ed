// Package services defines the [Provider] interface for track and playlist metadata and implements it for YouTube Music.
//
// # YouTube Music Implementation
//
// [YouTubeService] communicates with the FastAPI proxy server wrapping ytmusicapi.
//
// The proxy handles YouTube Music authentication complexities.
// The headers file path is sent via X-Auth-File header on each authenticated request;
// radio lookups for single tracks are sent without it so they work before "ytmd auth".
// Requests are paced with a token bucket ([rate.Limiter]) and carry the configured
// UI language as Accept-Language.
//
// # Error Handling
//
// Services use sentinel errors from the shared package:
//   - [shared.ErrNotAuthenticated] : proxy rejected the credentials (401/403)
//   - [shared.ErrPlaylistNotFound] : playlist ID not found
//   - [shared.ErrTrackNotFound] : radio lookup returned nothing
//   - [shared.ErrServiceUnavailable] : proxy unreachable or failing (5xx)
//   - [shared.ErrAPIRequest] : any other non-2xx response
//
// # API Mappings
//
// Proxy responses ([YouTubeTrack], [YouTubePlaylist]) are mapped to [models.TrackRecord] and
// [models.PlaylistRecord]. Artists and album stay optional: a missing album becomes nil.
package services
