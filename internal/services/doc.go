// Package services implements the Spotify Web API client used by the monthly playlist sync.
//
// # Spotify Implementation
//
// [SpotifyService] uses OAuth2 for authentication with automatic token refresh.
// The [oauth2.Client] refreshes expired tokens using the refresh token, and the optional refresh
// callback (see [SpotifyService.SetTokenRefreshCallback]) lets callers persist the new token.
//
// Requests are paced by a [rate.Limiter]. The client never retries: a failed request is returned
// to the caller as a [shared.TransportError].
//
// # Responses
//
// Paged endpoints decode into [Page]. A page without an "items" field is a [shared.ShapeError].
// Fields the client doesn't declare are ignored, since Spotify adds fields without versioning.
//
// # Endpoints
//
//   - GET  /me                          : [SpotifyService.UserProfile]
//   - GET  /me/tracks                   : [SpotifyService.SavedTracks]
//   - GET  /me/playlists                : [SpotifyService.UserPlaylists]
//   - GET  /playlists/{id}/tracks       : [SpotifyService.PlaylistItems]
//   - POST /users/{user_id}/playlists   : [SpotifyService.CreatePlaylist]
//   - POST /playlists/{id}/tracks       : [SpotifyService.AddToPlaylist]
package services
