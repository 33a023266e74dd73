// Package server runs the short-lived local HTTP server that receives the Spotify authorization callback.
//
// [BasicRouter] wraps [http.ServeMux] with method filtering and a [Middleware] stack; [Logging]
// records each request without its query string.
//
// [OAuthHandler] serves the path of the configured redirect URI. It checks the state parameter,
// exchanges the code for a token, and delivers exactly one [OAuthResult] on its channel. Later
// requests are rejected so a code cannot be replayed.
//
// Headless sessions skip the server: the user pastes the redirect URL and [CodeFromRedirect]
// applies the same state check to it.
package server
