// Package services defines the narrow interfaces an import run needs from a music service and implements them for
// the Spotify Web API.
//
// # Interfaces
//
//   - [Catalog] : track search
//   - [PlaylistService] : current user lookup, playlist creation, and item appends
//   - [OAuthService] : authorization code flow helpers used by the CLI
//
// # Spotify Implementation
//
// [SpotifyService] uses OAuth2 for authentication with automatic token refresh. Refreshed tokens are reported through
// [SpotifyService.SetTokenRefreshCallback] so the CLI can write them back to config.toml.
//
// An optional client-side limiter ([SpotifyService.SetRateLimit]) caps requests per second. It sits underneath the
// fixed pacing done by the import engine and is off by default.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : no token yet (Authenticate or OAuthenticate not called)
//   - [shared.ErrTokenExpired] : HTTP 401, reauthorization needed
//   - [shared.ErrRateLimited] : HTTP 429
//   - [shared.ErrBatchTooLarge] : more than 100 items in one append
//   - [shared.ErrAPIRequest] : any other failed request
package services
