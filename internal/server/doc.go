// Package server provides HTTP routing, middleware, and the OAuth callback used to authorize csvlist with Spotify.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support. [Middleware] wraps handlers in reverse
// order (last added executes first). [BasicRouter] uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback
//
// [OAuthHandler] validates the state parameter, exchanges the authorization code for tokens, and sends the
// result through a channel. It only processes one callback.
//
// [CallbackServer] wraps the handler in a temporary server bound to the configured server host and port. The
// `spotify auth` command starts it, opens the browser, waits for the result, and shuts it down.
package server
