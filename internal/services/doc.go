// Package services talks to the Undertone REST backend.
//
// # Typed client
//
// [UndertoneService] implements [Undertone], one method per backend endpoint:
//
//	GET  /me                  session check
//	POST /register, /login    account and session
//	GET  /logout              end session
//	GET  /library             saved songs with annotations
//	POST /song/rate           upsert rating and comment
//	GET  /recommendations     ranked suggestions
//	POST /library/save        save by id or by artist/title
//	GET  /songs/explore       unfiltered catalog sample
//	GET  /search/objective    filtered catalog search
//	GET  /search/intent       natural language search
//	GET  /search/external     third-party lookup
//	POST /song/import         import an external track
//
// Authentication is the backend's cookie session, carried by the [http.Client] jar.
// Every request gets an X-Request-ID header and passes through an optional
// [rate.Limiter] that delays but never drops requests. There are no retries.
//
// # Raw client
//
// [APIService] performs untyped GET and POST calls for the "api" command.
//
// # Error Handling
//
//   - [APIError] : non-2xx status, carrying the backend's {error} message
//   - [shared.ErrNotAuthenticated] : matched by an [APIError] with status 401
//   - [shared.ErrServiceUnavailable] : matched by an [APIError] with status 502, 503 or 504
//   - [shared.ErrAPIRequest] : transport failure, the request never completed
//   - [shared.ErrMalformedResponse] : 2xx body that does not decode into the expected type
package services
