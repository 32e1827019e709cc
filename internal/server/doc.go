// Package server implements the Undertone REST backend in memory.
//
// It backs the "devserver" command and the integration tests of the client packages.
//
// # Routes
//
// [Backend.Router] registers every endpoint with gorilla/mux. Routes that act on a
// user's library wrap their handler with requireUser, which answers 401 {error}
// when the session cookie is missing or unknown. Search routes are public; an
// intent search made while logged in is attributed to the user's search log.
//
// # Sessions
//
// Login sets the [SessionCookie] cookie to a random token. [Store] maps tokens
// to usernames. Passwords are bcrypt hashed.
//
// # Catalog
//
// The store is seeded with a small catalog and a separate "external" catalog
// standing in for the third-party lookup. Importing an external track copies its
// metadata into the catalog. Classification thresholds:
//   - fast tempo: bpm > [FastTempoBPM], slow below [SlowTempoBPM]
//   - heavy: decibel peak > [HeavyPeakDB]
//   - mainstream: mainstream_score > [models.MainstreamThreshold]
//
// # Middleware
//
// [Middleware] values compose with [Chain], first argument outermost. [RequestID]
// echoes X-Request-ID and [Logging] writes one line per request.
package server
