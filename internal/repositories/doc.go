// Package repositories implements SQLite persistence for client-side state.
//
// The only state the client keeps between invocations is the backend's session cookie;
// everything else (library, ratings, recommendations) is backend owned and re-fetched.
//
// Key Implementations:
//   - [CookieRepository] : cookie rows keyed by (host, name), upserted on every Set-Cookie
//   - [PersistentJar] : an [http.CookieJar] that loads stored cookies at start and writes through
//
// Session state itself is never trusted from storage: callers always re-resolve it with GET /me.
package repositories
