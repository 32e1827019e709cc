// Package models defines the wire and view types shared by the Undertone client.
//
// The package contains three groups of types:
//
// 1. Backend entities, decoded from the REST API
//   - [Session] : login state reported by GET /me
//   - [Song] : catalog entry with descriptive metrics and tags
//   - [LibraryEntry] : a saved [Song] with the user's [Annotation]
//   - [IntentResult] : songs plus the backend's interpretation of free text
//   - [ExternalTrack] : artist/title pair from the third-party lookup
//
// 2. Request bodies: [Credentials], [RateRequest], [SaveRequest], [ImportRequest]
//
// 3. Client-side view types
//   - [Result] : a [Song] resolved once into the [CatalogMatch] or [Suggestion] variant
//   - [ObjectiveFilters] : discrete search filters where [AnyFilter] omits the key
//   - [StoredCookie] : persisted backend session cookie
package models
