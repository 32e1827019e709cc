// Package views implements the Undertone screens as UI-agnostic controllers.
//
// Each controller owns one region of the interface and returns a complete state
// for it: results, an empty-state message or an error message. A loading
// placeholder is only ever shown by the caller while a call is in flight.
//
// Controllers:
//   - [Session] : login state, login, registration and logout
//   - [Library] : saved songs as [Card] values with local star/comment edits and rating submission
//   - [Feed] : ranked recommendations classified into [models.Result]
//   - [Search] : explore, objective and intent searches with request sequencing
//   - [Importer] : external catalog lookup and import
//   - [Profile] : wires the above together the way the profile page does
//
// # Ordering
//
// A rating submission refreshes the feed exactly once, after the rate call returns.
// Saving a recommendation refreshes the library, then the feed.
//
// Every search takes a sequence number from [Sequencer]. A response that arrives
// after a newer search was dispatched is dropped with [shared.ErrStaleResponse]
// and never replaces the current results. Intent feedback (search log id and
// parsed tags) lives in the [SearchSession] of the search that produced it and is
// passed explicitly to [Search.Save].
//
// # Progress
//
// Controllers optionally emit [Update] values on a channel. Sends never block:
// a full or nil channel drops the update.
package views
