// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI mirrors the Undertone web views:
//  1. [AuthView] : Log in or register
//  2. [LibraryView] : Saved songs with a local star control and comment, submitted with enter
//  3. [FeedView] : Recommendations in backend order, saved with s
//  4. [SearchView] : Explore, objective filters and intent search with a discovery mode chip
//  5. [ImportView] : External catalog lookup and import
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// All network work goes through the [views.Profile] controllers; their progress updates flow through a channel
// and replace the footer with a spinner until the command's result message arrives.
//
// Keyboard navigation uses tab to switch views, vim-style list movement (j/k), / to type and esc to stop typing.
package ui
