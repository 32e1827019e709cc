package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/undertone/internal/views"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgProfileLoaded MsgKind = iota
	MsgLoggedOut
	MsgLibraryLoaded
	MsgFeedLoaded
	MsgRated
	MsgFeedSaved
	MsgSearched
	MsgSearchSaved
	MsgLookedUp
	MsgImported
	MsgProgressUpdate
)

// profileLoadedMsg is the constructor for [MsgProfileLoaded]
func profileLoadedMsg(state views.ProfileState, err error) Msg {
	return Msg{
		kind: MsgProfileLoaded,
		data: struct {
			state views.ProfileState
			err   error
		}{state, err},
	}
}

// loggedOutMsg is the constructor for [MsgLoggedOut]
func loggedOutMsg(state views.SessionState) Msg {
	return Msg{kind: MsgLoggedOut, data: state}
}

// libraryLoadedMsg is the constructor for [MsgLibraryLoaded]
func libraryLoadedMsg(state views.LibraryState, err error) Msg {
	return Msg{
		kind: MsgLibraryLoaded,
		data: struct {
			state views.LibraryState
			err   error
		}{state, err},
	}
}

// feedLoadedMsg is the constructor for [MsgFeedLoaded]
func feedLoadedMsg(state views.FeedState, err error) Msg {
	return Msg{
		kind: MsgFeedLoaded,
		data: struct {
			state views.FeedState
			err   error
		}{state, err},
	}
}

// ratedMsg is the constructor for [MsgRated]
func ratedMsg(message string, err error) Msg {
	return Msg{
		kind: MsgRated,
		data: struct {
			message string
			err     error
		}{message, err},
	}
}

// feedSavedMsg is the constructor for [MsgFeedSaved]
func feedSavedMsg(out views.SaveOutcome) Msg {
	return Msg{kind: MsgFeedSaved, data: out}
}

// searchedMsg is the constructor for [MsgSearched]
func searchedMsg(state views.SearchState, err error) Msg {
	return Msg{
		kind: MsgSearched,
		data: struct {
			state views.SearchState
			err   error
		}{state, err},
	}
}

// searchSavedMsg is the constructor for [MsgSearchSaved]
func searchSavedMsg(out views.SaveOutcome) Msg {
	return Msg{kind: MsgSearchSaved, data: out}
}

// lookedUpMsg is the constructor for [MsgLookedUp]
func lookedUpMsg(state views.ImportState, err error) Msg {
	return Msg{
		kind: MsgLookedUp,
		data: struct {
			state views.ImportState
			err   error
		}{state, err},
	}
}

// importedMsg is the constructor for [MsgImported]
func importedMsg(out views.SaveOutcome) Msg {
	return Msg{kind: MsgImported, data: out}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update views.Update) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}
