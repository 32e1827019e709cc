package views

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/undertone/internal/models"
	"github.com/desertthunder/undertone/internal/services"
	"github.com/desertthunder/undertone/internal/shared"
)

// Status is the settled state of a region.
type Status int

const (
	Idle Status = iota
	Ready
	Empty
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Ready:
		return "ready"
	case Empty:
		return "empty"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Region messages.
const (
	EmptyLibraryMessage   = "Your library is empty."
	EmptyFeedMessage      = "Rate more songs to unlock recommendations."
	EmptyExternalMessage  = "No tracks found in the external catalog."
	EmptySearchMessage    = "No songs match these filters."
	LibraryFailedMessage  = "Unable to load library."
	FeedFailedMessage     = "Unable to load recommendations."
	ExploreFailedMessage  = "Unable to load library."
	SearchFailedMessage   = "Search failed. Analysis engine offline."
	ExternalFailedMessage = "External search failed."
	NoRatingMessage       = "Select a star rating before submitting."
	LoginRequiredMessage  = "Please login to save songs!"
	SaveFailedMessage     = "Save failed."
	RegisteredMessage     = "Account created. Log in to continue."
	unknownError          = "Unknown error"
)

// Loading placeholders shown while a call is in flight.
const (
	LoadingSession   = "Checking session..."
	LoadingLibrary   = "Loading your library..."
	LoadingFeed      = "Finding recommendations..."
	LoadingExplore   = "Curating a selection of tracks..."
	LoadingObjective = "Filtering the catalog..."
	LoadingIntent    = "Parsing your musical intent..."
	LoadingExternal  = "Searching the external catalog..."
)

// Opts carries the dependencies shared by every controller. Nil fields select defaults.
type Opts struct {
	Logger  *log.Logger
	Updates chan<- Update
}

func (o Opts) logger() *log.Logger {
	if o.Logger == nil {
		return log.New(io.Discard)
	}
	return o.Logger
}

// SaveStatus discriminates [SaveOutcome].
type SaveStatus int

const (
	// Saved means the backend answered 2xx.
	Saved SaveStatus = iota
	// SaveAuthRequired means the backend answered 401 and the caller should show the auth view.
	SaveAuthRequired
	// SaveRejected means any other non-2xx status.
	SaveRejected
	// SaveFailed means the request never completed.
	SaveFailed
)

// SaveOutcome is the user-visible result of a save action.
type SaveOutcome struct {
	Status  SaveStatus
	Message string
	Song    *models.Song
	Err     error
}

// OK reports whether the song was saved.
func (o SaveOutcome) OK() bool {
	return o.Status == Saved
}

// SavedMessage formats the success confirmation for title.
func SavedMessage(title string) string {
	if title == "" {
		title = "Song"
	}
	return "\"" + title + "\" saved to your collection!"
}

// ErrorMessage formats a backend rejection, falling back to a generic message.
func ErrorMessage(err error) string {
	msg := services.BackendMessage(err)
	if msg == "" {
		msg = unknownError
	}
	return "Error: " + msg
}

// saveOutcome maps a /library/save result onto the four visible outcomes.
func saveOutcome(title string, resp *models.SaveResponse, err error) SaveOutcome {
	var song *models.Song
	if resp != nil {
		song = resp.Song
	}
	return outcome(title, song, err, SavedMessage, SaveFailedMessage)
}

func outcome(title string, song *models.Song, err error, success func(string) string, failed string) SaveOutcome {
	switch {
	case err == nil:
		if title == "" && song != nil {
			title = song.Title
		}
		return SaveOutcome{Status: Saved, Message: success(title), Song: song}
	case errors.Is(err, shared.ErrNotAuthenticated):
		return SaveOutcome{Status: SaveAuthRequired, Message: LoginRequiredMessage, Err: err}
	case isAPIError(err):
		return SaveOutcome{Status: SaveRejected, Message: ErrorMessage(err), Err: err}
	default:
		return SaveOutcome{Status: SaveFailed, Message: failed, Err: err}
	}
}

func isAPIError(err error) bool {
	_, ok := services.AsAPIError(err)
	return ok
}

// failure builds the message for a failed region load: the backend's message when
// it sent one, otherwise the region's fallback.
func failure(err error, fallback string) string {
	if errors.Is(err, context.Canceled) {
		return "Cancelled."
	}
	if msg := services.BackendMessage(err); msg != "" {
		return "Error: " + msg
	}
	return fallback
}
