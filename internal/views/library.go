package views

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/undertone/internal/models"
	"github.com/desertthunder/undertone/internal/services"
	"github.com/desertthunder/undertone/internal/shared"
)

// Card is one library song with its local star control and comment field.
//
// Stars and Comment start from the stored annotation and change only through
// [Library.SelectStars] and [Library.SetComment] until a rating is submitted.
type Card struct {
	Song    models.Song
	Stars   int
	Comment string
}

// LibraryState is the library region after a load.
type LibraryState struct {
	Status  Status
	Message string
	Cards   []Card
}

// Library loads the user's saved songs and submits ratings.
type Library struct {
	api     services.Undertone
	logger  *log.Logger
	updates chan<- Update

	mu    sync.Mutex
	state LibraryState
	feed  *Feed
}

// NewLibrary creates a library controller. Ratings refresh the feed attached by [NewFeed].
func NewLibrary(api services.Undertone, opts Opts) *Library {
	return &Library{api: api, logger: opts.logger(), updates: opts.Updates}
}

// State returns a copy of the current region state.
func (l *Library) State() LibraryState {
	l.mu.Lock()
	defer l.mu.Unlock()
	st := l.state
	st.Cards = append([]Card(nil), l.state.Cards...)
	return st
}

// Cards returns a copy of the current cards.
func (l *Library) Cards() []Card {
	return l.State().Cards
}

// Load fetches GET /library and rebuilds every card from the stored annotations.
// Unsubmitted star selections are discarded.
func (l *Library) Load(ctx context.Context) (LibraryState, error) {
	send(l.updates, phaseUpdate(LoadLibrary, LoadingLibrary))

	entries, err := l.api.Library(ctx)
	if err != nil {
		l.logger.Error("failed to load library", "error", err)
		return l.set(LibraryState{Status: Failed, Message: failure(err, LibraryFailedMessage)}), err
	}

	if len(entries) == 0 {
		return l.set(LibraryState{Status: Empty, Message: EmptyLibraryMessage}), nil
	}

	cards := make([]Card, len(entries))
	for i, e := range entries {
		a := e.Annotation()
		cards[i] = Card{Song: e.Song, Stars: a.Rating, Comment: a.Comment}
	}
	l.logger.Debug("library loaded", "songs", len(cards))
	return l.set(LibraryState{Status: Ready, Cards: cards}), nil
}

func (l *Library) set(st LibraryState) LibraryState {
	l.mu.Lock()
	l.state = st
	l.mu.Unlock()
	return st
}

// SelectStars sets the card's star value locally.
func (l *Library) SelectStars(songID int64, stars int) error {
	if stars < 1 || stars > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5, got %d", shared.ErrInvalidArgument, stars)
	}
	return l.edit(songID, func(c *Card) { c.Stars = stars })
}

// SetComment sets the card's comment text locally.
func (l *Library) SetComment(songID int64, comment string) error {
	return l.edit(songID, func(c *Card) { c.Comment = comment })
}

func (l *Library) edit(songID int64, fn func(*Card)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.state.Cards {
		if l.state.Cards[i].Song.ID == songID {
			fn(&l.state.Cards[i])
			return nil
		}
	}
	return fmt.Errorf("%w: song %d is not in the library", shared.ErrSongNotFound, songID)
}

func (l *Library) card(songID int64) (Card, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range l.state.Cards {
		if c.Song.ID == songID {
			return c, nil
		}
	}
	return Card{}, fmt.Errorf("%w: song %d is not in the library", shared.ErrSongNotFound, songID)
}

// SubmitRating posts the card's stars and comment to /song/rate. A card with no
// stars selected fails with [shared.ErrNoRating] and sends nothing. After the
// rating call returns successfully the attached feed is reloaded once.
func (l *Library) SubmitRating(ctx context.Context, songID int64) (string, error) {
	c, err := l.card(songID)
	if err != nil {
		return "", err
	}
	if c.Stars == 0 {
		return NoRatingMessage, fmt.Errorf("%w: song %d", shared.ErrNoRating, songID)
	}

	send(l.updates, ratingUpdate(songID, c.Stars))
	resp, err := l.api.Rate(ctx, models.RateRequest{SongID: songID, Rating: c.Stars, Comment: c.Comment})
	if err != nil {
		l.logger.Error("failed to rate song", "song", songID, "error", err)
		return ErrorMessage(err), err
	}

	msg := "Rating saved."
	if resp != nil && resp.Message != "" {
		msg = resp.Message
	}

	l.mu.Lock()
	feed := l.feed
	l.mu.Unlock()
	if feed != nil {
		// Feed failures land in the feed's own region state.
		_, _ = feed.Load(ctx)
	}
	return msg, nil
}
