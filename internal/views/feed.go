package views

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/undertone/internal/models"
	"github.com/desertthunder/undertone/internal/services"
)

// FeedState is the recommendation region after a load.
type FeedState struct {
	Status  Status
	Message string
	Results []models.Result
}

// Feed loads recommendations in backend order and saves them to the library.
type Feed struct {
	api     services.Undertone
	library *Library
	logger  *log.Logger
	updates chan<- Update

	mu    sync.Mutex
	state FeedState
}

// NewFeed creates a feed controller linked to library: a successful rating in
// library reloads the feed, and a successful save reloads library then the feed.
// library may be nil.
func NewFeed(api services.Undertone, library *Library, opts Opts) *Feed {
	f := &Feed{api: api, library: library, logger: opts.logger(), updates: opts.Updates}
	if library != nil {
		library.mu.Lock()
		library.feed = f
		library.mu.Unlock()
	}
	return f
}

// State returns a copy of the current region state.
func (f *Feed) State() FeedState {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := f.state
	st.Results = append([]models.Result(nil), f.state.Results...)
	return st
}

// Load fetches GET /recommendations and classifies each entry once.
func (f *Feed) Load(ctx context.Context) (FeedState, error) {
	send(f.updates, phaseUpdate(RefreshFeed, LoadingFeed))

	songs, err := f.api.Recommendations(ctx)
	if err != nil {
		f.logger.Error("failed to load recommendations", "error", err)
		return f.set(FeedState{Status: Failed, Message: failure(err, FeedFailedMessage)}), err
	}
	if len(songs) == 0 {
		return f.set(FeedState{Status: Empty, Message: EmptyFeedMessage}), nil
	}
	return f.set(FeedState{Status: Ready, Results: models.ClassifyAll(songs)}), nil
}

func (f *Feed) set(st FeedState) FeedState {
	f.mu.Lock()
	f.state = st
	f.mu.Unlock()
	return st
}

// Save adds result to the library. Catalog matches are saved by id and
// suggestions by artist and title.
func (f *Feed) Save(ctx context.Context, result models.Result) SaveOutcome {
	send(f.updates, saveUpdate(result.Song.Title))

	resp, err := f.api.SaveToLibrary(ctx, result.SaveRequest(nil, nil))
	out := saveOutcome(result.Song.Title, resp, err)
	if !out.OK() {
		f.logger.Warn("failed to save recommendation", "song", result.Song.Label(), "error", err)
		return out
	}

	if f.library != nil {
		_, _ = f.library.Load(ctx)
	}
	_, _ = f.Load(ctx)
	return out
}
