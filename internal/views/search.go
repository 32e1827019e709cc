package views

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/undertone/internal/models"
	"github.com/desertthunder/undertone/internal/services"
	"github.com/desertthunder/undertone/internal/shared"
)

// Sequencer hands out increasing request numbers and remembers the latest.
type Sequencer struct {
	latest atomic.Uint64
}

// Next returns a number greater than every number returned before.
func (s *Sequencer) Next() uint64 {
	return s.latest.Add(1)
}

// Latest returns the most recently issued number.
func (s *Sequencer) Latest() uint64 {
	return s.latest.Load()
}

// IsLatest reports whether seq is the most recently issued number.
func (s *Sequencer) IsLatest(seq uint64) bool {
	return seq == s.latest.Load()
}

// SearchKind names the search path that produced a result set.
type SearchKind int

const (
	ExploreSearch SearchKind = iota
	ObjectiveSearch
	IntentSearch
)

func (k SearchKind) String() string {
	switch k {
	case ExploreSearch:
		return "explore"
	case ObjectiveSearch:
		return "objective"
	case IntentSearch:
		return "intent"
	default:
		return "unknown"
	}
}

// Placeholder is the loading text shown while the search is in flight.
func (k SearchKind) Placeholder() string {
	switch k {
	case ObjectiveSearch:
		return LoadingObjective
	case IntentSearch:
		return LoadingIntent
	default:
		return LoadingExplore
	}
}

// Title is the results heading.
func (k SearchKind) Title() string {
	switch k {
	case ObjectiveSearch:
		return "Objective Results"
	case IntentSearch:
		return "Analyzed Results"
	default:
		return "Library Exploration"
	}
}

func (k SearchKind) emptyMessage(mode string) string {
	switch k {
	case IntentSearch:
		return fmt.Sprintf("No matches found for this intent in %s mode. Try switching discovery modes or broadening your intent.", mode)
	default:
		return EmptySearchMessage
	}
}

func (k SearchKind) failedMessage() string {
	if k == ExploreSearch {
		return ExploreFailedMessage
	}
	return SearchFailedMessage
}

// SearchSession is the state of one issued search. A new one is created for
// every search, so intent feedback never carries over between result sets.
type SearchSession struct {
	Seq          uint64
	Kind         SearchKind
	Mode         string
	Intent       string
	Filters      models.ObjectiveFilters
	SearchLogID  *int64
	FeedbackTags []string
}

// SaveRequest builds the save body for r, attaching this session's feedback.
func (s SearchSession) SaveRequest(r models.Result) models.SaveRequest {
	return r.SaveRequest(s.SearchLogID, s.FeedbackTags)
}

// SearchState is the results region after a search settles.
type SearchState struct {
	Session SearchSession
	Status  Status
	Message string
	Results []models.Result
}

// Search runs explore, objective and intent searches and saves their results.
type Search struct {
	api     services.Undertone
	logger  *log.Logger
	updates chan<- Update
	seq     Sequencer

	mu     sync.Mutex
	mode   string
	issued bool
	state  SearchState
}

// NewSearch creates a search controller with the discovery mode set to mode,
// or "all" when mode is empty or unknown.
func NewSearch(api services.Undertone, mode string, opts Opts) *Search {
	if !models.ValidMode(mode) {
		mode = models.ModeAll
	}
	return &Search{api: api, mode: mode, logger: opts.logger(), updates: opts.Updates}
}

// SetMode selects the discovery mode used by the next intent search.
func (s *Search) SetMode(mode string) error {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if !models.ValidMode(mode) {
		return fmt.Errorf("%w: mode must be one of %s, got %q", shared.ErrInvalidArgument, strings.Join(models.Modes, ", "), mode)
	}
	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()
	return nil
}

// Mode returns the selected discovery mode.
func (s *Search) Mode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// State returns the latest settled results.
func (s *Search) State() SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Results = slices.Clone(s.state.Results)
	st.Session.FeedbackTags = slices.Clone(s.state.Session.FeedbackTags)
	return st
}

// Title returns the results heading, or "" before the first search.
func (s *Search) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.issued {
		return ""
	}
	return s.state.Session.Kind.Title()
}

// TitleVisible reports whether any search has been issued.
func (s *Search) TitleVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issued
}

// Explore loads an unfiltered catalog sample.
func (s *Search) Explore(ctx context.Context) (SearchState, error) {
	sess := s.begin(SearchSession{Kind: ExploreSearch})
	songs, err := s.api.Explore(ctx)
	return s.finish(sess, songs, err)
}

// Objective searches with filters. All-default filters send an empty query.
func (s *Search) Objective(ctx context.Context, filters models.ObjectiveFilters) (SearchState, error) {
	if err := filters.Validate(); err != nil {
		return s.State(), fmt.Errorf("%w: %w", shared.ErrInvalidArgument, err)
	}

	sess := s.begin(SearchSession{Kind: ObjectiveSearch, Filters: filters})
	songs, err := s.api.SearchObjective(ctx, filters)
	return s.finish(sess, songs, err)
}

// Intent runs a natural-language search in the selected mode. The parsed genres
// and keywords, followed by the search log id, are kept on the new session.
func (s *Search) Intent(ctx context.Context, text string) (SearchState, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return s.State(), fmt.Errorf("%w: intent text is required", shared.ErrEmptyQuery)
	}

	sess := s.begin(SearchSession{Kind: IntentSearch, Intent: text, Mode: s.Mode()})
	res, err := s.api.SearchIntent(ctx, text, sess.Mode)
	if err != nil {
		return s.finish(sess, nil, err)
	}

	sess.SearchLogID = res.SearchLogID
	sess.FeedbackTags = res.ParsedIntent.FeedbackTags()
	return s.finish(sess, res.Songs, nil)
}

func (s *Search) begin(sess SearchSession) SearchSession {
	sess.Seq = s.seq.Next()
	if sess.Mode == "" {
		sess.Mode = s.Mode()
	}

	s.mu.Lock()
	s.issued = true
	s.mu.Unlock()

	send(s.updates, searchUpdate(sess))
	s.logger.Debug("search started", "seq", sess.Seq, "kind", sess.Kind, "mode", sess.Mode)
	return sess
}

// finish settles sess into the region unless a newer search has been issued,
// in which case the result is dropped and ErrStaleResponse is returned.
func (s *Search) finish(sess SearchSession, songs []models.Song, err error) (SearchState, error) {
	st := SearchState{Session: sess}
	switch {
	case err != nil:
		st.Status = Failed
		st.Message = failure(err, sess.Kind.failedMessage())
	case len(songs) == 0:
		st.Status = Empty
		st.Message = sess.Kind.emptyMessage(sess.Mode)
	default:
		st.Status = Ready
		st.Results = models.ClassifyAll(songs)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.seq.IsLatest(sess.Seq) {
		s.logger.Debug("dropping stale search response", "seq", sess.Seq, "latest", s.seq.Latest())
		return st, fmt.Errorf("%w: search #%d superseded by #%d", shared.ErrStaleResponse, sess.Seq, s.seq.Latest())
	}
	if err != nil {
		s.logger.Error("search failed", "kind", sess.Kind, "error", err)
	}
	s.state = st
	return st, err
}

// Save adds result to the library, attaching the feedback of the session it came from.
func (s *Search) Save(ctx context.Context, sess SearchSession, result models.Result) SaveOutcome {
	req := sess.SaveRequest(result)
	if err := req.Validate(); err != nil {
		return SaveOutcome{Status: SaveFailed, Message: SaveFailedMessage, Err: fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)}
	}

	send(s.updates, saveUpdate(result.Song.Title))
	resp, err := s.api.SaveToLibrary(ctx, req)
	out := saveOutcome(result.Song.Title, resp, err)
	if !out.OK() {
		s.logger.Warn("failed to save search result", "song", result.Song.Label(), "status", out.Status, "error", err)
	}
	return out
}
