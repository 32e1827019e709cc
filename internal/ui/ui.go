package ui

import (
	"context"
	"errors"
	"slices"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/undertone/internal/models"
	"github.com/desertthunder/undertone/internal/shared"
	"github.com/desertthunder/undertone/internal/views"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	AuthView ViewState = iota
	LibraryView
	FeedView
	SearchView
	ImportView
)

func (v ViewState) String() string {
	switch v {
	case AuthView:
		return "Account"
	case LibraryView:
		return "Library"
	case FeedView:
		return "For You"
	case SearchView:
		return "Search"
	case ImportView:
		return "Import"
	default:
		return ""
	}
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	profile *views.Profile
	view    ViewState
	session views.SessionState
	width   int
	height  int

	library list.Model
	feed    list.Model
	results list.Model
	tracks  list.Model

	libState    views.LibraryState
	feedState   views.FeedState
	searchState views.SearchState
	importState views.ImportState
	filters     models.ObjectiveFilters

	username  textinput.Model
	password  textinput.Model
	intent    textinput.Model
	query     textinput.Model
	comment   textinput.Model
	authField int
	typing    bool

	status    string
	statusErr bool
	loading   string
	pending   int
	updates   chan views.Update
	spinner   spinner.Model
	help      help.Model
	keys      keyMap
}

// NewModel creates a new TUI model over profile. updates should be the channel
// the profile's controllers report progress on; it may be nil.
func NewModel(ctx context.Context, profile *views.Profile, updates chan views.Update) *Model {
	m := &Model{
		ctx:      ctx,
		profile:  profile,
		view:     AuthView,
		library:  newList("Your Library"),
		feed:     newList("Recommended For You"),
		results:  newList(""),
		tracks:   newList("External Catalog"),
		username: newInput("username", false),
		password: newInput("password", true),
		intent:   newInput("chill evening drive", false),
		query:    newInput("artist or title", false),
		comment:  newInput("comment", false),
		filters: models.ObjectiveFilters{
			Genre: models.AnyFilter, Tempo: models.AnyFilter, Loudness: models.AnyFilter, Popularity: models.AnyFilter,
		},
		updates: updates,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:    help.New(),
		keys:    newKeyMap(),
	}
	m.loading = views.LoadingSession
	return m
}

func newInput(placeholder string, secret bool) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 200
	if secret {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
	}
	return in
}

// Init resolves the session, then starts listening for progress.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.open(), m.waitForUpdate(), m.spinner.Tick)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, l := range []*list.Model{&m.library, &m.feed, &m.results, &m.tracks} {
			l.SetSize(msg.Width-4, max(msg.Height-12, 4))
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.typing {
			return m.handleInputKeys(msg)
		}
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	if msg.kind != MsgProgressUpdate && m.pending > 0 {
		m.pending--
		if m.pending == 0 {
			m.loading = ""
		}
	}

	switch msg.kind {
	case MsgProgressUpdate:
		if m.pending > 0 {
			m.loading = msg.data.(views.Update).Message
		}
		return m, m.waitForUpdate()

	case MsgProfileLoaded:
		data := msg.data.(struct {
			state views.ProfileState
			err   error
		})
		m.session = data.state.Session
		if !m.session.LoggedIn {
			m.view = AuthView
			m.focusAuth(0)
			switch {
			case data.err != nil && m.username.Value() != "":
				m.setStatus(views.AuthMessage(data.err), true)
			case data.err != nil:
				m.setStatus("Unable to reach the backend.", true)
			case data.state.Session.Message != "":
				m.setStatus(data.state.Session.Message, false)
			}
			return m, nil
		}

		m.password.SetValue("")
		m.blur()
		m.setLibrary(data.state.Library)
		m.setFeed(data.state.Feed)
		if m.view == AuthView {
			m.view = LibraryView
		}
		m.setStatus("Logged in as "+m.session.Username, false)
		return m, nil

	case MsgLoggedOut:
		m.session = msg.data.(views.SessionState)
		m.setLibrary(views.LibraryState{})
		m.setFeed(views.FeedState{})
		m.view = AuthView
		m.focusAuth(0)
		m.setStatus("Logged out.", false)
		return m, nil

	case MsgLibraryLoaded:
		data := msg.data.(struct {
			state views.LibraryState
			err   error
		})
		m.setLibrary(data.state)
		return m, nil

	case MsgFeedLoaded:
		data := msg.data.(struct {
			state views.FeedState
			err   error
		})
		m.setFeed(data.state)
		if data.err != nil {
			m.setStatus(data.state.Message, true)
		}
		return m, nil

	case MsgRated:
		data := msg.data.(struct {
			message string
			err     error
		})
		m.setStatus(data.message, data.err != nil)
		if data.err == nil {
			m.setLibrary(m.profile.Library.State())
		}
		m.setFeed(m.profile.Feed.State())
		return m, nil

	case MsgFeedSaved:
		out := msg.data.(views.SaveOutcome)
		if m.applyOutcome(out) {
			m.setLibrary(m.profile.Library.State())
			m.setFeed(m.profile.Feed.State())
		}
		return m, nil

	case MsgSearched:
		data := msg.data.(struct {
			state views.SearchState
			err   error
		})
		if m.rejected(data.err) {
			return m, nil
		}
		m.searchState = data.state
		m.results.Title = data.state.Session.Kind.Title()
		m.results.SetItems(resultItems(data.state.Results))
		return m, nil

	case MsgSearchSaved, MsgImported:
		m.applyOutcome(msg.data.(views.SaveOutcome))
		return m, nil

	case MsgLookedUp:
		data := msg.data.(struct {
			state views.ImportState
			err   error
		})
		if m.rejected(data.err) {
			return m, nil
		}
		m.importState = data.state
		m.tracks.SetItems(trackItems(data.state.Tracks))
		return m, nil
	}

	return m, nil
}

// rejected reports whether err left the region untouched: a superseded response,
// or input refused before any request was sent.
func (m *Model) rejected(err error) bool {
	switch {
	case errors.Is(err, shared.ErrStaleResponse):
		return true
	case errors.Is(err, shared.ErrEmptyQuery):
		m.setStatus("Type something to search for first.", true)
		return true
	case errors.Is(err, shared.ErrInvalidArgument):
		m.setStatus(err.Error(), true)
		return true
	}
	return false
}

// applyOutcome shows a save outcome and routes to the auth view when the backend
// asked for a login. It reports whether the save succeeded.
func (m *Model) applyOutcome(out views.SaveOutcome) bool {
	m.setStatus(out.Message, !out.OK())
	if out.Status == views.SaveAuthRequired {
		m.session = views.SessionState{}
		m.view = AuthView
		m.focusAuth(0)
	}
	return out.OK()
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}

func (m *Model) setLibrary(st views.LibraryState) {
	m.libState = st
	m.library.SetItems(cardItems(st.Cards))
}

func (m *Model) setFeed(st views.FeedState) {
	m.feedState = st
	m.feed.SetItems(resultItems(st.Results))
}

// tabs lists the views reachable in the current session.
func (m *Model) tabs() []ViewState {
	if m.session.LoggedIn {
		return []ViewState{LibraryView, FeedView, SearchView, ImportView}
	}
	return []ViewState{AuthView, SearchView, ImportView}
}

func (m *Model) cycleView(step int) {
	tabs := m.tabs()
	i := slices.Index(tabs, m.view)
	m.view = tabs[(i+step+len(tabs))%len(tabs)]
	m.blur()
	if m.view == AuthView {
		m.focusAuth(m.authField)
	}
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.next):
		m.cycleView(1)
		return m, nil
	case key.Matches(msg, m.keys.prev):
		m.cycleView(-1)
		return m, nil
	case key.Matches(msg, m.keys.logout) && m.session.LoggedIn:
		return m, m.logout()
	}

	switch m.view {
	case AuthView:
		if key.Matches(msg, m.keys.focus, m.keys.enter) {
			m.focusAuth(m.authField)
		}
		return m, nil
	case LibraryView:
		return m.handleLibraryKeys(msg)
	case FeedView:
		return m.handleFeedKeys(msg)
	case SearchView:
		return m.handleSearchKeys(msg)
	case ImportView:
		return m.handleImportKeys(msg)
	}
	return m, nil
}

func (m *Model) handleLibraryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	card, ok := m.library.SelectedItem().(cardItem)

	switch {
	case key.Matches(msg, m.keys.stars) && ok:
		stars := int(msg.String()[0] - '0')
		if err := m.profile.Library.SelectStars(card.card.Song.ID, stars); err != nil {
			m.setStatus(err.Error(), true)
		}
		m.refreshCards()
		return m, nil
	case key.Matches(msg, m.keys.comment) && ok:
		m.comment.SetValue(card.card.Comment)
		m.typing = true
		return m, m.comment.Focus()
	case key.Matches(msg, m.keys.enter) && ok:
		return m, m.submitRating(card.card.Song.ID)
	case key.Matches(msg, m.keys.reload):
		return m, m.loadLibrary()
	}

	var cmd tea.Cmd
	m.library, cmd = m.library.Update(msg)
	return m, cmd
}

func (m *Model) refreshCards() {
	idx := m.library.Index()
	m.libState.Cards = m.profile.Library.Cards()
	m.library.SetItems(cardItems(m.libState.Cards))
	m.library.Select(idx)
}

func (m *Model) handleFeedKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.save, m.keys.enter):
		if item, ok := m.feed.SelectedItem().(resultItem); ok {
			return m, m.saveRecommendation(item.result)
		}
		return m, nil
	case key.Matches(msg, m.keys.reload):
		return m, m.loadFeed()
	}

	var cmd tea.Cmd
	m.feed, cmd = m.feed.Update(msg)
	return m, cmd
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.focus):
		m.typing = true
		return m, m.intent.Focus()
	case key.Matches(msg, m.keys.explore):
		return m, m.explore()
	case key.Matches(msg, m.keys.objective):
		return m, m.objective()
	case key.Matches(msg, m.keys.mode):
		modes := models.Modes
		next := modes[(slices.Index(modes, m.profile.Search.Mode())+1)%len(modes)]
		if err := m.profile.Search.SetMode(next); err != nil {
			m.setStatus(err.Error(), true)
		}
		return m, nil
	case key.Matches(msg, m.keys.filters):
		switch msg.String() {
		case "t":
			m.filters.Tempo = cycle(m.filters.Tempo, models.TempoBuckets)
		case "l":
			m.filters.Loudness = cycle(m.filters.Loudness, models.LoudnessBuckets)
		case "p":
			m.filters.Popularity = cycle(m.filters.Popularity, models.PopularityBuckets)
		}
		return m, nil
	case key.Matches(msg, m.keys.save, m.keys.enter):
		if item, ok := m.results.SelectedItem().(resultItem); ok {
			return m, m.saveResult(m.searchState.Session, item.result)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

func (m *Model) handleImportKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	item, ok := m.tracks.SelectedItem().(trackItem)

	switch {
	case key.Matches(msg, m.keys.focus):
		m.typing = true
		return m, m.query.Focus()
	case key.Matches(msg, m.keys.importer, m.keys.enter) && ok:
		return m, m.importTrack(item.track)
	case key.Matches(msg, m.keys.save) && ok:
		return m, m.importAndSave(item.track)
	}

	var cmd tea.Cmd
	m.tracks, cmd = m.tracks.Update(msg)
	return m, cmd
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.blur()
		return m, nil
	case m.view == AuthView && key.Matches(msg, m.keys.register):
		return m, m.register()
	case m.view == AuthView && msg.String() == "up", m.view == AuthView && msg.String() == "down":
		m.focusAuth(1 - m.authField)
		return m, nil
	case key.Matches(msg, m.keys.enter):
		return m, m.submitInput()
	case msg.String() == "tab" || msg.String() == "shift+tab":
		m.blur()
		return m.handleKeys(msg)
	}

	input := m.focused()
	if input == nil {
		m.typing = false
		return m, nil
	}
	var cmd tea.Cmd
	*input, cmd = input.Update(msg)
	return m, cmd
}

// submitInput handles enter inside a text field.
func (m *Model) submitInput() tea.Cmd {
	switch m.view {
	case AuthView:
		if m.authField == 0 {
			m.focusAuth(1)
			return nil
		}
		return m.login()
	case LibraryView:
		if card, ok := m.library.SelectedItem().(cardItem); ok {
			if err := m.profile.Library.SetComment(card.card.Song.ID, m.comment.Value()); err != nil {
				m.setStatus(err.Error(), true)
			}
			m.refreshCards()
		}
		m.blur()
		return nil
	case SearchView:
		m.blur()
		return m.search(m.intent.Value())
	case ImportView:
		m.blur()
		return m.lookup(m.query.Value())
	}
	return nil
}

func (m *Model) focused() *textinput.Model {
	switch m.view {
	case AuthView:
		if m.authField == 0 {
			return &m.username
		}
		return &m.password
	case LibraryView:
		return &m.comment
	case SearchView:
		return &m.intent
	case ImportView:
		return &m.query
	}
	return nil
}

func (m *Model) focusAuth(field int) {
	m.authField = field
	m.typing = true
	if field == 0 {
		m.password.Blur()
		m.username.Focus()
		return
	}
	m.username.Blur()
	m.password.Focus()
}

func (m *Model) blur() {
	m.typing = false
	for _, in := range []*textinput.Model{&m.username, &m.password, &m.intent, &m.query, &m.comment} {
		in.Blur()
	}
}

// cycle steps a filter through any followed by options.
func cycle(current string, options []string) string {
	all := append([]string{models.AnyFilter}, options...)
	i := slices.Index(all, current)
	return all[(i+1)%len(all)]
}

func (m *Model) credentials() models.Credentials {
	return models.Credentials{Username: m.username.Value(), Password: m.password.Value()}
}

func (m *Model) open() tea.Cmd {
	m.pending++
	return func() tea.Msg {
		state, err := m.profile.Open(m.ctx)
		return profileLoadedMsg(state, err)
	}
}

func (m *Model) login() tea.Cmd {
	m.pending++
	creds := m.credentials()
	return func() tea.Msg {
		state, err := m.profile.Login(m.ctx, creds)
		return profileLoadedMsg(state, err)
	}
}

func (m *Model) register() tea.Cmd {
	m.pending++
	creds := m.credentials()
	return func() tea.Msg {
		state, err := m.profile.Register(m.ctx, creds)
		return profileLoadedMsg(state, err)
	}
}

func (m *Model) logout() tea.Cmd {
	m.pending++
	return func() tea.Msg {
		return loggedOutMsg(m.profile.Session.Logout(m.ctx))
	}
}

func (m *Model) loadLibrary() tea.Cmd {
	m.pending++
	return func() tea.Msg {
		state, err := m.profile.Library.Load(m.ctx)
		return libraryLoadedMsg(state, err)
	}
}

func (m *Model) loadFeed() tea.Cmd {
	m.pending++
	return func() tea.Msg {
		state, err := m.profile.Feed.Load(m.ctx)
		return feedLoadedMsg(state, err)
	}
}

func (m *Model) submitRating(songID int64) tea.Cmd {
	m.pending++
	return func() tea.Msg {
		msg, err := m.profile.Library.SubmitRating(m.ctx, songID)
		return ratedMsg(msg, err)
	}
}

func (m *Model) saveRecommendation(r models.Result) tea.Cmd {
	m.pending++
	return func() tea.Msg {
		return feedSavedMsg(m.profile.Feed.Save(m.ctx, r))
	}
}

func (m *Model) explore() tea.Cmd {
	m.pending++
	return func() tea.Msg {
		state, err := m.profile.Search.Explore(m.ctx)
		return searchedMsg(state, err)
	}
}

func (m *Model) objective() tea.Cmd {
	m.pending++
	filters := m.filters
	return func() tea.Msg {
		state, err := m.profile.Search.Objective(m.ctx, filters)
		return searchedMsg(state, err)
	}
}

func (m *Model) search(text string) tea.Cmd {
	m.pending++
	return func() tea.Msg {
		state, err := m.profile.Search.Intent(m.ctx, text)
		return searchedMsg(state, err)
	}
}

func (m *Model) saveResult(sess views.SearchSession, r models.Result) tea.Cmd {
	m.pending++
	return func() tea.Msg {
		return searchSavedMsg(m.profile.Search.Save(m.ctx, sess, r))
	}
}

func (m *Model) lookup(q string) tea.Cmd {
	m.pending++
	return func() tea.Msg {
		state, err := m.profile.Importer.Lookup(m.ctx, q)
		return lookedUpMsg(state, err)
	}
}

func (m *Model) importTrack(t models.ExternalTrack) tea.Cmd {
	m.pending++
	return func() tea.Msg {
		return importedMsg(m.profile.Importer.Import(m.ctx, t))
	}
}

func (m *Model) importAndSave(t models.ExternalTrack) tea.Cmd {
	m.pending++
	return func() tea.Msg {
		return importedMsg(m.profile.Importer.ImportAndSave(m.ctx, t))
	}
}

func (m *Model) waitForUpdate() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	return func() tea.Msg {
		update, ok := <-m.updates
		if !ok {
			return nil
		}
		return progressUpdateMsg(update)
	}
}
