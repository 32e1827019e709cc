package views

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/undertone/internal/models"
	"github.com/desertthunder/undertone/internal/server"
	"github.com/desertthunder/undertone/internal/services"
	"github.com/desertthunder/undertone/internal/shared"
	tu "github.com/desertthunder/undertone/internal/testing"
)

var (
	nightdrive = models.Song{ID: 7, Title: "Nightdrive", Artist: "Kavinsky", Genre: "Synthwave", BPM: 104, DecibelPeak: -10.4, Tags: []string{"night"}}
	suggestion = models.Song{Title: "Nightcall", Artist: "Kavinsky", Genre: "Synthwave", AIRecommendation: true}
	creds      = models.Credentials{Username: "ana", Password: "secret"}
)

func unauthorized() error {
	return &services.APIError{Status: http.StatusUnauthorized, Message: "Login required", Method: "POST", Path: "/library/save"}
}

func ptr[T any](v T) *T { return &v }

func TestSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Resolve", func(t *testing.T) {
		t.Run("Issues One Me Call", func(t *testing.T) {
			stub := &tu.StubUndertone{MeFunc: func(context.Context) (*models.Session, error) {
				return &models.Session{LoggedIn: true, Username: "ana"}, nil
			}}
			s := NewSession(stub, SessionOpts{})

			state, err := s.Resolve(ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !state.LoggedIn || state.Username != "ana" {
				t.Errorf("unexpected state %+v", state)
			}
			if got := stub.Calls(); !slices.Equal(got, []string{"GET /me"}) {
				t.Errorf("expected one /me call, got %v", got)
			}
		})

		t.Run("Failure Is Unauthenticated And Surfaced", func(t *testing.T) {
			stub := &tu.StubUndertone{MeFunc: func(context.Context) (*models.Session, error) {
				return nil, shared.ErrAPIRequest
			}}
			state, err := NewSession(stub, SessionOpts{}).Resolve(ctx)
			if err == nil {
				t.Fatal("expected error")
			}
			if state.LoggedIn {
				t.Error("expected unauthenticated state")
			}
		})
	})

	t.Run("Login", func(t *testing.T) {
		t.Run("Rejects Empty Credentials Locally", func(t *testing.T) {
			stub := &tu.StubUndertone{}
			_, err := NewSession(stub, SessionOpts{}).Login(ctx, models.Credentials{Username: " "})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
			if len(stub.Calls()) != 0 {
				t.Errorf("expected no calls, got %v", stub.Calls())
			}
		})

		t.Run("Re-resolves After Success", func(t *testing.T) {
			stub := &tu.StubUndertone{
				LoginFunc: func(context.Context, models.Credentials) (*models.AuthResponse, error) {
					return &models.AuthResponse{Username: "not-trusted"}, nil
				},
				MeFunc: func(context.Context) (*models.Session, error) {
					return &models.Session{LoggedIn: true, Username: "ana"}, nil
				},
			}
			state, err := NewSession(stub, SessionOpts{}).Login(ctx, creds)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if state.Username != "ana" {
				t.Errorf("expected username from /me, got %q", state.Username)
			}
			if got := stub.Calls(); !slices.Equal(got, []string{"POST /login", "GET /me"}) {
				t.Errorf("unexpected calls %v", got)
			}
		})

		t.Run("Failure Keeps Previous State", func(t *testing.T) {
			stub := &tu.StubUndertone{
				MeFunc: func(context.Context) (*models.Session, error) {
					return &models.Session{LoggedIn: true, Username: "bo"}, nil
				},
				LoginFunc: func(context.Context, models.Credentials) (*models.AuthResponse, error) {
					return nil, &services.APIError{Status: http.StatusUnauthorized, Message: "Invalid credentials"}
				},
			}
			s := NewSession(stub, SessionOpts{})
			s.Resolve(ctx)

			state, err := s.Login(ctx, creds)
			if !errors.Is(err, shared.ErrAuthFailed) {
				t.Errorf("expected ErrAuthFailed, got %v", err)
			}
			if AuthMessage(err) != "Invalid credentials" {
				t.Errorf("expected backend message, got %q", AuthMessage(err))
			}
			if !state.LoggedIn || state.Username != "bo" || s.State() != state {
				t.Errorf("expected unchanged state, got %+v", state)
			}
		})
	})

	t.Run("Register", func(t *testing.T) {
		t.Run("Auto Login", func(t *testing.T) {
			stub := &tu.StubUndertone{MeFunc: func(context.Context) (*models.Session, error) {
				return &models.Session{LoggedIn: true, Username: "ana"}, nil
			}}
			state, err := NewSession(stub, SessionOpts{AutoLogin: true}).Register(ctx, creds)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !state.LoggedIn {
				t.Error("expected logged in state")
			}
			want := []string{"POST /register", "POST /login", "GET /me"}
			if got := stub.Calls(); !slices.Equal(got, want) {
				t.Errorf("expected %v, got %v", want, got)
			}
		})

		t.Run("Manual Login", func(t *testing.T) {
			stub := &tu.StubUndertone{}
			state, err := NewSession(stub, SessionOpts{}).Register(ctx, creds)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if state.LoggedIn || state.Message != RegisteredMessage {
				t.Errorf("unexpected state %+v", state)
			}
			if stub.Count("POST /login") != 0 {
				t.Error("expected no login call")
			}
		})
	})

	t.Run("Logout Ignores Failure", func(t *testing.T) {
		stub := &tu.StubUndertone{
			MeFunc: func(context.Context) (*models.Session, error) {
				return &models.Session{LoggedIn: true, Username: "ana"}, nil
			},
			LogoutFunc: func(context.Context) error { return shared.ErrAPIRequest },
		}
		s := NewSession(stub, SessionOpts{})
		s.Resolve(ctx)

		if state := s.Logout(ctx); state.LoggedIn || state.Username != "" {
			t.Errorf("expected logged out state, got %+v", state)
		}
	})
}

func TestLibrary(t *testing.T) {
	ctx := context.Background()
	entries := []models.LibraryEntry{
		{Song: nightdrive},
		{Song: models.Song{ID: 8, Title: "Resonance", Artist: "Home"}, Rating: 4, Comment: "warm"},
		{Song: models.Song{ID: 9, Title: "Hours", Artist: "Tycho"}, Rating: 9},
	}
	libraryStub := func() *tu.StubUndertone {
		return &tu.StubUndertone{LibraryFunc: func(context.Context) ([]models.LibraryEntry, error) {
			return entries, nil
		}}
	}

	t.Run("Empty Library Message", func(t *testing.T) {
		state, err := NewLibrary(&tu.StubUndertone{}, Opts{}).Load(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if state.Status != Empty || state.Message != "Your library is empty." || len(state.Cards) != 0 {
			t.Errorf("unexpected state %+v", state)
		}
	})

	t.Run("Cards Seeded From Annotations", func(t *testing.T) {
		state, err := NewLibrary(libraryStub(), Opts{}).Load(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tests := []struct {
			stars   int
			comment string
		}{{0, ""}, {4, "warm"}, {0, ""}}
		for i, tt := range tests {
			c := state.Cards[i]
			if c.Stars != tt.stars || c.Comment != tt.comment {
				t.Errorf("card %d: expected %d/%q, got %d/%q", i, tt.stars, tt.comment, c.Stars, c.Comment)
			}
		}
	})

	t.Run("Load Failure", func(t *testing.T) {
		stub := &tu.StubUndertone{LibraryFunc: func(context.Context) ([]models.LibraryEntry, error) {
			return nil, shared.ErrAPIRequest
		}}
		state, err := NewLibrary(stub, Opts{}).Load(ctx)
		if err == nil || state.Status != Failed || state.Message != LibraryFailedMessage {
			t.Errorf("unexpected state %+v err %v", state, err)
		}
	})

	t.Run("Star Selection Is Local", func(t *testing.T) {
		stub := libraryStub()
		lib := NewLibrary(stub, Opts{})
		lib.Load(ctx)

		if err := lib.SelectStars(7, 3); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := lib.SetComment(7, "late night"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c := lib.Cards()[0]; c.Stars != 3 || c.Comment != "late night" {
			t.Errorf("unexpected card %+v", c)
		}
		if got := stub.Calls(); !slices.Equal(got, []string{"GET /library"}) {
			t.Errorf("expected no network calls, got %v", got)
		}
	})

	t.Run("Star Range", func(t *testing.T) {
		lib := NewLibrary(libraryStub(), Opts{})
		lib.Load(ctx)
		for _, n := range []int{0, 6, -1} {
			if err := lib.SelectStars(7, n); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("%d: expected ErrInvalidArgument, got %v", n, err)
			}
		}
		if err := lib.SelectStars(99, 3); !errors.Is(err, shared.ErrSongNotFound) {
			t.Errorf("expected ErrSongNotFound, got %v", err)
		}
	})

	t.Run("Submit Without Stars Sends Nothing", func(t *testing.T) {
		stub := libraryStub()
		lib := NewLibrary(stub, Opts{})
		NewFeed(stub, lib, Opts{})
		lib.Load(ctx)

		msg, err := lib.SubmitRating(ctx, 7)
		if !errors.Is(err, shared.ErrNoRating) {
			t.Errorf("expected ErrNoRating, got %v", err)
		}
		if msg != NoRatingMessage {
			t.Errorf("expected prompt, got %q", msg)
		}
		if stub.Count("POST /song/rate") != 0 || stub.Count("GET /recommendations") != 0 {
			t.Errorf("expected no rating or feed calls, got %v", stub.Calls())
		}
	})

	t.Run("Submit Refreshes Feed Once After Rating", func(t *testing.T) {
		stub := libraryStub()
		var rated models.RateRequest
		stub.RateFunc = func(_ context.Context, req models.RateRequest) (*models.MessageResponse, error) {
			rated = req
			return &models.MessageResponse{Message: "Rating saved"}, nil
		}
		lib := NewLibrary(stub, Opts{})
		feed := NewFeed(stub, lib, Opts{})
		lib.Load(ctx)
		lib.SelectStars(7, 5)
		lib.SetComment(7, "perfect")

		msg, err := lib.SubmitRating(ctx, 7)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if msg != "Rating saved" {
			t.Errorf("unexpected message %q", msg)
		}
		if rated != (models.RateRequest{SongID: 7, Rating: 5, Comment: "perfect"}) {
			t.Errorf("unexpected request %+v", rated)
		}
		want := []string{"GET /library", "POST /song/rate", "GET /recommendations"}
		if got := stub.Calls(); !slices.Equal(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
		if feed.State().Status != Empty {
			t.Errorf("expected feed to be reloaded, got %v", feed.State().Status)
		}
	})

	t.Run("Rating Failure Skips Refresh", func(t *testing.T) {
		stub := libraryStub()
		stub.RateFunc = func(context.Context, models.RateRequest) (*models.MessageResponse, error) {
			return nil, &services.APIError{Status: http.StatusBadRequest, Message: "Song not in library"}
		}
		lib := NewLibrary(stub, Opts{})
		NewFeed(stub, lib, Opts{})
		lib.Load(ctx)
		lib.SelectStars(8, 2)

		msg, err := lib.SubmitRating(ctx, 8)
		if err == nil {
			t.Fatal("expected error")
		}
		if msg != "Error: Song not in library" {
			t.Errorf("unexpected message %q", msg)
		}
		if stub.Count("GET /recommendations") != 0 {
			t.Error("expected no feed refresh")
		}
	})
}

func TestFeed(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty Message", func(t *testing.T) {
		state, _ := NewFeed(&tu.StubUndertone{}, nil, Opts{}).Load(ctx)
		if state.Status != Empty || state.Message != EmptyFeedMessage {
			t.Errorf("unexpected state %+v", state)
		}
	})

	t.Run("Keeps Order And Classifies", func(t *testing.T) {
		low := models.Song{ID: 3, Title: "Low", MatchScore: 0.2}
		stub := &tu.StubUndertone{RecommendationsFunc: func(context.Context) ([]models.Song, error) {
			return []models.Song{low, suggestion, nightdrive}, nil
		}}
		state, err := NewFeed(stub, nil, Opts{}).Load(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		kinds := []models.ResultKind{models.CatalogMatch, models.Suggestion, models.CatalogMatch}
		for i, r := range state.Results {
			if r.Kind != kinds[i] {
				t.Errorf("result %d: expected %v, got %v", i, kinds[i], r.Kind)
			}
		}
		if state.Results[0].Song.Title != "Low" {
			t.Error("expected backend order to be kept")
		}
	})

	t.Run("Save Refreshes Library Then Feed", func(t *testing.T) {
		stub := &tu.StubUndertone{}
		lib := NewLibrary(stub, Opts{})
		feed := NewFeed(stub, lib, Opts{})

		out := feed.Save(ctx, models.Classify(nightdrive))
		if !out.OK() || out.Message != `"Nightdrive" saved to your collection!` {
			t.Errorf("unexpected outcome %+v", out)
		}
		want := []string{"POST /library/save", "GET /library", "GET /recommendations"}
		if got := stub.Calls(); !slices.Equal(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
		if saves := stub.Saves(); *saves[0].SongID != 7 || saves[0].FeedbackTags != nil {
			t.Errorf("unexpected save %+v", saves[0])
		}
	})

	t.Run("Save Suggestion By Artist And Title", func(t *testing.T) {
		stub := &tu.StubUndertone{}
		NewFeed(stub, nil, Opts{}).Save(ctx, models.Classify(suggestion))
		s := stub.Saves()[0]
		if s.SongID != nil || s.Artist != "Kavinsky" || s.Title != "Nightcall" {
			t.Errorf("unexpected save %+v", s)
		}
	})

	t.Run("Unauthorized Save Skips Refresh", func(t *testing.T) {
		stub := &tu.StubUndertone{SaveFunc: func(context.Context, models.SaveRequest) (*models.SaveResponse, error) {
			return nil, unauthorized()
		}}
		out := NewFeed(stub, NewLibrary(stub, Opts{}), Opts{}).Save(ctx, models.Classify(nightdrive))
		if out.Status != SaveAuthRequired || out.Message != LoginRequiredMessage {
			t.Errorf("unexpected outcome %+v", out)
		}
		if len(stub.Calls()) != 1 {
			t.Errorf("expected only the save call, got %v", stub.Calls())
		}
	})
}

// recordingServer answers every request with body and records query strings and bodies.
type recordingServer struct {
	mu      sync.Mutex
	queries []string
	bodies  []string
}

func newRecordingServer(t *testing.T, status int, body string) (*recordingServer, *services.UndertoneService) {
	t.Helper()
	rec := &recordingServer{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.queries = append(rec.queries, r.URL.Path+"?"+r.URL.RawQuery)
		rec.bodies = append(rec.bodies, strings.TrimSpace(string(data)))
		rec.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return rec, services.NewUndertoneService(services.UndertoneOpts{BaseURL: srv.URL})
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	scenario := func() *tu.StubUndertone {
		return &tu.StubUndertone{IntentFunc: func(_ context.Context, intent, mode string) (*models.IntentResult, error) {
			return &models.IntentResult{
				Songs:        []models.Song{nightdrive},
				SearchLogID:  ptr(int64(42)),
				ParsedIntent: models.ParsedIntent{Genres: []string{"synthwave"}, Keywords: []string{"chill", "night"}},
			}, nil
		}}
	}

	t.Run("Title Hidden Until First Search", func(t *testing.T) {
		s := NewSearch(&tu.StubUndertone{}, "", Opts{})
		if s.TitleVisible() || s.Title() != "" {
			t.Error("expected hidden title")
		}
		s.Explore(ctx)
		if !s.TitleVisible() || s.Title() != "Library Exploration" {
			t.Errorf("unexpected title %q", s.Title())
		}
		s.Objective(ctx, models.ObjectiveFilters{})
		if s.Title() != "Objective Results" {
			t.Errorf("unexpected title %q", s.Title())
		}
	})

	t.Run("Default Filters Send Empty Query", func(t *testing.T) {
		rec, api := newRecordingServer(t, http.StatusOK, `[]`)
		s := NewSearch(api, "", Opts{})

		state, err := s.Objective(ctx, models.ObjectiveFilters{Genre: "any", Tempo: "any", Loudness: "any", Popularity: "any"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.queries[0] != "/search/objective?" {
			t.Errorf("expected empty query, got %q", rec.queries[0])
		}
		if state.Status != Empty || state.Message != EmptySearchMessage {
			t.Errorf("unexpected state %+v", state)
		}
	})

	t.Run("Filters Only Non Default Keys", func(t *testing.T) {
		rec, api := newRecordingServer(t, http.StatusOK, `[]`)
		NewSearch(api, "", Opts{}).Objective(ctx, models.ObjectiveFilters{Genre: "any", Tempo: "Fast"})
		if rec.queries[0] != "/search/objective?tempo=fast" {
			t.Errorf("unexpected query %q", rec.queries[0])
		}
	})

	t.Run("Invalid Filter Sends Nothing", func(t *testing.T) {
		stub := &tu.StubUndertone{}
		_, err := NewSearch(stub, "", Opts{}).Objective(ctx, models.ObjectiveFilters{Tempo: "warp"})
		if !errors.Is(err, shared.ErrInvalidArgument) || len(stub.Calls()) != 0 {
			t.Errorf("expected local rejection, got %v %v", err, stub.Calls())
		}
	})

	t.Run("Empty Intent Sends Nothing", func(t *testing.T) {
		stub := &tu.StubUndertone{}
		_, err := NewSearch(stub, "", Opts{}).Intent(ctx, "   ")
		if !errors.Is(err, shared.ErrEmptyQuery) || len(stub.Calls()) != 0 {
			t.Errorf("expected local rejection, got %v %v", err, stub.Calls())
		}
	})

	t.Run("Mode", func(t *testing.T) {
		var got string
		stub := &tu.StubUndertone{IntentFunc: func(_ context.Context, _, mode string) (*models.IntentResult, error) {
			got = mode
			return &models.IntentResult{}, nil
		}}
		s := NewSearch(stub, "bogus", Opts{})
		if s.Mode() != models.ModeAll {
			t.Errorf("expected default mode, got %q", s.Mode())
		}
		if err := s.SetMode("loud"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		s.SetMode("Undertone")

		state, _ := s.Intent(ctx, "rainy day")
		if got != models.ModeUndertone {
			t.Errorf("expected undertone mode to be sent, got %q", got)
		}
		want := "No matches found for this intent in undertone mode. Try switching discovery modes or broadening your intent."
		if state.Status != Empty || state.Message != want {
			t.Errorf("unexpected state %+v", state)
		}
	})

	t.Run("Intent Example Scenario", func(t *testing.T) {
		stub := scenario()
		s := NewSearch(stub, models.ModeAll, Opts{})

		state, err := s.Intent(ctx, "chill evening drive")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(state.Session.FeedbackTags, []string{"synthwave", "chill", "night"}) {
			t.Errorf("unexpected tags %v", state.Session.FeedbackTags)
		}

		out := s.Save(ctx, state.Session, state.Results[0])
		if !out.OK() {
			t.Fatalf("unexpected outcome %+v", out)
		}
		save := stub.Saves()[0]
		if *save.SongID != 7 || *save.SearchLogID != 42 || !slices.Equal(save.FeedbackTags, []string{"synthwave", "chill", "night"}) {
			t.Errorf("unexpected save %+v", save)
		}
	})

	t.Run("Example Scenario Wire Body", func(t *testing.T) {
		rec, api := newRecordingServer(t, http.StatusOK, `{"message":"Song added to library"}`)
		sess := SearchSession{Kind: IntentSearch, SearchLogID: ptr(int64(42)), FeedbackTags: []string{"synthwave", "chill", "night"}}

		out := NewSearch(api, "", Opts{}).Save(ctx, sess, models.Classify(nightdrive))
		if out.Message != `"Nightdrive" saved to your collection!` {
			t.Errorf("unexpected message %q", out.Message)
		}
		want := `{"song_id":7,"search_log_id":42,"feedback_tags":["synthwave","chill","night"]}`
		if rec.bodies[0] != want {
			t.Errorf("expected %s, got %s", want, rec.bodies[0])
		}
	})

	t.Run("Tags Reset On Every Search", func(t *testing.T) {
		stub := scenario()
		s := NewSearch(stub, "", Opts{})
		first, _ := s.Intent(ctx, "chill evening drive")

		stub.IntentFunc = func(context.Context, string, string) (*models.IntentResult, error) {
			return &models.IntentResult{Songs: []models.Song{nightdrive}}, nil
		}
		second, _ := s.Intent(ctx, "something else")
		if len(second.Session.FeedbackTags) != 0 || second.Session.SearchLogID != nil {
			t.Errorf("expected fresh session, got %+v", second.Session)
		}
		if second.Session.Seq <= first.Session.Seq {
			t.Error("expected increasing sequence numbers")
		}

		stub.IntentFunc = func(context.Context, string, string) (*models.IntentResult, error) {
			return nil, shared.ErrAPIRequest
		}
		third, err := s.Intent(ctx, "again")
		if err == nil || third.Status != Failed || third.Message != SearchFailedMessage {
			t.Errorf("unexpected state %+v err %v", third, err)
		}
		if len(s.State().Session.FeedbackTags) != 0 {
			t.Error("expected failed search to clear tags")
		}

		s.Save(ctx, second.Session, second.Results[0])
		if save := stub.Saves()[0]; save.FeedbackTags != nil || save.SearchLogID != nil {
			t.Errorf("expected no feedback on save, got %+v", save)
		}
	})

	t.Run("Save Outcomes", func(t *testing.T) {
		tests := []struct {
			name    string
			err     error
			status  SaveStatus
			message string
		}{
			{"unauthorized", unauthorized(), SaveAuthRequired, "Please login to save songs!"},
			{"backend message", &services.APIError{Status: 400, Message: "Song already saved"}, SaveRejected, "Error: Song already saved"},
			{"no message", &services.APIError{Status: 500}, SaveRejected, "Error: Unknown error"},
			{"transport", shared.ErrAPIRequest, SaveFailed, "Save failed."},
		}

		for _, tt := range tests {
			for _, song := range []models.Song{nightdrive, suggestion} {
				t.Run(tt.name+"/"+models.Classify(song).Kind.String(), func(t *testing.T) {
					stub := &tu.StubUndertone{SaveFunc: func(context.Context, models.SaveRequest) (*models.SaveResponse, error) {
						return nil, tt.err
					}}
					out := NewSearch(stub, "", Opts{}).Save(ctx, SearchSession{}, models.Classify(song))
					if out.Status != tt.status || out.Message != tt.message {
						t.Errorf("expected %v %q, got %v %q", tt.status, tt.message, out.Status, out.Message)
					}
				})
			}
		}
	})

	t.Run("Stale Response Dropped", func(t *testing.T) {
		entered := make(chan struct{})
		release := make(chan struct{})
		stub := &tu.StubUndertone{IntentFunc: func(_ context.Context, intent, _ string) (*models.IntentResult, error) {
			if intent == "slow" {
				close(entered)
				<-release
				return &models.IntentResult{Songs: []models.Song{{ID: 1, Title: "Old"}}}, nil
			}
			return &models.IntentResult{Songs: []models.Song{{ID: 2, Title: "New"}}}, nil
		}}
		s := NewSearch(stub, "", Opts{})

		errc := make(chan error, 1)
		go func() {
			_, err := s.Intent(ctx, "slow")
			errc <- err
		}()
		<-entered

		if _, err := s.Intent(ctx, "fast"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		close(release)

		select {
		case err := <-errc:
			if !errors.Is(err, shared.ErrStaleResponse) {
				t.Errorf("expected ErrStaleResponse, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("slow search never returned")
		}
		if got := s.State().Results[0].Song.Title; got != "New" {
			t.Errorf("expected newer results to remain, got %q", got)
		}
	})
}

func TestImporter(t *testing.T) {
	ctx := context.Background()
	nightcall := models.ExternalTrack{Artist: "Kavinsky", Title: "Nightcall"}

	t.Run("Empty Query Sends Nothing", func(t *testing.T) {
		stub := &tu.StubUndertone{}
		if _, err := NewImporter(stub, Opts{}).Lookup(ctx, ""); !errors.Is(err, shared.ErrEmptyQuery) {
			t.Errorf("expected ErrEmptyQuery, got %v", err)
		}
		if len(stub.Calls()) != 0 {
			t.Error("expected no calls")
		}
	})

	t.Run("Lookup States", func(t *testing.T) {
		stub := &tu.StubUndertone{}
		imp := NewImporter(stub, Opts{})
		state, _ := imp.Lookup(ctx, "nothing")
		if state.Status != Empty || state.Message != EmptyExternalMessage {
			t.Errorf("unexpected state %+v", state)
		}

		stub.ExternalFunc = func(context.Context, string) ([]models.ExternalTrack, error) {
			return nil, shared.ErrAPIRequest
		}
		state, _ = imp.Lookup(ctx, "kavinsky")
		if state.Status != Failed || state.Message != ExternalFailedMessage {
			t.Errorf("unexpected state %+v", state)
		}
	})

	t.Run("Import Names The Song", func(t *testing.T) {
		out := NewImporter(&tu.StubUndertone{}, Opts{}).Import(ctx, nightcall)
		if !out.OK() || out.Message != `"Nightcall" imported to the catalog.` {
			t.Errorf("unexpected outcome %+v", out)
		}
	})

	t.Run("Import Notes Different Resolution", func(t *testing.T) {
		stub := &tu.StubUndertone{ImportFunc: func(context.Context, models.ImportRequest) (*models.Song, error) {
			return &models.Song{ID: 30, Artist: "M83", Title: "Midnight City"}, nil
		}}
		out := NewImporter(stub, Opts{}).Import(ctx, nightcall)
		if !strings.HasSuffix(out.Message, "(resolved to M83 - Midnight City)") {
			t.Errorf("expected resolution note, got %q", out.Message)
		}
	})

	t.Run("Import Failure Uses Backend Message", func(t *testing.T) {
		stub := &tu.StubUndertone{ImportFunc: func(context.Context, models.ImportRequest) (*models.Song, error) {
			return nil, &services.APIError{Status: 400, Message: "Missing artist"}
		}}
		out := NewImporter(stub, Opts{}).Import(ctx, nightcall)
		if out.Status != SaveRejected || out.Message != "Error: Missing artist" {
			t.Errorf("unexpected outcome %+v", out)
		}

		stub.ImportFunc = func(context.Context, models.ImportRequest) (*models.Song, error) {
			return nil, shared.ErrAPIRequest
		}
		if out := NewImporter(stub, Opts{}).Import(ctx, nightcall); out.Message != "Import failed." {
			t.Errorf("unexpected message %q", out.Message)
		}

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error":"Track not found on Last.fm"}`))
		}))
		defer srv.Close()

		api := services.NewUndertoneService(services.UndertoneOpts{BaseURL: srv.URL})
		out = NewImporter(api, Opts{}).Import(ctx, nightcall)
		if out.OK() || out.Song != nil || out.Message != "Error: Track not found on Last.fm" {
			t.Errorf("expected 200 error body to be rejected, got %+v", out)
		}
	})

	t.Run("Import Does Not Save", func(t *testing.T) {
		stub := &tu.StubUndertone{}
		NewImporter(stub, Opts{}).Import(ctx, nightcall)
		if stub.Count("POST /library/save") != 0 {
			t.Error("expected import to leave the library alone")
		}
	})

	t.Run("Import And Save", func(t *testing.T) {
		stub := &tu.StubUndertone{}
		out := NewImporter(stub, Opts{}).ImportAndSave(ctx, nightcall)
		if !out.OK() || out.Message != `"Nightcall" saved to your collection!` {
			t.Errorf("unexpected outcome %+v", out)
		}
		if s := stub.Saves()[0]; s.Artist != "Kavinsky" || s.Title != "Nightcall" || s.SongID != nil {
			t.Errorf("unexpected save %+v", s)
		}
	})
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	backend := server.NewBackend(server.BackendOpts{Logger: log.New(io.Discard)})
	srv := httptest.NewServer(backend.Handler())
	defer srv.Close()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create jar: %v", err)
	}
	api := services.NewUndertoneService(services.UndertoneOpts{BaseURL: srv.URL, Client: services.NewHTTPClient(jar, 5*time.Second)})

	updates := make(chan Update, 64)
	p := NewProfile(api, ProfileOpts{Opts: Opts{Updates: updates}, AutoLogin: true})

	t.Run("Open Without Session", func(t *testing.T) {
		state, err := p.Open(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if state.Session.LoggedIn || state.Library.Status != Idle {
			t.Errorf("expected only the session to resolve, got %+v", state)
		}
	})

	t.Run("Save From Search Requires Login", func(t *testing.T) {
		search, err := p.Search.Explore(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := p.Search.Save(ctx, search.Session, search.Results[0])
		if out.Status != SaveAuthRequired {
			t.Errorf("expected auth prompt, got %+v", out)
		}
	})

	t.Run("Register Loads Empty Regions", func(t *testing.T) {
		state, err := p.Register(ctx, creds)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !state.Session.LoggedIn || state.Session.Username != "ana" {
			t.Errorf("unexpected session %+v", state.Session)
		}
		if state.Library.Message != EmptyLibraryMessage || state.Feed.Message != EmptyFeedMessage {
			t.Errorf("unexpected regions %+v", state)
		}
	})

	t.Run("Save Rate Recommend", func(t *testing.T) {
		search, err := p.Search.Intent(ctx, "chill evening drive")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if search.Status != Ready {
			t.Fatalf("expected results, got %+v", search)
		}
		first := search.Results[0]
		if out := p.Search.Save(ctx, search.Session, first); !out.OK() {
			t.Fatalf("unexpected outcome %+v", out)
		}

		lib, err := p.Library.Load(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(lib.Cards) != 1 || lib.Cards[0].Stars != 0 || lib.Cards[0].Comment != "" {
			t.Fatalf("expected one unrated card, got %+v", lib.Cards)
		}

		id := lib.Cards[0].Song.ID
		if err := p.Library.SelectStars(id, 5); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := p.Library.SubmitRating(ctx, id); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Feed.State().Status != Ready {
			t.Errorf("expected recommendations after rating, got %+v", p.Feed.State())
		}
	})

	t.Run("Logout", func(t *testing.T) {
		if state := p.Session.Logout(ctx); state.LoggedIn {
			t.Error("expected logged out")
		}
		state, _ := p.Session.Resolve(ctx)
		if state.LoggedIn {
			t.Error("expected backend session to be gone")
		}
	})

	if len(updates) == 0 {
		t.Error("expected progress updates")
	}
}

func TestSequencer(t *testing.T) {
	var s Sequencer
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Next()
		}()
	}
	wg.Wait()
	if s.Latest() != 50 || !s.IsLatest(50) || s.IsLatest(49) {
		t.Errorf("unexpected latest %d", s.Latest())
	}
}

func TestMessages(t *testing.T) {
	title := `Don't Stop "Me"`
	tests := []struct {
		name, got, want string
	}{
		{"Saved", SavedMessage(title), `"Don't Stop "Me"" saved to your collection!`},
		{"Saved Untitled", SavedMessage(""), `"Song" saved to your collection!`},
		{"Imported", ImportedMessage(title), `"Don't Stop "Me"" imported to the catalog.`},
		{"Saving", saveUpdate(title).Message, `Saving "Don't Stop "Me""...`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, tt.got)
			}
		})
	}
}
