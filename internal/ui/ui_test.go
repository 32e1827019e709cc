package ui

import (
	"context"
	"net/http"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/undertone/internal/models"
	"github.com/desertthunder/undertone/internal/services"
	"github.com/desertthunder/undertone/internal/shared"
	tu "github.com/desertthunder/undertone/internal/testing"
	"github.com/desertthunder/undertone/internal/views"
)

func loggedIn(stub *tu.StubUndertone) {
	stub.MeFunc = func(context.Context) (*models.Session, error) {
		return &models.Session{LoggedIn: true, Username: "ana"}, nil
	}
}

func newTestModel(t *testing.T, stub *tu.StubUndertone) *Model {
	t.Helper()
	m := NewModel(context.Background(), views.NewProfile(stub, views.ProfileOpts{}), nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	run(t, m, m.open())
	return m
}

// run executes cmd synchronously and feeds its message back into m.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	m.Update(cmd())
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel(t *testing.T) {
	t.Run("Logged Out Opens Auth View", func(t *testing.T) {
		m := newTestModel(t, &tu.StubUndertone{})
		if m.view != AuthView || !m.typing {
			t.Errorf("expected focused auth form, got view %v typing %v", m.view, m.typing)
		}
		if !strings.Contains(m.View(), "Log in or create an account") {
			t.Error("expected auth form to render")
		}
	})

	t.Run("Logged In Opens Library", func(t *testing.T) {
		stub := &tu.StubUndertone{}
		loggedIn(stub)
		m := newTestModel(t, stub)

		if m.view != LibraryView {
			t.Fatalf("expected library view, got %v", m.view)
		}
		if !strings.Contains(m.View(), views.EmptyLibraryMessage) {
			t.Errorf("expected empty library message, got:\n%s", m.View())
		}
	})

	t.Run("Stars Are Local Until Enter", func(t *testing.T) {
		stub := &tu.StubUndertone{
			LibraryFunc: func(context.Context) ([]models.LibraryEntry, error) {
				return []models.LibraryEntry{{Song: models.Song{ID: 7, Title: "Nightdrive", Artist: "Kavinsky"}}}, nil
			},
		}
		loggedIn(stub)
		m := newTestModel(t, stub)

		m.Update(keyPress("4"))
		if got := m.profile.Library.Cards()[0].Stars; got != 4 {
			t.Errorf("expected 4 stars selected, got %d", got)
		}
		if stub.Count("POST /song/rate") != 0 {
			t.Error("expected no rating call before enter")
		}

		_, cmd := m.Update(keyPress("enter"))
		run(t, m, cmd)
		if stub.Count("POST /song/rate") != 1 || stub.Count("GET /recommendations") != 2 {
			t.Errorf("expected one rating and one extra feed load, got %v", stub.Calls())
		}
		if m.statusErr {
			t.Errorf("unexpected error status %q", m.status)
		}
	})

	t.Run("Enter Without Stars Prompts", func(t *testing.T) {
		stub := &tu.StubUndertone{
			LibraryFunc: func(context.Context) ([]models.LibraryEntry, error) {
				return []models.LibraryEntry{{Song: models.Song{ID: 7, Title: "Nightdrive"}}}, nil
			},
		}
		loggedIn(stub)
		m := newTestModel(t, stub)

		_, cmd := m.Update(keyPress("enter"))
		run(t, m, cmd)
		if m.status != views.NoRatingMessage || !m.statusErr {
			t.Errorf("expected rating prompt, got %q", m.status)
		}
		if stub.Count("POST /song/rate") != 0 {
			t.Error("expected no rating call")
		}
	})

	t.Run("Unauthorized Save Routes To Auth", func(t *testing.T) {
		stub := &tu.StubUndertone{
			ExploreFunc: func(context.Context) ([]models.Song, error) {
				return []models.Song{{ID: 7, Title: "Nightdrive", Artist: "Kavinsky"}}, nil
			},
			SaveFunc: func(context.Context, models.SaveRequest) (*models.SaveResponse, error) {
				return nil, &services.APIError{Status: http.StatusUnauthorized}
			},
		}
		m := newTestModel(t, stub)
		m.blur()
		m.Update(keyPress("tab"))
		if m.view != SearchView {
			t.Fatalf("expected search view, got %v", m.view)
		}

		_, cmd := m.Update(keyPress("e"))
		run(t, m, cmd)
		if !strings.Contains(m.View(), "Library Exploration") {
			t.Error("expected results title after explore")
		}

		_, cmd = m.Update(keyPress("s"))
		run(t, m, cmd)
		if m.view != AuthView || m.status != views.LoginRequiredMessage {
			t.Errorf("expected auth view with prompt, got %v %q", m.view, m.status)
		}
	})

	t.Run("Stale Search Ignored", func(t *testing.T) {
		m := newTestModel(t, &tu.StubUndertone{})
		m.searchState = views.SearchState{Status: views.Ready, Message: "current"}

		m.Update(searchedMsg(views.SearchState{Status: views.Empty, Message: "old"}, shared.ErrStaleResponse))
		if m.searchState.Message != "current" {
			t.Error("expected stale response to be dropped")
		}
	})

	t.Run("Mode And Filters", func(t *testing.T) {
		m := newTestModel(t, &tu.StubUndertone{})
		m.blur()
		m.view = SearchView

		m.Update(keyPress("m"))
		if m.profile.Search.Mode() != models.ModeUndertone {
			t.Errorf("expected undertone mode, got %s", m.profile.Search.Mode())
		}
		m.Update(keyPress("t"))
		m.Update(keyPress("t"))
		if m.filters.Tempo != "moderate" {
			t.Errorf("expected moderate tempo, got %s", m.filters.Tempo)
		}
	})
}

func TestFeedReload(t *testing.T) {
	t.Run("Keeps Status", func(t *testing.T) {
		calls := 0
		stub := &tu.StubUndertone{
			RecommendationsFunc: func(context.Context) ([]models.Song, error) {
				calls++
				if calls == 1 {
					return nil, nil
				}
				return []models.Song{{ID: 7, Title: "Nightdrive", Artist: "Kavinsky"}}, nil
			},
		}
		loggedIn(stub)
		m := newTestModel(t, stub)
		m.Update(keyPress("tab"))
		if m.view != FeedView {
			t.Fatalf("expected feed view, got %v", m.view)
		}

		_, cmd := m.Update(keyPress("r"))
		run(t, m, cmd)
		if m.status != "Logged in as ana" || m.statusErr {
			t.Errorf("expected status to survive reload, got %q", m.status)
		}
		if len(m.feed.Items()) != 1 {
			t.Errorf("expected one recommendation, got %d", len(m.feed.Items()))
		}
	})

	t.Run("Failure Shows Message", func(t *testing.T) {
		stub := &tu.StubUndertone{}
		loggedIn(stub)
		m := newTestModel(t, stub)
		m.Update(keyPress("tab"))

		stub.RecommendationsFunc = func(context.Context) ([]models.Song, error) {
			return nil, &services.APIError{Status: http.StatusServiceUnavailable}
		}
		_, cmd := m.Update(keyPress("r"))
		run(t, m, cmd)
		if !m.statusErr || m.status == "" {
			t.Errorf("expected error status, got %q", m.status)
		}
	})
}

func TestCycle(t *testing.T) {
	opts := []string{"soft", "heavy"}
	got := []string{models.AnyFilter}
	for range 3 {
		got = append(got, cycle(got[len(got)-1], opts))
	}
	if strings.Join(got, ",") != "any,soft,heavy,any" {
		t.Errorf("unexpected cycle %v", got)
	}
}
