package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/desertthunder/undertone/internal/models"
	"github.com/desertthunder/undertone/internal/views"
)

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case AuthView:
		body = m.renderAuth()
	case LibraryView:
		body = m.renderLibrary()
	case FeedView:
		body = m.renderFeed()
	case SearchView:
		body = m.renderSearch()
	case ImportView:
		body = m.renderImport()
	}

	return strings.Join([]string{m.renderHeader(), body, m.renderFooter()}, "\n\n")
}

func (m *Model) renderHeader() string {
	tabs := make([]string, 0, 4)
	for _, v := range m.tabs() {
		if v == m.view {
			tabs = append(tabs, styles.active.Render(v.String()))
		} else {
			tabs = append(tabs, styles.tab.Render(v.String()))
		}
	}

	who := styles.muted.Render("not logged in")
	if m.session.LoggedIn {
		who = styles.ok.Render("● " + m.session.Username)
	}
	return fmt.Sprintf("%s  %s\n%s", styles.badge.Render("UNDERTONE"), who, strings.Join(tabs, " "))
}

func (m *Model) renderFooter() string {
	var line string
	switch {
	case m.loading != "":
		line = fmt.Sprintf("%s %s", m.spinner.View(), m.loading)
	case m.status != "" && m.statusErr:
		line = styles.err.Render(m.status)
	case m.status != "":
		line = styles.ok.Render(m.status)
	}
	return fmt.Sprintf("%s\n%s", line, m.help.ShortHelpView(m.helpKeys()))
}

func (m *Model) helpKeys() []key.Binding {
	if m.typing {
		return []key.Binding{m.keys.enter, m.keys.back}
	}

	keys := []key.Binding{m.keys.next}
	switch m.view {
	case AuthView:
		keys = append(keys, m.keys.focus)
	case LibraryView:
		keys = append(keys, m.keys.stars, m.keys.comment, key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "rate")), m.keys.reload)
	case FeedView:
		keys = append(keys, m.keys.save, m.keys.reload)
	case SearchView:
		keys = append(keys, m.keys.focus, m.keys.explore, m.keys.mode, m.keys.filters, m.keys.objective, m.keys.save)
	case ImportView:
		keys = append(keys, m.keys.focus, m.keys.importer, key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "import & save")))
	}
	if m.session.LoggedIn {
		keys = append(keys, m.keys.logout)
	}
	return append(keys, m.keys.quit)
}

func (m *Model) renderAuth() string {
	title := styles.title.Render("Log in or create an account")
	form := fmt.Sprintf("%s\n%s", m.username.View(), m.password.View())
	hint := styles.help.Render("enter to log in • ctrl+r to register • ↑/↓ to switch fields")
	return fmt.Sprintf("%s\n%s\n\n%s", title, form, hint)
}

// region renders a list, or the region's message when it has nothing to list.
func region(status views.Status, message, list string) string {
	switch status {
	case views.Ready:
		return list
	case views.Failed:
		return styles.err.Render(message)
	case views.Empty:
		return styles.warn.Render(message)
	default:
		return ""
	}
}

func (m *Model) renderLibrary() string {
	out := region(m.libState.Status, m.libState.Message, m.library.View())
	if m.typing {
		out += "\n\n" + m.comment.View()
	}
	return out
}

func (m *Model) renderFeed() string {
	return region(m.feedState.Status, m.feedState.Message, m.feed.View())
}

func (m *Model) renderSearch() string {
	var b strings.Builder

	b.WriteString(m.intent.View())
	b.WriteString("\n")
	b.WriteString(m.renderModes())
	b.WriteString("\n")
	b.WriteString(styles.muted.Render(fmt.Sprintf("tempo: %s • loudness: %s • popularity: %s",
		m.filters.Tempo, m.filters.Loudness, m.filters.Popularity)))

	if m.profile.Search.TitleVisible() {
		b.WriteString("\n\n")
		st := m.searchState
		if st.Status != views.Ready {
			b.WriteString(styles.title.Render(st.Session.Kind.Title()))
			b.WriteString("\n")
		}
		b.WriteString(region(st.Status, st.Message, m.results.View()))
		if len(st.Session.FeedbackTags) > 0 {
			b.WriteString("\n")
			b.WriteString(styles.help.Render("understood as: " + strings.Join(st.Session.FeedbackTags, ", ")))
		}
	}
	return b.String()
}

func (m *Model) renderModes() string {
	current := m.profile.Search.Mode()
	chips := make([]string, len(models.Modes))
	for i, mode := range models.Modes {
		if mode == current {
			chips[i] = styles.active.Render(mode)
		} else {
			chips[i] = styles.tab.Render(mode)
		}
	}
	return "mode: " + strings.Join(chips, " ")
}

func (m *Model) renderImport() string {
	out := m.query.View()
	if m.importState.Query != "" {
		out += "\n\n" + region(m.importState.Status, m.importState.Message, m.tracks.View())
	}
	return out
}
