package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	next      key.Binding
	prev      key.Binding
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	back      key.Binding
	focus     key.Binding
	stars     key.Binding
	comment   key.Binding
	save      key.Binding
	reload    key.Binding
	explore   key.Binding
	mode      key.Binding
	filters   key.Binding
	objective key.Binding
	importer  key.Binding
	register  key.Binding
	logout    key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		next:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		prev:      key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev view")),
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		focus:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "type")),
		stars:     key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "stars")),
		comment:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "comment")),
		save:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		explore:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "explore")),
		mode:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mode")),
		filters:   key.NewBinding(key.WithKeys("t", "l", "p"), key.WithHelp("t/l/p", "tempo/loudness/popularity")),
		objective: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "filter")),
		importer:  key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "import")),
		register:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "register")),
		logout:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "logout")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.next, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.next, k.prev, k.up, k.down, k.enter, k.back},
		{k.stars, k.comment, k.save, k.reload},
		{k.focus, k.explore, k.mode, k.filters, k.objective, k.importer},
		{k.register, k.logout, k.quit},
	}
}
