package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/undertone/internal/formatter"
	"github.com/desertthunder/undertone/internal/models"
	"github.com/desertthunder/undertone/internal/views"
)

var (
	_ list.Item = cardItem{}
	_ list.Item = resultItem{}
	_ list.Item = trackItem{}
)

// cardItem wraps [views.Card] to implement [list.Item].
type cardItem struct {
	card views.Card
}

func (i cardItem) FilterValue() string { return i.card.Song.Label() }
func (i cardItem) Title() string {
	return fmt.Sprintf("%s %s", formatter.Stars(i.card.Stars), i.card.Song.Title)
}
func (i cardItem) Description() string {
	desc := fmt.Sprintf("%s • %s", i.card.Song.Artist, formatter.MetaLine(i.card.Song))
	if i.card.Comment != "" {
		desc = fmt.Sprintf("%s • \"%s\"", desc, i.card.Comment)
	}
	return desc
}

// resultItem wraps [models.Result] to implement [list.Item].
type resultItem struct {
	result models.Result
}

func (i resultItem) FilterValue() string { return i.result.Song.Label() }
func (i resultItem) Title() string {
	return fmt.Sprintf("%s  %s", i.result.Song.Title, styles.badge.Render(formatter.Badge(i.result.Song)))
}
func (i resultItem) Description() string {
	return fmt.Sprintf("%s • %s • %s", i.result.Song.Artist, formatter.MetaLine(i.result.Song), strings.Join(formatter.Tags(i.result.Song), " "))
}

// trackItem wraps [models.ExternalTrack] to implement [list.Item].
type trackItem struct {
	track models.ExternalTrack
}

func (i trackItem) FilterValue() string { return i.track.Label() }
func (i trackItem) Title() string       { return i.track.Title }
func (i trackItem) Description() string { return i.track.Artist }

func cardItems(cards []views.Card) []list.Item {
	items := make([]list.Item, len(cards))
	for i, c := range cards {
		items[i] = cardItem{card: c}
	}
	return items
}

func resultItems(results []models.Result) []list.Item {
	items := make([]list.Item, len(results))
	for i, r := range results {
		items[i] = resultItem{result: r}
	}
	return items
}

func trackItems(tracks []models.ExternalTrack) []list.Item {
	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		items[i] = trackItem{track: t}
	}
	return items
}

func newList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	return l
}
