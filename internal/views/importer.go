package views

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/undertone/internal/models"
	"github.com/desertthunder/undertone/internal/services"
	"github.com/desertthunder/undertone/internal/shared"
)

// MinImportSimilarity is the Jaro-Winkler score under which an import's
// resolved song is reported alongside the requested one.
const MinImportSimilarity = 0.85

// ImportState is the external lookup region.
type ImportState struct {
	Query   string
	Status  Status
	Message string
	Tracks  []models.ExternalTrack
}

// Importer searches the external catalog and imports tracks into the local one.
type Importer struct {
	api     services.Undertone
	logger  *log.Logger
	updates chan<- Update
	seq     Sequencer

	mu    sync.Mutex
	state ImportState
}

// NewImporter creates an import controller.
func NewImporter(api services.Undertone, opts Opts) *Importer {
	return &Importer{api: api, logger: opts.logger(), updates: opts.Updates}
}

// State returns a copy of the current region state.
func (i *Importer) State() ImportState {
	i.mu.Lock()
	defer i.mu.Unlock()
	st := i.state
	st.Tracks = slices.Clone(i.state.Tracks)
	return st
}

// Lookup queries GET /search/external. Older lookups that return after a newer
// one has been issued are dropped.
func (i *Importer) Lookup(ctx context.Context, query string) (ImportState, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return i.State(), fmt.Errorf("%w: search text is required", shared.ErrEmptyQuery)
	}

	seq := i.seq.Next()
	send(i.updates, phaseUpdate(LookupExternal, LoadingExternal))

	tracks, err := i.api.SearchExternal(ctx, query)
	st := ImportState{Query: query}
	switch {
	case err != nil:
		st.Status = Failed
		st.Message = failure(err, ExternalFailedMessage)
	case len(tracks) == 0:
		st.Status = Empty
		st.Message = EmptyExternalMessage
	default:
		st.Status = Ready
		st.Tracks = tracks
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.seq.IsLatest(seq) {
		return st, fmt.Errorf("%w: lookup #%d superseded by #%d", shared.ErrStaleResponse, seq, i.seq.Latest())
	}
	if err != nil {
		i.logger.Error("external lookup failed", "query", query, "error", err)
	}
	i.state = st
	return st, err
}

// ImportedMessage formats the import confirmation for title.
func ImportedMessage(title string) string {
	if title == "" {
		title = "Track"
	}
	return "\"" + title + "\" imported to the catalog."
}

// Import sends POST /song/import. The track is not added to the library.
func (i *Importer) Import(ctx context.Context, track models.ExternalTrack) SaveOutcome {
	if strings.TrimSpace(track.Artist) == "" || strings.TrimSpace(track.Title) == "" {
		err := fmt.Errorf("%w: artist and title are required", shared.ErrMissingArgument)
		return SaveOutcome{Status: SaveFailed, Message: "Import failed.", Err: err}
	}

	send(i.updates, phaseUpdate(ImportTrack, "Importing \""+track.Title+"\"..."))
	song, err := i.api.ImportSong(ctx, models.ImportRequest{Artist: track.Artist, Title: track.Title})

	title := track.Title
	if song != nil && song.Title != "" {
		title = song.Title
	}
	out := outcome(title, song, err, ImportedMessage, "Import failed.")
	if !out.OK() {
		i.logger.Warn("import failed", "track", track.Label(), "error", err)
		return out
	}

	if note := resolvedNote(track, song); note != "" {
		out.Message += " " + note
	}
	return out
}

// ImportAndSave imports and saves in one POST /library/save call.
func (i *Importer) ImportAndSave(ctx context.Context, track models.ExternalTrack) SaveOutcome {
	result := models.Classify(models.Song{Artist: track.Artist, Title: track.Title})
	req := result.SaveRequest(nil, nil)
	if err := req.Validate(); err != nil {
		return SaveOutcome{Status: SaveFailed, Message: SaveFailedMessage, Err: fmt.Errorf("%w: %w", shared.ErrMissingArgument, err)}
	}

	send(i.updates, saveUpdate(track.Title))
	resp, err := i.api.SaveToLibrary(ctx, req)
	out := saveOutcome(track.Title, resp, err)
	if !out.OK() {
		i.logger.Warn("import and save failed", "track", track.Label(), "error", err)
	}
	return out
}

// resolvedNote describes a resolved song that does not look like the request.
func resolvedNote(track models.ExternalTrack, song *models.Song) string {
	if song == nil {
		return ""
	}
	score := shared.TrackSimilarity(track.Artist, track.Title, song.Artist, song.Title)
	if score >= MinImportSimilarity {
		return ""
	}
	return fmt.Sprintf("(resolved to %s)", song.Label())
}
