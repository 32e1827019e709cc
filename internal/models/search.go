package models

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// AnyFilter is the sentinel filter value meaning "omit this key".
const AnyFilter = "any"

// Discovery modes for intent search.
const (
	ModeAll        = "all"
	ModeUndertone  = "undertone"
	ModeMainstream = "mainstream"
)

// Modes lists the discovery modes in display order.
var Modes = []string{ModeAll, ModeUndertone, ModeMainstream}

// Filter buckets for objective search.
var (
	TempoBuckets      = []string{"slow", "moderate", "fast"}
	LoudnessBuckets   = []string{"soft", "heavy"}
	PopularityBuckets = []string{"undertone", "mainstream"}
)

// ValidMode reports whether mode is a known discovery mode.
func ValidMode(mode string) bool {
	return slices.Contains(Modes, mode)
}

// ObjectiveFilters are the discrete filters of an objective search.
// Empty strings and [AnyFilter] both mean "no filter".
type ObjectiveFilters struct {
	Genre      string `json:"genre,omitempty"`
	Tempo      string `json:"tempo,omitempty"`
	Loudness   string `json:"loudness,omitempty"`
	Popularity string `json:"popularity,omitempty"`
}

// Validate checks bucket values, leaving genre free-form.
func (f ObjectiveFilters) Validate() error {
	check := func(key, v string, allowed []string) error {
		if isAny(v) || slices.Contains(allowed, strings.ToLower(strings.TrimSpace(v))) {
			return nil
		}
		return fmt.Errorf("%s must be one of %s or %s, got %q", key, strings.Join(allowed, ", "), AnyFilter, v)
	}
	if err := check("tempo", f.Tempo, TempoBuckets); err != nil {
		return err
	}
	if err := check("loudness", f.Loudness, LoudnessBuckets); err != nil {
		return err
	}
	return check("popularity", f.Popularity, PopularityBuckets)
}

// Query encodes only the non-default filters. All-default filters yield an empty query.
func (f ObjectiveFilters) Query() url.Values {
	q := url.Values{}
	add := func(key, v string) {
		if !isAny(v) {
			q.Set(key, strings.TrimSpace(v))
		}
	}
	add("genre", f.Genre)
	add("tempo", strings.ToLower(f.Tempo))
	add("loudness", strings.ToLower(f.Loudness))
	add("popularity", strings.ToLower(f.Popularity))
	return q
}

// IsDefault reports whether no filter is set.
func (f ObjectiveFilters) IsDefault() bool {
	return len(f.Query()) == 0
}

func isAny(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, AnyFilter) || strings.EqualFold(v, "all")
}

// ParsedIntent is the backend's interpretation of an intent query.
type ParsedIntent struct {
	Genres   []string `json:"genres"`
	Keywords []string `json:"keywords"`
}

// FeedbackTags returns genres followed by keywords.
func (p ParsedIntent) FeedbackTags() []string {
	tags := make([]string, 0, len(p.Genres)+len(p.Keywords))
	tags = append(tags, p.Genres...)
	return append(tags, p.Keywords...)
}

// IntentResult is the body of GET /search/intent.
type IntentResult struct {
	Songs        []Song       `json:"songs"`
	SearchLogID  *int64       `json:"search_log_id"`
	ParsedIntent ParsedIntent `json:"parsed_intent"`
}

// ResultKind discriminates [Result].
type ResultKind int

const (
	// CatalogMatch is a song with a catalog id, saved by id.
	CatalogMatch ResultKind = iota
	// Suggestion is a synthesized song, saved by artist and title.
	Suggestion
)

func (k ResultKind) String() string {
	switch k {
	case CatalogMatch:
		return "catalog"
	case Suggestion:
		return "suggestion"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k ResultKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Result is a song resolved once into its save variant.
type Result struct {
	Kind ResultKind `json:"kind"`
	Song Song       `json:"song"`
}

// Classify resolves song into a [Result]. AI recommendations and id-less songs are suggestions.
func Classify(song Song) Result {
	if song.InCatalog() {
		return Result{Kind: CatalogMatch, Song: song}
	}
	return Result{Kind: Suggestion, Song: song}
}

// ClassifyAll classifies songs, keeping order.
func ClassifyAll(songs []Song) []Result {
	results := make([]Result, len(songs))
	for i, s := range songs {
		results[i] = Classify(s)
	}
	return results
}

// SaveRequest builds the /library/save body for r, attaching intent feedback when present.
func (r Result) SaveRequest(searchLogID *int64, feedbackTags []string) SaveRequest {
	req := SaveRequest{SearchLogID: searchLogID}
	if len(feedbackTags) > 0 {
		req.FeedbackTags = slices.Clone(feedbackTags)
	}
	switch r.Kind {
	case CatalogMatch:
		id := r.Song.ID
		req.SongID = &id
	default:
		req.Artist = r.Song.Artist
		req.Title = r.Song.Title
	}
	return req
}

// SaveRequest is the body of POST /library/save: either a song id or an artist/title pair.
type SaveRequest struct {
	SongID       *int64   `json:"song_id,omitempty"`
	SearchLogID  *int64   `json:"search_log_id,omitempty"`
	FeedbackTags []string `json:"feedback_tags,omitempty"`
	Artist       string   `json:"artist,omitempty"`
	Title        string   `json:"title,omitempty"`
}

// Validate checks that the request identifies a song.
func (s SaveRequest) Validate() error {
	if s.SongID != nil && *s.SongID > 0 {
		return nil
	}
	if strings.TrimSpace(s.Artist) != "" && strings.TrimSpace(s.Title) != "" {
		return nil
	}
	return fmt.Errorf("save request needs song_id or artist and title")
}

// SaveResponse is the body of POST /library/save: a message, the saved song, or both.
type SaveResponse struct {
	Message string `json:"message,omitempty"`
	Song    *Song  `json:"song,omitempty"`
}
