package models

import "strings"

// MainstreamThreshold is the mainstream_score above which a song is badged MAINSTREAM.
const MainstreamThreshold = 70

// Song represents a catalog entry.
//
// Recommendation responses add MatchScore, and AIRecommendation marks a suggestion
// synthesized outside the catalog (ID is zero until it has been imported).
type Song struct {
	ID               int64    `json:"id"`
	Title            string   `json:"title"`
	Artist           string   `json:"artist"`
	Genre            string   `json:"genre"`
	Year             int      `json:"year"`
	BPM              int      `json:"bpm"`
	DecibelPeak      float64  `json:"decibel_peak"`
	MainstreamScore  int      `json:"mainstream_score"`
	Tags             []string `json:"tags"`
	MatchScore       float64  `json:"match_score,omitempty"`
	AIRecommendation bool     `json:"ai_recommendation,omitempty"`
}

// InCatalog reports whether the song has a catalog row.
func (s Song) InCatalog() bool {
	return s.ID > 0 && !s.AIRecommendation
}

// Mainstream reports whether the song's popularity crosses [MainstreamThreshold].
func (s Song) Mainstream() bool {
	return s.MainstreamScore > MainstreamThreshold
}

// Label returns "Artist - Title".
func (s Song) Label() string {
	return s.Artist + " - " + s.Title
}

// CleanTags returns the non-blank tags, trimmed.
func (s Song) CleanTags() []string {
	tags := make([]string, 0, len(s.Tags))
	for _, t := range s.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Annotation is a user's rating (1..5) and comment for a song. The zero value means unrated.
type Annotation struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Rated reports whether the annotation carries a star rating.
func (a Annotation) Rated() bool {
	return a.Rating >= 1 && a.Rating <= 5
}

// LibraryEntry is a saved song with the user's annotation, as returned by GET /library.
type LibraryEntry struct {
	Song
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Annotation returns the entry's annotation, clamping out-of-range ratings to unrated.
func (e LibraryEntry) Annotation() Annotation {
	a := Annotation{Rating: e.Rating, Comment: e.Comment}
	if !a.Rated() {
		a.Rating = 0
	}
	return a
}

// RateRequest is the body of POST /song/rate.
type RateRequest struct {
	SongID  int64  `json:"song_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ExternalTrack is a third-party lookup result. It has no catalog id.
type ExternalTrack struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
}

// Label returns "Artist - Title".
func (t ExternalTrack) Label() string {
	return t.Artist + " - " + t.Title
}

// ImportRequest is the body of POST /song/import.
type ImportRequest struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
}
