package server

import (
	"slices"
	"strings"
	"unicode"

	"github.com/desertthunder/undertone/internal/models"
)

// externalEntry is a third-party catalog track. Only artist and title are exposed
// by lookups; the metadata is used when it is imported.
type externalEntry struct {
	models.Song
}

var seedCatalog = []models.Song{
	{Title: "Blinding Lights", Artist: "The Weeknd", Genre: "Synthpop", Year: 2019, BPM: 171, DecibelPeak: -6.2, MainstreamScore: 95, Tags: []string{"synthwave", "night", "driving", "energetic"}},
	{Title: "Get Lucky", Artist: "Daft Punk", Genre: "House", Year: 2013, BPM: 116, DecibelPeak: -7.8, MainstreamScore: 90, Tags: []string{"disco", "groovy", "happy"}},
	{Title: "Dreams", Artist: "Fleetwood Mac", Genre: "Rock", Year: 1977, BPM: 120, DecibelPeak: -11.5, MainstreamScore: 88, Tags: []string{"classic", "melodic", "chill"}},
	{Title: "Humble", Artist: "Kendrick Lamar", Genre: "Trap", Year: 2017, BPM: 150, DecibelPeak: -5.9, MainstreamScore: 92, Tags: []string{"hip-hop", "heavy", "energetic"}},
	{Title: "The Less I Know The Better", Artist: "Tame Impala", Genre: "Psychedelic Rock", Year: 2015, BPM: 117, DecibelPeak: -9.1, MainstreamScore: 78, Tags: []string{"indie", "groovy", "melodic"}},
	{Title: "Nightdrive", Artist: "Kavinsky", Genre: "Synthwave", Year: 2010, BPM: 104, DecibelPeak: -10.4, MainstreamScore: 55, Tags: []string{"night", "driving", "retro", "chill"}},
	{Title: "Resonance", Artist: "Home", Genre: "Synthwave", Year: 2014, BPM: 86, DecibelPeak: -12.7, MainstreamScore: 64, Tags: []string{"chill", "atmospheric", "retro"}},
	{Title: "Weightless", Artist: "Marconi Union", Genre: "Ambient", Year: 2011, BPM: 60, DecibelPeak: -22.0, MainstreamScore: 40, Tags: []string{"calm", "atmospheric", "minimal", "sleep"}},
	{Title: "Svefn-g-englar", Artist: "Sigur Rós", Genre: "Post-Rock", Year: 1999, BPM: 66, DecibelPeak: -15.3, MainstreamScore: 48, Tags: []string{"atmospheric", "dreamy", "sad"}},
	{Title: "Teardrop", Artist: "Massive Attack", Genre: "Trip-Hop", Year: 1998, BPM: 77, DecibelPeak: -13.2, MainstreamScore: 70, Tags: []string{"dark", "atmospheric", "night"}},
	{Title: "Nuvole Bianche", Artist: "Ludovico Einaudi", Genre: "Classical", Year: 2004, BPM: 70, DecibelPeak: -18.9, MainstreamScore: 62, Tags: []string{"piano", "melodic", "calm"}},
	{Title: "Hours", Artist: "Tycho", Genre: "Chillwave", Year: 2011, BPM: 98, DecibelPeak: -11.0, MainstreamScore: 35, Tags: []string{"chill", "sunset", "driving"}},
	{Title: "Sleepless", Artist: "Flume", Genre: "Electronic", Year: 2012, BPM: 130, DecibelPeak: -8.3, MainstreamScore: 58, Tags: []string{"electronic", "energetic", "night"}},
	{Title: "Limit to Your Love", Artist: "James Blake", Genre: "Dubstep", Year: 2010, BPM: 66, DecibelPeak: -9.6, MainstreamScore: 52, Tags: []string{"minimal", "sad", "heavy"}},
	{Title: "Holocene", Artist: "Bon Iver", Genre: "Indie Folk", Year: 2011, BPM: 74, DecibelPeak: -16.1, MainstreamScore: 60, Tags: []string{"melodic", "calm", "sad"}},
	{Title: "So What", Artist: "Miles Davis", Genre: "Jazz", Year: 1959, BPM: 136, DecibelPeak: -17.4, MainstreamScore: 66, Tags: []string{"jazz", "cool", "night"}},
}

var externalCatalog = []externalEntry{
	{models.Song{Title: "Nightcall", Artist: "Kavinsky", Genre: "Synthwave", Year: 2010, BPM: 91, DecibelPeak: -9.8, MainstreamScore: 74, Tags: []string{"night", "driving", "retro"}}},
	{models.Song{Title: "Midnight City", Artist: "M83", Genre: "Synthpop", Year: 2011, BPM: 105, DecibelPeak: -7.1, MainstreamScore: 80, Tags: []string{"night", "retro", "energetic"}}},
	{models.Song{Title: "Sunset", Artist: "The Midnight", Genre: "Synthwave", Year: 2016, BPM: 100, DecibelPeak: -10.9, MainstreamScore: 45, Tags: []string{"chill", "retro", "sunset"}}},
	{models.Song{Title: "A Walk", Artist: "Tycho", Genre: "Chillwave", Year: 2011, BPM: 92, DecibelPeak: -12.4, MainstreamScore: 38, Tags: []string{"chill", "atmospheric"}}},
	{models.Song{Title: "Intro", Artist: "The xx", Genre: "Indie", Year: 2009, BPM: 100, DecibelPeak: -11.8, MainstreamScore: 72, Tags: []string{"minimal", "night", "atmospheric"}}},
	{models.Song{Title: "Roygbiv", Artist: "Boards of Canada", Genre: "Ambient", Year: 1998, BPM: 92, DecibelPeak: -14.6, MainstreamScore: 30, Tags: []string{"lofi", "retro", "dreamy"}}},
	{models.Song{Title: "Windowlicker", Artist: "Aphex Twin", Genre: "Electronic", Year: 1999, BPM: 125, DecibelPeak: -7.5, MainstreamScore: 50, Tags: []string{"electronic", "dark"}}},
	{models.Song{Title: "Archangel", Artist: "Burial", Genre: "Dubstep", Year: 2007, BPM: 139, DecibelPeak: -10.2, MainstreamScore: 42, Tags: []string{"dark", "night", "atmospheric"}}},
	{models.Song{Title: "Take Five", Artist: "Dave Brubeck", Genre: "Jazz", Year: 1959, BPM: 172, DecibelPeak: -16.0, MainstreamScore: 68, Tags: []string{"jazz", "cool"}}},
	{models.Song{Title: "Dreams", Artist: "Beyoncé", Genre: "R&B", Year: 2013, BPM: 96, DecibelPeak: -8.9, MainstreamScore: 85, Tags: []string{"melodic", "night"}}},
}

// genreTaxonomy maps sub-genres to their parent category.
var genreTaxonomy = map[string]string{
	"punk rock":        "Rock",
	"psychedelic rock": "Rock",
	"post-rock":        "Rock",
	"alternative rock": "Rock",
	"grunge":           "Rock",
	"metalcore":        "Metal",
	"techno":           "Electronic",
	"house":            "Electronic",
	"dubstep":          "Electronic",
	"ambient":          "Electronic",
	"synthwave":        "Electronic",
	"chillwave":        "Electronic",
	"trip-hop":         "Electronic",
	"synthpop":         "Pop",
	"k-pop":            "Pop",
	"trap":             "Hip-Hop",
	"r&b":              "Urban",
	"lo-fi":            "Chill",
	"indie folk":       "Folk",
}

// ParentGenre returns the parent category of genre, or genre itself.
func ParentGenre(genre string) string {
	if parent, ok := genreTaxonomy[strings.ToLower(genre)]; ok {
		return parent
	}
	return genre
}

// moodKeywords are the words intent parsing recognises besides genres.
var moodKeywords = []string{
	"slow", "sad", "screaming", "atmospheric", "energetic", "lofi", "melodic",
	"heavy", "dark", "happy", "minimal", "orchestral", "chill", "calm", "night",
	"driving", "retro", "dreamy", "groovy", "sunset", "piano", "cool", "sleep",
}

// keywordAliases fold inflections and synonyms onto a dictionary word.
var keywordAliases = map[string]string{
	"drive":     "driving",
	"nighttime": "night",
	"evening":   "night",
	"midnight":  "night",
	"chilled":   "chill",
	"relaxing":  "calm",
	"mellow":    "calm",
	"upbeat":    "energetic",
	"gloomy":    "dark",
	"lo-fi":     "lofi",
	"dream":     "dreamy",
}

// ParseIntent splits free text into known genres and mood keywords, each listed once
// in order of first appearance. Two-word genres ("post rock") are matched before single words.
func ParseIntent(text string, genres []string) models.ParsedIntent {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '&'
	})

	parsed := models.ParsedIntent{Genres: []string{}, Keywords: []string{}}
	isGenre := func(w string) bool { return slices.Contains(genres, w) }

	compound := func(a, b string) (string, bool) {
		for _, g := range []string{a + " " + b, a + "-" + b} {
			if isGenre(g) {
				return g, true
			}
		}
		return "", false
	}

	for i := 0; i < len(words); i++ {
		if i+1 < len(words) {
			if g, ok := compound(words[i], words[i+1]); ok {
				parsed.Genres = appendOnce(parsed.Genres, g)
				i++
				continue
			}
		}

		w := words[i]
		if isGenre(w) {
			parsed.Genres = appendOnce(parsed.Genres, w)
			continue
		}
		if alias, ok := keywordAliases[w]; ok {
			w = alias
		}
		if slices.Contains(moodKeywords, w) {
			parsed.Keywords = appendOnce(parsed.Keywords, w)
		}
	}
	return parsed
}

func appendOnce(list []string, v string) []string {
	if slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}
