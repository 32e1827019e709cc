package server

import (
	"cmp"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/desertthunder/undertone/internal/models"
	"github.com/desertthunder/undertone/internal/shared"
	"golang.org/x/crypto/bcrypt"
)

// Classification thresholds shared by objective search and recommendations.
const (
	FastTempoBPM  = 120
	SlowTempoBPM  = 90
	HeavyPeakDB   = -10.0
	maxSuggestion = 10
)

var (
	errUserExists   = errors.New("Username already exists")
	errBadLogin     = errors.New("Invalid username or password")
	errNotInLibrary = errors.New("Song is not in your library")
)

type user struct {
	name     string
	hash     []byte
	library  map[int64]*models.Annotation
	saveSeq  []int64
	feedback map[string]int
}

type searchLog struct {
	id       int64
	username string
	intent   string
	mode     string
	tags     []string
	savedIDs []int64
}

// Store is the backend's in-memory state: catalog, accounts, sessions and search logs.
type Store struct {
	mu       sync.RWMutex
	songs    []models.Song
	nextSong int64
	external []externalEntry
	users    map[string]*user
	sessions map[string]string
	logs     map[int64]*searchLog
	nextLog  int64
}

// NewStore creates a store seeded with the demo catalog.
func NewStore() *Store {
	s := &Store{
		users:    make(map[string]*user),
		sessions: make(map[string]string),
		logs:     make(map[int64]*searchLog),
		external: slices.Clone(externalCatalog),
	}
	for _, song := range seedCatalog {
		s.addSong(song)
	}
	return s
}

func (s *Store) addSong(song models.Song) models.Song {
	s.nextSong++
	song.ID = s.nextSong
	song.Tags = slices.Clone(song.Tags)
	s.songs = append(s.songs, song)
	return song
}

func (s *Store) songByID(id int64) (models.Song, bool) {
	for _, song := range s.songs {
		if song.ID == id {
			return song, true
		}
	}
	return models.Song{}, false
}

// Register creates an account.
func (s *Store) Register(username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(username)
	if _, ok := s.users[key]; ok {
		return errUserExists
	}
	s.users[key] = &user{
		name:     username,
		hash:     hash,
		library:  make(map[int64]*models.Annotation),
		feedback: make(map[string]int),
	}
	return nil
}

// Login checks credentials and opens a session, returning its token.
func (s *Store) Login(username, password string) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[strings.ToLower(username)]
	if !ok || bcrypt.CompareHashAndPassword(u.hash, []byte(password)) != nil {
		return "", "", errBadLogin
	}
	token := shared.GenerateID()
	s.sessions[token] = strings.ToLower(username)
	return token, u.name, nil
}

// Logout drops a session token. Unknown tokens are ignored.
func (s *Store) Logout(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// Username resolves a session token.
func (s *Store) Username(token string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.sessions[token]
	if !ok {
		return "", false
	}
	return s.users[key].name, true
}

func (s *Store) user(username string) *user {
	return s.users[strings.ToLower(username)]
}

// Library lists a user's saved songs in save order.
func (s *Store) Library(username string) []models.LibraryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u := s.user(username)
	entries := make([]models.LibraryEntry, 0, len(u.saveSeq))
	for _, id := range u.saveSeq {
		song, ok := s.songByID(id)
		if !ok {
			continue
		}
		a := u.library[id]
		entries = append(entries, models.LibraryEntry{Song: song, Rating: a.Rating, Comment: a.Comment})
	}
	return entries
}

// Rate upserts the annotation of a song already in the user's library.
func (s *Store) Rate(username string, req models.RateRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.user(username).library[req.SongID]
	if !ok {
		return errNotInLibrary
	}
	a.Rating = req.Rating
	a.Comment = req.Comment
	return nil
}

// Save adds a song to the library, importing by artist/title first when no id is given.
// It reports whether the song was newly added.
func (s *Store) Save(username string, req models.SaveRequest) (models.Song, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var song models.Song
	if req.SongID != nil {
		found, ok := s.songByID(*req.SongID)
		if !ok {
			return models.Song{}, false, shared.ErrSongNotFound
		}
		song = found
	} else {
		song = s.importLocked(req.Artist, req.Title)
	}

	u := s.user(username)
	if req.SearchLogID != nil {
		if l, ok := s.logs[*req.SearchLogID]; ok && strings.EqualFold(l.username, username) {
			l.savedIDs = append(l.savedIDs, song.ID)
		}
	}
	for _, tag := range req.FeedbackTags {
		u.feedback[strings.ToLower(tag)]++
	}

	if _, ok := u.library[song.ID]; ok {
		return song, false, nil
	}
	u.library[song.ID] = &models.Annotation{}
	u.saveSeq = append(u.saveSeq, song.ID)
	return song, true, nil
}

// Import resolves an external track to a catalog song, creating it when missing.
func (s *Store) Import(artist, title string) models.Song {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.importLocked(artist, title)
}

func (s *Store) importLocked(artist, title string) models.Song {
	key := shared.NormalizeTrackKey(title, artist)
	for _, song := range s.songs {
		if shared.NormalizeTrackKey(song.Title, song.Artist) == key {
			return song
		}
	}

	for _, e := range s.external {
		if shared.NormalizeTrackKey(e.Title, e.Artist) == key {
			return s.addSong(e.Song)
		}
	}
	return s.addSong(models.Song{Artist: strings.TrimSpace(artist), Title: strings.TrimSpace(title), Genre: "Unknown", DecibelPeak: -14})
}

// Explore returns the whole catalog.
func (s *Store) Explore() []models.Song {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.songs)
}

// Objective filters the catalog. Unknown keys are ignored.
func (s *Store) Objective(f models.ObjectiveFilters) []models.Song {
	q := f.Query()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Song, 0)
	for _, song := range s.songs {
		if g := q.Get("genre"); g != "" && !strings.EqualFold(song.Genre, g) && !strings.EqualFold(ParentGenre(song.Genre), g) {
			continue
		}
		if t := q.Get("tempo"); t != "" && TempoBucket(song.BPM) != t {
			continue
		}
		if l := q.Get("loudness"); l != "" && LoudnessBucket(song.DecibelPeak) != l {
			continue
		}
		if p := q.Get("popularity"); p != "" && PopularityBucket(song.MainstreamScore) != p {
			continue
		}
		out = append(out, song)
	}
	return out
}

// Intent parses text, matches catalog songs and opens a search log.
func (s *Store) Intent(username, text, mode string) models.IntentResult {
	parsed := ParseIntent(text, s.genres())

	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[string]bool)
	for _, t := range parsed.FeedbackTags() {
		wanted[t] = true
	}

	type scored struct {
		song  models.Song
		score float64
	}
	var hits []scored
	for _, song := range s.songs {
		if !modeAllows(mode, song) {
			continue
		}
		score := 0.0
		if wanted[strings.ToLower(song.Genre)] || wanted[strings.ToLower(ParentGenre(song.Genre))] {
			score += 2
		}
		for _, tag := range song.Tags {
			if wanted[strings.ToLower(tag)] {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, scored{song, score})
		}
	}
	slices.SortStableFunc(hits, func(a, b scored) int { return cmp.Compare(b.score, a.score) })

	songs := make([]models.Song, len(hits))
	for i, h := range hits {
		songs[i] = h.song
		songs[i].MatchScore = h.score
	}

	s.nextLog++
	id := s.nextLog
	s.logs[id] = &searchLog{id: id, username: username, intent: text, mode: mode, tags: parsed.FeedbackTags()}

	return models.IntentResult{Songs: songs, SearchLogID: &id, ParsedIntent: parsed}
}

// External searches the third-party catalog stand-in by artist or title substring.
func (s *Store) External(query string) []models.ExternalTrack {
	q := strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ExternalTrack, 0)
	for _, e := range s.external {
		if strings.Contains(strings.ToLower(e.Artist), q) || strings.Contains(strings.ToLower(e.Title), q) {
			out = append(out, models.ExternalTrack{Artist: e.Artist, Title: e.Title})
		}
	}
	return out
}

// Recommendations ranks unsaved catalog songs by affinity with the user's rated songs
// and appends suggestions from the external catalog. Users with no ratings get nothing.
func (s *Store) Recommendations(username string) []models.Song {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u := s.user(username)
	weights := make(map[string]float64)
	var mainstream, total float64
	for id, a := range u.library {
		if !a.Rated() {
			continue
		}
		song, ok := s.songByID(id)
		if !ok {
			continue
		}
		w := float64(a.Rating - 2)
		weights[strings.ToLower(song.Genre)] += w
		for _, tag := range song.Tags {
			weights[strings.ToLower(tag)] += w / 2
		}
		if song.Mainstream() {
			mainstream += w
		}
		total += max(w, 0)
	}
	if total == 0 {
		return []models.Song{}
	}
	for tag, n := range u.feedback {
		weights[tag] += float64(n) / 2
	}

	score := func(song models.Song) float64 {
		v := weights[strings.ToLower(song.Genre)]
		for _, tag := range song.Tags {
			v += weights[strings.ToLower(tag)]
		}
		if song.Mainstream() == (mainstream > total/2) {
			v += 0.5
		}
		return v
	}

	var out []models.Song
	for _, song := range s.songs {
		if _, saved := u.library[song.ID]; saved {
			continue
		}
		if v := score(song); v > 0 {
			song.MatchScore = v
			out = append(out, song)
		}
	}
	for _, e := range s.external {
		if s.inCatalog(e.Artist, e.Title) {
			continue
		}
		if v := score(e.Song); v > 0 {
			song := e.Song
			song.MatchScore = v
			song.AIRecommendation = true
			out = append(out, song)
		}
	}

	slices.SortStableFunc(out, func(a, b models.Song) int { return cmp.Compare(b.MatchScore, a.MatchScore) })
	if len(out) > maxSuggestion {
		out = out[:maxSuggestion]
	}
	if out == nil {
		out = []models.Song{}
	}
	return out
}

func (s *Store) inCatalog(artist, title string) bool {
	key := shared.NormalizeTrackKey(title, artist)
	for _, song := range s.songs {
		if shared.NormalizeTrackKey(song.Title, song.Artist) == key {
			return true
		}
	}
	return false
}

func (s *Store) genres() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var genres []string
	for _, song := range s.songs {
		for _, g := range []string{song.Genre, ParentGenre(song.Genre)} {
			if g = strings.ToLower(g); g != "" && !seen[g] {
				seen[g] = true
				genres = append(genres, g)
			}
		}
	}
	return genres
}

// SearchLogTags returns the tags recorded for a search log and the ids saved from it.
func (s *Store) SearchLogTags(id int64) ([]string, []int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.logs[id]
	if !ok {
		return nil, nil, false
	}
	return slices.Clone(l.tags), slices.Clone(l.savedIDs), true
}

// TempoBucket classifies bpm as slow, moderate or fast.
func TempoBucket(bpm int) string {
	switch {
	case bpm > FastTempoBPM:
		return "fast"
	case bpm < SlowTempoBPM:
		return "slow"
	default:
		return "moderate"
	}
}

// LoudnessBucket classifies a decibel peak as heavy or soft.
func LoudnessBucket(peak float64) string {
	if peak > HeavyPeakDB {
		return "heavy"
	}
	return "soft"
}

// PopularityBucket classifies a mainstream score.
func PopularityBucket(score int) string {
	if score > models.MainstreamThreshold {
		return "mainstream"
	}
	return "undertone"
}

func modeAllows(mode string, song models.Song) bool {
	switch mode {
	case models.ModeUndertone:
		return !song.Mainstream()
	case models.ModeMainstream:
		return song.Mainstream()
	default:
		return true
	}
}
