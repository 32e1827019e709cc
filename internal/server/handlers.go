package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/undertone/internal/models"
	"github.com/desertthunder/undertone/internal/shared"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// SessionCookie names the backend session cookie.
const SessionCookie = "undertone_session"

// Backend serves the Undertone REST surface from a [Store].
type Backend struct {
	store   *Store
	logger  *log.Logger
	origins []string
}

// BackendOpts configures [NewBackend].
type BackendOpts struct {
	Store  *Store
	Logger *log.Logger
	// AllowedOrigins enables CORS with credentials for browser front ends.
	AllowedOrigins []string
}

// NewBackend creates a backend, seeding a fresh store when none is given.
func NewBackend(opts BackendOpts) *Backend {
	b := &Backend{store: opts.Store, logger: opts.Logger, origins: opts.AllowedOrigins}
	if b.store == nil {
		b.store = NewStore()
	}
	if b.logger == nil {
		b.logger = shared.NewLogger(nil)
	}
	return b
}

// Store exposes the backing store to tests.
func (b *Backend) Store() *Store {
	return b.store
}

// Router returns the route table without middleware.
func (b *Backend) Router() *mux.Router {
	r := mux.NewRouter().StrictSlash(true)

	r.HandleFunc("/me", b.handleMe).Methods(http.MethodGet)
	r.HandleFunc("/register", b.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/login", b.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/logout", b.handleLogout).Methods(http.MethodGet, http.MethodPost)

	r.HandleFunc("/library", b.requireUser(b.handleLibrary)).Methods(http.MethodGet)
	r.HandleFunc("/library/save", b.requireUser(b.handleSave)).Methods(http.MethodPost)
	r.HandleFunc("/song/rate", b.requireUser(b.handleRate)).Methods(http.MethodPost)
	r.HandleFunc("/recommendations", b.requireUser(b.handleRecommendations)).Methods(http.MethodGet)

	r.HandleFunc("/songs/explore", b.handleExplore).Methods(http.MethodGet)
	r.HandleFunc("/search/objective", b.handleObjective).Methods(http.MethodGet)
	r.HandleFunc("/search/intent", b.handleIntent).Methods(http.MethodGet)
	r.HandleFunc("/search/external", b.handleExternal).Methods(http.MethodGet)
	r.HandleFunc("/song/import", b.handleImport).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "Not found")
	})
	return r
}

// Handler returns the router wrapped with request ids, logging and, when origins are set, CORS.
func (b *Backend) Handler() http.Handler {
	var h http.Handler = b.Router()
	if len(b.origins) > 0 {
		h = cors.New(cors.Options{
			AllowedOrigins:   b.origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost},
			AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
			AllowCredentials: true,
		}).Handler(h)
	}
	return Chain(h, RequestID(), Logging(b.logger))
}

type userHandler func(w http.ResponseWriter, r *http.Request, username string)

func (b *Backend) currentUser(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return "", false
	}
	return b.store.Username(c.Value)
}

func (b *Backend) requireUser(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username, ok := b.currentUser(r)
		if !ok {
			respondError(w, http.StatusUnauthorized, "Login required")
			return
		}
		next(w, r, username)
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return nil
}

func (b *Backend) handleMe(w http.ResponseWriter, r *http.Request) {
	username, ok := b.currentUser(r)
	respondJSON(w, http.StatusOK, models.Session{LoggedIn: ok, Username: username})
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decodeBody(r, &creds); err != nil || !creds.Valid() {
		respondError(w, http.StatusBadRequest, "Username and password are required")
		return
	}
	creds.Username = strings.TrimSpace(creds.Username)

	if err := b.store.Register(creds.Username, creds.Password); err != nil {
		if errors.Is(err, errUserExists) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		b.logger.Error("register failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Registration failed")
		return
	}
	respondJSON(w, http.StatusCreated, models.AuthResponse{Username: creds.Username, Message: "Registered"})
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decodeBody(r, &creds); err != nil || !creds.Valid() {
		respondError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	token, username, err := b.store.Login(strings.TrimSpace(creds.Username), creds.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, models.AuthResponse{Username: username, Message: "Logged in"})
}

func (b *Backend) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		b.store.Logout(c.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Logged out"))
}

func (b *Backend) handleLibrary(w http.ResponseWriter, _ *http.Request, username string) {
	respondJSON(w, http.StatusOK, b.store.Library(username))
}

func (b *Backend) handleRate(w http.ResponseWriter, r *http.Request, username string) {
	var req models.RateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid rating payload")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		respondError(w, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	if err := b.store.Rate(username, req); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, models.MessageResponse{Message: "Rating saved"})
}

func (b *Backend) handleRecommendations(w http.ResponseWriter, _ *http.Request, username string) {
	respondJSON(w, http.StatusOK, b.store.Recommendations(username))
}

func (b *Backend) handleSave(w http.ResponseWriter, r *http.Request, username string) {
	var req models.SaveRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid save payload")
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, "song_id or artist and title are required")
		return
	}

	song, added, err := b.store.Save(username, req)
	if err != nil {
		respondError(w, http.StatusNotFound, "Song not found")
		return
	}

	msg := "Song added to library"
	if !added {
		msg = "Song already in library"
	}
	respondJSON(w, http.StatusOK, models.SaveResponse{Message: msg, Song: &song})
}

func (b *Backend) handleExplore(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, b.store.Explore())
}

func (b *Backend) handleObjective(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := models.ObjectiveFilters{
		Genre:      q.Get("genre"),
		Tempo:      q.Get("tempo"),
		Loudness:   q.Get("loudness"),
		Popularity: q.Get("popularity"),
	}
	if err := filters.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, b.store.Objective(filters))
}

func (b *Backend) handleIntent(w http.ResponseWriter, r *http.Request) {
	intent := strings.TrimSpace(r.URL.Query().Get("intent"))
	if intent == "" {
		respondError(w, http.StatusBadRequest, "Intent is required")
		return
	}
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = models.ModeAll
	}
	if !models.ValidMode(mode) {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Unknown mode %q", mode))
		return
	}

	username, _ := b.currentUser(r)
	respondJSON(w, http.StatusOK, b.store.Intent(username, intent, mode))
}

func (b *Backend) handleExternal(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respondError(w, http.StatusBadRequest, "Query is required")
		return
	}
	respondJSON(w, http.StatusOK, b.store.External(q))
}

func (b *Backend) handleImport(w http.ResponseWriter, r *http.Request) {
	var req models.ImportRequest
	if err := decodeBody(r, &req); err != nil || strings.TrimSpace(req.Artist) == "" || strings.TrimSpace(req.Title) == "" {
		respondError(w, http.StatusBadRequest, "Artist and title are required")
		return
	}
	respondJSON(w, http.StatusOK, b.store.Import(req.Artist, req.Title))
}
