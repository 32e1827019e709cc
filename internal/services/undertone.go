// Undertone backend [Undertone] implementation
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/undertone/internal/models"
	"github.com/desertthunder/undertone/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   string = "http://127.0.0.1:5001"
	defaultUserAgent string = "undertone-cli/0.1.0"

	// RequestIDHeader correlates client and server log lines.
	RequestIDHeader = "X-Request-ID"
)

// UndertoneOpts configures [NewUndertoneService]. Zero values select defaults.
type UndertoneOpts struct {
	BaseURL   string
	Client    *http.Client
	UserAgent string
	Logger    *log.Logger
	// RequestsPerSecond <= 0 disables throttling.
	RequestsPerSecond float64
}

// UndertoneService is the typed client for the Undertone backend.
type UndertoneService struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewUndertoneService creates a client. The [http.Client] should carry a cookie jar,
// otherwise the backend session is lost between calls.
func NewUndertoneService(opts UndertoneOpts) *UndertoneService {
	s := &UndertoneService{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.Client,
		userAgent:  opts.UserAgent,
		logger:     opts.Logger,
	}
	if s.baseURL == "" {
		s.baseURL = defaultBaseURL
	}
	if s.httpClient == nil {
		s.httpClient = http.DefaultClient
	}
	if s.userAgent == "" {
		s.userAgent = defaultUserAgent
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if opts.RequestsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return s
}

// NewHTTPClient builds an [http.Client] with the given cookie jar and timeout.
func NewHTTPClient(jar http.CookieJar, timeout time.Duration) *http.Client {
	return &http.Client{Jar: jar, Timeout: timeout}
}

// BaseURL returns the backend root without a trailing slash.
func (s *UndertoneService) BaseURL() string {
	return s.baseURL
}

// Name returns the service name.
func (s *UndertoneService) Name() string {
	return "Undertone"
}

// do sends one request and decodes a 2xx JSON body into result (when non-nil).
// It returns the raw body so callers can decode alternative shapes.
func (s *UndertoneService) do(ctx context.Context, method, endpoint string, query url.Values, body, result any) ([]byte, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %s %s: %v", shared.ErrAPIRequest, method, endpoint, err)
		}
	}

	apiURL := s.baseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := shared.GenerateID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Debug("request failed", "method", method, "path", endpoint, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("%w: %s %s: %v", shared.ErrAPIRequest, method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrAPIRequest, err)
	}

	s.logger.Debug("request",
		"method", method, "path", endpoint, "status", resp.StatusCode,
		"request_id", requestID, "elapsed", time.Since(started).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Method: method, Path: endpoint}
		var errResp models.MessageResponse
		if err := json.Unmarshal(data, &errResp); err == nil {
			apiErr.Message = errResp.Error
		}
		return data, apiErr
	}

	if result != nil {
		if len(bytes.TrimSpace(data)) == 0 {
			return data, fmt.Errorf("%w: %s %s: empty body", shared.ErrMalformedResponse, method, endpoint)
		}
		if err := json.Unmarshal(data, result); err != nil {
			return data, fmt.Errorf("%w: %s %s: %v", shared.ErrMalformedResponse, method, endpoint, err)
		}
	}

	return data, nil
}

// Me calls GET /me.
func (s *UndertoneService) Me(ctx context.Context) (*models.Session, error) {
	var session models.Session
	if _, err := s.do(ctx, http.MethodGet, "/me", nil, nil, &session); err != nil {
		return nil, err
	}
	if !session.LoggedIn {
		session.Username = ""
	}
	return &session, nil
}

// Login calls POST /login.
func (s *UndertoneService) Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error) {
	return s.authenticate(ctx, "/login", creds)
}

// Register calls POST /register.
func (s *UndertoneService) Register(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error) {
	return s.authenticate(ctx, "/register", creds)
}

func (s *UndertoneService) authenticate(ctx context.Context, endpoint string, creds models.Credentials) (*models.AuthResponse, error) {
	if !creds.Valid() {
		return nil, fmt.Errorf("%w: username and password are required", shared.ErrMissingCredentials)
	}

	var resp models.AuthResponse
	if _, err := s.do(ctx, http.MethodPost, endpoint, nil, creds, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, &APIError{Status: http.StatusOK, Message: resp.Error, Method: http.MethodPost, Path: endpoint}
	}
	return &resp, nil
}

// Logout calls GET /logout. The response body is ignored.
func (s *UndertoneService) Logout(ctx context.Context) error {
	_, err := s.do(ctx, http.MethodGet, "/logout", nil, nil, nil)
	return err
}

// Library calls GET /library.
func (s *UndertoneService) Library(ctx context.Context) ([]models.LibraryEntry, error) {
	var entries []models.LibraryEntry
	if _, err := s.do(ctx, http.MethodGet, "/library", nil, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Rate calls POST /song/rate.
func (s *UndertoneService) Rate(ctx context.Context, req models.RateRequest) (*models.MessageResponse, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5, got %d", shared.ErrInvalidArgument, req.Rating)
	}

	var resp models.MessageResponse
	if _, err := s.do(ctx, http.MethodPost, "/song/rate", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Recommendations calls GET /recommendations. Backend order is preserved.
func (s *UndertoneService) Recommendations(ctx context.Context) ([]models.Song, error) {
	return s.songs(ctx, "/recommendations", nil)
}

// SaveToLibrary calls POST /library/save.
//
// The backend answers with {message}, the saved song, or {message, song}.
func (s *UndertoneService) SaveToLibrary(ctx context.Context, req models.SaveRequest) (*models.SaveResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	var resp models.SaveResponse
	data, err := s.do(ctx, http.MethodPost, "/library/save", nil, req, &resp)
	if err != nil {
		return nil, err
	}

	if resp.Song == nil {
		var song models.Song
		if err := json.Unmarshal(data, &song); err == nil && (song.ID > 0 || song.Title != "") {
			resp.Song = &song
		}
	}
	return &resp, nil
}

// Explore calls GET /songs/explore.
func (s *UndertoneService) Explore(ctx context.Context) ([]models.Song, error) {
	return s.songs(ctx, "/songs/explore", nil)
}

// SearchObjective calls GET /search/objective with only the non-default filters.
func (s *UndertoneService) SearchObjective(ctx context.Context, filters models.ObjectiveFilters) ([]models.Song, error) {
	return s.songs(ctx, "/search/objective", filters.Query())
}

// SearchIntent calls GET /search/intent. An empty mode means [models.ModeAll].
func (s *UndertoneService) SearchIntent(ctx context.Context, intent, mode string) (*models.IntentResult, error) {
	intent = strings.TrimSpace(intent)
	if intent == "" {
		return nil, fmt.Errorf("%w: intent text is required", shared.ErrEmptyQuery)
	}
	if mode == "" {
		mode = models.ModeAll
	}

	q := url.Values{}
	q.Set("intent", intent)
	q.Set("mode", mode)

	var result models.IntentResult
	if _, err := s.do(ctx, http.MethodGet, "/search/intent", q, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SearchExternal calls GET /search/external.
func (s *UndertoneService) SearchExternal(ctx context.Context, query string) ([]models.ExternalTrack, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search text is required", shared.ErrEmptyQuery)
	}

	var tracks []models.ExternalTrack
	if _, err := s.do(ctx, http.MethodGet, "/search/external", url.Values{"q": {query}}, nil, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// ImportSong calls POST /song/import.
//
// The backend answers with the imported song or, even on 2xx, with {error}.
func (s *UndertoneService) ImportSong(ctx context.Context, req models.ImportRequest) (*models.Song, error) {
	if strings.TrimSpace(req.Artist) == "" || strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: artist and title are required", shared.ErrMissingArgument)
	}

	var resp struct {
		models.Song
		Error string `json:"error,omitempty"`
	}
	if _, err := s.do(ctx, http.MethodPost, "/song/import", nil, req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, &APIError{Status: http.StatusOK, Message: resp.Error, Method: http.MethodPost, Path: "/song/import"}
	}
	if resp.ID <= 0 && resp.Title == "" {
		return nil, fmt.Errorf("%w: POST /song/import: no song in response", shared.ErrMalformedResponse)
	}
	return &resp.Song, nil
}

func (s *UndertoneService) songs(ctx context.Context, endpoint string, query url.Values) ([]models.Song, error) {
	var songs []models.Song
	if _, err := s.do(ctx, http.MethodGet, endpoint, query, nil, &songs); err != nil {
		return nil, err
	}
	return songs, nil
}
