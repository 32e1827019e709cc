package testing

import (
	"context"
	"slices"
	"sync"

	"github.com/desertthunder/undertone/internal/models"
)

// StubUndertone is a scripted Undertone client. Each call is recorded as
// "METHOD /path" before the matching func field runs; nil fields succeed with
// zero values.
type StubUndertone struct {
	MeFunc              func(ctx context.Context) (*models.Session, error)
	LoginFunc           func(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error)
	RegisterFunc        func(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error)
	LogoutFunc          func(ctx context.Context) error
	LibraryFunc         func(ctx context.Context) ([]models.LibraryEntry, error)
	RateFunc            func(ctx context.Context, req models.RateRequest) (*models.MessageResponse, error)
	RecommendationsFunc func(ctx context.Context) ([]models.Song, error)
	SaveFunc            func(ctx context.Context, req models.SaveRequest) (*models.SaveResponse, error)
	ExploreFunc         func(ctx context.Context) ([]models.Song, error)
	ObjectiveFunc       func(ctx context.Context, filters models.ObjectiveFilters) ([]models.Song, error)
	IntentFunc          func(ctx context.Context, intent, mode string) (*models.IntentResult, error)
	ExternalFunc        func(ctx context.Context, query string) ([]models.ExternalTrack, error)
	ImportFunc          func(ctx context.Context, req models.ImportRequest) (*models.Song, error)

	mu    sync.Mutex
	calls []string
	saves []models.SaveRequest
}

func (s *StubUndertone) record(call string) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
}

// Calls returns the recorded calls in order.
func (s *StubUndertone) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

// Count returns how many times call was made.
func (s *StubUndertone) Count(call string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == call {
			n++
		}
	}
	return n
}

// Saves returns the bodies passed to SaveToLibrary.
func (s *StubUndertone) Saves() []models.SaveRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.saves)
}

func (s *StubUndertone) Me(ctx context.Context) (*models.Session, error) {
	s.record("GET /me")
	if s.MeFunc != nil {
		return s.MeFunc(ctx)
	}
	return &models.Session{}, nil
}

func (s *StubUndertone) Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error) {
	s.record("POST /login")
	if s.LoginFunc != nil {
		return s.LoginFunc(ctx, creds)
	}
	return &models.AuthResponse{Username: creds.Username}, nil
}

func (s *StubUndertone) Register(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error) {
	s.record("POST /register")
	if s.RegisterFunc != nil {
		return s.RegisterFunc(ctx, creds)
	}
	return &models.AuthResponse{Username: creds.Username}, nil
}

func (s *StubUndertone) Logout(ctx context.Context) error {
	s.record("GET /logout")
	if s.LogoutFunc != nil {
		return s.LogoutFunc(ctx)
	}
	return nil
}

func (s *StubUndertone) Library(ctx context.Context) ([]models.LibraryEntry, error) {
	s.record("GET /library")
	if s.LibraryFunc != nil {
		return s.LibraryFunc(ctx)
	}
	return []models.LibraryEntry{}, nil
}

func (s *StubUndertone) Rate(ctx context.Context, req models.RateRequest) (*models.MessageResponse, error) {
	s.record("POST /song/rate")
	if s.RateFunc != nil {
		return s.RateFunc(ctx, req)
	}
	return &models.MessageResponse{Message: "Rating saved"}, nil
}

func (s *StubUndertone) Recommendations(ctx context.Context) ([]models.Song, error) {
	s.record("GET /recommendations")
	if s.RecommendationsFunc != nil {
		return s.RecommendationsFunc(ctx)
	}
	return []models.Song{}, nil
}

func (s *StubUndertone) SaveToLibrary(ctx context.Context, req models.SaveRequest) (*models.SaveResponse, error) {
	s.record("POST /library/save")
	s.mu.Lock()
	s.saves = append(s.saves, req)
	s.mu.Unlock()
	if s.SaveFunc != nil {
		return s.SaveFunc(ctx, req)
	}
	return &models.SaveResponse{Message: "Song added to library"}, nil
}

func (s *StubUndertone) Explore(ctx context.Context) ([]models.Song, error) {
	s.record("GET /songs/explore")
	if s.ExploreFunc != nil {
		return s.ExploreFunc(ctx)
	}
	return []models.Song{}, nil
}

func (s *StubUndertone) SearchObjective(ctx context.Context, filters models.ObjectiveFilters) ([]models.Song, error) {
	s.record("GET /search/objective")
	if s.ObjectiveFunc != nil {
		return s.ObjectiveFunc(ctx, filters)
	}
	return []models.Song{}, nil
}

func (s *StubUndertone) SearchIntent(ctx context.Context, intent, mode string) (*models.IntentResult, error) {
	s.record("GET /search/intent")
	if s.IntentFunc != nil {
		return s.IntentFunc(ctx, intent, mode)
	}
	return &models.IntentResult{}, nil
}

func (s *StubUndertone) SearchExternal(ctx context.Context, query string) ([]models.ExternalTrack, error) {
	s.record("GET /search/external")
	if s.ExternalFunc != nil {
		return s.ExternalFunc(ctx, query)
	}
	return []models.ExternalTrack{}, nil
}

func (s *StubUndertone) ImportSong(ctx context.Context, req models.ImportRequest) (*models.Song, error) {
	s.record("POST /song/import")
	if s.ImportFunc != nil {
		return s.ImportFunc(ctx, req)
	}
	return &models.Song{ID: 1, Artist: req.Artist, Title: req.Title}, nil
}
