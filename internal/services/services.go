package services

import (
	"context"

	"github.com/desertthunder/undertone/internal/models"
)

// Undertone is the backend surface used by the view controllers.
type Undertone interface {
	// Me reports the current session.
	Me(ctx context.Context) (*models.Session, error)

	// Login authenticates and starts a cookie session.
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error)

	// Register creates an account. It does not log in.
	Register(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error)

	// Logout ends the session.
	Logout(ctx context.Context) error

	Library(ctx context.Context) ([]models.LibraryEntry, error)
	Rate(ctx context.Context, req models.RateRequest) (*models.MessageResponse, error)
	Recommendations(ctx context.Context) ([]models.Song, error)

	// SaveToLibrary adds a song by id, or by artist/title letting the backend import first.
	SaveToLibrary(ctx context.Context, req models.SaveRequest) (*models.SaveResponse, error)

	Explore(ctx context.Context) ([]models.Song, error)
	SearchObjective(ctx context.Context, filters models.ObjectiveFilters) ([]models.Song, error)
	SearchIntent(ctx context.Context, intent, mode string) (*models.IntentResult, error)
	SearchExternal(ctx context.Context, query string) ([]models.ExternalTrack, error)

	// ImportSong creates or resolves the catalog entry for an external track.
	ImportSong(ctx context.Context, req models.ImportRequest) (*models.Song, error)
}

var _ Undertone = (*UndertoneService)(nil)
