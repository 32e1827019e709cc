package views

import (
	"context"
	"errors"

	"github.com/desertthunder/undertone/internal/models"
	"github.com/desertthunder/undertone/internal/services"
)

// ProfileOpts configures [NewProfile].
type ProfileOpts struct {
	Opts
	AutoLogin bool
	Mode      string
}

// Profile wires the controllers of the main view together.
type Profile struct {
	Session  *Session
	Library  *Library
	Feed     *Feed
	Search   *Search
	Importer *Importer
}

// ProfileState is what the main view shows after [Profile.Open].
type ProfileState struct {
	Session SessionState
	Library LibraryState
	Feed    FeedState
}

// NewProfile builds every controller over one client.
func NewProfile(api services.Undertone, opts ProfileOpts) *Profile {
	library := NewLibrary(api, opts.Opts)
	return &Profile{
		Session:  NewSession(api, SessionOpts{Opts: opts.Opts, AutoLogin: opts.AutoLogin}),
		Library:  library,
		Feed:     NewFeed(api, library, opts.Opts),
		Search:   NewSearch(api, opts.Mode, opts.Opts),
		Importer: NewImporter(api, opts.Opts),
	}
}

// Open resolves the session and, when logged in, loads the library and then
// the feed. Region failures are kept in their states and joined into the error.
func (p *Profile) Open(ctx context.Context) (ProfileState, error) {
	session, err := p.Session.Resolve(ctx)
	if err != nil || !session.LoggedIn {
		return ProfileState{Session: session}, err
	}
	return p.load(ctx, session)
}

// Login logs in and loads the authenticated regions.
func (p *Profile) Login(ctx context.Context, creds models.Credentials) (ProfileState, error) {
	session, err := p.Session.Login(ctx, creds)
	if err != nil {
		return ProfileState{Session: session}, err
	}
	return p.load(ctx, session)
}

// Register creates an account and, when that left the user logged in, loads
// the authenticated regions.
func (p *Profile) Register(ctx context.Context, creds models.Credentials) (ProfileState, error) {
	session, err := p.Session.Register(ctx, creds)
	if err != nil || !session.LoggedIn {
		return ProfileState{Session: session}, err
	}
	return p.load(ctx, session)
}

func (p *Profile) load(ctx context.Context, session SessionState) (ProfileState, error) {
	library, libErr := p.Library.Load(ctx)
	feed, feedErr := p.Feed.Load(ctx)
	return ProfileState{Session: session, Library: library, Feed: feed}, errors.Join(libErr, feedErr)
}
