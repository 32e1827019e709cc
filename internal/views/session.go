package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/undertone/internal/models"
	"github.com/desertthunder/undertone/internal/services"
	"github.com/desertthunder/undertone/internal/shared"
)

// SessionState is the login state as last resolved from the backend.
type SessionState struct {
	LoggedIn bool
	Username string
	// Message is a user-visible note about the last action ("Account created...").
	Message string
}

// SessionOpts configures [NewSession].
type SessionOpts struct {
	Opts
	// AutoLogin chains a successful registration into a login with the same credentials.
	AutoLogin bool
}

// Session resolves and changes the backend login state.
type Session struct {
	api       services.Undertone
	autoLogin bool
	logger    *log.Logger
	updates   chan<- Update

	mu    sync.Mutex
	state SessionState
}

// NewSession creates a session controller in the unauthenticated state.
func NewSession(api services.Undertone, opts SessionOpts) *Session {
	return &Session{
		api:       api,
		autoLogin: opts.AutoLogin,
		logger:    opts.logger(),
		updates:   opts.Updates,
	}
}

// State returns the last resolved state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) set(state SessionState) SessionState {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	return state
}

// Resolve issues one GET /me. On failure the state becomes unauthenticated and the
// error is returned so the caller can surface it.
func (s *Session) Resolve(ctx context.Context) (SessionState, error) {
	send(s.updates, phaseUpdate(ResolveSession, LoadingSession))

	me, err := s.api.Me(ctx)
	if err != nil {
		s.logger.Warn("session check failed", "error", err)
		return s.set(SessionState{}), err
	}
	return s.set(SessionState{LoggedIn: me.LoggedIn, Username: me.Username}), nil
}

// Login posts credentials and, on success, re-resolves the session with GET /me.
// On failure the previous state is kept.
func (s *Session) Login(ctx context.Context, creds models.Credentials) (SessionState, error) {
	if err := validateCredentials(creds); err != nil {
		return s.State(), err
	}
	send(s.updates, phaseUpdate(Authenticate, "Logging in..."))

	if _, err := s.api.Login(ctx, creds); err != nil {
		return s.State(), authError("login", err)
	}

	state, err := s.Resolve(ctx)
	if err != nil {
		return state, err
	}
	if !state.LoggedIn {
		return state, fmt.Errorf("%w: backend did not start a session", shared.ErrAuthFailed)
	}
	return state, nil
}

// Register creates an account, then logs in when auto-login is enabled.
func (s *Session) Register(ctx context.Context, creds models.Credentials) (SessionState, error) {
	if err := validateCredentials(creds); err != nil {
		return s.State(), err
	}
	send(s.updates, phaseUpdate(Authenticate, "Creating account..."))

	if _, err := s.api.Register(ctx, creds); err != nil {
		return s.State(), authError("registration", err)
	}

	if s.autoLogin {
		return s.Login(ctx, creds)
	}

	state := s.set(SessionState{})
	state.Message = RegisteredMessage
	return state, nil
}

// Logout sends GET /logout and always ends unauthenticated. Failures are only logged.
func (s *Session) Logout(ctx context.Context) SessionState {
	if err := s.api.Logout(ctx); err != nil {
		s.logger.Warn("logout request failed", "error", err)
	}
	return s.set(SessionState{})
}

func validateCredentials(creds models.Credentials) error {
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		return fmt.Errorf("%w: username and password are required", shared.ErrMissingCredentials)
	}
	return nil
}

func authError(action string, err error) error {
	if errors.Is(err, shared.ErrAuthFailed) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", shared.ErrAuthFailed, action, err)
}

// AuthMessage is the text shown under the auth form for err.
func AuthMessage(err error) string {
	if msg := services.BackendMessage(err); msg != "" {
		return msg
	}
	if errors.Is(err, shared.ErrMissingCredentials) {
		return "Username and password are required."
	}
	return "Authentication failed."
}
