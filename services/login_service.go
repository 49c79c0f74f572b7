package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/emontalvo610/sso-oauth/backend"
	"github.com/emontalvo610/sso-oauth/domain"
	"github.com/emontalvo610/sso-oauth/session"
)

// ErrLoginFailed is the generic user-facing login error, used whenever the
// backend did not supply a message of its own.
var ErrLoginFailed = errors.New("Something went wrong")

// LoginService runs the login sequence: authenticate against the backend,
// persist the session cookie, then mint the cross-domain redirect plan.
// Every step depends on the previous one, so the calls are strictly
// sequential, and any failure surfaces as exactly one flattened error.
type LoginService struct {
	api      *backend.Client
	sessions *session.Store

	// companionURI is the sister application's SSO base URI, the default
	// redirect target after login.
	companionURI string
	// tournamentsURI is the optional second downstream domain. Empty means
	// the health-gated handoff never runs.
	tournamentsURI string
}

// NewLoginService creates a new LoginService.
func NewLoginService(api *backend.Client, sessions *session.Store, companionURI, tournamentsURI string) *LoginService {
	return &LoginService{
		api:            api,
		sessions:       sessions,
		companionURI:   companionURI,
		tournamentsURI: tournamentsURI,
	}
}

// LoginResult is what a successful login hands back to the HTTP layer.
type LoginResult struct {
	User *domain.User        `json:"user"`
	Plan domain.RedirectPlan `json:"plan"`
}

// Login authenticates the credentials and, on success, writes the session
// cookie to w and computes the redirect plan. The session is persisted if
// and only if the backend accepted the login; nothing partial is ever
// written.
func (s *LoginService) Login(ctx context.Context, creds domain.Credentials, userAgent string, w http.ResponseWriter) (*LoginResult, error) {
	user, err := s.api.Login(ctx, creds.Email, creds.Password, userAgent)
	if err != nil {
		log.Warn().Err(err).Str("email", creds.Email).Msg("login rejected")
		return nil, flatten(err)
	}

	data := domain.SessionFromUser(user)
	if err := s.sessions.Save(w, data); err != nil {
		log.Error().Err(err).Str("uuid", user.UUID).Msg("failed to persist session")
		return nil, flatten(err)
	}

	plan, err := s.mintRedirectPlan(ctx, creds, user, data)
	if err != nil {
		log.Error().Err(err).Str("uuid", user.UUID).Msg("failed to mint redirect plan")
		return nil, flatten(err)
	}

	return &LoginResult{User: user, Plan: *plan}, nil
}

// RestoreSession re-persists a session taken from an existing cookie. The
// completion flag is forced true: a cookie only exists because a completed
// flow wrote one, so a stale false value in it must not downgrade the user.
func (s *LoginService) RestoreSession(w http.ResponseWriter, data domain.SessionData) error {
	data.IsCompleted = true
	if err := s.sessions.Save(w, data); err != nil {
		log.Error().Err(err).Str("uuid", data.UUID).Msg("failed to restore session")
		return flatten(err)
	}
	return nil
}

// Logout destroys the session cookie and returns the path the caller should
// navigate to. Destroying is treated as always succeeding.
func (s *LoginService) Logout(w http.ResponseWriter) string {
	s.sessions.Destroy(w)
	return "/"
}

// flatten reduces whatever went wrong to the single error the user may see:
// the backend's own message when it sent one, the generic fallback
// otherwise. Callers never receive a chain of causes.
func flatten(err error) error {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr
	}
	return ErrLoginFailed
}
