// Package echo exposes the front door's HTTP surface: login, logout,
// lookup, and link/token validation endpoints consumed by the UI forms.
package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/emontalvo610/sso-oauth/backend"
	"github.com/emontalvo610/sso-oauth/domain"
	"github.com/emontalvo610/sso-oauth/internal/urlcode"
	"github.com/emontalvo610/sso-oauth/services"
	"github.com/emontalvo610/sso-oauth/session"
)

// SSOAPI struct to hold dependencies.
type SSOAPI struct {
	login    *services.LoginService
	api      *backend.Client
	sessions *session.Store
}

// NewSSOAPI initializes the SSO API.
func NewSSOAPI(login *services.LoginService, api *backend.Client, sessions *session.Store) *SSOAPI {
	return &SSOAPI{
		login:    login,
		api:      api,
		sessions: sessions,
	}
}

// RegisterRoutes registers the SSO routes.
func (a *SSOAPI) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/auth/login", a.LoginHandler)
	e.POST("/v1/auth/cookie", a.CookieLoginHandler)
	e.POST("/v1/auth/logout", a.LogoutHandler)

	e.GET("/v1/lookup/:email", a.LookupEmailHandler)
	e.GET("/v1/lookup/:email/phone", a.MaskedPhoneHandler)

	e.GET("/v1/validate/url/:secret", a.ValidateSecretHandler)
	e.GET("/v1/validate/email/:secret", a.ValidateEmailSecretHandler)
	e.GET("/v1/validate/token", a.ValidateTokenHandler)

	e.GET("/choose_forgot_password/:email", a.ChooseForgotPasswordHandler)

	e.GET("/health", a.HealthHandler)
}

type loginResponse struct {
	User        *domain.User       `json:"user"`
	RedirectURI string             `json:"redirectURI"`
	OLT         domain.SealedToken `json:"olt"`
}

// LoginHandler authenticates a login form submission. On success it writes
// the session cookie and returns the user plus the redirect plan; on
// failure it returns the single flattened error message and nothing else.
func (a *SSOAPI) LoginHandler(c echo.Context) error {
	var creds domain.Credentials
	if err := c.Bind(&creds); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if creds.Email == "" || creds.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "email and password are required"})
	}

	result, err := a.login.Login(c.Request().Context(), creds, c.Request().UserAgent(), c.Response())
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": err.Error()})
	}

	return c.JSON(http.StatusOK, loginResponse{
		User:        result.User,
		RedirectURI: result.Plan.RedirectURI,
		OLT:         result.Plan.OLT,
	})
}

// CookieLoginHandler re-enters an existing session: the cookie is opened,
// re-committed with the completion flag forced true, and echoed back.
func (a *SSOAPI) CookieLoginHandler(c echo.Context) error {
	data, err := a.sessions.Get(c.Request())
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "no session"})
	}

	if err := a.login.RestoreSession(c.Response(), *data); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": err.Error()})
	}

	data.IsCompleted = true
	return c.JSON(http.StatusOK, echo.Map{"user": data})
}

// LogoutHandler destroys the session and tells the UI where to go.
func (a *SSOAPI) LogoutHandler(c echo.Context) error {
	redirect := a.login.Logout(c.Response())
	return c.JSON(http.StatusOK, echo.Map{"redirect": redirect})
}

// LookupEmailHandler reports whether an account exists for the email.
func (a *SSOAPI) LookupEmailHandler(c echo.Context) error {
	exists := a.api.LookupEmail(c.Request().Context(), c.Param("email"))
	return c.JSON(http.StatusOK, echo.Map{"exists": exists})
}

// MaskedPhoneHandler returns the masked phone number on file for the email,
// for the "verify by text" choice.
func (a *SSOAPI) MaskedPhoneHandler(c echo.Context) error {
	masked, ok := a.api.MaskedPhoneNumber(c.Request().Context(), c.Param("email"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"maskedPhoneNumber": masked})
}

// ValidateSecretHandler classifies a reset/verification link.
func (a *SSOAPI) ValidateSecretHandler(c echo.Context) error {
	validity := a.api.ValidateSecret(c.Request().Context(), c.Param("secret"))
	return c.JSON(http.StatusOK, echo.Map{"validity": validity})
}

// ValidateEmailSecretHandler resolves an email-verification secret to its
// payload. 404 when the backend does not vouch for it.
func (a *SSOAPI) ValidateEmailSecretHandler(c echo.Context) error {
	payload := a.api.ValidateEmailSecret(c.Request().Context(), c.Param("secret"))
	if payload == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
	}
	return c.JSONBlob(http.StatusOK, payload)
}

// ValidateTokenHandler checks the bearer token in the PB-USER-TOKEN header.
func (a *SSOAPI) ValidateTokenHandler(c echo.Context) error {
	token := c.Request().Header.Get(backend.TokenHeader)
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "missing token"})
	}
	valid := a.api.ValidateToken(c.Request().Context(), domain.SealedToken(token))
	return c.JSON(http.StatusOK, echo.Map{"valid": valid})
}

// ChooseForgotPasswordHandler backs the forgot-password page: the email
// arrives base64-encoded in the path, a bad encoding is a 404, a logged-in
// user goes to their account, an unknown email goes home.
func (a *SSOAPI) ChooseForgotPasswordHandler(c echo.Context) error {
	email := urlcode.Decode(c.Param("email"))
	if email == "" {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
	}

	if _, err := a.sessions.Get(c.Request()); err == nil {
		return c.Redirect(http.StatusFound, "/account")
	}

	if !a.api.LookupEmail(c.Request().Context(), email) {
		return c.Redirect(http.StatusFound, "/")
	}

	masked, smsEnabled := a.api.MaskedPhoneNumber(c.Request().Context(), email)
	return c.JSON(http.StatusOK, echo.Map{
		"email":             email,
		"smsEnabled":        smsEnabled,
		"maskedPhoneNumber": masked,
	})
}

// HealthHandler is this service's own liveness probe.
func (a *SSOAPI) HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
