package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/emontalvo610/sso-oauth/domain"
	"github.com/emontalvo610/sso-oauth/internal/browser"
)

type loginRequest struct {
	Payload loginPayload `json:"payload"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates email/password against the backend. The User-Agent
// travels along as diagnostic headers. On a non-success status the returned
// error is an *APIError carrying the backend's own message.
func (c *Client) Login(ctx context.Context, email, password, userAgent string) (*domain.User, error) {
	info := browser.Parse(userAgent)
	headers := map[string]string{
		"BROWSER":             info.Name,
		"BROWSER-VERSION":     info.Version,
		"IS-MOBILE":           strconv.FormatBool(info.Mobile),
		"SERVER-MACHINE-NAME": userAgent,
	}

	resp, err := c.postJSON(ctx, c.baseURL+"/v1/sso/login", loginRequest{
		Payload: loginPayload{Email: email, Password: password},
	}, headers)
	if err != nil {
		return nil, fmt.Errorf("login call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("login: reading body failed: %w", err)
	}

	if !isSuccess(resp.StatusCode) {
		return nil, newAPIError(resp.StatusCode, body)
	}

	var user domain.User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("login: bad response body: %w", err)
	}
	return &user, nil
}

type encryptOLTRequest struct {
	ID        string `json:"ID"`
	Timestamp int64  `json:"TIMESTAMP"`
	URL       string `json:"URL"`
	Logout    int    `json:"LOGOUT"`
}

// EncryptOLT mints a single-use handoff token binding the user to a
// redirect target at the current moment.
func (c *Client) EncryptOLT(ctx context.Context, userUUID, redirectURL string) (domain.SealedToken, error) {
	resp, err := c.postJSON(ctx, c.baseURL+"/v1/pb_data/encrypt", encryptOLTRequest{
		ID:        userUUID,
		Timestamp: c.now().Unix(),
		URL:       redirectURL,
		Logout:    0,
	}, nil)
	if err != nil {
		return "", fmt.Errorf("encrypt call failed: %w", err)
	}
	defer resp.Body.Close()

	return readOpaqueToken(resp)
}

type pbracketsHandoff struct {
	URL string             `json:"URL"`
	OLT domain.SealedToken `json:"OLT"`
}

type encryptHandoffRequest struct {
	Session   domain.SessionData `json:"SESSION"`
	PBrackets pbracketsHandoff   `json:"PBRACKETS"`
}

// EncryptHandoff mints the composite token the second downstream domain
// consumes at its /session endpoint: the whole session plus the companion
// app's URL and OLT, sealed together.
func (c *Client) EncryptHandoff(ctx context.Context, session domain.SessionData, companionURL string, olt domain.SealedToken) (domain.SealedToken, error) {
	resp, err := c.postJSON(ctx, c.baseURL+"/v1/pb_data/encrypt", encryptHandoffRequest{
		Session:   session,
		PBrackets: pbracketsHandoff{URL: companionURL, OLT: olt},
	}, nil)
	if err != nil {
		return "", fmt.Errorf("encrypt call failed: %w", err)
	}
	defer resp.Body.Close()

	return readOpaqueToken(resp)
}

type continuationRequest struct {
	ID      string `json:"ID"`
	Email   string `json:"EMAIL"`
	Session string `json:"SESSION"`
}

// ContinuationResult is the companion redirect minted from a continuation
// payload carried into the login by a sister application.
type ContinuationResult struct {
	Redirect   string             `json:"redirect"`
	Encryption domain.SealedToken `json:"encryption"`
}

// ExchangeContinuation trades a sister app's continuation payload for the
// redirect URI and sealed query token that resume its flow after login.
func (c *Client) ExchangeContinuation(ctx context.Context, payload, userUUID, email string) (*ContinuationResult, error) {
	resp, err := c.postJSON(ctx, c.baseURL+"/v1/pb_data/encrypt", continuationRequest{
		ID:      userUUID,
		Email:   email,
		Session: payload,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("encrypt call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("encrypt: reading body failed: %w", err)
	}
	if !isSuccess(resp.StatusCode) {
		return nil, newAPIError(resp.StatusCode, body)
	}

	var result ContinuationResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("encrypt: bad response body: %w", err)
	}
	return &result, nil
}

// CheckHealth probes a downstream domain's /health endpoint. The downstream
// reports healthy with 201, not the conventional 200; that exact status is
// what its deployment emits, so that exact status is what we match.
func (c *Client) CheckHealth(ctx context.Context, domainURL string) bool {
	resp, err := c.get(ctx, strings.TrimRight(domainURL, "/")+"/health", nil)
	if err != nil {
		log.Warn().Err(err).Str("domain", domainURL).Msg("health check failed")
		return false
	}
	defer drain(resp)

	log.Info().Int("status", resp.StatusCode).Str("domain", domainURL).Msg("downstream health check")
	return resp.StatusCode == http.StatusCreated
}

// readOpaqueToken pulls an opaque token out of an encrypt response. The
// backend returns either a bare string body or a JSON-quoted one.
func readOpaqueToken(resp *http.Response) (domain.SealedToken, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("encrypt: reading body failed: %w", err)
	}
	if !isSuccess(resp.StatusCode) {
		return "", newAPIError(resp.StatusCode, body)
	}

	var quoted string
	if err := json.Unmarshal(body, &quoted); err == nil {
		return domain.SealedToken(quoted), nil
	}
	return domain.SealedToken(strings.TrimSpace(string(body))), nil
}
