package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/emontalvo610/sso-oauth/domain"
)

// TokenHeader carries the bearer token on validation calls.
const TokenHeader = "PB-USER-TOKEN"

// ValidateSecret classifies a reset/verification link secret. 200 means the
// link is good, 410 means it expired; every other status and every
// transport failure degrades to INVALID. No retry.
func (c *Client) ValidateSecret(ctx context.Context, secret string) domain.Validity {
	resp, err := c.get(ctx, c.baseURL+"/v1/sso/validate_url/"+url.PathEscape(secret), nil)
	if err != nil {
		log.Error().Err(err).Str("secret", secret).Msg("ValidateSecret failed")
		return domain.ValidityInvalid
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusOK:
		return domain.ValidityValid
	case http.StatusGone:
		return domain.ValidityExpired
	default:
		return domain.ValidityInvalid
	}
}

// ValidateToken checks a bearer token against the backend. False on any
// error; nothing propagates.
func (c *Client) ValidateToken(ctx context.Context, token domain.SealedToken) bool {
	resp, err := c.get(ctx, c.baseURL+"/v1/sso/validate_token", map[string]string{
		TokenHeader: token.Reveal(),
	})
	if err != nil {
		log.Error().Err(err).Msg("ValidateToken failed")
		return false
	}
	defer drain(resp)

	return resp.StatusCode == http.StatusOK
}

// ValidateEmailSecret resolves an email-verification secret to its payload.
// Successful verdicts are memoized in the secret cache so reloading a
// verification page does not burn a second backend call. Returns nil on any
// error or non-success status.
func (c *Client) ValidateEmailSecret(ctx context.Context, secret string) json.RawMessage {
	if payload, ok := c.secrets.Get(ctx, secret); ok {
		return payload
	}

	resp, err := c.get(ctx, c.baseURL+"/v1/pub/validate_email/"+url.PathEscape(secret), nil)
	if err != nil {
		log.Error().Err(err).Str("secret", secret).Msg("ValidateEmail failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error().Err(err).Str("secret", secret).Msg("ValidateEmail: reading body failed")
		return nil
	}
	payload := json.RawMessage(raw)
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}

	if err := c.secrets.Set(ctx, secret, payload); err != nil {
		// Cache trouble never fails the validation itself.
		log.Warn().Err(err).Msg("ValidateEmail: caching verdict failed")
	}
	return payload
}
