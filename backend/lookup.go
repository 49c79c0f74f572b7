package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"
)

// LookupEmail reports whether an account exists for email. Any failure,
// transport or otherwise, reads as "not found".
func (c *Client) LookupEmail(ctx context.Context, email string) bool {
	resp, err := c.get(ctx, c.baseURL+"/v1/data/user-email-lookup/"+url.PathEscape(email), nil)
	if err != nil {
		log.Error().Err(err).Str("email", email).Msg("LookupEmail failed")
		return false
	}
	defer drain(resp)

	return resp.StatusCode == http.StatusOK
}

type phoneLookupBody struct {
	Valid             bool   `json:"valid"`
	MaskedPhoneNumber string `json:"masked_phone_number"`
}

// MaskedPhoneNumber returns the masked phone number on file for email, for
// the "verify by text message" choice. Empty with ok=false when the account
// is unknown, has no valid phone, or the lookup fails.
func (c *Client) MaskedPhoneNumber(ctx context.Context, email string) (string, bool) {
	resp, err := c.get(ctx, c.baseURL+"/v1/data/user-email-lookup/"+url.PathEscape(email), nil)
	if err != nil {
		log.Error().Err(err).Str("email", email).Msg("LookupUserByEmail failed")
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	var body phoneLookupBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Error().Err(err).Str("email", email).Msg("LookupUserByEmail: bad response body")
		return "", false
	}
	if !body.Valid {
		return "", false
	}
	return body.MaskedPhoneNumber, true
}
