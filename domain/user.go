package domain

// Validity classifies a one-time link secret. Anything the backend does not
// explicitly vouch for degrades to INVALID, never to VALID or EXPIRED.
type Validity string

const (
	ValidityValid   Validity = "VALID"
	ValidityExpired Validity = "EXPIRED"
	ValidityInvalid Validity = "INVALID"
)

// SealedToken is an opaque encrypted token that crosses a trust boundary.
// It marshals normally so it can travel in request bodies and cookies, but
// its String implementation is redacted so the raw value cannot leak through
// a log statement by accident. Use Reveal at the single hop that needs it.
type SealedToken string

// Reveal returns the raw token value.
func (t SealedToken) Reveal() string { return string(t) }

func (t SealedToken) String() string {
	if t == "" {
		return ""
	}
	return "[sealed]"
}

// IsZero reports whether the token is absent.
func (t SealedToken) IsZero() bool { return t == "" }

// User is the account record returned by the authentication API on a
// successful login. Immutable once received.
type User struct {
	Email        string      `json:"email"`
	Expiration   string      `json:"expiration"`
	IsCompleted  bool        `json:"isCompleted"`
	IsSuperAdmin bool        `json:"isSuperAdmin"`
	Token        SealedToken `json:"token"`
	OLTToken     SealedToken `json:"oltToken"`
	UUID         string      `json:"uuid"`
	PBUUID       string      `json:"pbUuid"`
}

// Credentials is the payload of a single login attempt. Ephemeral, never
// persisted.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	// Session carries an optional continuation payload handed over by a
	// sister application that started the login.
	Session string `json:"session,omitempty"`
	// Redirect is the post-login target the caller asked for.
	Redirect string `json:"redirect,omitempty"`
}

// RedirectPlan tells the caller where to send the browser after a login and
// which handoff token to carry along. Computed once per login.
type RedirectPlan struct {
	RedirectURI string      `json:"redirectURI"`
	OLT         SealedToken `json:"olt"`
}
