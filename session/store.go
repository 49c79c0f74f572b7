// Package session persists the user session as a single encrypted, signed
// cookie. The browser holds the bytes; only this process, holding the
// sealing key, can read or mint them. There is no server-side session
// state.
package session

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/emontalvo610/sso-oauth/domain"
)

// CookieName is the session cookie written by the front door.
const CookieName = "pb_sso_session"

// ErrNoSession is returned when the request carries no readable session.
var ErrNoSession = errors.New("no session")

// envelope is what actually gets sealed into the cookie.
type envelope struct {
	ID       string             `json:"id"`
	IssuedAt int64              `json:"iat"`
	User     domain.SessionData `json:"user"`
}

// Store seals and opens session cookies.
type Store struct {
	aead   cipher.AEAD
	ttl    time.Duration
	secure bool

	now func() time.Time
}

// NewStore builds a cookie store keyed by secret. The secret is stretched
// to the fixed AEAD key size, so any non-empty string works.
func NewStore(secret string, ttl time.Duration, secure bool) (*Store, error) {
	if secret == "" {
		return nil, errors.New("session secret must not be empty")
	}
	key := sha256.Sum256([]byte(secret))
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to build session cipher: %w", err)
	}
	return &Store{
		aead:   aead,
		ttl:    ttl,
		secure: secure,
		now:    time.Now,
	}, nil
}

// Save seals data into a fresh session cookie on w. The session is written
// if and only if this is called; there is no partial write path.
func (s *Store) Save(w http.ResponseWriter, data domain.SessionData) error {
	env := envelope{
		ID:       uuid.NewString(),
		IssuedAt: s.now().Unix(),
		User:     data,
	}
	plaintext, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate session nonce: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, plaintext, nil)

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    base64.RawURLEncoding.EncodeToString(sealed),
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Get opens the session cookie on r. Any defect (missing cookie, bad
// base64, failed decryption, stale issue time) reads as "no session".
func (s *Store) Get(r *http.Request) (*domain.SessionData, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, ErrNoSession
	}
	sealed, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil || len(sealed) < s.aead.NonceSize() {
		return nil, ErrNoSession
	}

	nonce, ciphertext := sealed[:s.aead.NonceSize()], sealed[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrNoSession
	}

	var env envelope
	if err := json.Unmarshal(plaintext, &env); err != nil {
		return nil, ErrNoSession
	}
	if s.ttl > 0 && s.now().After(time.Unix(env.IssuedAt, 0).Add(s.ttl)) {
		// The browser should have dropped the cookie already; don't trust
		// one it kept past its window.
		return nil, ErrNoSession
	}
	return &env.User, nil
}

// Destroy expires the session cookie. Always succeeds.
func (s *Store) Destroy(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
