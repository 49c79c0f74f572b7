package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emontalvo610/sso-oauth/backend"
	"github.com/emontalvo610/sso-oauth/cache"
	"github.com/emontalvo610/sso-oauth/domain"
)

func newTestClient(t *testing.T, baseURL string) *backend.Client {
	t.Helper()
	secrets := cache.NewMemorySecretCache(time.Minute)
	t.Cleanup(func() { _ = secrets.Close() })
	return backend.NewClient(backend.Config{
		BaseURL:     baseURL,
		Timeout:     2 * time.Second,
		SecretCache: secrets,
	})
}

// deadServer returns a base URL that refuses connections.
func deadServer(t *testing.T) string {
	t.Helper()
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	return server.URL
}

func TestValidateSecret(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   domain.Validity
	}{
		{"ok means valid", http.StatusOK, domain.ValidityValid},
		{"gone means expired", http.StatusGone, domain.ValidityExpired},
		{"not found means invalid", http.StatusNotFound, domain.ValidityInvalid},
		{"server error means invalid", http.StatusInternalServerError, domain.ValidityInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/sso/validate_url/sec-1", r.URL.Path)
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := newTestClient(t, server.URL)
			assert.Equal(t, tt.want, client.ValidateSecret(context.Background(), "sec-1"))
		})
	}
}

func TestValidateSecret_TransportError(t *testing.T) {
	client := newTestClient(t, deadServer(t))
	assert.Equal(t, domain.ValidityInvalid, client.ValidateSecret(context.Background(), "sec-1"))
}

func TestValidateToken(t *testing.T) {
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/sso/validate_token", r.URL.Path)
		gotHeader = r.Header.Get("PB-USER-TOKEN")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	assert.True(t, client.ValidateToken(context.Background(), domain.SealedToken("tok-1")))
	assert.Equal(t, "tok-1", gotHeader)
}

func TestValidateToken_Failures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	assert.False(t, client.ValidateToken(context.Background(), "bad"))

	client = newTestClient(t, deadServer(t))
	assert.False(t, client.ValidateToken(context.Background(), "tok"))
}

func TestValidateEmailSecret_Memoized(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"email":"a@b.com"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	first := client.ValidateEmailSecret(ctx, "s1")
	require.NotNil(t, first)
	assert.JSONEq(t, `{"email":"a@b.com"}`, string(first))

	second := client.ValidateEmailSecret(ctx, "s1")
	require.NotNil(t, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second check must come from the cache")

	client.ValidateEmailSecret(ctx, "s2")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "a different secret is a fresh call")
}

func TestValidateEmailSecret_FailureNotCached(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	assert.Nil(t, client.ValidateEmailSecret(ctx, "s1"))
	assert.Nil(t, client.ValidateEmailSecret(ctx, "s1"))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "failures must not be memoized")
}

func TestLookupEmail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/data/user-email-lookup/known@example.com" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	assert.True(t, client.LookupEmail(context.Background(), "known@example.com"))
	assert.False(t, client.LookupEmail(context.Background(), "unknown@example.com"))

	client = newTestClient(t, deadServer(t))
	assert.False(t, client.LookupEmail(context.Background(), "known@example.com"))
}

func TestMaskedPhoneNumber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/data/user-email-lookup/with-phone@example.com":
			_, _ = w.Write([]byte(`{"valid":true,"masked_phone_number":"(***) ***-1234"}`))
		case "/v1/data/user-email-lookup/no-phone@example.com":
			_, _ = w.Write([]byte(`{"valid":false}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	phone, ok := client.MaskedPhoneNumber(context.Background(), "with-phone@example.com")
	require.True(t, ok)
	assert.Equal(t, "(***) ***-1234", phone)

	_, ok = client.MaskedPhoneNumber(context.Background(), "no-phone@example.com")
	assert.False(t, ok)

	_, ok = client.MaskedPhoneNumber(context.Background(), "missing@example.com")
	assert.False(t, ok)
}

func TestLogin_Success(t *testing.T) {
	const ua = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/sso/login", r.URL.Path)

		assert.Equal(t, "Chrome", r.Header.Get("BROWSER"))
		assert.Equal(t, "120.0.0.0", r.Header.Get("BROWSER-VERSION"))
		assert.Equal(t, "false", r.Header.Get("IS-MOBILE"))
		assert.Equal(t, ua, r.Header.Get("SERVER-MACHINE-NAME"))

		var req struct {
			Payload struct {
				Email    string `json:"email"`
				Password string `json:"password"`
			} `json:"payload"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a@b.com", req.Payload.Email)
		assert.Equal(t, "pw", req.Payload.Password)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"email":"a@b.com","expiration":"2026-09-02T00:00:00Z",
			"isCompleted":false,"isSuperAdmin":true,
			"token":"T","oltToken":"O","uuid":"u1","pbUuid":"p1"
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	user, err := client.Login(context.Background(), "a@b.com", "pw", ua)
	require.NoError(t, err)

	assert.Equal(t, "a@b.com", user.Email)
	assert.Equal(t, "u1", user.UUID)
	assert.Equal(t, "p1", user.PBUUID)
	assert.Equal(t, "T", user.Token.Reveal())
	assert.Equal(t, "O", user.OLTToken.Reveal())
	assert.False(t, user.IsCompleted)
	assert.True(t, user.IsSuperAdmin)
}

func TestLogin_BackendMessageSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"Message":"bad password"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Login(context.Background(), "a@b.com", "nope", "ua")
	require.Error(t, err)

	var apiErr *backend.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "bad password", apiErr.Error())
}

func TestLogin_TransportError(t *testing.T) {
	client := newTestClient(t, deadServer(t))
	_, err := client.Login(context.Background(), "a@b.com", "pw", "ua")
	require.Error(t, err)

	var apiErr *backend.APIError
	assert.False(t, errors.As(err, &apiErr), "transport failures carry no backend message")
}

func TestEncryptOLT(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/pb_data/encrypt", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "u1", req["ID"])
		assert.Equal(t, "https://sso.example.com", req["URL"])
		assert.Equal(t, float64(0), req["LOGOUT"])
		assert.InDelta(t, time.Now().Unix(), req["TIMESTAMP"], 5)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`"olt-token"`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	olt, err := client.EncryptOLT(context.Background(), "u1", "https://sso.example.com")
	require.NoError(t, err)
	assert.Equal(t, "olt-token", olt.Reveal())
}

func TestEncryptOLT_BareBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		_, _ = w.Write([]byte("raw-olt\n"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	olt, err := client.EncryptOLT(context.Background(), "u1", "https://sso.example.com")
	require.NoError(t, err)
	assert.Equal(t, "raw-olt", olt.Reveal())
}

func TestEncryptHandoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Session   domain.SessionData `json:"SESSION"`
			PBrackets struct {
				URL string `json:"URL"`
				OLT string `json:"OLT"`
			} `json:"PBRACKETS"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a@b.com", req.Session.Email)
		assert.Equal(t, "https://sso.example.com", req.PBrackets.URL)
		assert.Equal(t, "olt-token", req.PBrackets.OLT)

		_, _ = w.Write([]byte(`"handoff-token"`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	token, err := client.EncryptHandoff(context.Background(),
		domain.SessionData{Email: "a@b.com", UUID: "u1"},
		"https://sso.example.com", "olt-token")
	require.NoError(t, err)
	assert.Equal(t, "handoff-token", token.Reveal())
}

func TestExchangeContinuation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "u1", req["ID"])
		assert.Equal(t, "a@b.com", req["EMAIL"])
		assert.Equal(t, "continuation-blob", req["SESSION"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"redirect":"https://app.example.com/resume","encryption":"q-token"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.ExchangeContinuation(context.Background(), "continuation-blob", "u1", "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "https://app.example.com/resume", result.Redirect)
	assert.Equal(t, "q-token", result.Encryption.Reveal())
}

func TestCheckHealth(t *testing.T) {
	makeServer := func(status int) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/health", r.URL.Path)
			w.WriteHeader(status)
		}))
	}

	healthy := makeServer(http.StatusCreated)
	defer healthy.Close()
	client := newTestClient(t, healthy.URL)
	assert.True(t, client.CheckHealth(context.Background(), healthy.URL))

	// 200 is not the downstream's healthy signal.
	plainOK := makeServer(http.StatusOK)
	defer plainOK.Close()
	assert.False(t, client.CheckHealth(context.Background(), plainOK.URL))

	assert.False(t, client.CheckHealth(context.Background(), deadServer(t)))
}
