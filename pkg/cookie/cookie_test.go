package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/userkit/pkg/cookie"
)

const testSecret = "test-secret-key-that-is-long-enough"

func TestNew(t *testing.T) {
	t.Run("valid secret", func(t *testing.T) {
		mgr, err := cookie.New([]string{testSecret})
		assert.NoError(t, err)
		assert.NotNil(t, mgr)
	})

	t.Run("no secrets", func(t *testing.T) {
		_, err := cookie.New(nil)
		assert.ErrorIs(t, err, cookie.ErrNoSecret)
	})

	t.Run("empty secrets filtered out", func(t *testing.T) {
		_, err := cookie.New([]string{"", ""})
		assert.ErrorIs(t, err, cookie.ErrNoSecret)
	})

	t.Run("short secret", func(t *testing.T) {
		_, err := cookie.New([]string{"too-short"})
		assert.ErrorIs(t, err, cookie.ErrSecretTooShort)
	})
}

func TestManager_SignedRoundTrip(t *testing.T) {
	mgr, err := cookie.New([]string{testSecret})
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		w := httptest.NewRecorder()
		require.NoError(t, mgr.SetSigned(w, "sid", "session-id-42"))

		r := httptest.NewRequest("GET", "/", nil)
		for _, c := range w.Result().Cookies() {
			r.AddCookie(c)
		}

		value, err := mgr.GetSigned(r, "sid")
		assert.NoError(t, err)
		assert.Equal(t, "session-id-42", value)
	})

	t.Run("missing cookie", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		_, err := mgr.GetSigned(r, "sid")
		assert.ErrorIs(t, err, cookie.ErrCookieNotFound)
	})

	t.Run("tampered value", func(t *testing.T) {
		w := httptest.NewRecorder()
		require.NoError(t, mgr.SetSigned(w, "sid", "session-id-42"))

		c := w.Result().Cookies()[0]
		c.Value = "x" + c.Value[1:]

		r := httptest.NewRequest("GET", "/", nil)
		r.AddCookie(c)

		_, err := mgr.GetSigned(r, "sid")
		assert.Error(t, err)
	})

	t.Run("unsigned value rejected", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.AddCookie(&http.Cookie{Name: "sid", Value: "plain-value"})

		_, err := mgr.GetSigned(r, "sid")
		assert.ErrorIs(t, err, cookie.ErrInvalidFormat)
	})
}

func TestManager_KeyRotation(t *testing.T) {
	oldMgr, err := cookie.New([]string{"old-secret-key-that-is-long-enough!!"})
	require.NoError(t, err)

	// New manager signs with the new secret but still verifies the old one
	newMgr, err := cookie.New([]string{testSecret, "old-secret-key-that-is-long-enough!!"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, oldMgr.SetSigned(w, "sid", "legacy"))

	r := httptest.NewRequest("GET", "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}

	value, err := newMgr.GetSigned(r, "sid")
	assert.NoError(t, err)
	assert.Equal(t, "legacy", value)
}

func TestManager_Attributes(t *testing.T) {
	mgr, err := cookie.New([]string{testSecret})
	require.NoError(t, err)

	t.Run("defaults", func(t *testing.T) {
		w := httptest.NewRecorder()
		require.NoError(t, mgr.Set(w, "name", "value"))

		c := w.Result().Cookies()[0]
		assert.Equal(t, "/", c.Path)
		assert.True(t, c.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	})

	t.Run("per-call overrides", func(t *testing.T) {
		w := httptest.NewRecorder()
		require.NoError(t, mgr.Set(w, "name", "value",
			cookie.WithMaxAge(3600),
			cookie.WithPath("/app"),
			cookie.WithSecure(true),
		))

		c := w.Result().Cookies()[0]
		assert.Equal(t, 3600, c.MaxAge)
		assert.Equal(t, "/app", c.Path)
		assert.True(t, c.Secure)
	})

	t.Run("delete expires cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		mgr.Delete(w, "name")

		c := w.Result().Cookies()[0]
		assert.Equal(t, -1, c.MaxAge)
		assert.Empty(t, c.Value)
	})
}

func TestNewFromConfig(t *testing.T) {
	t.Run("secrets from config", func(t *testing.T) {
		mgr, err := cookie.NewFromConfig(cookie.Config{
			Secrets:  testSecret + " , " + "another-secret-key-that-is-long-enough",
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		assert.NoError(t, err)
		assert.NotNil(t, mgr)
	})

	t.Run("empty secrets fail", func(t *testing.T) {
		_, err := cookie.NewFromConfig(cookie.DefaultConfig())
		assert.ErrorIs(t, err, cookie.ErrNoSecret)
	})
}
