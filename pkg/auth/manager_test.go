package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/userkit/pkg/auth"
	"github.com/dmitrymomot/userkit/pkg/cookie"
	"github.com/dmitrymomot/userkit/pkg/docstore"
	"github.com/dmitrymomot/userkit/pkg/session"
	"github.com/dmitrymomot/userkit/pkg/user"
)

func setupManager(t *testing.T, opts ...auth.Option) (*auth.Manager, *session.Store, *user.Store) {
	t.Helper()

	cookies, err := cookie.New([]string{"test-secret-key-that-is-long-enough"})
	require.NoError(t, err)

	db, err := docstore.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sessions := session.New(cookies, db.Collection("auth_sessions"), session.WithCookieName("usid"))
	users := user.New(db.Collection("users"), user.WithBcryptCost(bcrypt.MinCost))

	return auth.New(sessions, users, opts...), sessions, users
}

// login runs a full login cycle and returns a request carrying the
// resulting auth cookie.
func login(t *testing.T, mgr *auth.Manager, username string) *http.Request {
	t.Helper()

	w := httptest.NewRecorder()
	ok, err := mgr.LoginUser(context.Background(), w, httptest.NewRequest("GET", "/", nil), username, "")
	require.NoError(t, err)
	require.True(t, ok)

	r := httptest.NewRequest("GET", "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestManager_LoginUser(t *testing.T) {
	mgr, sessions, users := setupManager(t)
	ctx := context.Background()

	ok, err := users.Create(ctx, "alice", "pw", map[string]any{"display_name": "Alice", "roles": "editor"})
	require.NoError(t, err)
	require.True(t, ok)

	t.Run("neither identifier", func(t *testing.T) {
		w := httptest.NewRecorder()
		_, err := mgr.LoginUser(ctx, w, httptest.NewRequest("GET", "/", nil), "", "")
		assert.ErrorIs(t, err, auth.ErrMissingIdentifier)
	})

	t.Run("unknown user", func(t *testing.T) {
		w := httptest.NewRecorder()
		ok, err := mgr.LoginUser(ctx, w, httptest.NewRequest("GET", "/", nil), "nobody", "")
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("login caches public fields, strips secrets", func(t *testing.T) {
		r := login(t, mgr, "alice")

		data, err := sessions.Data(ctx, r)
		require.NoError(t, err)
		assert.Equal(t, "alice", data["username"])
		assert.Equal(t, "Alice", data["display_name"])
		assert.Equal(t, "editor", data["roles"])
		assert.NotContains(t, data, user.PasswordHashKey)

		// The only _id in the snapshot is the session record's own,
		// never the user record's.
		userDoc, err := users.Find(ctx, "alice", "")
		require.NoError(t, err)
		assert.NotEqual(t, userDoc.ID(), data[docstore.IDKey])
	})

	t.Run("login by id", func(t *testing.T) {
		userDoc, err := users.Find(ctx, "alice", "")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		ok, err := mgr.LoginUser(ctx, w, httptest.NewRequest("GET", "/", nil), "", userDoc.ID())
		assert.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestManager_CurrentUser(t *testing.T) {
	mgr, _, users := setupManager(t)
	ctx := context.Background()

	ok, err := users.Create(ctx, "alice", "pw", nil)
	require.NoError(t, err)
	require.True(t, ok)

	t.Run("anonymous request", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		assert.Empty(t, mgr.CurrentUsername(ctx, r))

		id, err := mgr.CurrentUserID(ctx, r)
		assert.NoError(t, err)
		assert.Empty(t, id)
	})

	t.Run("logged in", func(t *testing.T) {
		r := login(t, mgr, "alice")

		assert.Equal(t, "alice", mgr.CurrentUsername(ctx, r))

		id, err := mgr.CurrentUserID(ctx, r)
		require.NoError(t, err)

		userDoc, err := users.Find(ctx, "alice", "")
		require.NoError(t, err)
		assert.Equal(t, userDoc.ID(), id)
	})

	t.Run("user deleted after login", func(t *testing.T) {
		r := login(t, mgr, "alice")

		_, err := users.Delete(ctx, "alice", "")
		require.NoError(t, err)

		id, err := mgr.CurrentUserID(ctx, r)
		assert.NoError(t, err)
		assert.Empty(t, id)
	})
}

func TestManager_LogoutUser(t *testing.T) {
	mgr, sessions, users := setupManager(t)
	ctx := context.Background()

	ok, err := users.Create(ctx, "alice", "pw", nil)
	require.NoError(t, err)
	require.True(t, ok)

	t.Run("clears the session", func(t *testing.T) {
		r := login(t, mgr, "alice")
		sid := sessions.ID(r)
		require.NotEmpty(t, sid)

		w := httptest.NewRecorder()
		require.NoError(t, mgr.LogoutUser(ctx, w, r))

		purged, err := sessions.PurgeByID(ctx, sid)
		require.NoError(t, err)
		assert.Nil(t, purged)
	})

	t.Run("logout without a session is a no-op", func(t *testing.T) {
		w := httptest.NewRecorder()
		assert.NoError(t, mgr.LogoutUser(ctx, w, httptest.NewRequest("GET", "/", nil)))
	})
}

func TestManager_RequireLogin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("redirects anonymous requests", func(t *testing.T) {
		mgr, _, _ := setupManager(t)

		w := httptest.NewRecorder()
		mgr.RequireLogin(next).ServeHTTP(w, httptest.NewRequest("GET", "/admin", nil))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, auth.DefaultLoginURL, w.Header().Get("Location"))
	})

	t.Run("denies with 403 when no login url", func(t *testing.T) {
		mgr, _, _ := setupManager(t, auth.WithLoginURL(""))

		w := httptest.NewRecorder()
		mgr.RequireLogin(next).ServeHTTP(w, httptest.NewRequest("GET", "/admin", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("passes authenticated requests through", func(t *testing.T) {
		mgr, _, users := setupManager(t)

		ok, err := users.Create(context.Background(), "alice", "pw", nil)
		require.NoError(t, err)
		require.True(t, ok)

		r := login(t, mgr, "alice")
		w := httptest.NewRecorder()
		mgr.RequireLogin(next).ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestNew_FailsFast(t *testing.T) {
	cookies, err := cookie.New([]string{"test-secret-key-that-is-long-enough"})
	require.NoError(t, err)

	db, err := docstore.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sessions := session.New(cookies, db.Collection("auth_sessions"))
	users := user.New(db.Collection("users"))

	assert.Panics(t, func() { auth.New(nil, users) })
	assert.Panics(t, func() { auth.New(sessions, nil) })
}
