package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/userkit/pkg/docstore"
	"github.com/dmitrymomot/userkit/pkg/logger"
	"github.com/dmitrymomot/userkit/pkg/session"
	"github.com/dmitrymomot/userkit/pkg/user"
)

// DefaultLoginURL is where RequireLogin redirects anonymous requests
// unless overridden with WithLoginURL.
const DefaultLoginURL = "/login"

// Manager composes a session store and a user store into login/logout
// operations plus an access guard. The session store should use a cookie
// name dedicated to authentication, distinct from any application-level
// session cookie.
type Manager struct {
	sessions *session.Store
	users    *user.Store
	loginURL string
	log      *slog.Logger
}

// Option is a functional option for configuring the Manager
type Option func(*Manager)

// WithLoginURL sets the redirect target for RequireLogin; an empty URL
// makes the guard respond 403 instead of redirecting.
func WithLoginURL(url string) Option {
	return func(m *Manager) {
		m.loginURL = url
	}
}

// WithLogger sets a custom logger for the manager
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// New creates an auth manager. Both stores are required; constructing a
// manager without them is a configuration error and fails immediately
// rather than at first use.
func New(sessions *session.Store, users *user.Store, opts ...Option) *Manager {
	if sessions == nil {
		panic("auth: session store is required")
	}
	if users == nil {
		panic("auth: user store is required")
	}

	m := &Manager{
		sessions: sessions,
		users:    users,
		loginURL: DefaultLoginURL,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// LoginUser resolves the target user by username or id and writes the
// user's record into the session, minus the password hash and the
// storage identifier — neither secrets nor raw record ids belong in a
// session payload. Reports false when no such user exists; fails with
// ErrMissingIdentifier when neither identifier is given.
func (m *Manager) LoginUser(ctx context.Context, w http.ResponseWriter, r *http.Request, username, id string) (bool, error) {
	if username == "" && id == "" {
		return false, ErrMissingIdentifier
	}

	doc, err := m.users.Find(ctx, username, id)
	if err != nil {
		return false, err
	}
	if doc == nil {
		return false, nil
	}

	payload := make(map[string]any, len(doc))
	for key, value := range doc {
		if key == user.PasswordHashKey || key == docstore.IDKey {
			continue
		}
		payload[key] = value
	}

	if err := m.sessions.SetMany(ctx, w, r, payload); err != nil {
		return false, err
	}

	uname, _ := doc[user.UsernameKey].(string)
	m.log.InfoContext(ctx, "user logged in",
		logger.Username(uname),
		logger.Component("auth"),
	)
	return true, nil
}

// LogoutUser clears the current session (non-strict: logging out without
// a session is a no-op, not an error).
func (m *Manager) LogoutUser(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cleared, err := m.sessions.Clear(ctx, w, r, false)
	if err != nil {
		return err
	}
	if cleared {
		m.log.InfoContext(ctx, "user logged out", logger.Component("auth"))
	}
	return nil
}

// CurrentUsername returns the username stored in the current session,
// or "" when the request carries no authenticated session.
func (m *Manager) CurrentUsername(ctx context.Context, r *http.Request) string {
	value, err := m.sessions.Get(ctx, r, user.UsernameKey, nil, false)
	if err != nil {
		return ""
	}
	username, _ := value.(string)
	return username
}

// CurrentUserID resolves the current user's record identifier through
// the user store. The session payload never carries raw storage ids, so
// this costs one store read; "" when no user is logged in or the record
// is gone.
func (m *Manager) CurrentUserID(ctx context.Context, r *http.Request) (string, error) {
	username := m.CurrentUsername(ctx, r)
	if username == "" {
		return "", nil
	}

	doc, err := m.users.Find(ctx, username, "")
	if err != nil {
		return "", err
	}
	if doc == nil {
		return "", nil
	}
	return doc.ID(), nil
}
