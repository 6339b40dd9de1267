package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/userkit/pkg/cookie"
	"github.com/dmitrymomot/userkit/pkg/docstore"
)

// CreatedAtKey is the record field holding the creation timestamp in
// unix seconds. It is set exactly once, when the record is inserted.
const CreatedAtKey = "created_at"

// Store manages cookie-addressed session records in a document
// collection. The signed cookie carries the record identifier; the
// record holds an arbitrary string-keyed payload plus its creation time.
type Store struct {
	cookies    *cookie.Manager
	col        docstore.Collection
	cookieName string
	maxAge     time.Duration
	now        func() time.Time
	log        *slog.Logger
}

// New creates a session store over the given cookie manager and
// collection. Defaults: cookie name "session", max age 24h.
func New(cookies *cookie.Manager, col docstore.Collection, opts ...Option) *Store {
	if cookies == nil {
		panic("session: cookie manager is required")
	}
	if col == nil {
		panic("session: collection is required")
	}

	s := &Store{
		cookies:    cookies,
		col:        col,
		cookieName: DefaultConfig().CookieName,
		maxAge:     DefaultConfig().MaxAge,
		now:        time.Now,
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// NewFromConfig creates a session store from the provided Config.
func NewFromConfig(cfg Config, cookies *cookie.Manager, col docstore.Collection, opts ...Option) *Store {
	return New(cookies, col, append([]Option{WithConfig(cfg)}, opts...)...)
}

// ID returns the session identifier carried by the request's signed
// cookie, or "" when the cookie is absent or fails verification.
func (s *Store) ID(r *http.Request) string {
	id, err := s.cookies.GetSigned(r, s.cookieName)
	if err != nil {
		return ""
	}
	return id
}

// Get resolves the request's session and returns the value stored under
// key, or def when the session or the key is absent. With strict set,
// absence of a cookie fails with ErrNoSession and a stale cookie (no
// matching record) fails with ErrSessionNotFound.
func (s *Store) Get(ctx context.Context, r *http.Request, key string, def any, strict bool) (any, error) {
	sid := s.ID(r)
	if sid == "" {
		if strict {
			return nil, ErrNoSession
		}
		return def, nil
	}

	doc, err := s.col.FindByID(ctx, sid)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			if strict {
				return nil, fmt.Errorf("%w: sid=%s", ErrSessionNotFound, sid)
			}
			return def, nil
		}
		return nil, err
	}

	value, ok := doc[key]
	if !ok {
		return def, nil
	}
	return value, nil
}

// Set stores a single key/value pair in the session.
func (s *Store) Set(ctx context.Context, w http.ResponseWriter, r *http.Request, key string, value any) error {
	return s.SetMany(ctx, w, r, map[string]any{key: value})
}

// SetMany merges fields into the request's session record, creating the
// record and setting the session cookie when the request carries none.
// Every call ends with an expiry sweep of the whole collection.
//
// The cookie written for a fresh session lives on the response and is
// not readable through Get until the next request/response cycle.
// Callers must therefore perform at most one record-creating write per
// cycle: each further creating write inserts another record whose cookie
// overwrites the previous one, leaving unreachable records behind until
// the sweep reclaims them.
func (s *Store) SetMany(ctx context.Context, w http.ResponseWriter, r *http.Request, fields map[string]any) error {
	sid := s.ID(r)
	if sid != "" {
		_, err := s.col.FindByID(ctx, sid)
		switch {
		case err == nil:
			if err := s.col.UpdateOne(ctx, sid, docstore.Document(fields), nil); err != nil {
				return err
			}
			return s.DeleteExpired(ctx)
		case !errors.Is(err, docstore.ErrNotFound):
			return err
		}
		// The cookie points at a record that no longer exists; treat the
		// request as session-less and start fresh.
	}

	doc := docstore.Document{CreatedAtKey: s.now().Unix()}
	for key, value := range fields {
		doc[key] = value
	}

	id, err := s.col.InsertOne(ctx, doc)
	if err != nil {
		return err
	}

	if err := s.cookies.SetSigned(w, s.cookieName, id,
		cookie.WithPath("/"),
		cookie.WithMaxAge(int(s.maxAge.Seconds())),
	); err != nil {
		return err
	}

	s.log.DebugContext(ctx, "session created", slog.String("session_id", id))

	return s.DeleteExpired(ctx)
}

// Clear deletes the request's session record and expires the cookie,
// reporting whether a record was actually removed. With strict set, the
// absence of a cookie or of a matching record fails with ErrBadRequest.
func (s *Store) Clear(ctx context.Context, w http.ResponseWriter, r *http.Request, strict bool) (bool, error) {
	sid := s.ID(r)
	if sid == "" {
		if strict {
			return false, ErrBadRequest
		}
		return false, nil
	}

	_, err := s.col.FindByID(ctx, sid)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			if strict {
				return false, ErrBadRequest
			}
			return false, nil
		}
		return false, err
	}

	if err := s.col.DeleteOne(ctx, sid); err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return false, err
	}
	s.cookies.Delete(w, s.cookieName)
	return true, nil
}

// Data returns a snapshot of the full session record as a plain map, or
// an empty map when the request carries no valid session. Read-only: the
// snapshot is a copy and mutating it does not touch the store.
func (s *Store) Data(ctx context.Context, r *http.Request) (map[string]any, error) {
	sid := s.ID(r)
	if sid == "" {
		return map[string]any{}, nil
	}

	doc, err := s.col.FindByID(ctx, sid)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	return doc.Clone(), nil
}

// PurgeByID deletes the record with the given identifier directly,
// bypassing the cookie. Returns the deleted record, or nil when no such
// record exists (idempotent no-op). Intended for administration and
// tests.
func (s *Store) PurgeByID(ctx context.Context, id string) (map[string]any, error) {
	doc, err := s.col.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if err := s.col.DeleteOne(ctx, id); err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return nil, err
	}
	return doc, nil
}

// Age returns the time elapsed since the session record was created. A
// missing record or creation timestamp counts as created at the unix
// epoch, so broken sessions report an inflated age and read as expired.
func (s *Store) Age(ctx context.Context, r *http.Request) (time.Duration, error) {
	value, err := s.Get(ctx, r, CreatedAtKey, nil, false)
	if err != nil {
		return 0, err
	}

	created := asUnixSeconds(value)
	return time.Duration(s.now().Unix()-created) * time.Second, nil
}

// IsExpired reports whether the session's age exceeds the maximum age.
func (s *Store) IsExpired(ctx context.Context, r *http.Request) (bool, error) {
	age, err := s.Age(ctx, r)
	if err != nil {
		return false, err
	}
	return age > s.maxAge, nil
}

// DeleteExpired scans the collection and removes every record older than
// the maximum age. It runs inline after each write; there is no
// background clock, so records can outlive their expiry during idle
// periods with no writes. Full-collection scans are acceptable at the
// small sizes this store targets.
func (s *Store) DeleteExpired(ctx context.Context) error {
	docs, err := s.col.Find(ctx, nil)
	if err != nil {
		return err
	}

	now := s.now().Unix()
	removed := 0
	for _, doc := range docs {
		if now-asUnixSeconds(doc[CreatedAtKey]) > int64(s.maxAge.Seconds()) {
			if err := s.col.DeleteOne(ctx, doc.ID()); err != nil && !errors.Is(err, docstore.ErrNotFound) {
				return err
			}
			removed++
		}
	}

	if removed > 0 {
		s.log.DebugContext(ctx, "expired sessions removed", slog.Int("count", removed))
	}
	return nil
}

// asUnixSeconds normalizes a stored timestamp. JSON backends round-trip
// numbers as float64, mongo as int32/int64; anything unrecognized maps
// to zero so the record reads as ancient rather than fresh.
func asUnixSeconds(value any) int64 {
	switch v := value.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}
