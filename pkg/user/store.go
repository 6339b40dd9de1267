package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/userkit/pkg/docstore"
	"github.com/dmitrymomot/userkit/pkg/logger"
)

const (
	// UsernameKey is the record field holding the unique username.
	UsernameKey = "username"

	// PasswordHashKey is the record field holding the bcrypt hash.
	// The plaintext password is never stored.
	PasswordHashKey = "password_hash"
)

// Store provides CRUD over user records in a document collection with
// bcrypt password hashing.
type Store struct {
	col  docstore.Collection
	cost int
	log  *slog.Logger
}

// Option is a functional option for configuring the Store
type Option func(*Store)

// WithBcryptCost sets the bcrypt cost for password hashing
func WithBcryptCost(cost int) Option {
	return func(s *Store) {
		s.cost = cost
	}
}

// WithLogger sets a custom logger for the store
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// New creates a user store over the given collection.
func New(col docstore.Collection, opts ...Option) *Store {
	if col == nil {
		panic("user: collection is required")
	}

	s := &Store{
		col:  col,
		cost: bcrypt.DefaultCost,
		log:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Find retrieves a user record by username or id; username takes
// priority when both are given. Returns (nil, nil) when no record
// matches or when both identifiers are empty.
func (s *Store) Find(ctx context.Context, username, id string) (docstore.Document, error) {
	var (
		doc docstore.Document
		err error
	)

	switch {
	case username != "":
		doc, err = s.col.FindOne(ctx, docstore.Document{UsernameKey: username})
	case id != "":
		doc, err = s.col.FindByID(ctx, id)
	default:
		return nil, nil
	}

	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return doc, nil
}

// List returns all user records.
func (s *Store) List(ctx context.Context) ([]docstore.Document, error) {
	return s.col.Find(ctx, nil)
}

// Create stores a new user with a hashed password and the merged extra
// fields, reporting false when the username is already taken.
//
// The duplicate check and the insert are not atomic: two concurrent
// creates with the same new username can both succeed. Deployments that
// need strict uniqueness must enforce it at the storage backend (e.g. a
// unique index on username in mongo).
func (s *Store) Create(ctx context.Context, username, password string, extra map[string]any) (bool, error) {
	if username == "" {
		return false, fmt.Errorf("user: empty username")
	}

	existing, err := s.Find(ctx, username, "")
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return false, fmt.Errorf("user: hash password: %w", err)
	}

	doc := docstore.Document{
		UsernameKey:     username,
		PasswordHashKey: string(hash),
	}
	for key, value := range extra {
		doc[key] = value
	}

	id, err := s.col.InsertOne(ctx, doc)
	if err != nil {
		return false, err
	}

	s.log.InfoContext(ctx, "user created",
		slog.String("username", username),
		logger.UserID(id),
	)
	return true, nil
}

// Update applies the tagged fields to the named user's record: Set
// values are upserted, Remove fields are deleted from the record.
// Reports false when no such user exists.
func (s *Store) Update(ctx context.Context, username string, fields map[string]Field) (bool, error) {
	doc, err := s.Find(ctx, username, "")
	if err != nil {
		return false, err
	}
	if doc == nil {
		return false, nil
	}

	set := docstore.Document{}
	var unset []string
	for key, field := range fields {
		if field.IsRemove() {
			unset = append(unset, key)
		} else {
			set[key] = field.Value()
		}
	}

	if err := s.col.UpdateOne(ctx, doc.ID(), set, unset); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes a user record by username or id and returns it, or nil
// when no record matched.
func (s *Store) Delete(ctx context.Context, username, id string) (docstore.Document, error) {
	doc, err := s.Find(ctx, username, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}

	if err := s.col.DeleteOne(ctx, doc.ID()); err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return nil, err
	}

	uname, _ := doc[UsernameKey].(string)
	s.log.InfoContext(ctx, "user deleted",
		slog.String("username", uname),
		logger.UserID(doc.ID()),
	)
	return doc, nil
}

// Authenticate reports whether a record exists for the username and the
// provided password verifies against its stored hash.
func (s *Store) Authenticate(ctx context.Context, username, password string) (bool, error) {
	doc, err := s.Find(ctx, username, "")
	if err != nil {
		return false, err
	}
	if doc == nil {
		return false, nil
	}

	hash, ok := doc[PasswordHashKey].(string)
	if !ok {
		return false, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return false, nil
	}
	return true, nil
}

// ChangePassword re-hashes and stores a new password for the named user,
// reporting false when no such user exists.
func (s *Store) ChangePassword(ctx context.Context, username, newPassword string) (bool, error) {
	doc, err := s.Find(ctx, username, "")
	if err != nil {
		return false, err
	}
	if doc == nil {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return false, fmt.Errorf("user: hash password: %w", err)
	}

	if err := s.col.UpdateOne(ctx, doc.ID(), docstore.Document{PasswordHashKey: string(hash)}, nil); err != nil {
		return false, err
	}

	s.log.InfoContext(ctx, "password changed", slog.String("username", username))
	return true, nil
}
