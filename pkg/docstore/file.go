package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// DB is a directory-backed document database. Each collection persists as
// a single JSON file under the data directory, loaded into memory on
// first use and flushed on every mutation. Suitable for small data sets;
// every write rewrites the collection file.
type DB struct {
	dir    string
	mu     sync.Mutex
	cols   map[string]*fileCollection
	closed bool
}

// Open initializes a document database rooted at dir, creating the
// directory when missing. The returned handle is the only way to reach
// the collections; there is no ambient global state and re-opening the
// same directory yields an independent handle over the same files.
func Open(dir string) (*DB, error) {
	if dir == "" {
		return nil, fmt.Errorf("docstore: empty data directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("docstore: create data dir: %w", err)
	}

	return &DB{
		dir:  dir,
		cols: make(map[string]*fileCollection),
	}, nil
}

// Collection returns a handle to the named collection, creating it lazily.
func (db *DB) Collection(name string) Collection {
	db.mu.Lock()
	defer db.mu.Unlock()

	if col, ok := db.cols[name]; ok {
		return col
	}

	col := &fileCollection{
		db:   db,
		path: filepath.Join(db.dir, name+".json"),
	}
	db.cols[name] = col
	return col
}

// Close marks the handle unusable. Data is already on disk; subsequent
// operations through previously obtained collections fail with
// ErrNotInitialized.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.closed = true
	return nil
}

func (db *DB) isClosed() bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.closed
}

type fileCollection struct {
	db   *DB
	path string

	mu     sync.RWMutex
	loaded bool
	docs   map[string]Document
}

func (c *fileCollection) InsertOne(ctx context.Context, doc Document) (string, error) {
	if doc == nil {
		return "", ErrInvalidDocument
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoaded(); err != nil {
		return "", err
	}

	stored := doc.Clone()
	id := stored.ID()
	if id == "" {
		id = uuid.NewString()
		stored[IDKey] = id
	}

	c.docs[id] = stored
	if err := c.flush(); err != nil {
		delete(c.docs, id)
		return "", err
	}
	return id, nil
}

func (c *fileCollection) FindByID(ctx context.Context, id string) (Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.ensureLoadedRead(); err != nil {
		return nil, err
	}

	doc, ok := c.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return doc.Clone(), nil
}

func (c *fileCollection) FindOne(ctx context.Context, filter Document) (Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.ensureLoadedRead(); err != nil {
		return nil, err
	}

	for _, doc := range c.docs {
		if matches(doc, filter) {
			return doc.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (c *fileCollection) Find(ctx context.Context, filter Document) ([]Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.ensureLoadedRead(); err != nil {
		return nil, err
	}

	result := make([]Document, 0, len(c.docs))
	for _, doc := range c.docs {
		if len(filter) == 0 || matches(doc, filter) {
			result = append(result, doc.Clone())
		}
	}
	return result, nil
}

func (c *fileCollection) UpdateOne(ctx context.Context, id string, set Document, unset []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoaded(); err != nil {
		return err
	}

	doc, ok := c.docs[id]
	if !ok {
		return ErrNotFound
	}

	updated := doc.Clone()
	for key, value := range set {
		if key == IDKey {
			continue
		}
		updated[key] = value
	}
	for _, key := range unset {
		if key == IDKey {
			continue
		}
		delete(updated, key)
	}

	c.docs[id] = updated
	if err := c.flush(); err != nil {
		c.docs[id] = doc
		return err
	}
	return nil
}

func (c *fileCollection) DeleteOne(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoaded(); err != nil {
		return err
	}

	doc, ok := c.docs[id]
	if !ok {
		return ErrNotFound
	}

	delete(c.docs, id)
	if err := c.flush(); err != nil {
		c.docs[id] = doc
		return err
	}
	return nil
}

// ensureLoaded reads the collection file into memory once.
// Callers must hold the write lock.
func (c *fileCollection) ensureLoaded() error {
	if c.db.isClosed() {
		return ErrNotInitialized
	}
	if c.loaded {
		return nil
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("docstore: read %s: %w", c.path, err)
		}
		c.docs = make(map[string]Document)
		c.loaded = true
		return nil
	}

	docs := make(map[string]Document)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &docs); err != nil {
			return fmt.Errorf("docstore: parse %s: %w", c.path, err)
		}
	}

	c.docs = docs
	c.loaded = true
	return nil
}

// ensureLoadedRead is the read-path variant: it upgrades to a write lock
// only when the initial load is still pending.
func (c *fileCollection) ensureLoadedRead() error {
	if c.db.isClosed() {
		return ErrNotInitialized
	}
	if c.loaded {
		return nil
	}

	c.mu.RUnlock()
	c.mu.Lock()
	err := c.ensureLoaded()
	c.mu.Unlock()
	c.mu.RLock()
	return err
}

// flush rewrites the collection file atomically via a temp file rename.
// Callers must hold the write lock.
func (c *fileCollection) flush() error {
	data, err := json.MarshalIndent(c.docs, "", "  ")
	if err != nil {
		return fmt.Errorf("docstore: marshal %s: %w", c.path, err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("docstore: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("docstore: rename %s: %w", tmp, err)
	}
	return nil
}
