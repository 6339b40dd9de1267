package docstore

import (
	"context"
	"maps"
)

// IDKey is the reserved document field holding the record identifier.
// The identifier is assigned by the collection on insert and never
// changes afterwards.
const IDKey = "_id"

// Document is a schemaless record stored in a collection.
type Document map[string]any

// ID returns the record identifier, or "" when the document has none yet.
func (d Document) ID() string {
	id, _ := d[IDKey].(string)
	return id
}

// Clone returns a shallow copy of the document so that callers can mutate
// the result without affecting stored state.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	c := make(Document, len(d))
	maps.Copy(c, d)
	return c
}

// Collection is a persistent set of documents keyed by an auto-assigned
// string identifier. Single-record operations are atomic; there are no
// multi-record transactions.
type Collection interface {
	// InsertOne stores a new document and returns its assigned identifier.
	// A pre-set _id field is respected, which callers normally omit.
	InsertOne(ctx context.Context, doc Document) (string, error)

	// FindByID retrieves a document by identifier.
	// Returns ErrNotFound when no such record exists.
	FindByID(ctx context.Context, id string) (Document, error)

	// FindOne retrieves the first document whose fields equal every
	// field of the filter. Returns ErrNotFound on no match.
	FindOne(ctx context.Context, filter Document) (Document, error)

	// Find retrieves all documents matching the filter.
	// A nil or empty filter matches every document.
	Find(ctx context.Context, filter Document) ([]Document, error)

	// UpdateOne merges the set fields into the identified document and
	// removes the unset keys from it. Returns ErrNotFound when no such
	// record exists. The _id field cannot be changed.
	UpdateOne(ctx context.Context, id string, set Document, unset []string) error

	// DeleteOne removes the identified document.
	// Returns ErrNotFound when no such record exists.
	DeleteOne(ctx context.Context, id string) error
}

// matches reports whether every filter field equals the corresponding
// document field. Used by backends without native query support.
func matches(doc, filter Document) bool {
	for key, want := range filter {
		got, ok := doc[key]
		if !ok || got != want {
			return false
		}
	}
	return true
}
