package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ErrFailedToConnectToMongo indicates all connection attempts to the mongo server failed
var ErrFailedToConnectToMongo = errors.New("docstore.mongo_connect_failed")

// MongoConfig represents the configuration for the mongo-backed store.
type MongoConfig struct {
	ConnectionURL  string        `env:"MONGODB_URL,required"`                     // ConnectionURL is the URL of the database.
	Database       string        `env:"MONGODB_DATABASE" envDefault:"userkit"`    // Database is the database name holding the collections.
	ConnectTimeout time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s"` // ConnectTimeout is the timeout for connecting to the database.
	RetryAttempts  int           `env:"MONGODB_RETRY_ATTEMPTS" envDefault:"3"`    // RetryAttempts is the number of retry attempts to connect to the database.
	RetryInterval  time.Duration `env:"MONGODB_RETRY_INTERVAL" envDefault:"5s"`   // RetryInterval is the interval between retry attempts.
}

// ConnectMongo creates a mongo client and returns a database handle,
// retrying per the config before giving up.
func ConnectMongo(ctx context.Context, cfg MongoConfig) (*mongo.Database, error) {
	for range cfg.RetryAttempts {
		client, err := mongo.Connect(
			options.Client().
				ApplyURI(cfg.ConnectionURL).
				SetConnectTimeout(cfg.ConnectTimeout),
		)
		if err == nil {
			if err := client.Ping(ctx, nil); err == nil {
				return client.Database(cfg.Database), nil
			}
		}

		// Wait for the next retry interval
		time.Sleep(cfg.RetryInterval)
	}

	return nil, ErrFailedToConnectToMongo
}

// NewMongoCollection wraps a mongo collection as a docstore Collection.
// Record identifiers are uuid strings generated client-side so they stay
// portable across backends.
func NewMongoCollection(col *mongo.Collection) Collection {
	return &mongoCollection{col: col}
}

type mongoCollection struct {
	col *mongo.Collection
}

func (c *mongoCollection) InsertOne(ctx context.Context, doc Document) (string, error) {
	if doc == nil {
		return "", ErrInvalidDocument
	}

	stored := doc.Clone()
	id := stored.ID()
	if id == "" {
		id = uuid.NewString()
		stored[IDKey] = id
	}

	if _, err := c.col.InsertOne(ctx, bson.M(stored)); err != nil {
		return "", fmt.Errorf("docstore: mongo insert: %w", err)
	}
	return id, nil
}

func (c *mongoCollection) FindByID(ctx context.Context, id string) (Document, error) {
	return c.FindOne(ctx, Document{IDKey: id})
}

func (c *mongoCollection) FindOne(ctx context.Context, filter Document) (Document, error) {
	var doc bson.M
	if err := c.col.FindOne(ctx, bson.M(filter)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("docstore: mongo find one: %w", err)
	}
	return Document(doc), nil
}

func (c *mongoCollection) Find(ctx context.Context, filter Document) ([]Document, error) {
	if filter == nil {
		filter = Document{}
	}

	cursor, err := c.col.Find(ctx, bson.M(filter))
	if err != nil {
		return nil, fmt.Errorf("docstore: mongo find: %w", err)
	}
	defer cursor.Close(ctx)

	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("docstore: mongo decode: %w", err)
	}

	docs := make([]Document, len(raw))
	for i, m := range raw {
		docs[i] = Document(m)
	}
	return docs, nil
}

func (c *mongoCollection) UpdateOne(ctx context.Context, id string, set Document, unset []string) error {
	update := bson.M{}
	if len(set) > 0 {
		fields := set.Clone()
		delete(fields, IDKey)
		update["$set"] = bson.M(fields)
	}
	if len(unset) > 0 {
		fields := bson.M{}
		for _, key := range unset {
			if key != IDKey {
				fields[key] = ""
			}
		}
		update["$unset"] = fields
	}
	if len(update) == 0 {
		// Nothing to change; still report a missing record.
		if _, err := c.FindByID(ctx, id); err != nil {
			return err
		}
		return nil
	}

	res, err := c.col.UpdateOne(ctx, bson.M{IDKey: id}, update)
	if err != nil {
		return fmt.Errorf("docstore: mongo update: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *mongoCollection) DeleteOne(ctx context.Context, id string) error {
	res, err := c.col.DeleteOne(ctx, bson.M{IDKey: id})
	if err != nil {
		return fmt.Errorf("docstore: mongo delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
