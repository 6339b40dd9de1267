package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrRedisNotReady indicates redis did not become ready within the configured attempts
var ErrRedisNotReady = errors.New("docstore.redis_not_ready")

// RedisConfig represents the configuration for the redis-backed store.
type RedisConfig struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"` // ConnectionURL should be in the format "redis://:password@localhost:6379/0"
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`          // ConnectTimeout is the timeout for connecting to the server.
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`             // RetryAttempts is the number of retry attempts to connect.
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`            // RetryInterval is the interval between retry attempts.
}

// ConnectRedis establishes a connection to a redis server, retrying per
// the config before giving up.
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	opt, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, fmt.Errorf("docstore: parse redis url: %w", err)
	}

	for range cfg.RetryAttempts {
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	return nil, ErrRedisNotReady
}

// NewRedisCollection wraps a redis client as a docstore Collection. Each
// document is stored as a JSON value under "<name>:<id>"; filtered finds
// scan the key space, which is acceptable at the small collection sizes
// this store targets.
func NewRedisCollection(client *redis.Client, name string) Collection {
	return &redisCollection{client: client, prefix: name + ":"}
}

type redisCollection struct {
	client *redis.Client
	prefix string
}

func (c *redisCollection) key(id string) string {
	return c.prefix + id
}

func (c *redisCollection) InsertOne(ctx context.Context, doc Document) (string, error) {
	if doc == nil {
		return "", ErrInvalidDocument
	}

	stored := doc.Clone()
	id := stored.ID()
	if id == "" {
		id = uuid.NewString()
		stored[IDKey] = id
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("docstore: marshal document: %w", err)
	}
	if err := c.client.Set(ctx, c.key(id), data, 0).Err(); err != nil {
		return "", fmt.Errorf("docstore: redis set: %w", err)
	}
	return id, nil
}

func (c *redisCollection) FindByID(ctx context.Context, id string) (Document, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("docstore: redis get: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("docstore: unmarshal document: %w", err)
	}
	return doc, nil
}

func (c *redisCollection) FindOne(ctx context.Context, filter Document) (Document, error) {
	if id, ok := filter[IDKey].(string); ok && len(filter) == 1 {
		return c.FindByID(ctx, id)
	}

	docs, err := c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return docs[0], nil
}

func (c *redisCollection) Find(ctx context.Context, filter Document) ([]Document, error) {
	var docs []Document

	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := c.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue // deleted between scan and get
			}
			return nil, fmt.Errorf("docstore: redis get: %w", err)
		}

		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("docstore: unmarshal document: %w", err)
		}
		if len(filter) == 0 || matches(doc, filter) {
			docs = append(docs, doc)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("docstore: redis scan: %w", err)
	}

	return docs, nil
}

// UpdateOne is read-modify-write: concurrent updates to the same record
// are last-write-wins, same as the session write model.
func (c *redisCollection) UpdateOne(ctx context.Context, id string, set Document, unset []string) error {
	doc, err := c.FindByID(ctx, id)
	if err != nil {
		return err
	}

	for key, value := range set {
		if key == IDKey {
			continue
		}
		doc[key] = value
	}
	for _, key := range unset {
		if key == IDKey {
			continue
		}
		delete(doc, key)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("docstore: marshal document: %w", err)
	}
	if err := c.client.Set(ctx, c.key(id), data, 0).Err(); err != nil {
		return fmt.Errorf("docstore: redis set: %w", err)
	}
	return nil
}

func (c *redisCollection) DeleteOne(ctx context.Context, id string) error {
	deleted, err := c.client.Del(ctx, c.key(id)).Result()
	if err != nil {
		return fmt.Errorf("docstore: redis del: %w", err)
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}
