// Package redisstore backs the document store contract with Redis.
//
// Every document is one Redis hash whose fields hold JSON-encoded
// values, so HSet naturally gives the field-level merge semantics the
// contract requires: concurrent writers to the same key interleave at
// field granularity and last write wins per field, never per document.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/languelink/identity-core/internal/domain/repository"
)

type Store struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func hashKey(collection, key string) string {
	return collection + ":" + key
}

func (s *Store) Get(ctx context.Context, collection, key string) (repository.Document, bool, error) {
	fields, err := s.rdb.HGetAll(ctx, hashKey(collection, key)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("store: get %s/%s: %w", collection, key, err)
	}
	if len(fields) == 0 {
		return nil, false, nil
	}
	doc := make(repository.Document, len(fields))
	for name, raw := range fields {
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, false, fmt.Errorf("store: get %s/%s: decode field %q: %w", collection, key, name, err)
		}
		doc[name] = v
	}
	return doc, true, nil
}

func (s *Store) Set(ctx context.Context, collection, key string, doc repository.Document) error {
	if len(doc) == 0 {
		return nil
	}
	fields := make(map[string]any, len(doc))
	for name, v := range doc {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("store: set %s/%s: encode field %q: %w", collection, key, name, err)
		}
		fields[name] = string(raw)
	}
	if err := s.rdb.HSet(ctx, hashKey(collection, key), fields).Err(); err != nil {
		return fmt.Errorf("store: set %s/%s: %w", collection, key, err)
	}
	return nil
}

func (s *Store) Del(ctx context.Context, collection, key string) error {
	if err := s.rdb.Del(ctx, hashKey(collection, key)).Err(); err != nil {
		return fmt.Errorf("store: del %s/%s: %w", collection, key, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
