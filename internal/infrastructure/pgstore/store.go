// Package pgstore backs the document store contract with Postgres.
//
// Documents live in a single (collection, key, doc jsonb) table. Writes
// merge with `doc || EXCLUDED.doc`, which is the jsonb field-level merge,
// so the backend honors the same merge-on-write semantics as the
// distributed backend without transactions at the caller.
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/languelink/identity-core/internal/domain/repository"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Get(ctx context.Context, collection, key string) (repository.Document, bool, error) {
	var raw []byte
	row := s.pool.QueryRow(ctx, `
		SELECT doc FROM documents
		WHERE collection = $1 AND key = $2
	`, collection, key)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("store: get %s/%s: %w", collection, key, err)
	}
	var doc repository.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false, fmt.Errorf("store: get %s/%s: decode: %w", collection, key, err)
	}
	return doc, true, nil
}

func (s *Store) Set(ctx context.Context, collection, key string, doc repository.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: set %s/%s: encode: %w", collection, key, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO documents (collection, key, doc)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, key)
		DO UPDATE SET doc = documents.doc || EXCLUDED.doc
	`, collection, key, raw)
	if err != nil {
		return fmt.Errorf("store: set %s/%s: %w", collection, key, err)
	}
	return nil
}

func (s *Store) Del(ctx context.Context, collection, key string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM documents
		WHERE collection = $1 AND key = $2
	`, collection, key)
	if err != nil {
		return fmt.Errorf("store: del %s/%s: %w", collection, key, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
