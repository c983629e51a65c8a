package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/weekdump/weekdump/internal/store"
)

// Store implements store.DocumentStore on a single Postgres table for
// self-hosted deployments. Documents live in a (collection, id, attrs JSONB)
// row; partial updates merge into attrs, mirroring the hosted backend's
// whole-field last-writer-wins semantics.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to Postgres and ensures the documents table exists.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

var _ store.DocumentStore = (*Store)(nil)

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			collection  TEXT NOT NULL,
			id          TEXT NOT NULL,
			attrs       JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (collection, id)
		)`)
	if err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// GetDocument fetches a single document by id.
func (s *Store) GetDocument(ctx context.Context, collection, id string) (store.Document, error) {
	var attrs []byte
	err := s.pool.QueryRow(ctx,
		`SELECT attrs FROM documents WHERE collection = $1 AND id = $2`,
		collection, id).Scan(&attrs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document %s/%s: %w", collection, id, err)
	}
	return decodeAttrs(id, attrs)
}

// CreateDocument inserts a new document.
func (s *Store) CreateDocument(ctx context.Context, collection, id string, data store.Document) (store.Document, error) {
	attrs, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document attrs: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, attrs) VALUES ($1, $2, $3)`,
		collection, id, attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to create document %s/%s: %w", collection, id, err)
	}
	return s.GetDocument(ctx, collection, id)
}

// UpdateDocument merges partial into the document's attrs.
func (s *Store) UpdateDocument(ctx context.Context, collection, id string, partial store.Document) (store.Document, error) {
	patch, err := json.Marshal(partial)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document attrs: %w", err)
	}

	var attrs []byte
	err = s.pool.QueryRow(ctx,
		`UPDATE documents SET attrs = attrs || $3, updated_at = now()
		 WHERE collection = $1 AND id = $2
		 RETURNING attrs`,
		collection, id, patch).Scan(&attrs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update document %s/%s: %w", collection, id, err)
	}
	return decodeAttrs(id, attrs)
}

// DeleteDocument removes a document by id.
func (s *Store) DeleteDocument(ctx context.Context, collection, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete document %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListDocuments lists documents in a collection matching the equality
// queries, newest first.
func (s *Store) ListDocuments(ctx context.Context, collection string, queries ...store.Query) ([]store.Document, error) {
	filter := make(map[string]any, len(queries))
	for _, q := range queries {
		filter[q.Field] = q.Value
	}
	filterJSON, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal list filter: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, attrs FROM documents
		 WHERE collection = $1 AND attrs @> $2
		 ORDER BY created_at DESC`,
		collection, filterJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents in %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []store.Document
	for rows.Next() {
		var (
			id    string
			attrs []byte
		)
		if err := rows.Scan(&id, &attrs); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		doc, err := decodeAttrs(id, attrs)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate document rows: %w", err)
	}
	return docs, nil
}

func decodeAttrs(id string, attrs []byte) (store.Document, error) {
	var doc store.Document
	if err := json.Unmarshal(attrs, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document attrs: %w", err)
	}
	doc["$id"] = id
	return doc, nil
}
