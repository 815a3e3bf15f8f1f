package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool opens a Postgres connection pool and verifies it.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// PostgresStore implements Store on a JSONB table.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a document store over pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: pool}
}

// Migrate creates the document table if needed.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS document (
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			body       JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (collection, id)
		);
		CREATE INDEX IF NOT EXISTS idx_document_created ON document (collection, created_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// ListAll returns every document in collection ordered by creation.
func (s *PostgresStore) ListAll(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, body::text FROM document WHERE collection = $1 ORDER BY created_at, id`, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}
		fields, err := Decode([]byte(body))
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", collection, id, err)
		}
		docs = append(docs, Document{ID: id, Fields: fields})
	}
	return docs, rows.Err()
}

// Get returns one document.
func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var body string
	err := s.db.QueryRow(ctx,
		`SELECT body::text FROM document WHERE collection = $1 AND id = $2`, collection, id).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, err
	}
	fields, err := Decode([]byte(body))
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, Fields: fields}, nil
}

// UpdateFields merges fields into the body with the jsonb || operator.
// POST: Returns ErrNotFound when no row matched
func (s *PostgresStore) UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error {
	patch, err := Encode(fields)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE document SET body = body || $3::jsonb, updated_at = NOW() WHERE collection = $1 AND id = $2`,
		collection, id, string(patch))
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Create inserts a document under a new UUID.
func (s *PostgresStore) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	body, err := Encode(fields)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	if _, err := s.db.Exec(ctx,
		`INSERT INTO document (collection, id, body) VALUES ($1, $2, $3::jsonb)`,
		collection, id, string(body)); err != nil {
		return "", fmt.Errorf("failed to create %s document: %w", collection, err)
	}
	return id, nil
}
