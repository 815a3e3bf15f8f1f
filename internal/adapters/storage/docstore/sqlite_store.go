package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gritgym/internal/adapters/storage"
)

const rfc3339Milli = "2006-01-02T15:04:05.000Z07:00"

// SQLiteStore implements Store on the document table.
type SQLiteStore struct {
	db  storage.SQLDB
	now func() time.Time
}

// NewSQLiteStore creates a document store over db.
// PRE: MigrateDB has created the document table
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// ListAll returns every document in collection ordered by creation.
func (s *SQLiteStore) ListAll(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, body FROM document WHERE collection = ? ORDER BY created_at, id", collection)
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
func (s *SQLiteStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		"SELECT body FROM document WHERE collection = ? AND id = ?", collection, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
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

// UpdateFields merges fields into the stored body inside one transaction.
// PRE: id names an existing document
// POST: Returns ErrNotFound when it does not; other fields are untouched
func (s *SQLiteStore) UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var body string
	err = tx.QueryRowContext(ctx,
		"SELECT body FROM document WHERE collection = ? AND id = ?", collection, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	merged, err := merge([]byte(body), fields)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE document SET body = ?, updated_at = ? WHERE collection = ? AND id = ?",
		string(merged), s.now().UTC().Format(rfc3339Milli), collection, id); err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	return tx.Commit()
}

// Create inserts a document under a new UUID.
func (s *SQLiteStore) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	body, err := Encode(fields)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	now := s.now().UTC().Format(rfc3339Milli)
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO document (collection, id, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		collection, id, string(body), now, now); err != nil {
		return "", fmt.Errorf("failed to create %s document: %w", collection, err)
	}
	return id, nil
}
