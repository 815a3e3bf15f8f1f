package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gritgym/internal/adapters/storage"
	domain "gritgym/internal/domain/outbox"
)

// timeLayout is fixed-width so stored timestamps order lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const selectEntry = `SELECT id, payment_id, kind, recipient, sender, reply_to, subject, html, status,
	attempts, last_attempted_at, created_at, message_id, last_error
	FROM outbox`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new outbox store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an entry by its ID.
// POST: Returns domain.ErrNotFound when absent
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Entry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx, selectEntry+" WHERE id = ?", id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Entry{}, domain.ErrNotFound
	}
	return e, err
}

// Save upserts an entry.
// PRE: entry has been validated
func (s *SQLiteStore) Save(ctx context.Context, e domain.Entry) error {
	var lastAttempted any
	if !e.LastAttemptedAt.IsZero() {
		lastAttempted = formatTime(e.LastAttemptedAt)
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO outbox (id, payment_id, kind, recipient, sender, reply_to, subject, html, status,
			attempts, last_attempted_at, created_at, message_id, last_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status=excluded.status,
			attempts=excluded.attempts,
			last_attempted_at=excluded.last_attempted_at,
			message_id=excluded.message_id,
			last_error=excluded.last_error`,
		e.ID, e.PaymentID, e.Kind, e.To, e.From, e.ReplyTo, e.Subject, e.HTML, e.Status,
		e.Attempts, lastAttempted, formatTime(e.CreatedAt),
		e.MessageID, e.LastError,
	)
	if err != nil {
		return fmt.Errorf("failed to save outbox entry: %w", err)
	}
	return nil
}

// ListByStatus returns entries with the given status, newest first.
func (s *SQLiteStore) ListByStatus(ctx context.Context, status string, limit int) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		selectEntry+" WHERE status = ? ORDER BY created_at DESC, id DESC LIMIT ?",
		status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func scanEntry(scan func(dest ...any) error) (domain.Entry, error) {
	var e domain.Entry
	var created string
	var lastAttempted sql.NullString
	if err := scan(&e.ID, &e.PaymentID, &e.Kind, &e.To, &e.From, &e.ReplyTo, &e.Subject, &e.HTML, &e.Status,
		&e.Attempts, &lastAttempted, &created, &e.MessageID, &e.LastError); err != nil {
		return domain.Entry{}, err
	}
	e.CreatedAt, _ = time.Parse(timeLayout, created)
	if lastAttempted.Valid && lastAttempted.String != "" {
		e.LastAttemptedAt, _ = time.Parse(timeLayout, lastAttempted.String)
	}
	return e, nil
}

func scanEntries(rows *sql.Rows) ([]domain.Entry, error) {
	var entries []domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
