// Package storage persists finance documents in SQLite: the per-user
// documents served by the API and the snapshot a device keeps locally.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"

	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when no document exists for a user.
	ErrNotFound = errors.New("document not found")
	// ErrCorruptDocument wraps documents whose stored JSON cannot be decoded.
	ErrCorruptDocument = errors.New("corrupt document")
)

// DocumentStore holds one finance document per user.
type DocumentStore interface {
	GetDocument(ctx context.Context, userID string) (core.UserDocument, error)
	PutDocument(ctx context.Context, doc core.UserDocument) error
	Ping(ctx context.Context) error
}

type SQLiteRepository struct {
	db *sql.DB
}

var _ DocumentStore = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) GetDocument(ctx context.Context, userID string) (core.UserDocument, error) {
	var data, updatedAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT data, updated_at FROM user_documents WHERE user_id = ?`, userID,
	).Scan(&data, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.UserDocument{}, ErrNotFound
	}
	if err != nil {
		return core.UserDocument{}, fmt.Errorf("get document: %w", err)
	}

	var doc core.UserDocument
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return core.UserDocument{}, fmt.Errorf("%w: %s: %v", ErrCorruptDocument, userID, err)
	}
	doc.UserID = userID
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	}
	doc.Normalize()
	return doc, nil
}

// PutDocument replaces the user's document wholesale.
func (r *SQLiteRepository) PutDocument(ctx context.Context, doc core.UserDocument) error {
	if doc.UserID == "" {
		return fmt.Errorf("put document: empty user id")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO user_documents (user_id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at,
			version = user_documents.version + 1`,
		doc.UserID, string(data), doc.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("put document: %w", err)
	}

	slog.DebugContext(ctx, "Document saved to SQLite",
		log.FieldComponent, log.ComponentStorage,
		log.FieldUserID, doc.UserID,
		log.FieldUpdatedAt, doc.UpdatedAt)
	return nil
}

// LoadSnapshot returns the raw snapshot stored under key, or ErrNotFound.
func (r *SQLiteRepository) LoadSnapshot(ctx context.Context, key string) ([]byte, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM local_snapshots WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return []byte(data), nil
}

func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, key string, data []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO local_snapshots (key, data, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at`,
		key, string(data), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
