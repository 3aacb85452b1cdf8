// Package store persists the bot's audit trail: rejected senders, generated
// reports, broadcast runs. It is an operator-facing log, not request state —
// the request pipeline never reads it.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Audit entry kinds.
const (
	KindUnauthorized = "unauthorized_access"
	KindReport       = "report"
	KindBroadcast    = "broadcast"
	KindError        = "error"
)

// Entry is one audit row.
type Entry struct {
	ID        int64
	Kind      string
	SenderID  string
	Action    string
	Detail    string
	CreatedAt time.Time
}

// AuditStore writes audit entries to SQLite.
type AuditStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewAuditStore(dbPath string, logger *slog.Logger) (*AuditStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &AuditStore{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	return s, nil
}

func (s *AuditStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS audit_log (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		kind        TEXT NOT NULL,
		sender_id   TEXT,
		action      TEXT,
		detail      TEXT,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audit_time ON audit_log(created_at);
	CREATE INDEX IF NOT EXISTS idx_audit_kind ON audit_log(kind);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record inserts one entry. Failures are logged, not propagated: auditing
// must never break the request pipeline.
func (s *AuditStore) Record(ctx context.Context, e Entry) {
	if s == nil {
		return
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (kind, sender_id, action, detail, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.Kind, e.SenderID, e.Action, e.Detail, e.CreatedAt,
	)
	if err != nil {
		s.logger.Error("audit write failed", "kind", e.Kind, "err", err)
	}
}

// Recent returns the latest entries, newest first.
func (s *AuditStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, sender_id, action, detail, created_at
		 FROM audit_log ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Kind, &e.SenderID, &e.Action, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *AuditStore) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}
