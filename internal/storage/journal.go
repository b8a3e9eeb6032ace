// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrClosed       = errors.New("journal closed")
	ErrInvalidPath  = errors.New("invalid journal path")
	ErrEmptyQuery   = errors.New("exchange has no query")
	ErrInvalidLimit = errors.New("limit must be positive")
)

// =============================================================================
// EXCHANGE TYPE
// =============================================================================

// Exchange is one recorded query and its response.
type Exchange struct {
	ID        int64
	SessionID string
	Query     string
	// Response is the raw response body, or the failure payload as JSON.
	Response  string
	Failed    bool
	Duration  time.Duration
	CreatedAt time.Time
}

// =============================================================================
// JOURNAL
// =============================================================================

// Journal appends exchanges to a SQLite database.
type Journal struct {
	db      *sql.DB
	path    string
	session string

	mu     sync.RWMutex
	closed bool
}

// Open opens or creates the journal at path with a fresh session id.
func Open(path string) (*Journal, error) {
	return OpenWithSession(path, uuid.NewString())
}

// OpenWithSession opens the journal at path recording under sessionID.
func OpenWithSession(path, sessionID string) (*Journal, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrInvalidPath
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.Exec(InitMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Journal{db: db, path: path, session: sessionID}, nil
}

// Path returns the database file path.
func (j *Journal) Path() string {
	return j.path
}

// SessionID returns the id recorded with exchanges that carry none.
func (j *Journal) SessionID() string {
	return j.session
}

// Record appends ex. Missing session ids and timestamps are filled in.
func (j *Journal) Record(ctx context.Context, ex Exchange) error {
	if strings.TrimSpace(ex.Query) == "" {
		return ErrEmptyQuery
	}
	if ex.SessionID == "" {
		ex.SessionID = j.session
	}
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = time.Now()
	}

	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return ErrClosed
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO exchanges (session_id, query, response, failed, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ex.SessionID, ex.Query, ex.Response, ex.Failed,
		ex.Duration.Milliseconds(), ex.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to record exchange: %w", err)
	}
	return nil
}

// Recent returns up to limit exchanges, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Exchange, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return nil, ErrClosed
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, session_id, query, response, failed, duration_ms, created_at
		 FROM exchanges ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchanges: %w", err)
	}
	defer rows.Close()

	var out []Exchange
	for rows.Next() {
		var (
			ex         Exchange
			durationMs int64
			createdAt  int64
		)
		if err := rows.Scan(&ex.ID, &ex.SessionID, &ex.Query, &ex.Response,
			&ex.Failed, &durationMs, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		ex.Duration = time.Duration(durationMs) * time.Millisecond
		ex.CreatedAt = time.UnixMilli(createdAt)
		out = append(out, ex)
	}
	return out, rows.Err()
}

// Count returns the number of recorded exchanges.
func (j *Journal) Count(ctx context.Context) (int, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return 0, ErrClosed
	}

	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exchanges`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count exchanges: %w", err)
	}
	return n, nil
}

// Close closes the database. Further calls return ErrClosed.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	j.closed = true
	return j.db.Close()
}
