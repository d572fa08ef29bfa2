package audit

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
)

// ErrClosed is returned by a SQLiteSink after Close
var ErrClosed = errors.New("interaction log closed")

const timeLayout = "2006-01-02T15:04:05.999999999Z07:00"

// SQLiteSink appends events to the interactions table
type SQLiteSink struct {
	mu sync.RWMutex
	db *sql.DB
}

var _ Sink = (*SQLiteSink)(nil)

// openDatabase opens SQLite with WAL and a single writer connection
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	return db, nil
}

// OpenSQLite opens (or creates) the interaction log at dbPath and applies
// pending migrations. ":memory:" gives a throwaway log.
func OpenSQLite(ctx context.Context, dbPath string) (*SQLiteSink, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create audit directory: %w", err)
		}
	}

	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := ApplyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

// Record appends one event
func (s *SQLiteSink) Record(ctx context.Context, e Event) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return ErrClosed
	}
	if !e.Kind.Valid() {
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}

	const q = `
		INSERT INTO interactions (event_id, kind, session_id, order_id, name, payload, error, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	var payload interface{}
	if len(e.Payload) > 0 {
		payload = string(e.Payload)
	}
	_, err := s.db.ExecContext(ctx, q,
		e.ID, string(e.Kind), e.SessionID, e.OrderID, e.Name, payload, e.Error,
		e.At.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to record %s event %s: %w", e.Kind, e.ID, err)
	}
	return nil
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	SessionID string
	OrderID   string
	Kind      Kind
	Limit     int
}

// List returns matching events oldest first. A positive Limit keeps the
// newest Limit events.
func (s *SQLiteSink) List(ctx context.Context, f Filter) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrClosed
	}

	var (
		where []string
		args  []interface{}
	)
	if f.SessionID != "" {
		where = append(where, "session_id = ?")
		args = append(args, f.SessionID)
	}
	if f.OrderID != "" {
		where = append(where, "order_id = ?")
		args = append(args, f.OrderID)
	}
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(f.Kind))
	}

	const columns = "event_id, kind, session_id, order_id, name, COALESCE(payload, ''), error, recorded_at"
	q := "SELECT seq, " + columns + " FROM interactions"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	if f.Limit > 0 {
		// newest N, returned oldest first
		q = "SELECT * FROM (" + q + " ORDER BY seq DESC LIMIT ?) ORDER BY seq"
		args = append(args, f.Limit)
	} else {
		q += " ORDER BY seq"
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var events []Event
	for rows.Next() {
		var (
			e        Event
			seq      int64
			kind     string
			payload  string
			recorded string
		)
		if err := rows.Scan(&seq, &e.ID, &kind, &e.SessionID, &e.OrderID, &e.Name, &payload, &e.Error, &recorded); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		e.Kind = Kind(kind)
		if payload != "" {
			e.Payload = []byte(payload)
		}
		e.At, err = time.Parse(time.RFC3339Nano, recorded)
		if err != nil {
			return nil, fmt.Errorf("invalid recorded_at %q: %w", recorded, err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Count returns the number of stored events
func (s *SQLiteSink) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return 0, ErrClosed
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM interactions").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count interactions: %w", err)
	}
	return n, nil
}

// Close closes the database. Further calls return ErrClosed.
func (s *SQLiteSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
