package provider

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"insightvector/internal/insight"
	"insightvector/internal/logging"

	_ "modernc.org/sqlite"
)

// timeLayout sorts lexically in UTC.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type sessionKey struct{}

// WithSession tags ctx with the exploration session id recorded by Archive.
func WithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionFrom returns the session id stored by WithSession.
func SessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// Entry is one archived exploration step.
type Entry struct {
	ID        int64
	SessionID string
	Problem   string
	Scope     string
	Provider  string
	Result    *insight.Result
	CreatedAt time.Time
}

// Archive wraps a provider and records every successful result in SQLite.
// Recording failures are logged and never fail the fetch. The archive is a
// history log; nothing reads it back into a live session.
type Archive struct {
	next Provider
	db   *sql.DB
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// OpenArchive opens (creating if needed) the database at path.
func OpenArchive(path string, next Provider) (*Archive, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create archive directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	a := &Archive{next: next, db: db, path: path, now: time.Now}
	if err := a.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	logging.Get(logging.CategoryArchive).Info("archive opened at %s", path)
	return a, nil
}

func (a *Archive) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS explorations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT,
		problem TEXT NOT NULL,
		scope TEXT,
		provider TEXT,
		result TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_explorations_created ON explorations(created_at);
	CREATE INDEX IF NOT EXISTS idx_explorations_session ON explorations(session_id);
	`
	if _, err := a.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create archive schema: %w", err)
	}
	return nil
}

// Name reports the wrapped provider.
func (a *Archive) Name() string {
	if a.next == nil {
		return "archive"
	}
	return "archive(" + NameOf(a.next) + ")"
}

// Path returns the database file.
func (a *Archive) Path() string { return a.path }

// FetchInsight delegates and records successes.
func (a *Archive) FetchInsight(ctx context.Context, problem, scope string) (*insight.Result, error) {
	if a.next == nil {
		return nil, ErrNoProviders
	}
	result, err := a.next.FetchInsight(ctx, problem, scope)
	if err != nil {
		return nil, err
	}
	if rerr := a.Record(ctx, Entry{
		SessionID: SessionFrom(ctx),
		Problem:   problem,
		Scope:     scope,
		Provider:  NameOf(a.next),
		Result:    result,
	}); rerr != nil {
		logging.Get(logging.CategoryArchive).Warn("record %q: %v", problem, rerr)
	}
	return result, nil
}

// Record inserts e. A zero CreatedAt is stamped with the current time.
func (a *Archive) Record(ctx context.Context, e Entry) error {
	if e.Result == nil {
		return fmt.Errorf("nil result")
	}
	data, err := json.Marshal(e.Result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = a.now()
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	_, err = a.db.ExecContext(ctx,
		`INSERT INTO explorations (session_id, problem, scope, provider, result, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.Problem, e.Scope, e.Provider, string(data), e.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to insert exploration: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest first. A non-positive limit
// returns everything.
func (a *Archive) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, session_id, problem, scope, provider, result, created_at FROM explorations ORDER BY created_at DESC, id DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query archive: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                        Entry
			session, scope, provider sql.NullString
			data, created            string
		)
		if err := rows.Scan(&e.ID, &session, &e.Problem, &scope, &provider, &data, &created); err != nil {
			return nil, fmt.Errorf("failed to scan archive row: %w", err)
		}
		e.SessionID, e.Scope, e.Provider = session.String, scope.String, provider.String
		var r insight.Result
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, fmt.Errorf("archive row %d: %w", e.ID, err)
		}
		e.Result = &r
		if t, err := time.Parse(timeLayout, created); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database.
func (a *Archive) Close() error {
	return a.db.Close()
}
