package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/okian/outreach/internal/domain/ratelimit"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// DBFile is the database file name inside the data directory.
const DBFile = "outreach.db"

const defaultListLimit = 100

// SQLiteStore implements Store on an SQLite database in WAL mode.
type SQLiteStore struct {
	db           *sql.DB
	now          func() time.Time
	maxOpenConns int

	idMu    sync.Mutex
	entropy io.Reader
}

var _ Store = (*SQLiteStore)(nil)

// Open initializes the database at dir/outreach.db, creating dir if needed,
// and applies pending migrations.
func Open(dir string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{
		now:     time.Now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	path := filepath.Join(dir, DBFile)
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if s.maxOpenConns > 0 {
		db.SetMaxOpenConns(s.maxOpenConns)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	_ = os.Chmod(path, 0o600)

	s.db = db
	return s, nil
}

// DB exposes the underlying handle for diagnostics and tests.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS limiter_state (
		  session    TEXT PRIMARY KEY,
		  state_json TEXT NOT NULL,
		  updated_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS actions (
		  id         TEXT PRIMARY KEY,
		  run_id     TEXT,
		  kind       TEXT NOT NULL,
		  target     TEXT,
		  status     TEXT NOT NULL,
		  detail     TEXT,
		  created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_actions_run_created
		ON actions(run_id, created_at DESC);

		CREATE INDEX IF NOT EXISTS idx_actions_kind_created
		ON actions(kind, created_at);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	return nil
}

func verifyWALMode(db *sql.DB) error {
	var mode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&mode); err != nil {
		return fmt.Errorf("verify journal mode: %w", err)
	}
	if mode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", mode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SaveLimiterState(ctx context.Context, session string, st ratelimit.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode limiter state: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO limiter_state (session, state_json, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(session) DO UPDATE SET state_json = excluded.state_json, updated_at = excluded.updated_at
	`, session, string(data), s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save limiter state: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadLimiterState(ctx context.Context, session string) (ratelimit.State, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT state_json FROM limiter_state WHERE session = ?`, session).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return ratelimit.State{}, fmt.Errorf("limiter state %q: %w", session, ErrNotFound)
	}
	if err != nil {
		return ratelimit.State{}, fmt.Errorf("load limiter state: %w", err)
	}
	var st ratelimit.State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return ratelimit.State{}, fmt.Errorf("decode limiter state: %w", err)
	}
	return st, nil
}

func (s *SQLiteStore) AppendAction(ctx context.Context, a Action) (Action, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	if a.ID == "" {
		id, err := s.newID(a.CreatedAt)
		if err != nil {
			return Action{}, err
		}
		a.ID = id
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO actions (id, run_id, kind, target, status, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.ID, nullString(a.RunID), a.Kind, nullString(a.Target), a.Status, nullString(a.Detail),
		a.CreatedAt.UnixMilli())
	if err != nil {
		return Action{}, fmt.Errorf("append action: %w", err)
	}
	a.CreatedAt = time.UnixMilli(a.CreatedAt.UnixMilli())
	return a, nil
}

func (s *SQLiteStore) ListActions(ctx context.Context, runID string, limit int) ([]Action, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	if limit == 0 {
		limit = defaultListLimit
	}

	query := `SELECT id, run_id, kind, target, status, detail, created_at FROM actions`
	args := []any{}
	if runID != "" {
		query += ` WHERE run_id = ?`
		args = append(args, runID)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()

	out := []Action{}
	for rows.Next() {
		var (
			a                   Action
			run, target, detail sql.NullString
			createdAt           int64
		)
		if err := rows.Scan(&a.ID, &run, &a.Kind, &target, &a.Status, &detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		a.RunID, a.Target, a.Detail = run.String, target.String, detail.String
		a.CreatedAt = time.UnixMilli(createdAt)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) CountActionsSince(ctx context.Context, kind, status string, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM actions WHERE kind = ? AND created_at >= ?`
	args := []any{kind, since.UnixMilli()}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count actions: %w", err)
	}
	return n, nil
}

// newID returns a ULID for t. Monotonic entropy is not goroutine-safe.
func (s *SQLiteStore) newID(t time.Time) (string, error) {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	id, err := ulid.New(ulid.Timestamp(t), s.entropy)
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id.String(), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
