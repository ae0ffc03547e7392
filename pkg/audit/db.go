package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/spotus/spotus_viewer/pkg/model"
)

// ErrNoSession is returned when a session does not exist or none is active.
var ErrNoSession = errors.New("no moderation session")

// DB handles audit log persistence
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates the audit database at the given path
func OpenDB(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite
	return &DB{db: db}, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// CreateMutation inserts a mutation and sets its ID
func (d *DB) CreateMutation(ctx context.Context, m *model.Mutation) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now()
	}
	result, err := d.db.ExecContext(ctx, `
		INSERT INTO mutations (session_id, response_id, field, value, outcome, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.SessionID, m.ResponseID, m.Field, m.Value, m.Outcome, m.Error, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert mutation: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

const mutationColumns = `id, session_id, response_id, field, value, outcome, error, created_at`

func scanMutations(rows *sql.Rows) ([]model.Mutation, error) {
	defer rows.Close()
	var out []model.Mutation
	for rows.Next() {
		var m model.Mutation
		if err := rows.Scan(&m.ID, &m.SessionID, &m.ResponseID, &m.Field, &m.Value, &m.Outcome, &m.Error, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// RecentMutations returns the newest mutations first
func (d *DB) RecentMutations(ctx context.Context, limit int) ([]model.Mutation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.db.QueryContext(ctx, `SELECT `+mutationColumns+` FROM mutations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query mutations: %w", err)
	}
	return scanMutations(rows)
}

// MutationsForResponse returns every mutation recorded for one response
func (d *DB) MutationsForResponse(ctx context.Context, responseID int64) ([]model.Mutation, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT `+mutationColumns+` FROM mutations WHERE response_id = ? ORDER BY id DESC`, responseID)
	if err != nil {
		return nil, fmt.Errorf("query mutations: %w", err)
	}
	return scanMutations(rows)
}

// StartSession creates a new moderation session
func (d *DB) StartSession(ctx context.Context, assignment int64, moderator string) (*model.ModerationSession, error) {
	s := &model.ModerationSession{
		ID:         uuid.NewString(),
		Assignment: assignment,
		Moderator:  moderator,
		StartedAt:  now(),
	}
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO moderation_sessions (id, assignment, moderator, started_at)
		VALUES (?, ?, ?, ?)
	`, s.ID, s.Assignment, s.Moderator, s.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return s, nil
}

// UpdateSessionCounters writes the session's counters
func (d *DB) UpdateSessionCounters(ctx context.Context, s *model.ModerationSession) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE moderation_sessions
		SET flag_changes = ?, gallery_moves = ?, tag_edits = ?, messages = ?, failures = ?
		WHERE id = ?
	`, s.FlagChanges, s.GalleryMoves, s.TagEdits, s.Messages, s.Failures, s.ID)
	return err
}

// CompleteSession marks a session as complete
func (d *DB) CompleteSession(ctx context.Context, s *model.ModerationSession) error {
	t := now()
	s.CompletedAt = &t
	_, err := d.db.ExecContext(ctx, `
		UPDATE moderation_sessions
		SET completed_at = ?, flag_changes = ?, gallery_moves = ?, tag_edits = ?, messages = ?, failures = ?
		WHERE id = ?
	`, t, s.FlagChanges, s.GalleryMoves, s.TagEdits, s.Messages, s.Failures, s.ID)
	return err
}

const sessionColumns = `id, assignment, moderator, started_at, completed_at, flag_changes, gallery_moves, tag_edits, messages, failures`

func scanSession(scan func(...any) error) (*model.ModerationSession, error) {
	var s model.ModerationSession
	var completedAt sql.NullTime
	if err := scan(&s.ID, &s.Assignment, &s.Moderator, &s.StartedAt, &completedAt,
		&s.FlagChanges, &s.GalleryMoves, &s.TagEdits, &s.Messages, &s.Failures); err != nil {
		return nil, err
	}
	if completedAt.Valid {
		s.CompletedAt = &completedAt.Time
	}
	return &s, nil
}

// GetSession retrieves a session by ID
func (d *DB) GetSession(ctx context.Context, id string) (*model.ModerationSession, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM moderation_sessions WHERE id = ?`, id)
	s, err := scanSession(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNoSession, id)
	}
	return s, err
}

// ListSessions returns the newest sessions first
func (d *DB) ListSessions(ctx context.Context, limit int) ([]model.ModerationSession, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM moderation_sessions ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()
	var out []model.ModerationSession
	for rows.Next() {
		s, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}
