package audit

import (
	"context"
	"log/slog"
	"sync"

	"github.com/spotus/spotus_viewer/pkg/model"
)

// SessionManager handles the moderation session lifecycle and records every
// mutation the response list sends.
type SessionManager struct {
	db      *DB
	logger  *slog.Logger
	mu      sync.Mutex
	session *model.ModerationSession
}

// NewSessionManager opens the audit database at dbPath.
func NewSessionManager(dbPath string, logger *slog.Logger) (*SessionManager, error) {
	db, err := OpenDB(dbPath)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SessionManager{db: db, logger: logger}, nil
}

// DB exposes the underlying store for read-only queries.
func (sm *SessionManager) DB() *DB { return sm.db }

// StartSession creates a new session for an assignment.
func (sm *SessionManager) StartSession(ctx context.Context, assignment int64, moderator string) error {
	s, err := sm.db.StartSession(ctx, assignment, moderator)
	if err != nil {
		return err
	}
	sm.mu.Lock()
	sm.session = s
	sm.mu.Unlock()
	return nil
}

// CurrentSession returns a copy of the active session, nil when none.
func (sm *SessionManager) CurrentSession() *model.ModerationSession {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.session == nil {
		return nil
	}
	s := *sm.session
	return &s
}

// RecordMutation stores the outcome of one mutation and bumps the session
// counters. A nil cause records a sent mutation.
func (sm *SessionManager) RecordMutation(ctx context.Context, responseID int64, field, value string, cause error) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.session == nil {
		return ErrNoSession
	}

	m := &model.Mutation{
		SessionID:  sm.session.ID,
		ResponseID: responseID,
		Field:      field,
		Value:      value,
		Outcome:    model.MutationOutcomeSent,
	}
	if cause != nil {
		m.Outcome = model.MutationOutcomeFailed
		m.Error = cause.Error()
	}
	if err := sm.db.CreateMutation(ctx, m); err != nil {
		return err
	}

	switch field {
	case model.MutationFieldFlag:
		sm.session.FlagChanges++
	case model.MutationFieldGallery:
		sm.session.GalleryMoves++
	case model.MutationFieldTags:
		sm.session.TagEdits++
	case model.MutationFieldMessage:
		sm.session.Messages++
	}
	if cause != nil {
		sm.session.Failures++
	}
	if err := sm.db.UpdateSessionCounters(ctx, sm.session); err != nil {
		sm.logger.Warn("failed to update session counters", "session", sm.session.ID, "error", err)
	}
	return nil
}

// History returns the newest mutations across all sessions.
func (sm *SessionManager) History(ctx context.Context, limit int) ([]model.Mutation, error) {
	return sm.db.RecentMutations(ctx, limit)
}

// CompleteSession marks the active session complete.
func (sm *SessionManager) CompleteSession(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.session == nil {
		return nil
	}
	return sm.db.CompleteSession(ctx, sm.session)
}

// Close closes the database connection.
func (sm *SessionManager) Close() error {
	return sm.db.Close()
}

// TryStartSession opens the database and starts a session, logging errors
// instead of failing. It returns nil when auditing is unavailable.
func TryStartSession(ctx context.Context, dbPath string, assignment int64, moderator string, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	sm, err := NewSessionManager(dbPath, logger)
	if err != nil {
		logger.Warn("could not open audit database", "path", dbPath, "error", err)
		return nil
	}
	if err := sm.StartSession(ctx, assignment, moderator); err != nil {
		logger.Warn("could not start moderation session", "error", err)
		sm.Close()
		return nil
	}
	return sm
}
