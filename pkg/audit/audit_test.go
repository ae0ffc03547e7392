package audit

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/spotus/spotus_viewer/pkg/model"
)

func newManager(t *testing.T) (*SessionManager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "audit.db")
	sm, err := NewSessionManager(path, nil)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	t.Cleanup(func() { sm.Close() })
	return sm, path
}

func TestRecordMutationRequiresSession(t *testing.T) {
	sm, _ := newManager(t)
	err := sm.RecordMutation(context.Background(), 1, model.MutationFieldFlag, "true", nil)
	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestSessionCountersAndHistory(t *testing.T) {
	ctx := context.Background()
	sm, _ := newManager(t)
	if err := sm.StartSession(ctx, 9, "mod"); err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	records := []struct {
		id    int64
		field string
		value string
		cause error
	}{
		{1, model.MutationFieldFlag, "true", nil},
		{2, model.MutationFieldFlag, "true", nil},
		{2, model.MutationFieldGallery, "false", errors.New("403 forbidden")},
		{3, model.MutationFieldTags, "cats, dogs", nil},
		{3, model.MutationFieldMessage, "sent", nil},
	}
	for _, r := range records {
		if err := sm.RecordMutation(ctx, r.id, r.field, r.value, r.cause); err != nil {
			t.Fatalf("RecordMutation: %v", err)
		}
	}

	cur := sm.CurrentSession()
	got := [5]int{cur.FlagChanges, cur.GalleryMoves, cur.TagEdits, cur.Messages, cur.Failures}
	if diff := cmp.Diff([5]int{2, 1, 1, 1, 1}, got); diff != "" {
		t.Errorf("counters mismatch (-want +got):\n%s", diff)
	}

	stored, err := sm.DB().GetSession(ctx, cur.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if stored.FlagChanges != 2 || stored.Failures != 1 || stored.Assignment != 9 {
		t.Errorf("stored session = %+v", stored)
	}

	hist, err := sm.History(ctx, 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 2 || hist[0].Field != model.MutationFieldMessage || hist[1].Field != model.MutationFieldTags {
		t.Fatalf("history = %+v", hist)
	}

	forTwo, err := sm.DB().MutationsForResponse(ctx, 2)
	if err != nil {
		t.Fatalf("MutationsForResponse: %v", err)
	}
	if len(forTwo) != 2 || forTwo[0].Outcome != model.MutationOutcomeFailed || forTwo[0].Error != "403 forbidden" {
		t.Fatalf("mutations for 2 = %+v", forTwo)
	}
}

func TestCompleteSession(t *testing.T) {
	ctx := context.Background()
	sm, _ := newManager(t)
	if err := sm.StartSession(ctx, 4, "mod"); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if err := sm.CompleteSession(ctx); err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}
	s, err := sm.DB().GetSession(ctx, sm.CurrentSession().ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if s.CompletedAt == nil {
		t.Fatal("session should be completed")
	}
}

func TestGetUnknownSession(t *testing.T) {
	sm, _ := newManager(t)
	if _, err := sm.DB().GetSession(context.Background(), "missing"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	sm, path := newManager(t)
	if err := sm.StartSession(ctx, 1, "mod"); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if err := sm.RecordMutation(ctx, 5, model.MutationFieldFlag, "false", nil); err != nil {
		t.Fatalf("RecordMutation: %v", err)
	}
	sm.Close()

	db, err := OpenDB(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	sessions, err := db.ListSessions(ctx, 10)
	if err != nil || len(sessions) != 1 {
		t.Fatalf("sessions = %v (%v)", sessions, err)
	}
	muts, err := db.RecentMutations(ctx, 10)
	if err != nil || len(muts) != 1 || muts[0].ResponseID != 5 {
		t.Fatalf("mutations = %v (%v)", muts, err)
	}
}

func TestTryStartSessionBadPath(t *testing.T) {
	if sm := TryStartSession(context.Background(), "/dev/null/audit.db", 1, "", nil); sm != nil {
		t.Fatal("expected nil manager for an unusable path")
	}
}
