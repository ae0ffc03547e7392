package main

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spotus/spotus_viewer/pkg/audit"
	svlog "github.com/spotus/spotus_viewer/pkg/log"
	"github.com/spotus/spotus_viewer/pkg/model"
)

func seedAudit(t *testing.T, cfgPath string) {
	t.Helper()
	dbPath := filepath.Join(filepath.Dir(cfgPath), "audit.db")
	sm, err := audit.NewSessionManager(dbPath, svlog.Discard())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	defer sm.Close()
	ctx := context.Background()
	if err := sm.StartSession(ctx, 3, "grace"); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if err := sm.RecordMutation(ctx, 4, model.MutationFieldFlag, "true", nil); err != nil {
		t.Fatalf("RecordMutation: %v", err)
	}
	if err := sm.RecordMutation(ctx, 5, model.MutationFieldTags, "cute, fluffy", errors.New("boom")); err != nil {
		t.Fatalf("RecordMutation: %v", err)
	}
}

func TestHistoryText(t *testing.T) {
	cfg := writeConfig(t)
	seedAudit(t, cfg)

	out, err := execute(t, "history", "--config", cfg)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "#5") || !strings.Contains(lines[0], "failed: boom") {
		t.Errorf("newest entry first, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "#4") || !strings.Contains(lines[1], "sent") {
		t.Errorf("unexpected second line %q", lines[1])
	}
}

func TestHistorySessionsAndMarkdown(t *testing.T) {
	cfg := writeConfig(t)
	seedAudit(t, cfg)

	out, err := execute(t, "history", "--config", cfg, "--sessions")
	if err != nil {
		t.Fatalf("history --sessions: %v", err)
	}
	if !strings.Contains(out, "assignment 3") || !strings.Contains(out, "grace") || !strings.Contains(out, "failures 1") {
		t.Errorf("unexpected sessions output:\n%s", out)
	}

	out, err = execute(t, "history", "--config", cfg, "--markdown")
	if err != nil {
		t.Fatalf("history --markdown: %v", err)
	}
	if !strings.Contains(out, "|") || !strings.Contains(out, "boom") {
		t.Errorf("unexpected markdown:\n%s", out)
	}
}

func TestHistoryEmpty(t *testing.T) {
	cfg := writeConfig(t)
	out, err := execute(t, "history", "--config", cfg)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No moderation changes") {
		t.Errorf("unexpected output %q", out)
	}
}
