package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatcherFiresOnceForBurstOfWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	if err := os.WriteFile(path, []byte("<p>v0</p>"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var hits atomic.Int32
	w := New(path, func() { hits.Add(1) }, WithDebounce(50*time.Millisecond))
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer w.Stop()

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("<p>v1</p>"), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hits.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)
	if n := hits.Load(); n != 1 {
		t.Fatalf("expected 1 change notification, got %d", n)
	}
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var hits atomic.Int32
	w := New(path, func() { hits.Add(1) }, WithDebounce(20*time.Millisecond))
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "other.html"), []byte("y"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	time.Sleep(150 * time.Millisecond)
	if hits.Load() != 0 {
		t.Fatal("sibling file change should not notify")
	}
}

func TestStartAfterStop(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "p.html"), func() {})
	if err := w.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := w.Start(); err != ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
