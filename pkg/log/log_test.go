package log

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSecureHandlerMasksSensitiveKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, true)

	logger.Info("request",
		"csrftoken", "abc",
		"X-CSRFToken", "abc",
		"session_cookie", "xyz",
		"url", "https://example.org/api/assignment-responses/",
	)

	out := buf.String()
	if strings.Contains(out, "abc") || strings.Contains(out, "xyz") {
		t.Fatalf("sensitive value leaked: %s", out)
	}
	if !strings.Contains(out, "assignment-responses") {
		t.Errorf("non-sensitive value should be kept: %s", out)
	}
}

func TestSecureHandlerMasksCookieHeaderValues(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, true)

	logger.Debug("jar", "header", "csrftoken=s3cr3t; Path=/")
	if strings.Contains(buf.String(), "s3cr3t") {
		t.Fatalf("cookie value leaked: %s", buf.String())
	}
}

func TestSecureHandlerMasksInsideGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, true)

	logger.Info("cfg", slog.Group("auth", slog.String("sessionid", "zzz"), slog.String("base", "https://x")))
	out := buf.String()
	if strings.Contains(out, "zzz") {
		t.Fatalf("grouped secret leaked: %s", out)
	}
	if !strings.Contains(out, "https://x") {
		t.Errorf("grouped plain value dropped: %s", out)
	}
}

func TestSessionIDIsNotMasked(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, true)

	logger.Info("audit", "session_id", "9f0c2d4e-5b7a-4c1e-8d3f-2a6b9e0c1d47", "sessionid", "hidden")
	out := buf.String()
	if !strings.Contains(out, "9f0c2d4e-5b7a-4c1e-8d3f-2a6b9e0c1d47") {
		t.Errorf("audit session id should be logged: %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("session cookie leaked: %s", out)
	}
}

func TestQuietLoggerDropsInfo(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output at info level, got %q", buf.String())
	}
}

func TestOpenFileCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "sv.log")
	logger, closer, err := OpenFile(path, false)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	logger.Info("started", "csrftoken", "nope")
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "started") || strings.Contains(string(data), "nope") {
		t.Fatalf("unexpected log contents: %s", data)
	}
}
