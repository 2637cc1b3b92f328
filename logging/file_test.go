package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestWeekKey(t *testing.T) {
	tests := []struct {
		date     time.Time
		expected string
	}{
		{time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC), "2026-W42"},
		{time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), "2025-W01"},
		{time.Date(2021, 1, 3, 23, 0, 0, 0, time.UTC), "2020-W53"},
		{time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), "2026-W02"},
	}

	for _, tt := range tests {
		if got := weekKey(tt.date); got != tt.expected {
			t.Errorf("weekKey(%s) = %s, expected %s", tt.date.Format(time.DateOnly), got, tt.expected)
		}
	}
}

func TestFileName(t *testing.T) {
	if got := fileName("2026-W42", 0); got != "identifier-2026-W42.log" {
		t.Errorf("Unexpected base name %s", got)
	}
	if got := fileName("2026-W42", 3); got != "identifier-2026-W42_03.log" {
		t.Errorf("Unexpected numbered name %s", got)
	}
}

// fixedClock returns a clock the test can move forward
func fixedClock(start time.Time) (func() time.Time, func(time.Duration)) {
	var mu sync.Mutex
	now := start
	return func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return now
		}, func(d time.Duration) {
			mu.Lock()
			defer mu.Unlock()
			now = now.Add(d)
		}
}

func openTestFile(t *testing.T, dir string, maxSize int64, now func() time.Time) *weeklyFile {
	t.Helper()

	w, err := newWeeklyFile(dir, 4, maxSize, now)
	if err != nil {
		t.Fatalf("Failed to open weekly file: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestWeeklyFileSizeRotation(t *testing.T) {
	dir := t.TempDir()
	now, _ := fixedClock(time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC))
	w := openTestFile(t, dir, 100, now)

	first := strings.Repeat("a", 60)
	second := strings.Repeat("b", 60)
	third := strings.Repeat("c", 30)

	for _, chunk := range []string{first, second, third} {
		if _, err := w.Write([]byte(chunk)); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	if got := readFile(t, filepath.Join(dir, "identifier-2026-W42.log")); got != first {
		t.Errorf("Base file should hold only the first chunk, got %d bytes", len(got))
	}
	if got := readFile(t, filepath.Join(dir, "identifier-2026-W42_01.log")); got != second+third {
		t.Errorf("Second file should hold the next chunks, got %q", got)
	}
	if filepath.Base(w.path()) != "identifier-2026-W42_01.log" {
		t.Errorf("Unexpected current file %s", w.path())
	}
}

func TestWeeklyFileOversizedRecord(t *testing.T) {
	dir := t.TempDir()
	now, _ := fixedClock(time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC))
	w := openTestFile(t, dir, 10, now)

	record := strings.Repeat("x", 50)
	if _, err := w.Write([]byte(record)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if filepath.Base(w.path()) != "identifier-2026-W42.log" {
		t.Errorf("An empty file should take an oversized record, got %s", w.path())
	}
	if got := readFile(t, w.path()); got != record {
		t.Errorf("Record should be written whole, got %d bytes", len(got))
	}
}

func TestWeeklyFileWeekRollover(t *testing.T) {
	dir := t.TempDir()
	now, advance := fixedClock(time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC))
	w := openTestFile(t, dir, 0, now)

	if _, err := w.Write([]byte("sunday\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	advance(2 * time.Hour)

	if _, err := w.Write([]byte("monday\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if got := readFile(t, filepath.Join(dir, "identifier-2026-W42.log")); got != "sunday\n" {
		t.Errorf("Unexpected W42 content %q", got)
	}
	if got := readFile(t, filepath.Join(dir, "identifier-2026-W43.log")); got != "monday\n" {
		t.Errorf("Unexpected W43 content %q", got)
	}
}

func TestWeeklyFileResumesExistingFiles(t *testing.T) {
	now, _ := fixedClock(time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC))

	tests := []struct {
		name     string
		existing map[string]int
		expected string
	}{
		{
			name:     "base file below limit",
			existing: map[string]int{"identifier-2026-W42.log": 10},
			expected: "identifier-2026-W42.log",
		},
		{
			name:     "base file at limit",
			existing: map[string]int{"identifier-2026-W42.log": 100},
			expected: "identifier-2026-W42_01.log",
		},
		{
			name: "numbered file below limit",
			existing: map[string]int{
				"identifier-2026-W42.log":    100,
				"identifier-2026-W42_01.log": 100,
				"identifier-2026-W42_02.log": 20,
			},
			expected: "identifier-2026-W42_02.log",
		},
		{
			name: "numbered file at limit",
			existing: map[string]int{
				"identifier-2026-W42.log":    100,
				"identifier-2026-W42_01.log": 100,
			},
			expected: "identifier-2026-W42_02.log",
		},
		{
			name:     "other weeks are ignored",
			existing: map[string]int{"identifier-2026-W41_05.log": 100},
			expected: "identifier-2026-W42.log",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, size := range tt.existing {
				if err := os.WriteFile(filepath.Join(dir, name), bytes.Repeat([]byte("x"), size), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			w := openTestFile(t, dir, 100, now)

			if got := filepath.Base(w.path()); got != tt.expected {
				t.Errorf("Expected to resume %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestWeeklyFilePrune(t *testing.T) {
	dir := t.TempDir()
	w := openTestFile(t, dir, 0, time.Now)

	old := time.Now().Add(-5 * 7 * 24 * time.Hour)
	files := map[string]time.Time{
		"identifier-2019-W30.log":    old,
		"identifier-2019-W30_01.log": old,
		"identifier-2019-W41.log":    time.Now(),
		"other-2019-W30.log":         old,
		"identifier-notes.txt":       old,
	}
	for name, mtime := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			t.Fatal(err)
		}
	}

	// The current file is kept even when it looks old
	if err := os.Chtimes(w.path(), old, old); err != nil {
		t.Fatal(err)
	}

	removed, err := w.prune()
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 files removed, got %d", removed)
	}

	for name, shouldExist := range map[string]bool{
		"identifier-2019-W30.log":    false,
		"identifier-2019-W30_01.log": false,
		"identifier-2019-W41.log":    true,
		"other-2019-W30.log":         true,
		"identifier-notes.txt":       true,
		filepath.Base(w.path()):      true,
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		if exists := err == nil; exists != shouldExist {
			t.Errorf("%s: expected exists=%v", name, shouldExist)
		}
	}
}

func TestWeeklyFileConcurrentWrites(t *testing.T) {
	dir := t.TempDir()
	w := openTestFile(t, dir, 512, time.Now)

	line := []byte(strings.Repeat("z", 31) + "\n")

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			for range 50 {
				if _, err := w.Write(line); err != nil {
					t.Errorf("Write failed: %v", err)
					return
				}
			}
		})
	}
	wg.Wait()

	matches, err := filepath.Glob(filepath.Join(dir, filePrefix+"*.log"))
	if err != nil {
		t.Fatal(err)
	}

	var total int
	for _, m := range matches {
		content := readFile(t, m)
		if len(content) > 512 {
			t.Errorf("%s exceeds the size cap: %d bytes", m, len(content))
		}
		total += strings.Count(content, "\n")
	}
	if total != 8*50 {
		t.Errorf("Expected %d lines across files, got %d", 8*50, total)
	}
}

func TestWeeklyFileClose(t *testing.T) {
	w, err := openWeeklyFile(t.TempDir(), 4, 0)
	if err != nil {
		t.Fatal(err)
	}

	if err := w.Close(); err != nil {
		t.Errorf("First close failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Second close should be a no-op, got %v", err)
	}
	if _, err := w.Write([]byte("late")); !errors.Is(err, os.ErrClosed) {
		t.Errorf("Expected os.ErrClosed after close, got %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("writes JSON to the weekly file", func(t *testing.T) {
		dir := t.TempDir()
		logger, file := newLogger(dir, slog.LevelError, slog.LevelDebug, 4, 0)
		if file == nil {
			t.Fatal("Expected a file to be opened")
		}

		logger.Debug("snapshot taken", "component", "scheduler")
		path := file.path()
		if err := file.Close(); err != nil {
			t.Fatal(err)
		}

		content := readFile(t, path)
		if !strings.Contains(content, `"msg":"snapshot taken"`) || !strings.Contains(content, `"component":"scheduler"`) {
			t.Errorf("Unexpected file content %s", content)
		}
	})

	t.Run("falls back to the console", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "not-a-dir")
		if err := os.WriteFile(blocker, nil, 0o644); err != nil {
			t.Fatal(err)
		}

		logger, file := newLogger(filepath.Join(blocker, "logs"), slog.LevelError, slog.LevelDebug, 4, 0)
		if logger == nil {
			t.Fatal("Expected a console logger")
		}
		if file != nil {
			t.Error("Expected no file when the directory cannot be created")
		}
	})
}

func TestTeeHandler(t *testing.T) {
	var debugBuf, warnBuf bytes.Buffer
	tee := teeHandler{
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}

	if !tee.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Debug should be enabled when any handler accepts it")
	}

	logger := slog.New(tee).With("component", "resolver").WithGroup("match")
	logger.Debug("lookup", "type", "variation")
	logger.Warn("store unreachable", "type", "custom")

	if got := strings.Count(debugBuf.String(), "\n"); got != 2 {
		t.Errorf("Debug handler should get both records, got %d", got)
	}
	if strings.Contains(warnBuf.String(), "lookup") || !strings.Contains(warnBuf.String(), "store unreachable") {
		t.Errorf("Warn handler should only get the warning, got %s", warnBuf.String())
	}
	for _, out := range []string{debugBuf.String(), warnBuf.String()} {
		if !strings.Contains(out, "component=resolver") || !strings.Contains(out, "match.type=") {
			t.Errorf("Attributes and groups should reach every handler, got %s", out)
		}
	}
}
