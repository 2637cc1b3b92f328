package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// filePrefix names every log file: identifier-YYYY-Www.log, followed by
// identifier-YYYY-Www_01.log and up when the size cap is hit within a week.
const filePrefix = "identifier-"

const pruneInterval = 24 * time.Hour

var seqSuffixRegex = regexp.MustCompile(`_(\d{2,})\.log$`)

// weeklyFile is an io.Writer that starts a new file every ISO week and
// whenever the current one would grow past maxSize. Files not written to
// within the retention window are pruned once a day.
type weeklyFile struct {
	dir       string
	maxSize   int64
	retention time.Duration
	now       func() time.Time

	mu   sync.Mutex
	f    *os.File
	week string
	seq  int
	size int64

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func openWeeklyFile(dir string, retentionWeeks int, maxSize int64) (*weeklyFile, error) {
	return newWeeklyFile(dir, retentionWeeks, maxSize, time.Now)
}

func newWeeklyFile(dir string, retentionWeeks int, maxSize int64, now func() time.Time) (*weeklyFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	w := &weeklyFile{
		dir:       dir,
		maxSize:   maxSize,
		retention: time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		now:       now,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}

	w.mu.Lock()
	err := w.openWeek(weekKey(now()))
	w.mu.Unlock()
	if err != nil {
		close(w.done)
		return nil, err
	}

	go w.pruneLoop()
	return w, nil
}

// weekKey formats t as an ISO week, e.g. 2026-W42
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func fileName(week string, seq int) string {
	if seq == 0 {
		return filePrefix + week + ".log"
	}
	return fmt.Sprintf("%s%s_%02d.log", filePrefix, week, seq)
}

// openWeek resumes the newest file of week, or starts the next one when it is full.
// Caller holds mu.
func (w *weeklyFile) openWeek(week string) error {
	seq := w.lastSeq(week)

	if w.maxSize > 0 {
		if info, err := os.Stat(filepath.Join(w.dir, fileName(week, seq))); err == nil && info.Size() >= w.maxSize {
			seq++
		}
	}

	return w.switchTo(week, seq)
}

func (w *weeklyFile) lastSeq(week string) int {
	matches, _ := filepath.Glob(filepath.Join(w.dir, filePrefix+week+"_*.log"))

	last := 0
	for _, m := range matches {
		sub := seqSuffixRegex.FindStringSubmatch(m)
		if sub == nil {
			continue
		}
		if n, err := strconv.Atoi(sub[1]); err == nil && n > last {
			last = n
		}
	}
	return last
}

// switchTo makes week/seq the current file. Caller holds mu.
func (w *weeklyFile) switchTo(week string, seq int) error {
	path := filepath.Join(w.dir, fileName(week, seq))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", path, err)
	}

	if w.f != nil {
		if err := w.f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "logging: close %s: %v\n", w.f.Name(), err)
		}
	}

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	w.f, w.week, w.seq, w.size = f, week, seq, size
	return nil
}

// Write appends p to the current file, rotating first when the week changed
// or p would overflow the size cap. A record larger than the cap still goes
// into an empty file.
func (w *weeklyFile) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.f == nil {
		return 0, os.ErrClosed
	}

	if week := weekKey(w.now()); week != w.week {
		if err := w.openWeek(week); err != nil {
			return 0, err
		}
	} else if w.maxSize > 0 && w.size > 0 && w.size+int64(len(p)) > w.maxSize {
		if err := w.switchTo(w.week, w.seq+1); err != nil {
			return 0, err
		}
	}

	n, err := w.f.Write(p)
	w.size += int64(n)
	return n, err
}

// path returns the file currently written to
func (w *weeklyFile) path() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.f == nil {
		return ""
	}
	return w.f.Name()
}

// prune removes log files last modified before the retention window and
// returns how many were removed. The current file is never removed.
func (w *weeklyFile) prune() (int, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return 0, fmt.Errorf("read log directory: %w", err)
	}

	current := filepath.Base(w.path())
	cutoff := w.now().Add(-w.retention)

	removed := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == current || !strings.HasPrefix(name, filePrefix) || filepath.Ext(name) != ".log" {
			continue
		}

		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(w.dir, name)); err == nil {
			removed++
		}
	}
	return removed, nil
}

// pruneLoop writes to the console directly so pruning never logs into the
// file it is cleaning up.
func (w *weeklyFile) pruneLoop() {
	defer close(w.done)

	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			removed, err := w.prune()
			if err != nil {
				fmt.Fprintf(os.Stderr, "logging: prune old logs: %v\n", err)
			} else if removed > 0 {
				fmt.Printf("Removed %d expired log files\n", removed)
			}
		}
	}
}

// Close stops pruning and closes the current file. Later writes fail with os.ErrClosed.
func (w *weeklyFile) Close() error {
	w.stopOnce.Do(func() { close(w.stop) })
	<-w.done

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	return err
}
