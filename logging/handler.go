package logging

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"slices"
)

// newLogger writes text to the console and JSON to a weekly file under
// logDir. When the directory is unusable it falls back to the console and
// returns a nil file.
func newLogger(logDir string, consoleLevel, fileLevel slog.Level, retentionWeeks int, maxFileSize int64) (*slog.Logger, *weeklyFile) {
	console := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: consoleLevel})

	file, err := openWeeklyFile(logDir, retentionWeeks, maxFileSize)
	if err != nil {
		logger := slog.New(console)
		logger.Error("File logging disabled", "dir", logDir, "error", err)
		return logger, nil
	}

	return slog.New(teeHandler{
		console,
		slog.NewJSONHandler(file, &slog.HandlerOptions{Level: fileLevel}),
	}), file
}

// teeHandler sends each record to every handler enabled for its level
type teeHandler []slog.Handler

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(t, func(h slog.Handler) bool {
		return h.Enabled(ctx, level)
	})
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (t teeHandler) each(fn func(slog.Handler) slog.Handler) teeHandler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = fn(h)
	}
	return out
}
