package logging

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/giygas/medication-identifier/config"
)

type LoggingService struct {
	Logger *slog.Logger
	file   *weeklyFile
}

var DefaultLoggingService *LoggingService

// InitLogger initializes the global logger instance. The console level follows
// the environment unless logLevel overrides it; the file always gets debug.
func InitLogger(logDir string, env config.Environment, logLevel string, retentionWeeks int, maxFileSize int64) {
	initLogger(logDir, GetConsoleLogLevel(env, logLevel, false), retentionWeeks, maxFileSize)
}

func initLogger(logDir string, consoleLevel slog.Level, retentionWeeks int, maxFileSize int64) {
	logger, file := newLogger(logDir, consoleLevel, GetFileLogLevel(), retentionWeeks, maxFileSize)
	DefaultLoggingService = &LoggingService{
		Logger: logger,
		file:   file,
	}
	slog.SetDefault(logger)
}

// Close flushes and closes the log file, if any.
func Close() error {
	if DefaultLoggingService == nil || DefaultLoggingService.file == nil {
		return nil
	}
	return DefaultLoggingService.file.Close()
}

// ResetForTest installs a fresh global logger writing under dir and restores
// the previous one when the test ends.
func ResetForTest(t testing.TB, dir string, env config.Environment, logLevel string, retentionWeeks int, maxFileSize int64) {
	t.Helper()

	previous := DefaultLoggingService
	previousDefault := slog.Default()

	initLogger(dir, GetConsoleLogLevel(env, logLevel, testing.Verbose()), retentionWeeks, maxFileSize)
	current := DefaultLoggingService

	t.Cleanup(func() {
		if current.file != nil {
			_ = current.file.Close()
		}
		DefaultLoggingService = previous
		slog.SetDefault(previousDefault)
	})
}

// GetConsoleLogLevel picks the console level. Tests stay quiet (errors only)
// unless run verbose, and ignore LOG_LEVEL. Elsewhere an explicit level wins
// over the environment default: info in dev, warn in staging and prod.
func GetConsoleLogLevel(env config.Environment, logLevel string, verbose bool) slog.Level {
	if env == config.EnvTest {
		if verbose {
			return slog.LevelInfo
		}
		return slog.LevelError
	}

	if logLevel != "" {
		return parseLogLevel(logLevel)
	}

	switch env {
	case config.EnvProduction, config.EnvStaging:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// GetFileLogLevel returns the file handler level. Files keep everything.
func GetFileLogLevel() slog.Level {
	return slog.LevelDebug
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// current is the global logger, or slog's default before InitLogger ran
func current() *slog.Logger {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		return slog.Default()
	}
	return DefaultLoggingService.Logger
}

func Info(msg string, args ...any)  { current().Info(msg, args...) }
func Warn(msg string, args ...any)  { current().Warn(msg, args...) }
func Error(msg string, args ...any) { current().Error(msg, args...) }
func Debug(msg string, args ...any) { current().Debug(msg, args...) }

// Component returns the global logger tagged with a component name.
func Component(name string) *slog.Logger {
	return current().With("component", name)
}
