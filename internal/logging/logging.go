package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

const fileName = "lingomic.log"

// Config controls where diagnostics go.
type Config struct {
	Dir     string
	Level   string
	Console bool
}

// Logger owns the open log file, if any.
type Logger struct {
	zerolog.Logger
	file *os.File
}

// New opens <Dir>/lingomic.log and returns a logger writing to it. With an
// empty Dir only the console sink is used.
func New(cfg Config) (*Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var (
		writers []io.Writer
		file    *os.File
	)
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err = os.OpenFile(filepath.Join(cfg.Dir, fileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        file,
			TimeFormat: "2006-01-02 15:04:05",
			NoColor:    true,
		})
	}
	if cfg.Console || len(writers) == 0 {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Int("pid", os.Getpid()).
		Logger()
	return &Logger{Logger: logger, file: file}, nil
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// ResolveDir picks the log directory: explicit value, then
// LINGOMIC_LOG_DIR, then <user config dir>/lingomic/logs.
func ResolveDir(explicit string) (string, error) {
	for _, candidate := range []string{explicit, os.Getenv("LINGOMIC_LOG_DIR")} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if filepath.IsAbs(candidate) {
			return candidate, nil
		}
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		return filepath.Join(wd, candidate), nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "lingomic", "logs"), nil
}
