package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesToFile(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "logs")
	logger, err := New(Config{Dir: dir, Level: "debug"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Debug().Str("op", "translate").Msg("operation started")
	if err := logger.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	contents, err := os.ReadFile(filepath.Join(dir, fileName))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(string(contents), "operation started") || !strings.Contains(string(contents), "op=translate") {
		t.Fatalf("unexpected log contents: %q", contents)
	}
}

func TestNewRespectsLevel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logger, err := New(Config{Dir: dir, Level: "warn"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	_ = logger.Close()

	contents, _ := os.ReadFile(filepath.Join(dir, fileName))
	if strings.Contains(string(contents), "hidden") || !strings.Contains(string(contents), "shown") {
		t.Fatalf("unexpected log contents: %q", contents)
	}
}

func TestResolveDir(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "explicit")
	got, err := ResolveDir(abs)
	if err != nil || got != abs {
		t.Fatalf("unexpected explicit dir: %q %v", got, err)
	}

	envDir := filepath.Join(t.TempDir(), "env")
	t.Setenv("LINGOMIC_LOG_DIR", envDir)
	got, err = ResolveDir("")
	if err != nil || got != envDir {
		t.Fatalf("unexpected env dir: %q %v", got, err)
	}

	t.Setenv("LINGOMIC_LOG_DIR", "")
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")
	got, err = ResolveDir("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(got, filepath.Join("lingomic", "logs")) {
		t.Fatalf("unexpected default dir: %q", got)
	}
}

func TestCloseNilSafe(t *testing.T) {
	t.Parallel()

	var logger *Logger
	if err := logger.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
