package corrections

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"lingomic/internal/domain"
)

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), "corrections.json"))
	table, err := store.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table) != 0 {
		t.Fatalf("expected empty table, got %v", table)
	}
}

func TestFileStoreAddRemovePersists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "corrections.json")
	store := NewFileStore(path)
	if _, err := store.Load(); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if err := store.Add("teh", "the"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := store.Add("recieve", "receive"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := store.Add("", "ignored"); err != nil {
		t.Fatalf("empty add failed: %v", err)
	}
	if err := store.Remove("recieve"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var onDisk map[string]string
	if err := json.Unmarshal(contents, &onDisk); err != nil {
		t.Fatalf("invalid json on disk: %v", err)
	}
	if len(onDisk) != 1 || onDisk["teh"] != "the" {
		t.Fatalf("unexpected document: %v", onDisk)
	}

	reloaded, err := NewFileStore(path).Load()
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if len(reloaded) != 1 || reloaded["teh"] != "the" {
		t.Fatalf("unexpected reloaded table: %v", reloaded)
	}
}

func TestFileStoreCorruptDocument(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "corrections.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	table, err := NewFileStore(path).Load()
	if !errors.Is(err, &domain.Error{Kind: domain.KindFileIO}) {
		t.Fatalf("expected file io error, got %v", err)
	}
	if len(table) != 0 {
		t.Fatalf("expected empty table on failure, got %v", table)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(map[string]string{"a": "b"})
	table, _ := store.Load()
	table["c"] = "d"

	again, _ := store.Load()
	if len(again) != 1 {
		t.Fatalf("store leaked internal map: %v", again)
	}
}
