package credentials

import (
	"context"
	"errors"
	"testing"

	"github.com/zalando/go-keyring"

	"lingomic/internal/domain"
)

type failingStore struct{}

func (failingStore) Get(string, string) (string, error) { return "", errors.New("dbus down") }
func (failingStore) Set(string, string, string) error { return errors.New("dbus down") }
func (failingStore) Delete(string, string) error { return errors.New("dbus down") }

func TestResolverOverrideWins(t *testing.T) {
	keyring.MockInit()

	if err := keyring.Set("lingomic-override", defaultUser, "sk-store"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	r := NewResolver(" sk-env ", Keyring{}, "lingomic-override")
	key, err := r.APIKey(context.Background())
	if err != nil || key != "sk-env" {
		t.Fatalf("unexpected key %q err %v", key, err)
	}
	if !r.HasOverride() {
		t.Fatalf("expected override flag")
	}
}

func TestResolverFallsBackToStore(t *testing.T) {
	keyring.MockInit()

	r := NewResolver("", Keyring{}, "lingomic-store")
	if _, err := r.APIKey(context.Background()); !errors.Is(err, domain.ErrMissingCredential) {
		t.Fatalf("expected missing credential, got %v", err)
	}

	if err := r.Store("sk-saved"); err != nil {
		t.Fatalf("store failed: %v", err)
	}
	key, err := r.APIKey(context.Background())
	if err != nil || key != "sk-saved" {
		t.Fatalf("unexpected key %q err %v", key, err)
	}

	if err := r.Store(""); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := r.APIKey(context.Background()); !errors.Is(err, domain.ErrMissingCredential) {
		t.Fatalf("expected missing credential after delete, got %v", err)
	}
}

func TestResolverStoreFailureIsMissingCredential(t *testing.T) {
	t.Parallel()

	r := NewResolver("", failingStore{}, "")
	_, err := r.APIKey(context.Background())
	if domain.KindOf(err) != domain.KindMissingCredential {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResolverNoStore(t *testing.T) {
	t.Parallel()

	r := NewResolver("", nil, "")
	if _, err := r.APIKey(context.Background()); !errors.Is(err, domain.ErrMissingCredential) {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Store("x"); err == nil {
		t.Fatalf("expected error without store")
	}
}

func TestResolverHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewResolver("sk", nil, "").APIKey(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
