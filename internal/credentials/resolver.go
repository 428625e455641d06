package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"lingomic/internal/domain"
)

const defaultUser = "openai"

// SecretStore is a secure key-value store.
type SecretStore interface {
	Get(service string, user string) (string, error)
	Set(service string, user string, secret string) error
	Delete(service string, user string) error
}

// ErrSecretNotFound is returned by stores when no secret exists.
var ErrSecretNotFound = errors.New("secret not found")

// Keyring stores secrets in the OS keychain.
type Keyring struct{}

func (Keyring) Get(service string, user string) (string, error) {
	secret, err := keyring.Get(service, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrSecretNotFound
	}
	return secret, err
}

func (Keyring) Set(service string, user string, secret string) error {
	return keyring.Set(service, user, secret)
}

func (Keyring) Delete(service string, user string) error {
	err := keyring.Delete(service, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// Resolver finds the API key: explicit override first, then the secret
// store, else MissingCredential.
type Resolver struct {
	override string
	store    SecretStore
	service  string
	user     string
}

func NewResolver(override string, store SecretStore, service string) *Resolver {
	if service == "" {
		service = "lingomic"
	}
	return &Resolver{
		override: strings.TrimSpace(override),
		store:    store,
		service:  service,
		user:     defaultUser,
	}
}

func (r *Resolver) APIKey(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r.override != "" {
		return r.override, nil
	}
	if r.store == nil {
		return "", domain.ErrMissingCredential
	}

	secret, err := r.store.Get(r.service, r.user)
	if err != nil {
		if errors.Is(err, ErrSecretNotFound) {
			return "", domain.ErrMissingCredential
		}
		return "", &domain.Error{Kind: domain.KindMissingCredential, Detail: "secure store unavailable", Err: err}
	}
	if strings.TrimSpace(secret) == "" {
		return "", domain.ErrMissingCredential
	}
	return strings.TrimSpace(secret), nil
}

// HasOverride reports whether the key comes from configuration.
func (r *Resolver) HasOverride() bool {
	return r.override != ""
}

// Store saves key in the secret store. An empty key deletes it.
func (r *Resolver) Store(key string) error {
	if r.store == nil {
		return errors.New("no secure store configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		if err := r.store.Delete(r.service, r.user); err != nil {
			return fmt.Errorf("failed to delete api key: %w", err)
		}
		return nil
	}
	if err := r.store.Set(r.service, r.user, key); err != nil {
		return fmt.Errorf("failed to store api key: %w", err)
	}
	return nil
}
