package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Veraticus/climbr/internal/common"
)

// CredentialKey prefixes the settings keys under which vision API keys persist.
const CredentialKey = "vision.api_key"

// CredentialKeyFor returns the settings key holding the stored API key for
// provider. Each provider keeps its own key.
func CredentialKeyFor(provider string) string {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return CredentialKey
	}
	return CredentialKey + "." + provider
}

// KV is durable key-value storage for settings.
type KV interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
}

// Credential is the process-wide holder of the vision API key. Set is the
// only way to change it; persistence is best-effort.
type Credential struct {
	store KV
	key   string
	value string
	mu    sync.RWMutex
}

// NewCredential creates an empty credential backed by store. A nil store
// keeps the value in memory only.
func NewCredential(store KV, key string) *Credential {
	if key == "" {
		key = CredentialKey
	}
	return &Credential{store: store, key: key}
}

// Load reads the persisted value. A missing value leaves the credential empty.
func (c *Credential) Load(ctx context.Context) error {
	if c.store == nil {
		return nil
	}

	value, err := c.store.GetSetting(ctx, c.key)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load credential: %w", err)
	}

	c.mu.Lock()
	c.value = strings.TrimSpace(value)
	c.mu.Unlock()
	return nil
}

// Set replaces the credential. The in-memory value is always updated; a
// persistence failure is logged and returned.
func (c *Credential) Set(ctx context.Context, value string) error {
	value = strings.TrimSpace(value)

	c.mu.Lock()
	c.value = value
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}

	var err error
	if value == "" {
		err = c.store.DeleteSetting(ctx, c.key)
	} else {
		err = c.store.SetSetting(ctx, c.key, value)
	}
	if err != nil {
		slog.Warn("Failed to persist credential", "key", c.key, "error", err)
		return fmt.Errorf("credential kept for this session only: %w", err)
	}
	return nil
}

// Clear removes the credential.
func (c *Credential) Clear(ctx context.Context) error {
	return c.Set(ctx, "")
}

// Get returns the current value.
func (c *Credential) Get() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Present reports whether a non-empty credential is held.
func (c *Credential) Present() bool {
	return c.Get() != ""
}

// Mask renders a key for display, keeping only its edges.
func Mask(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", 8) + key[len(key)-4:]
}
