package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nao1215/linklens/internal/config"
)

var (
	// ErrEmptyKey is returned for an empty settings key.
	ErrEmptyKey = errors.New("settings key must not be empty")

	// ErrInvalidValue is returned when a stored value is not a boolean.
	ErrInvalidValue = errors.New("stored settings value is not a boolean")
)

// Store reads and writes boolean settings.
type Store interface {
	GetBool(ctx context.Context, key string) (bool, error)
	SetBool(ctx context.Context, key string, value bool) error
}

// Keys lists the settings the panel shows, in display order.
func Keys() []string {
	return []string{config.KeyHighlightEnabled, config.KeyPreviewEnabled}
}

// LoadFeatures reads both flags into a new Features value. A read error
// leaves the affected flag at its default (false) and is returned joined
// with any other errors.
func LoadFeatures(ctx context.Context, store Store) (*config.Features, error) {
	var errs []error

	highlight, err := store.GetBool(ctx, config.KeyHighlightEnabled)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to read %s: %w", config.KeyHighlightEnabled, err))
		highlight = false
	}
	preview, err := store.GetBool(ctx, config.KeyPreviewEnabled)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to read %s: %w", config.KeyPreviewEnabled, err))
		preview = false
	}

	return config.NewFeatures(highlight, preview), errors.Join(errs...)
}

// Memory is a Store kept in memory.
type Memory struct {
	mu     sync.RWMutex
	values map[string]bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]bool)}
}

// GetBool implements Store.
func (m *Memory) GetBool(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

// SetBool implements Store.
func (m *Memory) SetBool(_ context.Context, key string, value bool) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
