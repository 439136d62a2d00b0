package store

import (
	"context"
	"os"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/buildstation/voidmap/pkg/constants"
	"github.com/buildstation/voidmap/pkg/elements"
	"github.com/buildstation/voidmap/pkg/errors"
)

// Memory is an in-memory Store used by tests and dry runs.
type Memory struct {
	mu  sync.RWMutex
	set *elements.Set

	// FailNextSave makes the next Save return an error without
	// applying anything. Tests use it to verify commit atomicity.
	FailNextSave bool
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{set: elements.NewSet()}
}

// Load implements the Store interface.
func (m *Memory) Load(_ context.Context) (*elements.Set, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.set.Clone(), nil
}

// Save implements the Store interface.
func (m *Memory) Save(_ context.Context, set *elements.Set) error {
	if set == nil {
		return errors.NewValidationError("set", nil, "set is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNextSave {
		m.FailNextSave = false
		return errors.ErrStorageUnavailable
	}
	m.set = set.Clone()
	return nil
}

// PurgeDeleted implements the Store interface.
func (m *Memory) PurgeDeleted(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := m.set.Len()
	m.set = m.set.Filter(func(e *elements.Element) bool {
		return e.Status != elements.StatusDeleted
	})
	return before - m.set.Len(), nil
}

// Snapshot implements the Store interface by writing the population as
// a YAML document.
func (m *Memory) Snapshot(_ context.Context, path string) error {
	if path == "" {
		return errors.NewValidationError("path", path, "snapshot path is required")
	}
	m.mu.RLock()
	list := m.set.List()
	m.mu.RUnlock()

	raw, err := yaml.Marshal(list)
	if err != nil {
		return errors.WrapIO("snapshot", path, err)
	}
	if err := os.WriteFile(path, raw, constants.FilePermissions); err != nil {
		return errors.WrapIO("snapshot", path, err)
	}
	return nil
}

// Close implements the Store interface.
func (m *Memory) Close() error {
	return nil
}
