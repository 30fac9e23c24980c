package fields

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// NameQuerier resolves a normalized unique name to the id holding it within a
// realm. uuid.Nil means the name is free.
type NameQuerier interface {
	FindIDByUniqueName(ctx context.Context, realmID uuid.UUID, normalized string) (uuid.UUID, error)
}

// NameIndexer maintains the unique-name read model after saves. Managers call
// it best-effort; the projection lags rather than blocking writes.
type NameIndexer interface {
	IndexName(ctx context.Context, realmID, id uuid.UUID, normalized string) error
	RemoveName(ctx context.Context, realmID, id uuid.UUID) error
}

func nameKey(realmID uuid.UUID, normalized string) string {
	realm := ""
	if realmID != uuid.Nil {
		realm = realmID.String()
	}
	return realm + ":" + normalized
}

// MemoryNameIndex is an in-memory unique-name read model for scaffolding and
// tests.
type MemoryNameIndex struct {
	mu    sync.RWMutex
	byKey map[string]uuid.UUID
	keyOf map[uuid.UUID]string
}

// NewMemoryNameIndex creates an empty index.
func NewMemoryNameIndex() *MemoryNameIndex {
	return &MemoryNameIndex{
		byKey: make(map[string]uuid.UUID),
		keyOf: make(map[uuid.UUID]string),
	}
}

// FindIDByUniqueName implements NameQuerier.
func (m *MemoryNameIndex) FindIDByUniqueName(_ context.Context, realmID uuid.UUID, normalized string) (uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byKey[nameKey(realmID, normalized)], nil
}

// IndexName implements NameIndexer, replacing any previous name for the id.
func (m *MemoryNameIndex) IndexName(_ context.Context, realmID, id uuid.UUID, normalized string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if previous, ok := m.keyOf[id]; ok {
		delete(m.byKey, previous)
	}
	key := nameKey(realmID, normalized)
	m.byKey[key] = id
	m.keyOf[id] = key
	return nil
}

// RemoveName implements NameIndexer.
func (m *MemoryNameIndex) RemoveName(_ context.Context, _, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if key, ok := m.keyOf[id]; ok {
		delete(m.byKey, key)
		delete(m.keyOf, id)
	}
	return nil
}
