package schema

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

// NameIndexer maintains the unique-name read model after saves.
type NameIndexer interface {
	IndexName(ctx context.Context, realmID, id uuid.UUID, normalized string) error
	RemoveName(ctx context.Context, realmID, id uuid.UUID) error
}

// UsageQuerier answers which content types reference a field type. Field type
// deletion uses it to detach the field from every schema that carries it.
type UsageQuerier interface {
	FindIDsByFieldType(ctx context.Context, realmID, fieldTypeID uuid.UUID) ([]uuid.UUID, error)
}

// UsageIndexer maintains the field-type usage read model after saves.
type UsageIndexer interface {
	IndexUsage(ctx context.Context, realmID, contentTypeID uuid.UUID, fieldTypeIDs []uuid.UUID) error
	RemoveUsage(ctx context.Context, realmID, contentTypeID uuid.UUID) error
}

func nameKey(realmID uuid.UUID, normalized string) string {
	realm := ""
	if realmID != uuid.Nil {
		realm = realmID.String()
	}
	return realm + ":" + normalized
}

func usageKey(realmID, fieldTypeID uuid.UUID) string {
	realm := ""
	if realmID != uuid.Nil {
		realm = realmID.String()
	}
	return realm + ":" + fieldTypeID.String()
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

// MemoryUsageIndex is an in-memory field-type usage read model.
type MemoryUsageIndex struct {
	mu           sync.RWMutex
	byFieldType  map[string]map[uuid.UUID]struct{}
	keysOfSchema map[uuid.UUID][]string
}

// NewMemoryUsageIndex creates an empty index.
func NewMemoryUsageIndex() *MemoryUsageIndex {
	return &MemoryUsageIndex{
		byFieldType:  make(map[string]map[uuid.UUID]struct{}),
		keysOfSchema: make(map[uuid.UUID][]string),
	}
}

// FindIDsByFieldType implements UsageQuerier.
func (m *MemoryUsageIndex) FindIDsByFieldType(_ context.Context, realmID, fieldTypeID uuid.UUID) ([]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := m.byFieldType[usageKey(realmID, fieldTypeID)]
	ids := make([]uuid.UUID, 0, len(users))
	for id := range users {
		ids = append(ids, id)
	}
	return ids, nil
}

// IndexUsage implements UsageIndexer, replacing the schema's previous usage
// rows with the supplied set.
func (m *MemoryUsageIndex) IndexUsage(_ context.Context, realmID, contentTypeID uuid.UUID, fieldTypeIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dropLocked(contentTypeID)

	keys := make([]string, 0, len(fieldTypeIDs))
	for _, fieldTypeID := range fieldTypeIDs {
		key := usageKey(realmID, fieldTypeID)
		users, ok := m.byFieldType[key]
		if !ok {
			users = make(map[uuid.UUID]struct{})
			m.byFieldType[key] = users
		}
		users[contentTypeID] = struct{}{}
		keys = append(keys, key)
	}
	m.keysOfSchema[contentTypeID] = keys
	return nil
}

// RemoveUsage implements UsageIndexer.
func (m *MemoryUsageIndex) RemoveUsage(_ context.Context, _, contentTypeID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropLocked(contentTypeID)
	return nil
}

func (m *MemoryUsageIndex) dropLocked(contentTypeID uuid.UUID) {
	for _, key := range m.keysOfSchema[contentTypeID] {
		if users, ok := m.byFieldType[key]; ok {
			delete(users, contentTypeID)
			if len(users) == 0 {
				delete(m.byFieldType, key)
			}
		}
	}
	delete(m.keysOfSchema, contentTypeID)
}
