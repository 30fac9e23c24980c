package content

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// NameQuerier resolves a normalized invariant unique name to the content id
// holding it within a realm and content type. uuid.Nil means the name is
// free.
type NameQuerier interface {
	FindIDByUniqueName(ctx context.Context, realmID, contentTypeID uuid.UUID, normalized string) (uuid.UUID, error)
}

// NameIndexer maintains the unique-name read model after saves.
type NameIndexer interface {
	IndexName(ctx context.Context, realmID, contentTypeID, id uuid.UUID, normalized string) error
	RemoveName(ctx context.Context, realmID, id uuid.UUID) error
}

// TypeQuerier maps content ids to their content type ids. Related-content
// validation uses it to confirm references target the configured type;
// missing ids are simply absent from the result map.
type TypeQuerier interface {
	FindContentTypeIDs(ctx context.Context, contentIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error)
}

// TypeIndexer maintains the content-to-content-type read model after saves.
type TypeIndexer interface {
	IndexType(ctx context.Context, realmID, id, contentTypeID uuid.UUID) error
	RemoveType(ctx context.Context, realmID, id uuid.UUID) error
}

// ListQuerier answers which content instances belong to a content type.
// Content type deletion uses it to cascade to the type's instances.
type ListQuerier interface {
	FindIDsByContentType(ctx context.Context, realmID, contentTypeID uuid.UUID) ([]uuid.UUID, error)
}

func nameKey(realmID, contentTypeID uuid.UUID, normalized string) string {
	realm := ""
	if realmID != uuid.Nil {
		realm = realmID.String()
	}
	return realm + ":" + contentTypeID.String() + ":" + normalized
}

// MemoryIndex is an in-memory read model covering both the unique-name and
// content-type lookups for scaffolding and tests.
type MemoryIndex struct {
	mu     sync.RWMutex
	byKey  map[string]uuid.UUID
	keyOf  map[uuid.UUID]string
	typeOf map[uuid.UUID]uuid.UUID
}

// NewMemoryIndex creates an empty index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		byKey:  make(map[string]uuid.UUID),
		keyOf:  make(map[uuid.UUID]string),
		typeOf: make(map[uuid.UUID]uuid.UUID),
	}
}

// FindIDByUniqueName implements NameQuerier.
func (m *MemoryIndex) FindIDByUniqueName(_ context.Context, realmID, contentTypeID uuid.UUID, normalized string) (uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byKey[nameKey(realmID, contentTypeID, normalized)], nil
}

// IndexName implements NameIndexer, replacing any previous name for the id.
func (m *MemoryIndex) IndexName(_ context.Context, realmID, contentTypeID, id uuid.UUID, normalized string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if previous, ok := m.keyOf[id]; ok {
		delete(m.byKey, previous)
	}
	key := nameKey(realmID, contentTypeID, normalized)
	m.byKey[key] = id
	m.keyOf[id] = key
	return nil
}

// RemoveName implements NameIndexer.
func (m *MemoryIndex) RemoveName(_ context.Context, _, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if key, ok := m.keyOf[id]; ok {
		delete(m.byKey, key)
		delete(m.keyOf, id)
	}
	return nil
}

// FindContentTypeIDs implements TypeQuerier.
func (m *MemoryIndex) FindContentTypeIDs(_ context.Context, contentIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[uuid.UUID]uuid.UUID, len(contentIDs))
	for _, id := range contentIDs {
		if contentTypeID, ok := m.typeOf[id]; ok {
			out[id] = contentTypeID
		}
	}
	return out, nil
}

// FindIDsByContentType implements ListQuerier.
func (m *MemoryIndex) FindIDsByContentType(_ context.Context, _, contentTypeID uuid.UUID) ([]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]uuid.UUID, 0)
	for id, typeID := range m.typeOf {
		if typeID == contentTypeID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// IndexType implements TypeIndexer.
func (m *MemoryIndex) IndexType(_ context.Context, _, id, contentTypeID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.typeOf[id] = contentTypeID
	return nil
}

// RemoveType implements TypeIndexer.
func (m *MemoryIndex) RemoveType(_ context.Context, _, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.typeOf, id)
	return nil
}
