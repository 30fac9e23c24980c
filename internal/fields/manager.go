package fields

import (
	"context"

	"github.com/goliatone/go-content-engine/internal/domain"
	"github.com/goliatone/go-content-engine/internal/logging"
	"github.com/goliatone/go-content-engine/pkg/interfaces"
	"github.com/google/uuid"
)

// ManagerOption configures the manager at construction time.
type ManagerOption func(*Manager)

// WithLogger injects the logger used for save diagnostics.
func WithLogger(logger interfaces.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithNameIndexer attaches a read-model indexer updated after saves.
func WithNameIndexer(indexer NameIndexer) ManagerOption {
	return func(m *Manager) {
		m.indexer = indexer
	}
}

// Manager wraps repository saves with realm-scoped unique-name conflict
// detection. The conflict lookup only runs when a pending event affects the
// name, avoiding read-model round-trips on unrelated saves.
type Manager struct {
	repo    *Repository
	names   NameQuerier
	indexer NameIndexer
	logger  interfaces.Logger
}

// NewManager builds a manager over the repository and name read model.
func NewManager(repo *Repository, names NameQuerier, opts ...ManagerOption) *Manager {
	m := &Manager{
		repo:   repo,
		names:  names,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Repository exposes the underlying repository for load operations.
func (m *Manager) Repository() *Repository { return m.repo }

// Save persists the aggregate after enforcing unique-name availability.
func (m *Manager) Save(ctx context.Context, ft *FieldType) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name, nameAffected := pendingNameChange(ft)
	if nameAffected && m.names != nil {
		conflictID, err := m.names.FindIDByUniqueName(ctx, ft.ID().RealmID, name.Normalized())
		if err != nil {
			return err
		}
		if conflictID != uuid.Nil && conflictID != ft.ID().EntityID {
			return &domain.UniqueNameTakenError{
				Resource:      "field type",
				UniqueName:    name.Value(),
				RealmID:       ft.ID().RealmID,
				ConflictingID: conflictID,
			}
		}
	}

	deleted := pendingDelete(ft)

	if err := m.repo.Save(ctx, ft); err != nil {
		return err
	}

	m.updateIndex(ctx, ft, name, nameAffected, deleted)
	return nil
}

func (m *Manager) updateIndex(ctx context.Context, ft *FieldType, name domain.UniqueName, nameAffected, deleted bool) {
	if m.indexer == nil {
		return
	}

	var err error
	switch {
	case deleted:
		err = m.indexer.RemoveName(ctx, ft.ID().RealmID, ft.ID().EntityID)
	case nameAffected:
		err = m.indexer.IndexName(ctx, ft.ID().RealmID, ft.ID().EntityID, name.Normalized())
	default:
		return
	}
	if err != nil {
		m.logger.Warn("fields.index.update_failed", "field_type", ft.ID().String(), "error", err)
	}
}

// pendingNameChange scans unsaved events for the last name-affecting one.
func pendingNameChange(ft *FieldType) (domain.UniqueName, bool) {
	var name domain.UniqueName
	found := false
	for _, evt := range ft.Pending() {
		switch e := evt.(type) {
		case Created:
			name, found = e.UniqueName, true
		case UniqueNameChanged:
			name, found = e.UniqueName, true
		}
	}
	return name, found
}

func pendingDelete(ft *FieldType) bool {
	for _, evt := range ft.Pending() {
		if _, ok := evt.(Deleted); ok {
			return true
		}
	}
	return false
}
