package schema

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

// WithNameIndexer attaches a unique-name read-model indexer updated after
// saves.
func WithNameIndexer(indexer NameIndexer) ManagerOption {
	return func(m *Manager) {
		m.names.indexer = indexer
	}
}

// WithUsageIndexer attaches a field-type usage read-model indexer updated
// after saves.
func WithUsageIndexer(indexer UsageIndexer) ManagerOption {
	return func(m *Manager) {
		m.usageIndexer = indexer
	}
}

type nameIndexing struct {
	querier NameQuerier
	indexer NameIndexer
}

// Manager wraps repository saves with realm-scoped unique-name conflict
// detection and read-model upkeep. The conflict lookup only runs when a
// pending event affects the name.
type Manager struct {
	repo         *Repository
	names        nameIndexing
	usageIndexer UsageIndexer
	logger       interfaces.Logger
}

// NewManager builds a manager over the repository and name read model.
func NewManager(repo *Repository, names NameQuerier, opts ...ManagerOption) *Manager {
	m := &Manager{
		repo:   repo,
		names:  nameIndexing{querier: names},
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
func (m *Manager) Save(ctx context.Context, ct *ContentType) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name, nameAffected := pendingNameChange(ct)
	if nameAffected && m.names.querier != nil {
		conflictID, err := m.names.querier.FindIDByUniqueName(ctx, ct.ID().RealmID, name.Normalized())
		if err != nil {
			return err
		}
		if conflictID != uuid.Nil && conflictID != ct.ID().EntityID {
			return &domain.UniqueNameTakenError{
				Resource:      "content type",
				UniqueName:    name.Value(),
				RealmID:       ct.ID().RealmID,
				ConflictingID: conflictID,
			}
		}
	}

	fieldsAffected := pendingFieldChange(ct)
	deleted := pendingDelete(ct)

	if err := m.repo.Save(ctx, ct); err != nil {
		return err
	}

	m.updateNameIndex(ctx, ct, name, nameAffected, deleted)
	m.updateUsageIndex(ctx, ct, fieldsAffected, deleted)
	return nil
}

func (m *Manager) updateNameIndex(ctx context.Context, ct *ContentType, name domain.UniqueName, nameAffected, deleted bool) {
	if m.names.indexer == nil {
		return
	}

	var err error
	switch {
	case deleted:
		err = m.names.indexer.RemoveName(ctx, ct.ID().RealmID, ct.ID().EntityID)
	case nameAffected:
		err = m.names.indexer.IndexName(ctx, ct.ID().RealmID, ct.ID().EntityID, name.Normalized())
	default:
		return
	}
	if err != nil {
		m.logger.Warn("schema.name_index.update_failed", "content_type", ct.ID().String(), "error", err)
	}
}

func (m *Manager) updateUsageIndex(ctx context.Context, ct *ContentType, fieldsAffected, deleted bool) {
	if m.usageIndexer == nil {
		return
	}

	var err error
	switch {
	case deleted:
		err = m.usageIndexer.RemoveUsage(ctx, ct.ID().RealmID, ct.ID().EntityID)
	case fieldsAffected:
		err = m.usageIndexer.IndexUsage(ctx, ct.ID().RealmID, ct.ID().EntityID, ct.FieldTypeIDs())
	default:
		return
	}
	if err != nil {
		m.logger.Warn("schema.usage_index.update_failed", "content_type", ct.ID().String(), "error", err)
	}
}

// pendingNameChange scans unsaved events for the last name-affecting one.
func pendingNameChange(ct *ContentType) (domain.UniqueName, bool) {
	var name domain.UniqueName
	found := false
	for _, evt := range ct.Pending() {
		switch e := evt.(type) {
		case Created:
			name, found = e.UniqueName, true
		case UniqueNameChanged:
			name, found = e.UniqueName, true
		}
	}
	return name, found
}

// pendingFieldChange reports whether any unsaved event changes the schema's
// field composition. Reordering keeps the same field set, so FieldsSwitched
// does not count.
func pendingFieldChange(ct *ContentType) bool {
	for _, evt := range ct.Pending() {
		switch evt.(type) {
		case FieldSet, FieldRemoved:
			return true
		}
	}
	return false
}

func pendingDelete(ct *ContentType) bool {
	for _, evt := range ct.Pending() {
		if _, ok := evt.(Deleted); ok {
			return true
		}
	}
	return false
}
