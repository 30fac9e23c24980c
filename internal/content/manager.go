package content

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
		m.nameIndexer = indexer
	}
}

// WithTypeIndexer attaches a content-type read-model indexer updated after
// saves.
func WithTypeIndexer(indexer TypeIndexer) ManagerOption {
	return func(m *Manager) {
		m.typeIndexer = indexer
	}
}

// Manager wraps repository saves with unique-name conflict detection scoped
// to the content's realm and content type. The conflict lookup only runs when
// a pending event changes the invariant locale's name.
type Manager struct {
	repo        *Repository
	names       NameQuerier
	nameIndexer NameIndexer
	typeIndexer TypeIndexer
	logger      interfaces.Logger
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

// Save persists the aggregate after enforcing invariant unique-name
// availability within the realm and content type.
func (m *Manager) Save(ctx context.Context, c *Content) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name, nameAffected := pendingNameChange(c)
	if nameAffected && m.names != nil {
		conflictID, err := m.names.FindIDByUniqueName(ctx, c.ID().RealmID, c.ContentTypeID().EntityID, name.Normalized())
		if err != nil {
			return err
		}
		if conflictID != uuid.Nil && conflictID != c.ID().EntityID {
			return &domain.UniqueNameTakenError{
				Resource:      "content",
				UniqueName:    name.Value(),
				RealmID:       c.ID().RealmID,
				ConflictingID: conflictID,
			}
		}
	}

	created := pendingCreate(c)
	deleted := pendingDelete(c)

	if err := m.repo.Save(ctx, c); err != nil {
		return err
	}

	m.updateIndexes(ctx, c, name, nameAffected, created, deleted)
	return nil
}

func (m *Manager) updateIndexes(ctx context.Context, c *Content, name domain.UniqueName, nameAffected, created, deleted bool) {
	if m.nameIndexer != nil {
		var err error
		switch {
		case deleted:
			err = m.nameIndexer.RemoveName(ctx, c.ID().RealmID, c.ID().EntityID)
		case nameAffected:
			err = m.nameIndexer.IndexName(ctx, c.ID().RealmID, c.ContentTypeID().EntityID, c.ID().EntityID, name.Normalized())
		}
		if err != nil {
			m.logger.Warn("content.name_index.update_failed", "content", c.ID().String(), "error", err)
		}
	}

	if m.typeIndexer != nil {
		var err error
		switch {
		case deleted:
			err = m.typeIndexer.RemoveType(ctx, c.ID().RealmID, c.ID().EntityID)
		case created:
			err = m.typeIndexer.IndexType(ctx, c.ID().RealmID, c.ID().EntityID, c.ContentTypeID().EntityID)
		}
		if err != nil {
			m.logger.Warn("content.type_index.update_failed", "content", c.ID().String(), "error", err)
		}
	}
}

// pendingNameChange scans unsaved events for the last change to the invariant
// locale's unique name. Per-language locales carry display names only for
// lookup purposes; uniqueness binds to the invariant slot.
func pendingNameChange(c *Content) (domain.UniqueName, bool) {
	var name domain.UniqueName
	found := false
	for _, evt := range c.Pending() {
		switch e := evt.(type) {
		case Created:
			name, found = e.Invariant.UniqueName, true
		case LocaleSet:
			if e.LanguageID == nil {
				name, found = e.Locale.UniqueName, true
			}
		}
	}
	return name, found
}

func pendingCreate(c *Content) bool {
	for _, evt := range c.Pending() {
		if _, ok := evt.(Created); ok {
			return true
		}
	}
	return false
}

func pendingDelete(c *Content) bool {
	for _, evt := range c.Pending() {
		if _, ok := evt.(Deleted); ok {
			return true
		}
	}
	return false
}
