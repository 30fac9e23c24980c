// Package engine is the multi-tenant structured content engine: field types,
// content types, and content instances are event sourced aggregates exposed
// through services, command handlers, and a markdown import pipeline.
package engine

import (
	"github.com/google/uuid"

	"github.com/goliatone/go-content-engine/internal/content"
	"github.com/goliatone/go-content-engine/internal/di"
	"github.com/goliatone/go-content-engine/internal/domain"
	"github.com/goliatone/go-content-engine/internal/eventstore"
	"github.com/goliatone/go-content-engine/internal/fields"
	"github.com/goliatone/go-content-engine/internal/markdown"
	"github.com/goliatone/go-content-engine/internal/schema"
	"github.com/goliatone/go-content-engine/pkg/interfaces"
)

// FieldTypeService exports the field type service contract.
type FieldTypeService = fields.Service

// ContentTypeService exports the content type service contract.
type ContentTypeService = schema.Service

// ContentService exports the content service contract.
type ContentService = content.Service

// FieldTypeDto exports the flat field type view.
type FieldTypeDto = fields.Dto

// ContentTypeDto exports the flat content type view.
type ContentTypeDto = schema.Dto

// ContentDto exports the flat content view.
type ContentDto = content.Dto

// AggregateID exports the realm-scoped aggregate key.
type AggregateID = domain.AggregateID

// PublishStatus exports the locale publish state.
type PublishStatus = domain.PublishStatus

// NamePolicy exports the realm unique-name policy.
type NamePolicy = domain.NamePolicy

// EventStore exports the append-only event store contract.
type EventStore = eventstore.Store

// MarkdownImporter exports the markdown import pipeline.
type MarkdownImporter = markdown.Importer

// CommandHandlers exports the ready-to-subscribe command handler set.
type CommandHandlers = di.Commands

// Option exports the container option type for advanced integrations.
type Option = di.Option

// Container overrides.
var (
	WithLoggerProvider     = di.WithLoggerProvider
	WithBunDB              = di.WithBunDB
	WithCache              = di.WithCache
	WithClock              = di.WithClock
	WithIDGenerator        = di.WithIDGenerator
	WithNamePolicy         = di.WithNamePolicy
	WithEventStore         = di.WithEventStore
	WithFieldTypeService   = di.WithFieldTypeService
	WithContentTypeService = di.WithContentTypeService
	WithContentService     = di.WithContentService
)

// NewAggregateID builds a realm-scoped aggregate key. A nil realm id yields a
// realm-less key.
func NewAggregateID(realmID, entityID uuid.UUID) AggregateID {
	return domain.NewAggregateID(realmID, entityID)
}

// Module is the top level engine runtime façade.
type Module struct {
	container *di.Container
}

// New constructs an engine module using the provided configuration and
// optional overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// FieldTypes returns the configured field type service.
func (m *Module) FieldTypes() FieldTypeService {
	return m.container.FieldTypeService()
}

// ContentTypes returns the configured content type service.
func (m *Module) ContentTypes() ContentTypeService {
	return m.container.ContentTypeService()
}

// Content returns the configured content service.
func (m *Module) Content() ContentService {
	return m.container.ContentService()
}

// Commands returns the ready-to-subscribe command handlers.
func (m *Module) Commands() *CommandHandlers {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.CommandHandlers()
}

// Markdown returns the markdown importer.
func (m *Module) Markdown() *MarkdownImporter {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.MarkdownImporter()
}

// Events exposes the backing event store.
func (m *Module) Events() EventStore {
	return m.container.EventStore()
}

// Logger returns a module-scoped logger from the configured provider.
func (m *Module) Logger(name string) interfaces.Logger {
	if m == nil || m.container == nil || m.container.LoggerProvider() == nil {
		return nil
	}
	return m.container.LoggerProvider().GetLogger(name)
}
