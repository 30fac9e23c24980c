// Package di wires the engine's collaborators from a single configuration.
package di

import (
	"errors"
	"strings"
	"time"

	command "github.com/goliatone/go-command"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-content-engine/internal/commands"
	"github.com/goliatone/go-content-engine/internal/commands/contentcmd"
	"github.com/goliatone/go-content-engine/internal/commands/fieldcmd"
	"github.com/goliatone/go-content-engine/internal/commands/schemacmd"
	"github.com/goliatone/go-content-engine/internal/content"
	"github.com/goliatone/go-content-engine/internal/domain"
	"github.com/goliatone/go-content-engine/internal/eventstore"
	"github.com/goliatone/go-content-engine/internal/fields"
	"github.com/goliatone/go-content-engine/internal/logging"
	"github.com/goliatone/go-content-engine/internal/logging/gologger"
	"github.com/goliatone/go-content-engine/internal/markdown"
	"github.com/goliatone/go-content-engine/internal/runtimeconfig"
	"github.com/goliatone/go-content-engine/internal/schema"
	"github.com/goliatone/go-content-engine/pkg/interfaces"
)

var ErrBunDBRequired = errors.New("di: bun storage driver requires a *bun.DB (use WithBunDB)")

type fieldTypeIndex interface {
	fields.NameQuerier
	fields.NameIndexer
}

type contentTypeNameIndex interface {
	schema.NameQuerier
	schema.NameIndexer
}

type contentTypeUsageIndex interface {
	schema.UsageQuerier
	schema.UsageIndexer
}

type contentIndex interface {
	content.NameQuerier
	content.NameIndexer
	content.TypeQuerier
	content.TypeIndexer
	content.ListQuerier
}

// Container wires module dependencies.
type Container struct {
	Config runtimeconfig.Config

	provider      interfaces.LoggerProvider
	bunDB         *bun.DB
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer
	clock         func() time.Time
	idGen         func() uuid.UUID
	namePolicy    *domain.NamePolicy

	store eventstore.Store

	fieldTypeRepo   *fields.Repository
	contentTypeRepo *schema.Repository
	contentRepo     *content.Repository

	fieldTypeNames   fieldTypeIndex
	contentTypeNames contentTypeNameIndex
	contentTypeUsage contentTypeUsageIndex
	contentNames     contentIndex

	fieldTypeSvc   fields.Service
	contentTypeSvc schema.Service
	contentSvc     content.Service
	validator      *content.Validator
	importer       *markdown.Importer
	handlers       *Commands
}

// Commands bundles the engine's ready-to-subscribe command handlers.
type Commands struct {
	CreateOrReplaceFieldType *fieldcmd.CreateOrReplaceFieldTypeHandler
	UpdateFieldType          *fieldcmd.UpdateFieldTypeHandler
	DeleteFieldType          *fieldcmd.DeleteFieldTypeHandler

	CreateOrReplaceContentType *schemacmd.CreateOrReplaceContentTypeHandler
	SetField                   *schemacmd.SetFieldHandler
	RemoveField                *schemacmd.RemoveFieldHandler
	SwitchFields               *schemacmd.SwitchFieldsHandler
	DeleteContentType          *schemacmd.DeleteContentTypeHandler

	CreateOrReplaceContent *contentcmd.CreateOrReplaceContentHandler
	SetLocale              *contentcmd.SetLocaleHandler
	RemoveLocale           *contentcmd.RemoveLocaleHandler
	PublishContent         *contentcmd.PublishContentHandler
	UnpublishContent       *contentcmd.UnpublishContentHandler
	DeleteContent          *contentcmd.DeleteContentHandler
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the logger provider built from config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.provider = provider
	}
}

// WithBunDB supplies the database used by the bun storage driver.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the default read model cache.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithClock overrides the event timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(c *Container) {
		c.clock = clock
	}
}

// WithIDGenerator overrides the UUID source for new aggregates.
func WithIDGenerator(generator func() uuid.UUID) Option {
	return func(c *Container) {
		c.idGen = generator
	}
}

// WithNamePolicy overrides the realm unique-name policy applied by every
// service.
func WithNamePolicy(policy domain.NamePolicy) Option {
	return func(c *Container) {
		c.namePolicy = &policy
	}
}

// WithEventStore overrides the event store built from config.
func WithEventStore(store eventstore.Store) Option {
	return func(c *Container) {
		c.store = store
	}
}

// WithFieldTypeService overrides the default field type service binding.
func WithFieldTypeService(svc fields.Service) Option {
	return func(c *Container) {
		c.fieldTypeSvc = svc
	}
}

// WithContentTypeService overrides the default content type service binding.
func WithContentTypeService(svc schema.Service) Option {
	return func(c *Container) {
		c.contentTypeSvc = svc
	}
}

// WithContentService overrides the default content service binding.
func WithContentService(svc content.Service) Option {
	return func(c *Container) {
		c.contentSvc = svc
	}
}

// NewContainer creates a container with the provided configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	if err := c.configureStorage(); err != nil {
		return nil, err
	}
	c.configureServices()
	c.configureCommands()
	c.configureMarkdown()

	return c, nil
}

func (c *Container) configureLogging() error {
	if c.provider != nil {
		return nil
	}

	switch normalized(c.Config.Logging.Provider) {
	case runtimeconfig.LoggingProviderNoop:
		return nil
	default:
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
		})
		if err != nil {
			return err
		}
		c.provider = provider
		return nil
	}
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cacheCfg := repocache.DefaultConfig()
		if c.Config.Cache.DefaultTTL > 0 {
			cacheCfg.TTL = c.Config.Cache.DefaultTTL
		}
		service, err := repocache.NewCacheService(cacheCfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureStorage() error {
	driver := normalized(c.Config.Storage.Driver)
	if driver == "" {
		driver = runtimeconfig.StorageDriverMemory
	}
	if c.bunDB != nil {
		driver = runtimeconfig.StorageDriverBun
	}

	if driver == runtimeconfig.StorageDriverBun {
		if c.bunDB == nil {
			return ErrBunDBRequired
		}
		if c.store == nil {
			c.store = eventstore.NewBunStore(c.bunDB)
		}
		if c.cacheService != nil {
			c.fieldTypeNames = fields.NewBunNameIndexWithCache(c.bunDB, c.cacheService, c.keySerializer)
			c.contentTypeNames = schema.NewBunNameIndexWithCache(c.bunDB, c.cacheService, c.keySerializer)
			c.contentNames = content.NewBunIndexWithCache(c.bunDB, c.cacheService, c.keySerializer)
		} else {
			c.fieldTypeNames = fields.NewBunNameIndex(c.bunDB)
			c.contentTypeNames = schema.NewBunNameIndex(c.bunDB)
			c.contentNames = content.NewBunIndex(c.bunDB)
		}
		c.contentTypeUsage = schema.NewBunUsageIndex(c.bunDB)
	} else {
		if c.store == nil {
			c.store = eventstore.NewMemoryStore()
		}
		c.fieldTypeNames = fields.NewMemoryNameIndex()
		c.contentTypeNames = schema.NewMemoryNameIndex()
		c.contentTypeUsage = schema.NewMemoryUsageIndex()
		c.contentNames = content.NewMemoryIndex()
	}

	if c.clock != nil {
		c.fieldTypeRepo = fields.NewRepository(c.store, fields.WithClock(c.clock))
		c.contentTypeRepo = schema.NewRepository(c.store, schema.WithClock(c.clock))
		c.contentRepo = content.NewRepository(c.store, content.WithClock(c.clock))
	} else {
		c.fieldTypeRepo = fields.NewRepository(c.store)
		c.contentTypeRepo = schema.NewRepository(c.store)
		c.contentRepo = content.NewRepository(c.store)
	}

	return nil
}

func (c *Container) configureServices() {
	c.validator = content.NewValidator(c.contentNames)

	if c.fieldTypeSvc == nil {
		manager := fields.NewManager(
			c.fieldTypeRepo,
			c.fieldTypeNames,
			fields.WithNameIndexer(c.fieldTypeNames),
			fields.WithLogger(logging.FieldsLogger(c.provider)),
		)
		c.fieldTypeSvc = fields.NewService(manager, c.fieldTypeServiceOptions()...)
	}

	if c.contentTypeSvc == nil {
		manager := schema.NewManager(
			c.contentTypeRepo,
			c.contentTypeNames,
			schema.WithNameIndexer(c.contentTypeNames),
			schema.WithUsageIndexer(c.contentTypeUsage),
			schema.WithLogger(logging.SchemaLogger(c.provider)),
		)
		c.contentTypeSvc = schema.NewService(manager, c.contentTypeServiceOptions()...)
	}

	if c.contentSvc == nil {
		manager := content.NewManager(
			c.contentRepo,
			c.contentNames,
			content.WithNameIndexer(c.contentNames),
			content.WithTypeIndexer(c.contentNames),
			content.WithLogger(logging.ContentLogger(c.provider)),
		)
		c.contentSvc = content.NewService(
			manager,
			c.contentTypeRepo,
			c.fieldTypeRepo,
			c.validator,
			c.contentServiceOptions()...,
		)
	}
}

func (c *Container) fieldTypeServiceOptions() []fields.ServiceOption {
	opts := []fields.ServiceOption{
		fields.WithServiceLogger(logging.FieldsLogger(c.provider)),
	}
	if c.idGen != nil {
		opts = append(opts, fields.WithIDGenerator(c.idGen))
	}
	if c.namePolicy != nil {
		opts = append(opts, fields.WithNamePolicy(*c.namePolicy))
	}
	return opts
}

func (c *Container) contentTypeServiceOptions() []schema.ServiceOption {
	opts := []schema.ServiceOption{
		schema.WithServiceLogger(logging.SchemaLogger(c.provider)),
	}
	if c.idGen != nil {
		opts = append(opts, schema.WithIDGenerator(c.idGen))
	}
	if c.namePolicy != nil {
		opts = append(opts, schema.WithNamePolicy(*c.namePolicy))
	}
	return opts
}

func (c *Container) contentServiceOptions() []content.ServiceOption {
	opts := []content.ServiceOption{
		content.WithServiceLogger(logging.ContentLogger(c.provider)),
	}
	if c.idGen != nil {
		opts = append(opts, content.WithIDGenerator(c.idGen))
	}
	if c.namePolicy != nil {
		opts = append(opts, content.WithNamePolicy(*c.namePolicy))
	}
	return opts
}

func (c *Container) configureCommands() {
	fieldLogger := commands.CommandLogger(c.provider, "field_type")
	schemaLogger := commands.CommandLogger(c.provider, "content_type")
	contentLogger := commands.CommandLogger(c.provider, "content")
	timeout := c.Config.Commands.Timeout

	c.handlers = &Commands{
		CreateOrReplaceFieldType: fieldcmd.NewCreateOrReplaceFieldTypeHandler(
			c.fieldTypeSvc, fieldLogger, handlerTimeout[fieldcmd.CreateOrReplaceFieldTypeCommand](timeout)...),
		UpdateFieldType: fieldcmd.NewUpdateFieldTypeHandler(
			c.fieldTypeSvc, fieldLogger, handlerTimeout[fieldcmd.UpdateFieldTypeCommand](timeout)...),
		DeleteFieldType: fieldcmd.NewDeleteFieldTypeHandler(
			c.fieldTypeSvc, c.contentTypeSvc, c.contentTypeUsage, fieldLogger,
			handlerTimeout[fieldcmd.DeleteFieldTypeCommand](timeout)...),

		CreateOrReplaceContentType: schemacmd.NewCreateOrReplaceContentTypeHandler(
			c.contentTypeSvc, schemaLogger, handlerTimeout[schemacmd.CreateOrReplaceContentTypeCommand](timeout)...),
		SetField: schemacmd.NewSetFieldHandler(
			c.contentTypeSvc, schemaLogger, handlerTimeout[schemacmd.SetFieldCommand](timeout)...),
		RemoveField: schemacmd.NewRemoveFieldHandler(
			c.contentTypeSvc, schemaLogger, handlerTimeout[schemacmd.RemoveFieldCommand](timeout)...),
		SwitchFields: schemacmd.NewSwitchFieldsHandler(
			c.contentTypeSvc, schemaLogger, handlerTimeout[schemacmd.SwitchFieldsCommand](timeout)...),
		DeleteContentType: schemacmd.NewDeleteContentTypeHandler(
			c.contentTypeSvc, c.contentSvc, c.contentNames, schemaLogger,
			handlerTimeout[schemacmd.DeleteContentTypeCommand](timeout)...),

		CreateOrReplaceContent: contentcmd.NewCreateOrReplaceContentHandler(
			c.contentSvc, contentLogger, handlerTimeout[contentcmd.CreateOrReplaceContentCommand](timeout)...),
		SetLocale: contentcmd.NewSetLocaleHandler(
			c.contentSvc, contentLogger, handlerTimeout[contentcmd.SetLocaleCommand](timeout)...),
		RemoveLocale: contentcmd.NewRemoveLocaleHandler(
			c.contentSvc, contentLogger, handlerTimeout[contentcmd.RemoveLocaleCommand](timeout)...),
		PublishContent: contentcmd.NewPublishContentHandler(
			c.contentSvc, contentLogger, handlerTimeout[contentcmd.PublishContentCommand](timeout)...),
		UnpublishContent: contentcmd.NewUnpublishContentHandler(
			c.contentSvc, contentLogger, handlerTimeout[contentcmd.UnpublishContentCommand](timeout)...),
		DeleteContent: contentcmd.NewDeleteContentHandler(
			c.contentSvc, contentLogger, handlerTimeout[contentcmd.DeleteContentCommand](timeout)...),
	}
}

func (c *Container) configureMarkdown() {
	renderer := markdown.NewGoldmarkRenderer(markdown.RenderOptions{
		Extensions: c.Config.Markdown.Parser.Extensions,
		HardWraps:  c.Config.Markdown.Parser.HardWraps,
		SafeMode:   c.Config.Markdown.Parser.SafeMode,
	})

	c.importer = markdown.NewImporter(markdown.ImporterConfig{
		Content:      c.contentSvc,
		ContentTypes: c.contentTypeSvc,
		Renderer:     renderer,
		Logger:       logging.MarkdownLogger(c.provider),
	})
}

// FieldTypeService returns the configured field type service.
func (c *Container) FieldTypeService() fields.Service { return c.fieldTypeSvc }

// ContentTypeService returns the configured content type service.
func (c *Container) ContentTypeService() schema.Service { return c.contentTypeSvc }

// ContentService returns the configured content service.
func (c *Container) ContentService() content.Service { return c.contentSvc }

// ContentValidator returns the locale document validator.
func (c *Container) ContentValidator() *content.Validator { return c.validator }

// MarkdownImporter returns the configured markdown importer.
func (c *Container) MarkdownImporter() *markdown.Importer { return c.importer }

// CommandHandlers returns the ready-to-subscribe command handlers.
func (c *Container) CommandHandlers() *Commands { return c.handlers }

// EventStore exposes the backing event store for advanced integrations.
func (c *Container) EventStore() eventstore.Store { return c.store }

// FieldTypeRepository exposes the field type event sourced repository.
func (c *Container) FieldTypeRepository() *fields.Repository { return c.fieldTypeRepo }

// ContentTypeRepository exposes the content type event sourced repository.
func (c *Container) ContentTypeRepository() *schema.Repository { return c.contentTypeRepo }

// ContentRepository exposes the content event sourced repository.
func (c *Container) ContentRepository() *content.Repository { return c.contentRepo }

// FieldUsage exposes the field usage read model.
func (c *Container) FieldUsage() schema.UsageQuerier { return c.contentTypeUsage }

// ContentLookup exposes the content read model.
func (c *Container) ContentLookup() content.NameQuerier { return c.contentNames }

// LoggerProvider exposes the configured logger provider; nil when logging is
// disabled.
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.provider }

func handlerTimeout[T command.Message](timeout time.Duration) []commands.HandlerOption[T] {
	if timeout <= 0 {
		return nil
	}
	return []commands.HandlerOption[T]{commands.WithTimeout[T](timeout)}
}

func normalized(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
