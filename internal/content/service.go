package content

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/goliatone/go-content-engine/internal/domain"
	"github.com/goliatone/go-content-engine/internal/fields"
	"github.com/goliatone/go-content-engine/internal/logging"
	"github.com/goliatone/go-content-engine/internal/schema"
	"github.com/goliatone/go-content-engine/pkg/interfaces"
	"github.com/google/uuid"
)

// ErrContentTypeInvariant is returned when a per-language locale targets a
// fully invariant content type.
var ErrContentTypeInvariant = errors.New("content: content type is invariant and carries no language locales")

// ContentTypeMismatchError is returned when a replace names a content type
// other than the one the instance was created with; the binding is immutable.
type ContentTypeMismatchError struct {
	ContentID uuid.UUID
	Expected  uuid.UUID
	Actual    uuid.UUID
}

func (e *ContentTypeMismatchError) Error() string {
	return fmt.Sprintf("content %s: bound to content type %s, request named %s", e.ContentID, e.Expected, e.Actual)
}

// Service exposes content management use-cases.
type Service interface {
	CreateOrReplace(ctx context.Context, req CreateOrReplaceRequest) (CreateOrReplaceResult, error)
	SetLocale(ctx context.Context, req SetLocaleRequest) (*Dto, error)
	RemoveLocale(ctx context.Context, req RemoveLocaleRequest) (bool, error)
	Publish(ctx context.Context, req PublishRequest) (*Dto, error)
	Unpublish(ctx context.Context, req PublishRequest) (*Dto, error)
	Delete(ctx context.Context, req DeleteRequest) (bool, error)
	Get(ctx context.Context, id domain.AggregateID) (*Dto, error)
}

// LocalePayload is the wire shape of one locale slot.
type LocalePayload struct {
	UniqueName  string
	DisplayName *string
	Description *string
	FieldValues map[uuid.UUID]string
}

// CreateOrReplaceRequest captures a full-payload create or replace. When ID
// and Version are both supplied, Version names the historical snapshot the
// payload was edited against.
type CreateOrReplaceRequest struct {
	RealmID       uuid.UUID
	ID            *uuid.UUID
	Version       *int
	ContentTypeID uuid.UUID
	Invariant     LocalePayload
	Locales       map[uuid.UUID]LocalePayload
	ActorID       uuid.UUID
}

// CreateOrReplaceResult reports what happened. A nil Content with a nil error
// signals "not created, not found".
type CreateOrReplaceResult struct {
	Content *Dto
	Created bool
}

// SetLocaleRequest upserts one locale slot. A nil LanguageID targets the
// invariant slot.
type SetLocaleRequest struct {
	RealmID    uuid.UUID
	ContentID  uuid.UUID
	LanguageID *uuid.UUID
	Locale     LocalePayload
	ActorID    uuid.UUID
}

// RemoveLocaleRequest drops a language slot.
type RemoveLocaleRequest struct {
	RealmID    uuid.UUID
	ContentID  uuid.UUID
	LanguageID uuid.UUID
	ActorID    uuid.UUID
}

// PublishRequest publishes or unpublishes a slot. A nil LanguageID targets
// the invariant slot and cascades to every language slot.
type PublishRequest struct {
	RealmID    uuid.UUID
	ContentID  uuid.UUID
	LanguageID *uuid.UUID
	ActorID    uuid.UUID
}

// DeleteRequest tombstones a content instance.
type DeleteRequest struct {
	RealmID uuid.UUID
	ID      uuid.UUID
	ActorID uuid.UUID
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithIDGenerator overrides the UUID source for new aggregates.
func WithIDGenerator(generator func() uuid.UUID) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithNamePolicy overrides the realm unique-name policy.
func WithNamePolicy(policy domain.NamePolicy) ServiceOption {
	return func(s *service) {
		s.policy = policy
	}
}

// WithServiceLogger injects the service logger.
func WithServiceLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	manager    *Manager
	schemas    *schema.Repository
	fieldTypes *fields.Repository
	validator  *Validator
	policy     domain.NamePolicy
	id         func() uuid.UUID
	logger     interfaces.Logger
}

// NewService constructs the content service. Schema and field type
// repositories supply the definitions every locale write validates against.
func NewService(manager *Manager, schemas *schema.Repository, fieldTypes *fields.Repository, validator *Validator, opts ...ServiceOption) Service {
	s := &service{
		manager:    manager,
		schemas:    schemas,
		fieldTypes: fieldTypes,
		validator:  validator,
		policy:     domain.DefaultNamePolicy(),
		id:         uuid.New,
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Get(ctx context.Context, id domain.AggregateID) (*Dto, error) {
	c, err := s.manager.Repository().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.IsDeleted() {
		return nil, &domain.NotFoundError{Resource: "content", Key: id.String()}
	}
	dto := ToDto(c)
	return &dto, nil
}

func (s *service) CreateOrReplace(ctx context.Context, req CreateOrReplaceRequest) (CreateOrReplaceResult, error) {
	contentTypeID := domain.NewAggregateID(req.RealmID, req.ContentTypeID)
	ct, err := s.loadContentType(ctx, contentTypeID)
	if err != nil {
		return CreateOrReplaceResult{}, err
	}
	if ct.IsInvariant() && len(req.Locales) > 0 {
		return CreateOrReplaceResult{}, ErrContentTypeInvariant
	}

	settings, err := s.resolveSettings(ctx, req.RealmID, ct)
	if err != nil {
		return CreateOrReplaceResult{}, err
	}

	invariant, err := s.buildLocale(req.Invariant)
	if err != nil {
		return CreateOrReplaceResult{}, err
	}
	if err := s.validator.ValidateLocale(ctx, ct, settings, invariant, nil); err != nil {
		return CreateOrReplaceResult{}, err
	}

	locales := make(map[uuid.UUID]Locale, len(req.Locales))
	for language, payload := range req.Locales {
		locale, err := s.buildLocale(payload)
		if err != nil {
			return CreateOrReplaceResult{}, err
		}
		language := language
		if err := s.validator.ValidateLocale(ctx, ct, settings, locale, &language); err != nil {
			return CreateOrReplaceResult{}, err
		}
		locales[language] = locale
	}

	entityID := s.id()
	if req.ID != nil {
		entityID = *req.ID
	}
	id := domain.NewAggregateID(req.RealmID, entityID)

	var current *Content
	if req.ID != nil {
		current, err = s.manager.Repository().Get(ctx, id)
		if err != nil && !domain.IsNotFound(err) {
			return CreateOrReplaceResult{}, err
		}
		if current != nil && current.IsDeleted() {
			current = nil
		}
		if current != nil && current.ContentTypeID().EntityID != req.ContentTypeID {
			return CreateOrReplaceResult{}, &ContentTypeMismatchError{
				ContentID: entityID,
				Expected:  current.ContentTypeID().EntityID,
				Actual:    req.ContentTypeID,
			}
		}
	}

	if current == nil {
		// Replacing a version that never existed is ambiguous; refuse to
		// silently create a new aggregate in that case.
		if req.Version != nil {
			return CreateOrReplaceResult{}, nil
		}
		created, err := Create(id, contentTypeID, invariant, req.ActorID)
		if err != nil {
			return CreateOrReplaceResult{}, err
		}
		for _, language := range sortedLanguages(locales) {
			if err := created.SetLocale(domain.NewAggregateID(req.RealmID, language), locales[language], req.ActorID); err != nil {
				return CreateOrReplaceResult{}, err
			}
		}
		if err := s.manager.Save(ctx, created); err != nil {
			return CreateOrReplaceResult{}, err
		}
		dto := ToDto(created)
		return CreateOrReplaceResult{Content: &dto, Created: true}, nil
	}

	reference := current
	if req.Version != nil && *req.Version < current.Version() {
		reference, err = s.manager.Repository().GetAt(ctx, id, *req.Version)
		if err != nil {
			return CreateOrReplaceResult{}, err
		}
	}

	// Deltas are computed against the reference snapshot, not the current
	// state, so a stale full-payload replace cannot clobber concurrent edits
	// outside the slots it meant to touch.
	if !reference.Invariant().Equal(invariant) {
		if err := current.SetInvariant(invariant, req.ActorID); err != nil {
			return CreateOrReplaceResult{}, err
		}
	}
	for _, language := range sortedLanguages(locales) {
		locale := locales[language]
		if existing, ok := reference.Locale(language); ok && existing.Equal(locale) {
			continue
		}
		if err := current.SetLocale(domain.NewAggregateID(req.RealmID, language), locale, req.ActorID); err != nil {
			return CreateOrReplaceResult{}, err
		}
	}
	for _, language := range reference.LanguageIDs() {
		if _, ok := locales[language]; !ok {
			current.RemoveLocale(language, req.ActorID)
		}
	}

	if err := s.manager.Save(ctx, current); err != nil {
		return CreateOrReplaceResult{}, err
	}
	dto := ToDto(current)
	return CreateOrReplaceResult{Content: &dto, Created: false}, nil
}

func (s *service) SetLocale(ctx context.Context, req SetLocaleRequest) (*Dto, error) {
	id := domain.NewAggregateID(req.RealmID, req.ContentID)
	c, err := s.manager.Repository().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.IsDeleted() {
		return nil, &domain.NotFoundError{Resource: "content", Key: id.String()}
	}

	ct, err := s.loadContentType(ctx, c.ContentTypeID())
	if err != nil {
		return nil, err
	}
	if req.LanguageID != nil && ct.IsInvariant() {
		return nil, ErrContentTypeInvariant
	}

	settings, err := s.resolveSettings(ctx, req.RealmID, ct)
	if err != nil {
		return nil, err
	}

	locale, err := s.buildLocale(req.Locale)
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateLocale(ctx, ct, settings, locale, req.LanguageID); err != nil {
		return nil, err
	}

	if req.LanguageID == nil {
		err = c.SetInvariant(locale, req.ActorID)
	} else {
		err = c.SetLocale(domain.NewAggregateID(req.RealmID, *req.LanguageID), locale, req.ActorID)
	}
	if err != nil {
		return nil, err
	}

	if err := s.manager.Save(ctx, c); err != nil {
		return nil, err
	}
	dto := ToDto(c)
	return &dto, nil
}

func (s *service) RemoveLocale(ctx context.Context, req RemoveLocaleRequest) (bool, error) {
	id := domain.NewAggregateID(req.RealmID, req.ContentID)
	c, err := s.manager.Repository().Get(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	if c.IsDeleted() {
		return false, nil
	}

	if !c.RemoveLocale(req.LanguageID, req.ActorID) {
		return false, nil
	}
	if err := s.manager.Save(ctx, c); err != nil {
		return false, err
	}
	return true, nil
}

func (s *service) Publish(ctx context.Context, req PublishRequest) (*Dto, error) {
	return s.togglePublish(ctx, req, (*Content).Publish)
}

func (s *service) Unpublish(ctx context.Context, req PublishRequest) (*Dto, error) {
	return s.togglePublish(ctx, req, (*Content).Unpublish)
}

func (s *service) togglePublish(ctx context.Context, req PublishRequest, op func(*Content, *uuid.UUID, uuid.UUID) error) (*Dto, error) {
	id := domain.NewAggregateID(req.RealmID, req.ContentID)
	c, err := s.manager.Repository().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.IsDeleted() {
		return nil, &domain.NotFoundError{Resource: "content", Key: id.String()}
	}

	if err := op(c, req.LanguageID, req.ActorID); err != nil {
		return nil, err
	}
	if err := s.manager.Save(ctx, c); err != nil {
		return nil, err
	}
	dto := ToDto(c)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, req DeleteRequest) (bool, error) {
	id := domain.NewAggregateID(req.RealmID, req.ID)
	c, err := s.manager.Repository().Get(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	if c.IsDeleted() {
		return false, nil
	}

	c.Delete(req.ActorID)
	if err := s.manager.Save(ctx, c); err != nil {
		return false, err
	}
	return true, nil
}

func (s *service) loadContentType(ctx context.Context, id domain.AggregateID) (*schema.ContentType, error) {
	ct, err := s.schemas.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ct.IsDeleted() {
		return nil, &domain.NotFoundError{Resource: "content type", Key: id.String()}
	}
	return ct, nil
}

// resolveSettings loads the settings of every field type the content type
// references. Tombstoned field types are skipped; their fields detach through
// the delete cascade and fail validation as missing settings until then.
func (s *service) resolveSettings(ctx context.Context, realmID uuid.UUID, ct *schema.ContentType) (map[uuid.UUID]fields.Settings, error) {
	out := make(map[uuid.UUID]fields.Settings)
	for _, fieldTypeID := range ct.FieldTypeIDs() {
		ft, err := s.fieldTypes.Get(ctx, domain.NewAggregateID(realmID, fieldTypeID))
		if err != nil {
			if domain.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		if ft.IsDeleted() {
			continue
		}
		out[fieldTypeID] = ft.Settings()
	}
	return out, nil
}

func (s *service) buildLocale(payload LocalePayload) (Locale, error) {
	uniqueName, err := domain.NewUniqueName(s.policy, payload.UniqueName)
	if err != nil {
		return Locale{}, err
	}
	displayName, err := domain.OptionalDisplayName(payload.DisplayName)
	if err != nil {
		return Locale{}, err
	}
	description, err := domain.OptionalDescription(payload.Description)
	if err != nil {
		return Locale{}, err
	}

	var values map[uuid.UUID]domain.FieldValue
	if len(payload.FieldValues) > 0 {
		values = make(map[uuid.UUID]domain.FieldValue, len(payload.FieldValues))
		for fieldID, raw := range payload.FieldValues {
			value, err := domain.NewFieldValue(raw)
			if err != nil {
				return Locale{}, err
			}
			values[fieldID] = value
		}
	}
	return NewLocale(uniqueName, displayName, description, values), nil
}

func sortedLanguages(locales map[uuid.UUID]Locale) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(locales))
	for language := range locales {
		ids = append(ids, language)
	}
	// Deterministic event order across map iteration.
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}
