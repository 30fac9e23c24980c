package schema

import (
	"context"

	"github.com/goliatone/go-content-engine/internal/domain"
	"github.com/goliatone/go-content-engine/internal/logging"
	"github.com/goliatone/go-content-engine/pkg/interfaces"
	"github.com/google/uuid"
)

// Service exposes content type management use-cases.
type Service interface {
	CreateOrReplace(ctx context.Context, req CreateOrReplaceRequest) (CreateOrReplaceResult, error)
	Update(ctx context.Context, req UpdateRequest) (*Dto, error)
	SetField(ctx context.Context, req SetFieldRequest) (*Dto, error)
	RemoveField(ctx context.Context, req RemoveFieldRequest) (bool, error)
	SwitchFields(ctx context.Context, req SwitchFieldsRequest) (*Dto, error)
	Delete(ctx context.Context, req DeleteRequest) (bool, error)
	Get(ctx context.Context, id domain.AggregateID) (*Dto, error)
}

// CreateOrReplaceRequest captures a full-payload create or replace. When ID
// and Version are both supplied, Version names the historical snapshot the
// payload was edited against. Field definitions are managed through SetField
// and friends, not through replace.
type CreateOrReplaceRequest struct {
	RealmID     uuid.UUID
	ID          *uuid.UUID
	Version     *int
	UniqueName  string
	DisplayName *string
	Description *string
	IsInvariant bool
	ActorID     uuid.UUID
}

// CreateOrReplaceResult reports what happened. A nil ContentType with a nil
// error signals "not created, not found": the caller asked to replace a
// specific version of an aggregate that never existed.
type CreateOrReplaceResult struct {
	ContentType *Dto
	Created     bool
}

// UpdateRequest captures a partial update. Nil members leave the target
// untouched; StringChange members distinguish clearing from skipping.
type UpdateRequest struct {
	RealmID     uuid.UUID
	ID          uuid.UUID
	UniqueName  *string
	DisplayName *domain.StringChange
	Description *domain.StringChange
	IsInvariant *bool
	ActorID     uuid.UUID
}

// FieldPayload describes a field definition upsert. A nil ID appends a new
// field; a known ID replaces the existing definition in place.
type FieldPayload struct {
	ID          *uuid.UUID
	FieldTypeID uuid.UUID
	IsInvariant bool
	IsRequired  bool
	IsIndexed   bool
	IsUnique    bool
	UniqueName  string
	DisplayName *string
	Description *string
	Placeholder *string
}

// SetFieldRequest upserts a field definition on a content type.
type SetFieldRequest struct {
	RealmID       uuid.UUID
	ContentTypeID uuid.UUID
	Field         FieldPayload
	ActorID       uuid.UUID
}

// RemoveFieldRequest drops a field definition.
type RemoveFieldRequest struct {
	RealmID       uuid.UUID
	ContentTypeID uuid.UUID
	FieldID       uuid.UUID
	ActorID       uuid.UUID
}

// SwitchFieldsRequest transposes the ordinals of two field definitions.
type SwitchFieldsRequest struct {
	RealmID       uuid.UUID
	ContentTypeID uuid.UUID
	SourceID      uuid.UUID
	TargetID      uuid.UUID
	ActorID       uuid.UUID
}

// DeleteRequest tombstones a content type.
type DeleteRequest struct {
	RealmID uuid.UUID
	ID      uuid.UUID
	ActorID uuid.UUID
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithIDGenerator overrides the UUID source for new aggregates and fields.
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
	manager *Manager
	policy  domain.NamePolicy
	id      func() uuid.UUID
	logger  interfaces.Logger
}

// NewService constructs the content type service.
func NewService(manager *Manager, opts ...ServiceOption) Service {
	s := &service{
		manager: manager,
		policy:  domain.DefaultNamePolicy(),
		id:      uuid.New,
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Get(ctx context.Context, id domain.AggregateID) (*Dto, error) {
	ct, err := s.manager.Repository().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ct.IsDeleted() {
		return nil, &domain.NotFoundError{Resource: "content type", Key: id.String()}
	}
	dto := ToDto(ct)
	return &dto, nil
}

func (s *service) CreateOrReplace(ctx context.Context, req CreateOrReplaceRequest) (CreateOrReplaceResult, error) {
	uniqueName, err := domain.NewUniqueName(s.policy, req.UniqueName)
	if err != nil {
		return CreateOrReplaceResult{}, err
	}

	entityID := s.id()
	if req.ID != nil {
		entityID = *req.ID
	}
	id := domain.NewAggregateID(req.RealmID, entityID)

	var current *ContentType
	if req.ID != nil {
		current, err = s.manager.Repository().Get(ctx, id)
		if err != nil && !domain.IsNotFound(err) {
			return CreateOrReplaceResult{}, err
		}
		if current != nil && current.IsDeleted() {
			current = nil
		}
	}

	if current == nil {
		// Replacing a version that never existed is ambiguous; refuse to
		// silently create a new aggregate in that case.
		if req.Version != nil {
			return CreateOrReplaceResult{}, nil
		}
		created, err := Create(id, uniqueName, req.IsInvariant, req.ActorID)
		if err != nil {
			return CreateOrReplaceResult{}, err
		}
		if err := s.applyMetadata(created, req); err != nil {
			return CreateOrReplaceResult{}, err
		}
		created.Update(req.ActorID)
		if err := s.manager.Save(ctx, created); err != nil {
			return CreateOrReplaceResult{}, err
		}
		dto := ToDto(created)
		return CreateOrReplaceResult{ContentType: &dto, Created: true}, nil
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
	// outside the fields it meant to touch.
	if !reference.UniqueName().Equal(uniqueName) {
		if err := current.SetUniqueName(uniqueName, req.ActorID); err != nil {
			return CreateOrReplaceResult{}, err
		}
	}

	displayName, err := domain.OptionalDisplayName(req.DisplayName)
	if err != nil {
		return CreateOrReplaceResult{}, err
	}
	if !equalDisplayName(reference.DisplayName(), displayName) {
		current.SetDisplayName(displayName)
	}

	description, err := domain.OptionalDescription(req.Description)
	if err != nil {
		return CreateOrReplaceResult{}, err
	}
	if !equalDescription(reference.Description(), description) {
		current.SetDescription(description)
	}

	if reference.IsInvariant() != req.IsInvariant {
		if err := current.SetInvariant(req.IsInvariant); err != nil {
			return CreateOrReplaceResult{}, err
		}
	}

	current.Update(req.ActorID)
	if err := s.manager.Save(ctx, current); err != nil {
		return CreateOrReplaceResult{}, err
	}
	dto := ToDto(current)
	return CreateOrReplaceResult{ContentType: &dto, Created: false}, nil
}

func (s *service) applyMetadata(ct *ContentType, req CreateOrReplaceRequest) error {
	displayName, err := domain.OptionalDisplayName(req.DisplayName)
	if err != nil {
		return err
	}
	ct.SetDisplayName(displayName)

	description, err := domain.OptionalDescription(req.Description)
	if err != nil {
		return err
	}
	ct.SetDescription(description)
	return nil
}

func (s *service) Update(ctx context.Context, req UpdateRequest) (*Dto, error) {
	id := domain.NewAggregateID(req.RealmID, req.ID)
	ct, err := s.manager.Repository().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ct.IsDeleted() {
		return nil, &domain.NotFoundError{Resource: "content type", Key: id.String()}
	}

	if req.UniqueName != nil {
		uniqueName, err := domain.NewUniqueName(s.policy, *req.UniqueName)
		if err != nil {
			return nil, err
		}
		if err := ct.SetUniqueName(uniqueName, req.ActorID); err != nil {
			return nil, err
		}
	}

	if req.DisplayName != nil {
		displayName, err := domain.OptionalDisplayName(req.DisplayName.Value)
		if err != nil {
			return nil, err
		}
		ct.SetDisplayName(displayName)
	}
	if req.Description != nil {
		description, err := domain.OptionalDescription(req.Description.Value)
		if err != nil {
			return nil, err
		}
		ct.SetDescription(description)
	}
	if req.IsInvariant != nil {
		if err := ct.SetInvariant(*req.IsInvariant); err != nil {
			return nil, err
		}
	}

	ct.Update(req.ActorID)
	if err := s.manager.Save(ctx, ct); err != nil {
		return nil, err
	}
	dto := ToDto(ct)
	return &dto, nil
}

func (s *service) SetField(ctx context.Context, req SetFieldRequest) (*Dto, error) {
	id := domain.NewAggregateID(req.RealmID, req.ContentTypeID)
	ct, err := s.manager.Repository().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ct.IsDeleted() {
		return nil, &domain.NotFoundError{Resource: "content type", Key: id.String()}
	}

	field, err := s.buildField(req.RealmID, req.Field)
	if err != nil {
		return nil, err
	}
	if err := ct.SetField(field, req.ActorID); err != nil {
		return nil, err
	}

	if err := s.manager.Save(ctx, ct); err != nil {
		return nil, err
	}
	dto := ToDto(ct)
	return &dto, nil
}

func (s *service) buildField(realmID uuid.UUID, payload FieldPayload) (FieldDefinition, error) {
	uniqueName, err := domain.NewIdentifier(payload.UniqueName)
	if err != nil {
		return FieldDefinition{}, err
	}

	fieldID := s.id()
	if payload.ID != nil {
		fieldID = *payload.ID
	}

	field := FieldDefinition{
		ID:          fieldID,
		FieldTypeID: domain.NewAggregateID(realmID, payload.FieldTypeID),
		IsInvariant: payload.IsInvariant,
		IsRequired:  payload.IsRequired,
		IsIndexed:   payload.IsIndexed,
		IsUnique:    payload.IsUnique,
		UniqueName:  uniqueName,
	}

	if field.DisplayName, err = domain.OptionalDisplayName(payload.DisplayName); err != nil {
		return FieldDefinition{}, err
	}
	if field.Description, err = domain.OptionalDescription(payload.Description); err != nil {
		return FieldDefinition{}, err
	}
	if field.Placeholder, err = domain.OptionalPlaceholder(payload.Placeholder); err != nil {
		return FieldDefinition{}, err
	}
	return field, nil
}

func (s *service) RemoveField(ctx context.Context, req RemoveFieldRequest) (bool, error) {
	id := domain.NewAggregateID(req.RealmID, req.ContentTypeID)
	ct, err := s.manager.Repository().Get(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	if ct.IsDeleted() {
		return false, nil
	}

	if !ct.RemoveField(req.FieldID, req.ActorID) {
		return false, nil
	}
	if err := s.manager.Save(ctx, ct); err != nil {
		return false, err
	}
	return true, nil
}

func (s *service) SwitchFields(ctx context.Context, req SwitchFieldsRequest) (*Dto, error) {
	id := domain.NewAggregateID(req.RealmID, req.ContentTypeID)
	ct, err := s.manager.Repository().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ct.IsDeleted() {
		return nil, &domain.NotFoundError{Resource: "content type", Key: id.String()}
	}

	if err := ct.SwitchFields(req.SourceID, req.TargetID, req.ActorID); err != nil {
		return nil, err
	}
	if err := s.manager.Save(ctx, ct); err != nil {
		return nil, err
	}
	dto := ToDto(ct)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, req DeleteRequest) (bool, error) {
	id := domain.NewAggregateID(req.RealmID, req.ID)
	ct, err := s.manager.Repository().Get(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	if ct.IsDeleted() {
		return false, nil
	}

	ct.Delete(req.ActorID)
	if err := s.manager.Save(ctx, ct); err != nil {
		return false, err
	}
	return true, nil
}
