package fields

import (
	"context"

	"github.com/goliatone/go-content-engine/internal/domain"
	"github.com/goliatone/go-content-engine/internal/logging"
	"github.com/goliatone/go-content-engine/pkg/interfaces"
	"github.com/google/uuid"
)

// Service exposes field type management use-cases.
type Service interface {
	CreateOrReplace(ctx context.Context, req CreateOrReplaceRequest) (CreateOrReplaceResult, error)
	Update(ctx context.Context, req UpdateRequest) (*Dto, error)
	Delete(ctx context.Context, req DeleteRequest) (bool, error)
	Get(ctx context.Context, id domain.AggregateID) (*Dto, error)
}

// CreateOrReplaceRequest captures a full-payload create or replace. When ID
// and Version are both supplied, Version names the historical snapshot the
// payload was edited against.
type CreateOrReplaceRequest struct {
	RealmID     uuid.UUID
	ID          *uuid.UUID
	Version     *int
	UniqueName  string
	DisplayName *string
	Description *string
	Settings    SettingsPayload
	ActorID     uuid.UUID
}

// CreateOrReplaceResult reports what happened. A nil FieldType with a nil
// error signals "not created, not found": the caller asked to replace a
// specific version of an aggregate that never existed.
type CreateOrReplaceResult struct {
	FieldType *Dto
	Created   bool
}

// UpdateRequest captures a partial update. Nil members leave the target
// untouched; StringChange members distinguish clearing from skipping.
type UpdateRequest struct {
	RealmID     uuid.UUID
	ID          uuid.UUID
	UniqueName  *string
	DisplayName *domain.StringChange
	Description *domain.StringChange
	Settings    *SettingsPayload
	ActorID     uuid.UUID
}

// DeleteRequest tombstones a field type.
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
	manager *Manager
	policy  domain.NamePolicy
	id      func() uuid.UUID
	logger  interfaces.Logger
}

// NewService constructs the field type service.
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
	ft, err := s.manager.Repository().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ft.IsDeleted() {
		return nil, &domain.NotFoundError{Resource: "field type", Key: id.String()}
	}
	dto := ToDto(ft)
	return &dto, nil
}

func (s *service) CreateOrReplace(ctx context.Context, req CreateOrReplaceRequest) (CreateOrReplaceResult, error) {
	uniqueName, err := domain.NewUniqueName(s.policy, req.UniqueName)
	if err != nil {
		return CreateOrReplaceResult{}, err
	}
	settings, err := req.Settings.Settings()
	if err != nil {
		return CreateOrReplaceResult{}, err
	}

	entityID := s.id()
	if req.ID != nil {
		entityID = *req.ID
	}
	id := domain.NewAggregateID(req.RealmID, entityID)

	var current *FieldType
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
		created, err := Create(id, uniqueName, settings, req.ActorID)
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
		return CreateOrReplaceResult{FieldType: &dto, Created: true}, nil
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

	if !SettingsEqual(reference.Settings(), settings) {
		if err := current.SetSettings(settings, req.ActorID); err != nil {
			return CreateOrReplaceResult{}, err
		}
	}

	current.Update(req.ActorID)
	if err := s.manager.Save(ctx, current); err != nil {
		return CreateOrReplaceResult{}, err
	}
	dto := ToDto(current)
	return CreateOrReplaceResult{FieldType: &dto, Created: false}, nil
}

func (s *service) applyMetadata(ft *FieldType, req CreateOrReplaceRequest) error {
	displayName, err := domain.OptionalDisplayName(req.DisplayName)
	if err != nil {
		return err
	}
	ft.SetDisplayName(displayName)

	description, err := domain.OptionalDescription(req.Description)
	if err != nil {
		return err
	}
	ft.SetDescription(description)
	return nil
}

func (s *service) Update(ctx context.Context, req UpdateRequest) (*Dto, error) {
	id := domain.NewAggregateID(req.RealmID, req.ID)
	ft, err := s.manager.Repository().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ft.IsDeleted() {
		return nil, &domain.NotFoundError{Resource: "field type", Key: id.String()}
	}

	if req.UniqueName != nil {
		uniqueName, err := domain.NewUniqueName(s.policy, *req.UniqueName)
		if err != nil {
			return nil, err
		}
		if err := ft.SetUniqueName(uniqueName, req.ActorID); err != nil {
			return nil, err
		}
	}

	if req.DisplayName != nil {
		displayName, err := domain.OptionalDisplayName(req.DisplayName.Value)
		if err != nil {
			return nil, err
		}
		ft.SetDisplayName(displayName)
	}
	if req.Description != nil {
		description, err := domain.OptionalDescription(req.Description.Value)
		if err != nil {
			return nil, err
		}
		ft.SetDescription(description)
	}

	if req.Settings != nil {
		settings, err := req.Settings.Settings()
		if err != nil {
			return nil, err
		}
		if err := ft.SetSettings(settings, req.ActorID); err != nil {
			return nil, err
		}
	}

	ft.Update(req.ActorID)
	if err := s.manager.Save(ctx, ft); err != nil {
		return nil, err
	}
	dto := ToDto(ft)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, req DeleteRequest) (bool, error) {
	id := domain.NewAggregateID(req.RealmID, req.ID)
	ft, err := s.manager.Repository().Get(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	if ft.IsDeleted() {
		return false, nil
	}

	ft.Delete(req.ActorID)
	if err := s.manager.Save(ctx, ft); err != nil {
		return false, err
	}
	return true, nil
}
