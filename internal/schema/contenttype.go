package schema

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-content-engine/internal/domain"
	"github.com/google/uuid"
)

// StreamKind prefixes every content type event stream key.
const StreamKind = "content_type"

var (
	ErrUniqueNameRequired   = errors.New("schema: unique name is required")
	ErrFieldIDRequired      = errors.New("schema: field definition id is required")
	ErrFieldMustBeInvariant = errors.New("schema: invariant content types only accept invariant fields")
	ErrFieldsNotInvariant   = errors.New("schema: content type has non-invariant fields")
)

// Event type identifiers for the content type stream.
const (
	EventTypeCreated           = "engine.content_type.created"
	EventTypeUniqueNameChanged = "engine.content_type.unique_name_changed"
	EventTypeUpdated           = "engine.content_type.updated"
	EventTypeFieldSet          = "engine.content_type.field_set"
	EventTypeFieldRemoved      = "engine.content_type.field_removed"
	EventTypeFieldsSwitched    = "engine.content_type.fields_switched"
	EventTypeDeleted           = "engine.content_type.deleted"
)

// Created records the birth of a content type.
type Created struct {
	ActorID     uuid.UUID         `json:"actor_id"`
	UniqueName  domain.UniqueName `json:"unique_name"`
	IsInvariant bool              `json:"is_invariant"`
}

func (Created) EventType() string { return EventTypeCreated }

// UniqueNameChanged records a rename.
type UniqueNameChanged struct {
	ActorID    uuid.UUID         `json:"actor_id"`
	UniqueName domain.UniqueName `json:"unique_name"`
}

func (UniqueNameChanged) EventType() string { return EventTypeUniqueNameChanged }

// Updated batches metadata and invariance changes since the last flush.
type Updated struct {
	ActorID     uuid.UUID            `json:"actor_id"`
	DisplayName *domain.StringChange `json:"display_name,omitempty"`
	Description *domain.StringChange `json:"description,omitempty"`
	IsInvariant *bool                `json:"is_invariant,omitempty"`
}

func (Updated) EventType() string { return EventTypeUpdated }

// FieldSet records a field definition upsert (insert or in-place replace).
type FieldSet struct {
	ActorID uuid.UUID       `json:"actor_id"`
	Field   FieldDefinition `json:"field"`
}

func (FieldSet) EventType() string { return EventTypeFieldSet }

// FieldRemoved records a field definition removal; later ordinals shift down.
type FieldRemoved struct {
	ActorID uuid.UUID `json:"actor_id"`
	FieldID uuid.UUID `json:"field_id"`
}

func (FieldRemoved) EventType() string { return EventTypeFieldRemoved }

// FieldsSwitched records an ordinal transposition of two field definitions.
type FieldsSwitched struct {
	ActorID  uuid.UUID `json:"actor_id"`
	SourceID uuid.UUID `json:"source_id"`
	TargetID uuid.UUID `json:"target_id"`
}

func (FieldsSwitched) EventType() string { return EventTypeFieldsSwitched }

// Deleted tombstones the content type.
type Deleted struct {
	ActorID uuid.UUID `json:"actor_id"`
}

func (Deleted) EventType() string { return EventTypeDeleted }

// FieldNameConflictError is raised when a field definition's unique name is
// already held by a different field id inside the same content type.
type FieldNameConflictError struct {
	UniqueName    string
	ConflictingID uuid.UUID
}

func (e *FieldNameConflictError) Error() string {
	return fmt.Sprintf("schema: field unique name %q already used by field %s", e.UniqueName, e.ConflictingID)
}

// ContentType is a schema definition owning an ordered collection of field
// definitions. The ordered slice plus two index maps (id and normalized
// name, both pointing at slice positions) give O(1) lookup with stable,
// dense 0..N-1 ordinals; every mutation keeps the three structures
// consistent.
type ContentType struct {
	domain.AggregateRoot

	uniqueName  domain.UniqueName
	isInvariant bool
	displayName *domain.DisplayName
	description *domain.Description

	fields       []FieldDefinition
	fieldsByID   map[uuid.UUID]int
	fieldsByName map[string]int

	updates updateBuffer
}

type updateBuffer struct {
	displayName *domain.StringChange
	description *domain.StringChange
	isInvariant *bool
}

func (b *updateBuffer) dirty() bool {
	return b.displayName != nil || b.description != nil || b.isInvariant != nil
}

func (b *updateBuffer) reset() {
	b.displayName = nil
	b.description = nil
	b.isInvariant = nil
}

// Create starts a new content type aggregate.
func Create(id domain.AggregateID, uniqueName domain.UniqueName, isInvariant bool, actorID uuid.UUID) (*ContentType, error) {
	if uniqueName.IsZero() {
		return nil, ErrUniqueNameRequired
	}
	ct := newContentType(id)
	ct.raise(Created{ActorID: actorID, UniqueName: uniqueName, IsInvariant: isInvariant})
	return ct, nil
}

func newContentType(id domain.AggregateID) *ContentType {
	return &ContentType{
		AggregateRoot: domain.NewAggregateRoot(id),
		fieldsByID:    make(map[uuid.UUID]int),
		fieldsByName:  make(map[string]int),
	}
}

// UniqueName returns the current realm-scoped name.
func (c *ContentType) UniqueName() domain.UniqueName { return c.uniqueName }

// IsInvariant reports whether instances carry no per-language locales.
func (c *ContentType) IsInvariant() bool { return c.isInvariant }

// DisplayName returns the optional label.
func (c *ContentType) DisplayName() *domain.DisplayName { return c.displayName }

// Description returns the optional description.
func (c *ContentType) Description() *domain.Description { return c.description }

// Fields returns the ordered field definitions. The slice is a copy; ordinal
// equals index.
func (c *ContentType) Fields() []FieldDefinition {
	out := make([]FieldDefinition, len(c.fields))
	copy(out, c.fields)
	return out
}

// FieldByID returns the definition and its ordinal for an id.
func (c *ContentType) FieldByID(id uuid.UUID) (FieldDefinition, int, bool) {
	if idx, ok := c.fieldsByID[id]; ok {
		return c.fields[idx], idx, true
	}
	return FieldDefinition{}, 0, false
}

// FieldByName returns the definition and its ordinal for a unique name,
// compared case-insensitively.
func (c *ContentType) FieldByName(name string) (FieldDefinition, int, bool) {
	if idx, ok := c.fieldsByName[domain.NormalizeName(name)]; ok {
		return c.fields[idx], idx, true
	}
	return FieldDefinition{}, 0, false
}

// ResolveField accepts either a UUID string or a field unique name. It
// returns nil when neither resolves; callers decide whether that is fatal.
func (c *ContentType) ResolveField(idOrUniqueName string) *FieldDefinition {
	if id, err := uuid.Parse(idOrUniqueName); err == nil {
		if field, _, ok := c.FieldByID(id); ok {
			return &field
		}
		return nil
	}
	if field, _, ok := c.FieldByName(idOrUniqueName); ok {
		return &field
	}
	return nil
}

// SetUniqueName renames the content type. Equal values are a no-op.
func (c *ContentType) SetUniqueName(uniqueName domain.UniqueName, actorID uuid.UUID) error {
	if uniqueName.IsZero() {
		return ErrUniqueNameRequired
	}
	if c.uniqueName.Equal(uniqueName) {
		return nil
	}
	c.raise(UniqueNameChanged{ActorID: actorID, UniqueName: uniqueName})
	return nil
}

// SetDisplayName buffers a display name change until the next Update flush.
func (c *ContentType) SetDisplayName(displayName *domain.DisplayName) {
	if equalDisplayName(c.displayName, displayName) {
		return
	}
	c.displayName = displayName
	c.updates.displayName = changeFromDisplayName(displayName)
}

// SetDescription buffers a description change until the next Update flush.
func (c *ContentType) SetDescription(description *domain.Description) {
	if equalDescription(c.description, description) {
		return
	}
	c.description = description
	c.updates.description = changeFromDescription(description)
}

// SetInvariant buffers an invariance flip. Turning the flag on requires
// every existing field to already be invariant.
func (c *ContentType) SetInvariant(isInvariant bool) error {
	if c.isInvariant == isInvariant {
		return nil
	}
	if isInvariant {
		for _, field := range c.fields {
			if !field.IsInvariant {
				return fmt.Errorf("%w: field %s", ErrFieldsNotInvariant, field.UniqueName)
			}
		}
	}
	c.isInvariant = isInvariant
	flag := isInvariant
	c.updates.isInvariant = &flag
	return nil
}

// Update flushes buffered changes into a single event. Nothing is raised
// when the buffer is clean.
func (c *ContentType) Update(actorID uuid.UUID) {
	if !c.updates.dirty() {
		return
	}
	c.raise(Updated{
		ActorID:     actorID,
		DisplayName: c.updates.displayName,
		Description: c.updates.description,
		IsInvariant: c.updates.isInvariant,
	})
	c.updates.reset()
}

// SetField upserts a field definition by id. A new field is appended at the
// next ordinal; an existing id is replaced in place, keeping its ordinal.
// Replacing a field with a structurally equal definition is a no-op.
func (c *ContentType) SetField(field FieldDefinition, actorID uuid.UUID) error {
	if field.ID == uuid.Nil {
		return ErrFieldIDRequired
	}
	if !field.FieldTypeID.SameRealm(c.ID()) {
		return &domain.RealmMismatchError{
			Reference: "field type",
			Expected:  c.ID().RealmID,
			Actual:    field.FieldTypeID.RealmID,
		}
	}
	if c.isInvariant && !field.IsInvariant {
		return fmt.Errorf("%w: field %s", ErrFieldMustBeInvariant, field.UniqueName)
	}
	if idx, ok := c.fieldsByName[field.UniqueName.Normalized()]; ok && c.fields[idx].ID != field.ID {
		return &FieldNameConflictError{
			UniqueName:    field.UniqueName.Value(),
			ConflictingID: c.fields[idx].ID,
		}
	}
	if idx, ok := c.fieldsByID[field.ID]; ok && c.fields[idx].Equal(field) {
		return nil
	}
	c.raise(FieldSet{ActorID: actorID, Field: field})
	return nil
}

// RemoveField drops a field definition and re-densifies later ordinals. It
// reports false when the id is unknown so callers can distinguish "already
// absent" from a hard failure.
func (c *ContentType) RemoveField(id uuid.UUID, actorID uuid.UUID) bool {
	if _, ok := c.fieldsByID[id]; !ok {
		return false
	}
	c.raise(FieldRemoved{ActorID: actorID, FieldID: id})
	return true
}

// SwitchFields transposes the ordinal positions of two existing fields.
// Identity travels with the field; only the positions and index entries are
// exchanged. "Must differ" is enforced at the payload boundary, not here;
// equal positions simply raise nothing.
func (c *ContentType) SwitchFields(sourceID, targetID uuid.UUID, actorID uuid.UUID) error {
	sourceIdx, ok := c.fieldsByID[sourceID]
	if !ok {
		return &domain.NotFoundError{Resource: "field definition", Key: sourceID.String()}
	}
	targetIdx, ok := c.fieldsByID[targetID]
	if !ok {
		return &domain.NotFoundError{Resource: "field definition", Key: targetID.String()}
	}
	if sourceIdx == targetIdx {
		return nil
	}
	c.raise(FieldsSwitched{ActorID: actorID, SourceID: sourceID, TargetID: targetID})
	return nil
}

// Delete tombstones the content type. Deleting twice is a no-op.
func (c *ContentType) Delete(actorID uuid.UUID) {
	if c.IsDeleted() {
		return
	}
	c.raise(Deleted{ActorID: actorID})
}

// FieldTypeIDs returns the distinct field type ids referenced by the current
// field definitions.
func (c *ContentType) FieldTypeIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(c.fields))
	out := make([]uuid.UUID, 0, len(c.fields))
	for _, field := range c.fields {
		if _, ok := seen[field.FieldTypeID.EntityID]; ok {
			continue
		}
		seen[field.FieldTypeID.EntityID] = struct{}{}
		out = append(out, field.FieldTypeID.EntityID)
	}
	return out
}

func (c *ContentType) raise(evt domain.Event) {
	c.apply(evt)
	c.Record(evt)
}

func (c *ContentType) apply(evt domain.Event) {
	switch e := evt.(type) {
	case Created:
		c.uniqueName = e.UniqueName
		c.isInvariant = e.IsInvariant
	case UniqueNameChanged:
		c.uniqueName = e.UniqueName
	case Updated:
		if e.DisplayName != nil {
			c.displayName = displayNameFromChange(e.DisplayName)
		}
		if e.Description != nil {
			c.description = descriptionFromChange(e.Description)
		}
		if e.IsInvariant != nil {
			c.isInvariant = *e.IsInvariant
		}
	case FieldSet:
		c.applyFieldSet(e.Field)
	case FieldRemoved:
		c.applyFieldRemoved(e.FieldID)
	case FieldsSwitched:
		c.applyFieldsSwitched(e.SourceID, e.TargetID)
	case Deleted:
		c.MarkDeleted(true)
	}
}

func (c *ContentType) applyFieldSet(field FieldDefinition) {
	if idx, ok := c.fieldsByID[field.ID]; ok {
		stale := c.fields[idx].UniqueName.Normalized()
		if stale != field.UniqueName.Normalized() {
			delete(c.fieldsByName, stale)
		}
		c.fields[idx] = field
		c.fieldsByName[field.UniqueName.Normalized()] = idx
		return
	}

	idx := len(c.fields)
	c.fields = append(c.fields, field)
	c.fieldsByID[field.ID] = idx
	c.fieldsByName[field.UniqueName.Normalized()] = idx
}

func (c *ContentType) applyFieldRemoved(id uuid.UUID) {
	idx, ok := c.fieldsByID[id]
	if !ok {
		return
	}

	removed := c.fields[idx]
	delete(c.fieldsByID, removed.ID)
	delete(c.fieldsByName, removed.UniqueName.Normalized())

	c.fields = append(c.fields[:idx], c.fields[idx+1:]...)

	// Shift-down: every ordinal above the removed slot decrements by one,
	// and both index maps follow.
	for i := idx; i < len(c.fields); i++ {
		c.fieldsByID[c.fields[i].ID] = i
		c.fieldsByName[c.fields[i].UniqueName.Normalized()] = i
	}
}

func (c *ContentType) applyFieldsSwitched(sourceID, targetID uuid.UUID) {
	sourceIdx, ok := c.fieldsByID[sourceID]
	if !ok {
		return
	}
	targetIdx, ok := c.fieldsByID[targetID]
	if !ok {
		return
	}

	c.fields[sourceIdx], c.fields[targetIdx] = c.fields[targetIdx], c.fields[sourceIdx]
	c.fieldsByID[sourceID] = targetIdx
	c.fieldsByID[targetID] = sourceIdx
	c.fieldsByName[c.fields[sourceIdx].UniqueName.Normalized()] = sourceIdx
	c.fieldsByName[c.fields[targetIdx].UniqueName.Normalized()] = targetIdx
}

func changeFromDisplayName(value *domain.DisplayName) *domain.StringChange {
	if value == nil {
		return domain.Clear()
	}
	return domain.ChangeTo(value.Value())
}

func changeFromDescription(value *domain.Description) *domain.StringChange {
	if value == nil {
		return domain.Clear()
	}
	return domain.ChangeTo(value.Value())
}

func displayNameFromChange(change *domain.StringChange) *domain.DisplayName {
	if change == nil || change.Value == nil {
		return nil
	}
	name, err := domain.OptionalDisplayName(change.Value)
	if err != nil {
		return nil
	}
	return name
}

func descriptionFromChange(change *domain.StringChange) *domain.Description {
	if change == nil || change.Value == nil {
		return nil
	}
	desc, err := domain.OptionalDescription(change.Value)
	if err != nil {
		return nil
	}
	return desc
}
