package fields

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-content-engine/internal/domain"
	"github.com/google/uuid"
)

// StreamKind prefixes every field type event stream key.
const StreamKind = "field_type"

var (
	ErrSettingsRequired   = errors.New("fields: settings are required")
	ErrDataTypeMismatch   = errors.New("fields: settings data type does not match the field type")
	ErrUniqueNameRequired = errors.New("fields: unique name is required")
)

// Event type identifiers for the field type stream.
const (
	EventTypeCreated           = "engine.field_type.created"
	EventTypeUniqueNameChanged = "engine.field_type.unique_name_changed"
	EventTypeUpdated           = "engine.field_type.updated"
	EventTypeSettingsChanged   = "engine.field_type.settings_changed"
	EventTypeDeleted           = "engine.field_type.deleted"
)

// Created records the birth of a field type with its fixed data type.
type Created struct {
	ActorID    uuid.UUID         `json:"actor_id"`
	UniqueName domain.UniqueName `json:"unique_name"`
	DataType   DataType          `json:"data_type"`
	Settings   SettingsPayload   `json:"settings"`
}

func (Created) EventType() string { return EventTypeCreated }

// UniqueNameChanged records a rename.
type UniqueNameChanged struct {
	ActorID    uuid.UUID         `json:"actor_id"`
	UniqueName domain.UniqueName `json:"unique_name"`
}

func (UniqueNameChanged) EventType() string { return EventTypeUniqueNameChanged }

// Updated batches display metadata changes accumulated since the last flush.
// Absent changes leave the target untouched; a change holding nil clears it.
type Updated struct {
	ActorID     uuid.UUID            `json:"actor_id"`
	DisplayName *domain.StringChange `json:"display_name,omitempty"`
	Description *domain.StringChange `json:"description,omitempty"`
}

func (Updated) EventType() string { return EventTypeUpdated }

// SettingsChanged records a same-kind settings replacement.
type SettingsChanged struct {
	ActorID  uuid.UUID       `json:"actor_id"`
	Settings SettingsPayload `json:"settings"`
}

func (SettingsChanged) EventType() string { return EventTypeSettingsChanged }

// Deleted tombstones the field type; streams are never physically removed.
type Deleted struct {
	ActorID uuid.UUID `json:"actor_id"`
}

func (Deleted) EventType() string { return EventTypeDeleted }

// FieldType is a reusable, typed field specification. Its data type is fixed
// at creation; settings and metadata may be replaced over time.
type FieldType struct {
	domain.AggregateRoot

	uniqueName  domain.UniqueName
	displayName *domain.DisplayName
	description *domain.Description
	dataType    DataType
	settings    Settings

	updates updateBuffer
}

// updateBuffer accumulates display metadata changes between Update flushes.
type updateBuffer struct {
	displayName *domain.StringChange
	description *domain.StringChange
}

func (b *updateBuffer) dirty() bool {
	return b.displayName != nil || b.description != nil
}

func (b *updateBuffer) reset() {
	b.displayName = nil
	b.description = nil
}

// Create starts a new field type aggregate. The settings variant determines
// the immutable data type.
func Create(id domain.AggregateID, uniqueName domain.UniqueName, settings Settings, actorID uuid.UUID) (*FieldType, error) {
	if uniqueName.IsZero() {
		return nil, ErrUniqueNameRequired
	}
	if settings == nil {
		return nil, ErrSettingsRequired
	}

	ft := &FieldType{AggregateRoot: domain.NewAggregateRoot(id)}
	ft.raise(Created{
		ActorID:    actorID,
		UniqueName: uniqueName,
		DataType:   settings.DataType(),
		Settings:   NewSettingsPayload(settings),
	})
	return ft, nil
}

// UniqueName returns the current realm-scoped name.
func (f *FieldType) UniqueName() domain.UniqueName { return f.uniqueName }

// DisplayName returns the optional label.
func (f *FieldType) DisplayName() *domain.DisplayName { return f.displayName }

// Description returns the optional description.
func (f *FieldType) Description() *domain.Description { return f.description }

// DataType returns the kind fixed at creation.
func (f *FieldType) DataType() DataType { return f.dataType }

// Settings returns the current settings variant.
func (f *FieldType) Settings() Settings { return f.settings }

// SetUniqueName renames the field type. Equal values are a no-op.
func (f *FieldType) SetUniqueName(uniqueName domain.UniqueName, actorID uuid.UUID) error {
	if uniqueName.IsZero() {
		return ErrUniqueNameRequired
	}
	if f.uniqueName.Equal(uniqueName) {
		return nil
	}
	f.raise(UniqueNameChanged{ActorID: actorID, UniqueName: uniqueName})
	return nil
}

// SetDisplayName buffers a display name change until the next Update flush.
func (f *FieldType) SetDisplayName(displayName *domain.DisplayName) {
	if equalDisplayName(f.displayName, displayName) {
		return
	}
	f.displayName = displayName
	f.updates.displayName = changeFromDisplayName(displayName)
}

// SetDescription buffers a description change until the next Update flush.
func (f *FieldType) SetDescription(description *domain.Description) {
	if equalDescription(f.description, description) {
		return
	}
	f.description = description
	f.updates.description = changeFromDescription(description)
}

// Update flushes buffered metadata changes into a single event. Nothing is
// raised when the buffer is clean.
func (f *FieldType) Update(actorID uuid.UUID) {
	if !f.updates.dirty() {
		return
	}
	f.raise(Updated{
		ActorID:     actorID,
		DisplayName: f.updates.displayName,
		Description: f.updates.description,
	})
	f.updates.reset()
}

// SetSettings replaces the settings payload with a same-kind variant. A data
// type mismatch is a caller bug surfaced immediately, not a business rule.
// Equal settings are a no-op.
func (f *FieldType) SetSettings(settings Settings, actorID uuid.UUID) error {
	if settings == nil {
		return ErrSettingsRequired
	}
	if settings.DataType() != f.dataType {
		return fmt.Errorf("%w: have %s, got %s", ErrDataTypeMismatch, f.dataType, settings.DataType())
	}
	if SettingsEqual(f.settings, settings) {
		return nil
	}
	f.raise(SettingsChanged{ActorID: actorID, Settings: NewSettingsPayload(settings)})
	return nil
}

// Delete tombstones the field type. Deleting twice is a no-op.
func (f *FieldType) Delete(actorID uuid.UUID) {
	if f.IsDeleted() {
		return
	}
	f.raise(Deleted{ActorID: actorID})
}

func (f *FieldType) raise(evt domain.Event) {
	f.apply(evt)
	f.Record(evt)
}

func (f *FieldType) apply(evt domain.Event) {
	switch e := evt.(type) {
	case Created:
		f.uniqueName = e.UniqueName
		f.dataType = e.DataType
		if settings, err := e.Settings.Settings(); err == nil {
			f.settings = settings
		}
	case UniqueNameChanged:
		f.uniqueName = e.UniqueName
	case Updated:
		if e.DisplayName != nil {
			f.displayName = displayNameFromChange(e.DisplayName)
		}
		if e.Description != nil {
			f.description = descriptionFromChange(e.Description)
		}
	case SettingsChanged:
		if settings, err := e.Settings.Settings(); err == nil {
			f.settings = settings
		}
	case Deleted:
		f.MarkDeleted(true)
	}
}

func equalDisplayName(a, b *domain.DisplayName) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Value() == b.Value()
}

func equalDescription(a, b *domain.Description) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Value() == b.Value()
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
