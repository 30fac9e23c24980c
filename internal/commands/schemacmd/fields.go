package schemacmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-content-engine/internal/commands"
	"github.com/goliatone/go-content-engine/internal/schema"
	"github.com/goliatone/go-content-engine/pkg/interfaces"
	"github.com/google/uuid"
)

const (
	setFieldMessageType     = "engine.content_type.set_field"
	removeFieldMessageType  = "engine.content_type.remove_field"
	switchFieldsMessageType = "engine.content_type.switch_fields"
)

// SetFieldCommand upserts a field definition on a content type. A nil
// FieldID appends a new field at the next ordinal.
type SetFieldCommand struct {
	RealmID       uuid.UUID  `json:"realm_id,omitempty"`
	ContentTypeID uuid.UUID  `json:"content_type_id"`
	FieldID       *uuid.UUID `json:"field_id,omitempty"`
	FieldTypeID   uuid.UUID  `json:"field_type_id"`
	IsInvariant   bool       `json:"is_invariant"`
	IsRequired    bool       `json:"is_required"`
	IsIndexed     bool       `json:"is_indexed"`
	IsUnique      bool       `json:"is_unique"`
	UniqueName    string     `json:"unique_name"`
	DisplayName   *string    `json:"display_name,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Placeholder   *string    `json:"placeholder,omitempty"`
	ActorID       uuid.UUID  `json:"actor_id,omitempty"`
}

// Type implements command.Message.
func (SetFieldCommand) Type() string { return setFieldMessageType }

// Validate ensures the message carries the required fields before reaching
// handlers.
func (m SetFieldCommand) Validate() error {
	errs := validation.Errors{}
	if m.ContentTypeID == uuid.Nil {
		errs["content_type_id"] = validation.NewError("engine.content_type.id_required", "content_type_id is required")
	}
	if m.FieldTypeID == uuid.Nil {
		errs["field_type_id"] = validation.NewError("engine.content_type.field_type_required", "field_type_id is required")
	}
	if m.UniqueName == "" {
		errs["unique_name"] = validation.NewError("engine.content_type.field_name_required", "unique_name is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetFieldHandler upserts field definitions via the content type service.
type SetFieldHandler struct {
	inner *commands.Handler[SetFieldCommand]
}

// NewSetFieldHandler constructs a handler wired to the provided content type
// service.
func NewSetFieldHandler(service schema.Service, logger interfaces.Logger, opts ...commands.HandlerOption[SetFieldCommand]) *SetFieldHandler {
	exec := func(ctx context.Context, msg SetFieldCommand) error {
		_, err := service.SetField(ctx, schema.SetFieldRequest{
			RealmID:       msg.RealmID,
			ContentTypeID: msg.ContentTypeID,
			Field: schema.FieldPayload{
				ID:          msg.FieldID,
				FieldTypeID: msg.FieldTypeID,
				IsInvariant: msg.IsInvariant,
				IsRequired:  msg.IsRequired,
				IsIndexed:   msg.IsIndexed,
				IsUnique:    msg.IsUnique,
				UniqueName:  msg.UniqueName,
				DisplayName: msg.DisplayName,
				Description: msg.Description,
				Placeholder: msg.Placeholder,
			},
			ActorID: msg.ActorID,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[SetFieldCommand]{
		commands.WithLogger[SetFieldCommand](logger),
		commands.WithOperation[SetFieldCommand]("content_type.set_field"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SetFieldHandler{
		inner: commands.NewHandler[SetFieldCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[SetFieldCommand].Execute.
func (h *SetFieldHandler) Execute(ctx context.Context, msg SetFieldCommand) error {
	return h.inner.Execute(ctx, msg)
}

// RemoveFieldCommand drops a field definition from a content type.
type RemoveFieldCommand struct {
	RealmID       uuid.UUID `json:"realm_id,omitempty"`
	ContentTypeID uuid.UUID `json:"content_type_id"`
	FieldID       uuid.UUID `json:"field_id"`
	ActorID       uuid.UUID `json:"actor_id,omitempty"`
}

// Type implements command.Message.
func (RemoveFieldCommand) Type() string { return removeFieldMessageType }

// Validate ensures the message carries the required fields before reaching
// handlers.
func (m RemoveFieldCommand) Validate() error {
	errs := validation.Errors{}
	if m.ContentTypeID == uuid.Nil {
		errs["content_type_id"] = validation.NewError("engine.content_type.id_required", "content_type_id is required")
	}
	if m.FieldID == uuid.Nil {
		errs["field_id"] = validation.NewError("engine.content_type.field_id_required", "field_id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RemoveFieldHandler removes field definitions via the content type service.
type RemoveFieldHandler struct {
	inner *commands.Handler[RemoveFieldCommand]
}

// NewRemoveFieldHandler constructs a handler wired to the provided content
// type service.
func NewRemoveFieldHandler(service schema.Service, logger interfaces.Logger, opts ...commands.HandlerOption[RemoveFieldCommand]) *RemoveFieldHandler {
	exec := func(ctx context.Context, msg RemoveFieldCommand) error {
		_, err := service.RemoveField(ctx, schema.RemoveFieldRequest{
			RealmID:       msg.RealmID,
			ContentTypeID: msg.ContentTypeID,
			FieldID:       msg.FieldID,
			ActorID:       msg.ActorID,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[RemoveFieldCommand]{
		commands.WithLogger[RemoveFieldCommand](logger),
		commands.WithOperation[RemoveFieldCommand]("content_type.remove_field"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RemoveFieldHandler{
		inner: commands.NewHandler[RemoveFieldCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[RemoveFieldCommand].Execute.
func (h *RemoveFieldHandler) Execute(ctx context.Context, msg RemoveFieldCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SwitchFieldsCommand transposes the ordinal positions of two field
// definitions. The two ids must differ; the aggregate treats equal positions
// as a no-op, so the distinctness rule lives here at the payload boundary.
type SwitchFieldsCommand struct {
	RealmID       uuid.UUID `json:"realm_id,omitempty"`
	ContentTypeID uuid.UUID `json:"content_type_id"`
	SourceID      uuid.UUID `json:"source_id"`
	TargetID      uuid.UUID `json:"target_id"`
	ActorID       uuid.UUID `json:"actor_id,omitempty"`
}

// Type implements command.Message.
func (SwitchFieldsCommand) Type() string { return switchFieldsMessageType }

// Validate ensures the message carries the required fields before reaching
// handlers.
func (m SwitchFieldsCommand) Validate() error {
	errs := validation.Errors{}
	if m.ContentTypeID == uuid.Nil {
		errs["content_type_id"] = validation.NewError("engine.content_type.id_required", "content_type_id is required")
	}
	if m.SourceID == uuid.Nil {
		errs["source_id"] = validation.NewError("engine.content_type.source_id_required", "source_id is required")
	}
	if m.TargetID == uuid.Nil {
		errs["target_id"] = validation.NewError("engine.content_type.target_id_required", "target_id is required")
	}
	if m.SourceID != uuid.Nil && m.SourceID == m.TargetID {
		errs["target_id"] = validation.NewError("engine.content_type.switch_targets_equal", "source_id and target_id must differ")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SwitchFieldsHandler transposes field ordinals via the content type service.
type SwitchFieldsHandler struct {
	inner *commands.Handler[SwitchFieldsCommand]
}

// NewSwitchFieldsHandler constructs a handler wired to the provided content
// type service.
func NewSwitchFieldsHandler(service schema.Service, logger interfaces.Logger, opts ...commands.HandlerOption[SwitchFieldsCommand]) *SwitchFieldsHandler {
	exec := func(ctx context.Context, msg SwitchFieldsCommand) error {
		_, err := service.SwitchFields(ctx, schema.SwitchFieldsRequest{
			RealmID:       msg.RealmID,
			ContentTypeID: msg.ContentTypeID,
			SourceID:      msg.SourceID,
			TargetID:      msg.TargetID,
			ActorID:       msg.ActorID,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[SwitchFieldsCommand]{
		commands.WithLogger[SwitchFieldsCommand](logger),
		commands.WithOperation[SwitchFieldsCommand]("content_type.switch_fields"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SwitchFieldsHandler{
		inner: commands.NewHandler[SwitchFieldsCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[SwitchFieldsCommand].Execute.
func (h *SwitchFieldsHandler) Execute(ctx context.Context, msg SwitchFieldsCommand) error {
	return h.inner.Execute(ctx, msg)
}
