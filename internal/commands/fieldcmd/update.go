package fieldcmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-content-engine/internal/commands"
	"github.com/goliatone/go-content-engine/internal/domain"
	"github.com/goliatone/go-content-engine/internal/fields"
	"github.com/goliatone/go-content-engine/pkg/interfaces"
	"github.com/google/uuid"
)

const updateMessageType = "engine.field_type.update"

// UpdateFieldTypeCommand carries a partial field type update. Nil members
// leave the target untouched; StringChange members distinguish clearing from
// skipping.
type UpdateFieldTypeCommand struct {
	RealmID     uuid.UUID               `json:"realm_id,omitempty"`
	ID          uuid.UUID               `json:"id"`
	UniqueName  *string                 `json:"unique_name,omitempty"`
	DisplayName *domain.StringChange    `json:"display_name,omitempty"`
	Description *domain.StringChange    `json:"description,omitempty"`
	Settings    *fields.SettingsPayload `json:"settings,omitempty"`
	ActorID     uuid.UUID               `json:"actor_id,omitempty"`
}

// Type implements command.Message.
func (UpdateFieldTypeCommand) Type() string { return updateMessageType }

// Validate ensures the message carries the required fields before reaching
// handlers.
func (m UpdateFieldTypeCommand) Validate() error {
	errs := validation.Errors{}
	if m.ID == uuid.Nil {
		errs["id"] = validation.NewError("engine.field_type.id_required", "id is required")
	}
	if m.UniqueName != nil && *m.UniqueName == "" {
		errs["unique_name"] = validation.NewError("engine.field_type.unique_name_empty", "unique_name cannot be cleared")
	}
	if m.Settings != nil {
		if _, err := m.Settings.Settings(); err != nil {
			errs["settings"] = validation.NewError("engine.field_type.settings_invalid", err.Error())
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateFieldTypeHandler applies partial updates via the field type service.
type UpdateFieldTypeHandler struct {
	inner *commands.Handler[UpdateFieldTypeCommand]
}

// NewUpdateFieldTypeHandler constructs a handler wired to the provided field
// type service.
func NewUpdateFieldTypeHandler(service fields.Service, logger interfaces.Logger, opts ...commands.HandlerOption[UpdateFieldTypeCommand]) *UpdateFieldTypeHandler {
	exec := func(ctx context.Context, msg UpdateFieldTypeCommand) error {
		_, err := service.Update(ctx, fields.UpdateRequest{
			RealmID:     msg.RealmID,
			ID:          msg.ID,
			UniqueName:  msg.UniqueName,
			DisplayName: msg.DisplayName,
			Description: msg.Description,
			Settings:    msg.Settings,
			ActorID:     msg.ActorID,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[UpdateFieldTypeCommand]{
		commands.WithLogger[UpdateFieldTypeCommand](logger),
		commands.WithOperation[UpdateFieldTypeCommand]("field_type.update"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &UpdateFieldTypeHandler{
		inner: commands.NewHandler[UpdateFieldTypeCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[UpdateFieldTypeCommand].Execute.
func (h *UpdateFieldTypeHandler) Execute(ctx context.Context, msg UpdateFieldTypeCommand) error {
	return h.inner.Execute(ctx, msg)
}
