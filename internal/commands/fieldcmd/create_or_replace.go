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

const createOrReplaceMessageType = "engine.field_type.create_or_replace"

// CreateOrReplaceFieldTypeCommand carries a full field type payload. With an
// explicit ID and Version it requests a replace diffed against that
// historical version.
type CreateOrReplaceFieldTypeCommand struct {
	RealmID     uuid.UUID              `json:"realm_id,omitempty"`
	ID          *uuid.UUID             `json:"id,omitempty"`
	Version     *int                   `json:"version,omitempty"`
	UniqueName  string                 `json:"unique_name"`
	DisplayName *string                `json:"display_name,omitempty"`
	Description *string                `json:"description,omitempty"`
	Settings    fields.SettingsPayload `json:"settings"`
	ActorID     uuid.UUID              `json:"actor_id,omitempty"`
}

// Type implements command.Message.
func (CreateOrReplaceFieldTypeCommand) Type() string { return createOrReplaceMessageType }

// Validate ensures the message carries the required fields before reaching
// handlers.
func (m CreateOrReplaceFieldTypeCommand) Validate() error {
	errs := validation.Errors{}
	if m.UniqueName == "" {
		errs["unique_name"] = validation.NewError("engine.field_type.unique_name_required", "unique_name is required")
	}
	if _, err := m.Settings.Settings(); err != nil {
		errs["settings"] = validation.NewError("engine.field_type.settings_invalid", err.Error())
	}
	if m.Version != nil && m.ID == nil {
		errs["version"] = validation.NewError("engine.field_type.version_requires_id", "version is only meaningful with an explicit id")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CreateOrReplaceFieldTypeHandler applies the payload via the field type
// service using the shared command handler foundation.
type CreateOrReplaceFieldTypeHandler struct {
	inner *commands.Handler[CreateOrReplaceFieldTypeCommand]
}

// NewCreateOrReplaceFieldTypeHandler constructs a handler wired to the
// provided field type service.
func NewCreateOrReplaceFieldTypeHandler(service fields.Service, logger interfaces.Logger, opts ...commands.HandlerOption[CreateOrReplaceFieldTypeCommand]) *CreateOrReplaceFieldTypeHandler {
	exec := func(ctx context.Context, msg CreateOrReplaceFieldTypeCommand) error {
		result, err := service.CreateOrReplace(ctx, fields.CreateOrReplaceRequest{
			RealmID:     msg.RealmID,
			ID:          msg.ID,
			Version:     msg.Version,
			UniqueName:  msg.UniqueName,
			DisplayName: msg.DisplayName,
			Description: msg.Description,
			Settings:    msg.Settings,
			ActorID:     msg.ActorID,
		})
		if err != nil {
			return err
		}
		if result.FieldType == nil {
			// Replacing an absent or deleted field type yields no result;
			// callers of the command surface see it as not found.
			return &domain.NotFoundError{Resource: "field type", Key: msg.ID.String()}
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[CreateOrReplaceFieldTypeCommand]{
		commands.WithLogger[CreateOrReplaceFieldTypeCommand](logger),
		commands.WithOperation[CreateOrReplaceFieldTypeCommand]("field_type.create_or_replace"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CreateOrReplaceFieldTypeHandler{
		inner: commands.NewHandler[CreateOrReplaceFieldTypeCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[CreateOrReplaceFieldTypeCommand].Execute.
func (h *CreateOrReplaceFieldTypeHandler) Execute(ctx context.Context, msg CreateOrReplaceFieldTypeCommand) error {
	return h.inner.Execute(ctx, msg)
}
