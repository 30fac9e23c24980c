package fieldcmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-content-engine/internal/commands"
	"github.com/goliatone/go-content-engine/internal/domain"
	"github.com/goliatone/go-content-engine/internal/fields"
	"github.com/goliatone/go-content-engine/internal/logging"
	"github.com/goliatone/go-content-engine/internal/schema"
	"github.com/goliatone/go-content-engine/pkg/interfaces"
	"github.com/google/uuid"
)

const deleteMessageType = "engine.field_type.delete"

// DeleteFieldTypeCommand tombstones a field type and detaches it from every
// content type that references it.
type DeleteFieldTypeCommand struct {
	RealmID uuid.UUID `json:"realm_id,omitempty"`
	ID      uuid.UUID `json:"id"`
	ActorID uuid.UUID `json:"actor_id,omitempty"`
}

// Type implements command.Message.
func (DeleteFieldTypeCommand) Type() string { return deleteMessageType }

// Validate ensures the message carries the required fields before reaching
// handlers.
func (m DeleteFieldTypeCommand) Validate() error {
	errs := validation.Errors{}
	if m.ID == uuid.Nil {
		errs["id"] = validation.NewError("engine.field_type.id_required", "id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DeleteFieldTypeHandler deletes the field type and then cascades the detach
// across content types. The cascade is best-effort sequential: a partial
// failure is surfaced after the remaining detaches were attempted, and saved
// aggregates are not rolled back.
type DeleteFieldTypeHandler struct {
	inner *commands.Handler[DeleteFieldTypeCommand]
}

// NewDeleteFieldTypeHandler constructs a handler wired to the field type and
// content type services plus the usage read model driving the cascade.
func NewDeleteFieldTypeHandler(fieldTypes fields.Service, contentTypes schema.Service, usage schema.UsageQuerier, logger interfaces.Logger, opts ...commands.HandlerOption[DeleteFieldTypeCommand]) *DeleteFieldTypeHandler {
	log := logger
	if log == nil {
		log = logging.NoOp()
	}

	exec := func(ctx context.Context, msg DeleteFieldTypeCommand) error {
		deleted, err := fieldTypes.Delete(ctx, fields.DeleteRequest{
			RealmID: msg.RealmID,
			ID:      msg.ID,
			ActorID: msg.ActorID,
		})
		if err != nil {
			return err
		}
		if !deleted || usage == nil {
			return nil
		}
		return detachFieldType(ctx, contentTypes, usage, msg, log)
	}

	handlerOpts := []commands.HandlerOption[DeleteFieldTypeCommand]{
		commands.WithLogger[DeleteFieldTypeCommand](logger),
		commands.WithOperation[DeleteFieldTypeCommand]("field_type.delete"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &DeleteFieldTypeHandler{
		inner: commands.NewHandler[DeleteFieldTypeCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[DeleteFieldTypeCommand].Execute.
func (h *DeleteFieldTypeHandler) Execute(ctx context.Context, msg DeleteFieldTypeCommand) error {
	return h.inner.Execute(ctx, msg)
}

func detachFieldType(ctx context.Context, contentTypes schema.Service, usage schema.UsageQuerier, msg DeleteFieldTypeCommand, logger interfaces.Logger) error {
	contentTypeIDs, err := usage.FindIDsByFieldType(ctx, msg.RealmID, msg.ID)
	if err != nil {
		return err
	}

	var firstErr error
	for _, contentTypeID := range contentTypeIDs {
		if err := detachFromContentType(ctx, contentTypes, msg, contentTypeID); err != nil {
			logger.Warn("field_type.delete.detach_failed",
				"field_type", msg.ID.String(),
				"content_type", contentTypeID.String(),
				"error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func detachFromContentType(ctx context.Context, contentTypes schema.Service, msg DeleteFieldTypeCommand, contentTypeID uuid.UUID) error {
	dto, err := contentTypes.Get(ctx, domain.NewAggregateID(msg.RealmID, contentTypeID))
	if err != nil {
		return err
	}
	for _, field := range dto.Fields {
		if field.FieldTypeID != msg.ID {
			continue
		}
		if _, err := contentTypes.RemoveField(ctx, schema.RemoveFieldRequest{
			RealmID:       msg.RealmID,
			ContentTypeID: contentTypeID,
			FieldID:       field.ID,
			ActorID:       msg.ActorID,
		}); err != nil {
			return err
		}
	}
	return nil
}
