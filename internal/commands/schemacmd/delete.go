package schemacmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-content-engine/internal/commands"
	"github.com/goliatone/go-content-engine/internal/content"
	"github.com/goliatone/go-content-engine/internal/logging"
	"github.com/goliatone/go-content-engine/internal/schema"
	"github.com/goliatone/go-content-engine/pkg/interfaces"
	"github.com/google/uuid"
)

const deleteMessageType = "engine.content_type.delete"

// DeleteContentTypeCommand tombstones a content type and cascades deletion to
// its content instances.
type DeleteContentTypeCommand struct {
	RealmID uuid.UUID `json:"realm_id,omitempty"`
	ID      uuid.UUID `json:"id"`
	ActorID uuid.UUID `json:"actor_id,omitempty"`
}

// Type implements command.Message.
func (DeleteContentTypeCommand) Type() string { return deleteMessageType }

// Validate ensures the message carries the required fields before reaching
// handlers.
func (m DeleteContentTypeCommand) Validate() error {
	errs := validation.Errors{}
	if m.ID == uuid.Nil {
		errs["id"] = validation.NewError("engine.content_type.id_required", "id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DeleteContentTypeHandler deletes the content type and then its content
// instances. There is no cross-aggregate transaction: deletes run as
// best-effort sequential saves, and a partial failure leaves the content type
// gone with some instances remaining.
type DeleteContentTypeHandler struct {
	inner *commands.Handler[DeleteContentTypeCommand]
}

// NewDeleteContentTypeHandler constructs a handler wired to the content type
// and content services plus the listing read model driving the cascade.
func NewDeleteContentTypeHandler(contentTypes schema.Service, contents content.Service, list content.ListQuerier, logger interfaces.Logger, opts ...commands.HandlerOption[DeleteContentTypeCommand]) *DeleteContentTypeHandler {
	log := logger
	if log == nil {
		log = logging.NoOp()
	}

	exec := func(ctx context.Context, msg DeleteContentTypeCommand) error {
		deleted, err := contentTypes.Delete(ctx, schema.DeleteRequest{
			RealmID: msg.RealmID,
			ID:      msg.ID,
			ActorID: msg.ActorID,
		})
		if err != nil {
			return err
		}
		if !deleted || list == nil {
			return nil
		}

		contentIDs, err := list.FindIDsByContentType(ctx, msg.RealmID, msg.ID)
		if err != nil {
			return err
		}

		var firstErr error
		for _, contentID := range contentIDs {
			if _, err := contents.Delete(ctx, content.DeleteRequest{
				RealmID: msg.RealmID,
				ID:      contentID,
				ActorID: msg.ActorID,
			}); err != nil {
				log.Warn("content_type.delete.cascade_failed",
					"content_type", msg.ID.String(),
					"content", contentID.String(),
					"error", err)
				if firstErr == nil {
					firstErr = err
				}
			}
		}
		return firstErr
	}

	handlerOpts := []commands.HandlerOption[DeleteContentTypeCommand]{
		commands.WithLogger[DeleteContentTypeCommand](logger),
		commands.WithOperation[DeleteContentTypeCommand]("content_type.delete"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &DeleteContentTypeHandler{
		inner: commands.NewHandler[DeleteContentTypeCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[DeleteContentTypeCommand].Execute.
func (h *DeleteContentTypeHandler) Execute(ctx context.Context, msg DeleteContentTypeCommand) error {
	return h.inner.Execute(ctx, msg)
}
