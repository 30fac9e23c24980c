package contentcmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-content-engine/internal/commands"
	"github.com/goliatone/go-content-engine/internal/content"
	"github.com/goliatone/go-content-engine/pkg/interfaces"
	"github.com/google/uuid"
)

const deleteMessageType = "engine.content.delete"

// DeleteContentCommand tombstones a content instance.
type DeleteContentCommand struct {
	RealmID uuid.UUID `json:"realm_id,omitempty"`
	ID      uuid.UUID `json:"id"`
	ActorID uuid.UUID `json:"actor_id,omitempty"`
}

// Type implements command.Message.
func (DeleteContentCommand) Type() string { return deleteMessageType }

// Validate ensures the message carries the required fields before reaching
// handlers.
func (m DeleteContentCommand) Validate() error {
	errs := validation.Errors{}
	if m.ID == uuid.Nil {
		errs["id"] = validation.NewError("engine.content.id_required", "id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DeleteContentHandler deletes content instances via the content service.
type DeleteContentHandler struct {
	inner *commands.Handler[DeleteContentCommand]
}

// NewDeleteContentHandler constructs a handler wired to the provided content
// service.
func NewDeleteContentHandler(service content.Service, logger interfaces.Logger, opts ...commands.HandlerOption[DeleteContentCommand]) *DeleteContentHandler {
	exec := func(ctx context.Context, msg DeleteContentCommand) error {
		_, err := service.Delete(ctx, content.DeleteRequest{
			RealmID: msg.RealmID,
			ID:      msg.ID,
			ActorID: msg.ActorID,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[DeleteContentCommand]{
		commands.WithLogger[DeleteContentCommand](logger),
		commands.WithOperation[DeleteContentCommand]("content.delete"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &DeleteContentHandler{
		inner: commands.NewHandler[DeleteContentCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[DeleteContentCommand].Execute.
func (h *DeleteContentHandler) Execute(ctx context.Context, msg DeleteContentCommand) error {
	return h.inner.Execute(ctx, msg)
}
