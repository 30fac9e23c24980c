package contentcmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-content-engine/internal/commands"
	"github.com/goliatone/go-content-engine/internal/content"
	"github.com/goliatone/go-content-engine/pkg/interfaces"
	"github.com/google/uuid"
)

const (
	publishMessageType   = "engine.content.publish"
	unpublishMessageType = "engine.content.unpublish"
)

// PublishContentCommand promotes a locale slot to Latest. A nil LanguageID
// publishes the invariant slot and cascades to every existing language slot.
type PublishContentCommand struct {
	RealmID    uuid.UUID  `json:"realm_id,omitempty"`
	ContentID  uuid.UUID  `json:"content_id"`
	LanguageID *uuid.UUID `json:"language_id,omitempty"`
	ActorID    uuid.UUID  `json:"actor_id,omitempty"`
}

// Type implements command.Message.
func (PublishContentCommand) Type() string { return publishMessageType }

// Validate ensures the message carries the required fields before reaching
// handlers.
func (m PublishContentCommand) Validate() error {
	return validatePublishTarget(m.ContentID, m.LanguageID)
}

// PublishContentHandler publishes locale slots via the content service.
type PublishContentHandler struct {
	inner *commands.Handler[PublishContentCommand]
}

// NewPublishContentHandler constructs a handler wired to the provided content
// service.
func NewPublishContentHandler(service content.Service, logger interfaces.Logger, opts ...commands.HandlerOption[PublishContentCommand]) *PublishContentHandler {
	exec := func(ctx context.Context, msg PublishContentCommand) error {
		_, err := service.Publish(ctx, content.PublishRequest{
			RealmID:    msg.RealmID,
			ContentID:  msg.ContentID,
			LanguageID: msg.LanguageID,
			ActorID:    msg.ActorID,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[PublishContentCommand]{
		commands.WithLogger[PublishContentCommand](logger),
		commands.WithOperation[PublishContentCommand]("content.publish"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PublishContentHandler{
		inner: commands.NewHandler[PublishContentCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[PublishContentCommand].Execute.
func (h *PublishContentHandler) Execute(ctx context.Context, msg PublishContentCommand) error {
	return h.inner.Execute(ctx, msg)
}

// UnpublishContentCommand retracts a locale slot back to unpublished. A nil
// LanguageID unpublishes the invariant slot and cascades to every existing
// language slot.
type UnpublishContentCommand struct {
	RealmID    uuid.UUID  `json:"realm_id,omitempty"`
	ContentID  uuid.UUID  `json:"content_id"`
	LanguageID *uuid.UUID `json:"language_id,omitempty"`
	ActorID    uuid.UUID  `json:"actor_id,omitempty"`
}

// Type implements command.Message.
func (UnpublishContentCommand) Type() string { return unpublishMessageType }

// Validate ensures the message carries the required fields before reaching
// handlers.
func (m UnpublishContentCommand) Validate() error {
	return validatePublishTarget(m.ContentID, m.LanguageID)
}

// UnpublishContentHandler unpublishes locale slots via the content service.
type UnpublishContentHandler struct {
	inner *commands.Handler[UnpublishContentCommand]
}

// NewUnpublishContentHandler constructs a handler wired to the provided
// content service.
func NewUnpublishContentHandler(service content.Service, logger interfaces.Logger, opts ...commands.HandlerOption[UnpublishContentCommand]) *UnpublishContentHandler {
	exec := func(ctx context.Context, msg UnpublishContentCommand) error {
		_, err := service.Unpublish(ctx, content.PublishRequest{
			RealmID:    msg.RealmID,
			ContentID:  msg.ContentID,
			LanguageID: msg.LanguageID,
			ActorID:    msg.ActorID,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[UnpublishContentCommand]{
		commands.WithLogger[UnpublishContentCommand](logger),
		commands.WithOperation[UnpublishContentCommand]("content.unpublish"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &UnpublishContentHandler{
		inner: commands.NewHandler[UnpublishContentCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[UnpublishContentCommand].Execute.
func (h *UnpublishContentHandler) Execute(ctx context.Context, msg UnpublishContentCommand) error {
	return h.inner.Execute(ctx, msg)
}

func validatePublishTarget(contentID uuid.UUID, languageID *uuid.UUID) error {
	errs := validation.Errors{}
	if contentID == uuid.Nil {
		errs["content_id"] = validation.NewError("engine.content.id_required", "content_id is required")
	}
	if languageID != nil && *languageID == uuid.Nil {
		errs["language_id"] = validation.NewError("engine.content.language_invalid", "language_id cannot be the nil uuid")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
