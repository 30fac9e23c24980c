package schemacmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-content-engine/internal/commands"
	"github.com/goliatone/go-content-engine/internal/domain"
	"github.com/goliatone/go-content-engine/internal/schema"
	"github.com/goliatone/go-content-engine/pkg/interfaces"
	"github.com/google/uuid"
)

const createOrReplaceMessageType = "engine.content_type.create_or_replace"

// CreateOrReplaceContentTypeCommand carries a full content type payload. With
// an explicit ID and Version it requests a replace diffed against that
// historical version.
type CreateOrReplaceContentTypeCommand struct {
	RealmID     uuid.UUID  `json:"realm_id,omitempty"`
	ID          *uuid.UUID `json:"id,omitempty"`
	Version     *int       `json:"version,omitempty"`
	UniqueName  string     `json:"unique_name"`
	DisplayName *string    `json:"display_name,omitempty"`
	Description *string    `json:"description,omitempty"`
	IsInvariant bool       `json:"is_invariant"`
	ActorID     uuid.UUID  `json:"actor_id,omitempty"`
}

// Type implements command.Message.
func (CreateOrReplaceContentTypeCommand) Type() string { return createOrReplaceMessageType }

// Validate ensures the message carries the required fields before reaching
// handlers.
func (m CreateOrReplaceContentTypeCommand) Validate() error {
	errs := validation.Errors{}
	if m.UniqueName == "" {
		errs["unique_name"] = validation.NewError("engine.content_type.unique_name_required", "unique_name is required")
	}
	if m.Version != nil && m.ID == nil {
		errs["version"] = validation.NewError("engine.content_type.version_requires_id", "version is only meaningful with an explicit id")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CreateOrReplaceContentTypeHandler applies the payload via the content type
// service using the shared command handler foundation.
type CreateOrReplaceContentTypeHandler struct {
	inner *commands.Handler[CreateOrReplaceContentTypeCommand]
}

// NewCreateOrReplaceContentTypeHandler constructs a handler wired to the
// provided content type service.
func NewCreateOrReplaceContentTypeHandler(service schema.Service, logger interfaces.Logger, opts ...commands.HandlerOption[CreateOrReplaceContentTypeCommand]) *CreateOrReplaceContentTypeHandler {
	exec := func(ctx context.Context, msg CreateOrReplaceContentTypeCommand) error {
		result, err := service.CreateOrReplace(ctx, schema.CreateOrReplaceRequest{
			RealmID:     msg.RealmID,
			ID:          msg.ID,
			Version:     msg.Version,
			UniqueName:  msg.UniqueName,
			DisplayName: msg.DisplayName,
			Description: msg.Description,
			IsInvariant: msg.IsInvariant,
			ActorID:     msg.ActorID,
		})
		if err != nil {
			return err
		}
		if result.ContentType == nil {
			// Replacing an absent or deleted content type yields no result;
			// callers of the command surface see it as not found.
			return &domain.NotFoundError{Resource: "content type", Key: msg.ID.String()}
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[CreateOrReplaceContentTypeCommand]{
		commands.WithLogger[CreateOrReplaceContentTypeCommand](logger),
		commands.WithOperation[CreateOrReplaceContentTypeCommand]("content_type.create_or_replace"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CreateOrReplaceContentTypeHandler{
		inner: commands.NewHandler[CreateOrReplaceContentTypeCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[CreateOrReplaceContentTypeCommand].Execute.
func (h *CreateOrReplaceContentTypeHandler) Execute(ctx context.Context, msg CreateOrReplaceContentTypeCommand) error {
	return h.inner.Execute(ctx, msg)
}
