package contentcmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-content-engine/internal/commands"
	"github.com/goliatone/go-content-engine/internal/content"
	"github.com/goliatone/go-content-engine/internal/domain"
	"github.com/goliatone/go-content-engine/pkg/interfaces"
	"github.com/google/uuid"
)

const createOrReplaceMessageType = "engine.content.create_or_replace"

// LocalePayload is the command-level shape of one locale slot.
type LocalePayload struct {
	UniqueName  string               `json:"unique_name"`
	DisplayName *string              `json:"display_name,omitempty"`
	Description *string              `json:"description,omitempty"`
	FieldValues map[uuid.UUID]string `json:"field_values,omitempty"`
}

// CreateOrReplaceContentCommand carries a full content payload: the invariant
// locale plus any per-language locales. With an explicit ID and Version it
// requests a replace diffed against that historical version.
type CreateOrReplaceContentCommand struct {
	RealmID       uuid.UUID                   `json:"realm_id,omitempty"`
	ID            *uuid.UUID                  `json:"id,omitempty"`
	Version       *int                        `json:"version,omitempty"`
	ContentTypeID uuid.UUID                   `json:"content_type_id"`
	Invariant     LocalePayload               `json:"invariant"`
	Locales       map[uuid.UUID]LocalePayload `json:"locales,omitempty"`
	ActorID       uuid.UUID                   `json:"actor_id,omitempty"`
}

// Type implements command.Message.
func (CreateOrReplaceContentCommand) Type() string { return createOrReplaceMessageType }

// Validate ensures the message carries the required fields before reaching
// handlers.
func (m CreateOrReplaceContentCommand) Validate() error {
	errs := validation.Errors{}
	if m.ContentTypeID == uuid.Nil {
		errs["content_type_id"] = validation.NewError("engine.content.content_type_required", "content_type_id is required")
	}
	if m.Invariant.UniqueName == "" {
		errs["invariant"] = validation.NewError("engine.content.invariant_name_required", "invariant unique_name is required")
	}
	for language, locale := range m.Locales {
		if language == uuid.Nil {
			errs["locales"] = validation.NewError("engine.content.language_required", "language ids cannot be nil")
			break
		}
		if locale.UniqueName == "" {
			errs["locales"] = validation.NewError("engine.content.locale_name_required", "locale unique_name is required")
			break
		}
	}
	if m.Version != nil && m.ID == nil {
		errs["version"] = validation.NewError("engine.content.version_requires_id", "version is only meaningful with an explicit id")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CreateOrReplaceContentHandler applies the payload via the content service
// using the shared command handler foundation.
type CreateOrReplaceContentHandler struct {
	inner *commands.Handler[CreateOrReplaceContentCommand]
}

// NewCreateOrReplaceContentHandler constructs a handler wired to the provided
// content service.
func NewCreateOrReplaceContentHandler(service content.Service, logger interfaces.Logger, opts ...commands.HandlerOption[CreateOrReplaceContentCommand]) *CreateOrReplaceContentHandler {
	exec := func(ctx context.Context, msg CreateOrReplaceContentCommand) error {
		req := content.CreateOrReplaceRequest{
			RealmID:       msg.RealmID,
			ID:            msg.ID,
			Version:       msg.Version,
			ContentTypeID: msg.ContentTypeID,
			Invariant:     toServicePayload(msg.Invariant),
			ActorID:       msg.ActorID,
		}
		if len(msg.Locales) > 0 {
			req.Locales = make(map[uuid.UUID]content.LocalePayload, len(msg.Locales))
			for language, locale := range msg.Locales {
				req.Locales[language] = toServicePayload(locale)
			}
		}
		result, err := service.CreateOrReplace(ctx, req)
		if err != nil {
			return err
		}
		if result.Content == nil {
			// Replacing an absent or deleted instance yields no result;
			// callers of the command surface see it as not found.
			return &domain.NotFoundError{Resource: "content", Key: msg.ID.String()}
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[CreateOrReplaceContentCommand]{
		commands.WithLogger[CreateOrReplaceContentCommand](logger),
		commands.WithOperation[CreateOrReplaceContentCommand]("content.create_or_replace"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CreateOrReplaceContentHandler{
		inner: commands.NewHandler[CreateOrReplaceContentCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[CreateOrReplaceContentCommand].Execute.
func (h *CreateOrReplaceContentHandler) Execute(ctx context.Context, msg CreateOrReplaceContentCommand) error {
	return h.inner.Execute(ctx, msg)
}

func toServicePayload(locale LocalePayload) content.LocalePayload {
	return content.LocalePayload{
		UniqueName:  locale.UniqueName,
		DisplayName: locale.DisplayName,
		Description: locale.Description,
		FieldValues: locale.FieldValues,
	}
}
