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
	setLocaleMessageType    = "engine.content.set_locale"
	removeLocaleMessageType = "engine.content.remove_locale"
)

// SetLocaleCommand upserts one locale slot. A nil LanguageID targets the
// invariant slot.
type SetLocaleCommand struct {
	RealmID    uuid.UUID     `json:"realm_id,omitempty"`
	ContentID  uuid.UUID     `json:"content_id"`
	LanguageID *uuid.UUID    `json:"language_id,omitempty"`
	Locale     LocalePayload `json:"locale"`
	ActorID    uuid.UUID     `json:"actor_id,omitempty"`
}

// Type implements command.Message.
func (SetLocaleCommand) Type() string { return setLocaleMessageType }

// Validate ensures the message carries the required fields before reaching
// handlers.
func (m SetLocaleCommand) Validate() error {
	errs := validation.Errors{}
	if m.ContentID == uuid.Nil {
		errs["content_id"] = validation.NewError("engine.content.id_required", "content_id is required")
	}
	if m.LanguageID != nil && *m.LanguageID == uuid.Nil {
		errs["language_id"] = validation.NewError("engine.content.language_invalid", "language_id cannot be the nil uuid")
	}
	if m.Locale.UniqueName == "" {
		errs["locale"] = validation.NewError("engine.content.locale_name_required", "locale unique_name is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetLocaleHandler upserts locale slots via the content service.
type SetLocaleHandler struct {
	inner *commands.Handler[SetLocaleCommand]
}

// NewSetLocaleHandler constructs a handler wired to the provided content
// service.
func NewSetLocaleHandler(service content.Service, logger interfaces.Logger, opts ...commands.HandlerOption[SetLocaleCommand]) *SetLocaleHandler {
	exec := func(ctx context.Context, msg SetLocaleCommand) error {
		_, err := service.SetLocale(ctx, content.SetLocaleRequest{
			RealmID:    msg.RealmID,
			ContentID:  msg.ContentID,
			LanguageID: msg.LanguageID,
			Locale:     toServicePayload(msg.Locale),
			ActorID:    msg.ActorID,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[SetLocaleCommand]{
		commands.WithLogger[SetLocaleCommand](logger),
		commands.WithOperation[SetLocaleCommand]("content.set_locale"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SetLocaleHandler{
		inner: commands.NewHandler[SetLocaleCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[SetLocaleCommand].Execute.
func (h *SetLocaleHandler) Execute(ctx context.Context, msg SetLocaleCommand) error {
	return h.inner.Execute(ctx, msg)
}

// RemoveLocaleCommand drops a language slot together with its publish status.
type RemoveLocaleCommand struct {
	RealmID    uuid.UUID `json:"realm_id,omitempty"`
	ContentID  uuid.UUID `json:"content_id"`
	LanguageID uuid.UUID `json:"language_id"`
	ActorID    uuid.UUID `json:"actor_id,omitempty"`
}

// Type implements command.Message.
func (RemoveLocaleCommand) Type() string { return removeLocaleMessageType }

// Validate ensures the message carries the required fields before reaching
// handlers.
func (m RemoveLocaleCommand) Validate() error {
	errs := validation.Errors{}
	if m.ContentID == uuid.Nil {
		errs["content_id"] = validation.NewError("engine.content.id_required", "content_id is required")
	}
	if m.LanguageID == uuid.Nil {
		errs["language_id"] = validation.NewError("engine.content.language_required", "language_id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RemoveLocaleHandler removes language slots via the content service.
type RemoveLocaleHandler struct {
	inner *commands.Handler[RemoveLocaleCommand]
}

// NewRemoveLocaleHandler constructs a handler wired to the provided content
// service.
func NewRemoveLocaleHandler(service content.Service, logger interfaces.Logger, opts ...commands.HandlerOption[RemoveLocaleCommand]) *RemoveLocaleHandler {
	exec := func(ctx context.Context, msg RemoveLocaleCommand) error {
		_, err := service.RemoveLocale(ctx, content.RemoveLocaleRequest{
			RealmID:    msg.RealmID,
			ContentID:  msg.ContentID,
			LanguageID: msg.LanguageID,
			ActorID:    msg.ActorID,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[RemoveLocaleCommand]{
		commands.WithLogger[RemoveLocaleCommand](logger),
		commands.WithOperation[RemoveLocaleCommand]("content.remove_locale"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RemoveLocaleHandler{
		inner: commands.NewHandler[RemoveLocaleCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[RemoveLocaleCommand].Execute.
func (h *RemoveLocaleHandler) Execute(ctx context.Context, msg RemoveLocaleCommand) error {
	return h.inner.Execute(ctx, msg)
}
