package content

import (
	"github.com/goliatone/go-content-engine/internal/domain"
	"github.com/google/uuid"
)

// LocaleDto is the flat view of one locale slot, including its publish
// status. Status is nil while the slot is unpublished.
type LocaleDto struct {
	UniqueName  string               `json:"unique_name"`
	DisplayName *string              `json:"display_name,omitempty"`
	Description *string              `json:"description,omitempty"`
	FieldValues map[uuid.UUID]string `json:"field_values,omitempty"`
	Status      *domain.PublishStatus `json:"status,omitempty"`
}

// Dto is the flat, serializable view of a content instance.
type Dto struct {
	ID            uuid.UUID               `json:"id"`
	RealmID       uuid.UUID               `json:"realm_id,omitempty"`
	Version       int                     `json:"version"`
	ContentTypeID uuid.UUID               `json:"content_type_id"`
	Invariant     LocaleDto               `json:"invariant"`
	Locales       map[uuid.UUID]LocaleDto `json:"locales,omitempty"`
}

// ToDto flattens the aggregate's current state.
func ToDto(c *Content) Dto {
	dto := Dto{
		ID:            c.ID().EntityID,
		RealmID:       c.ID().RealmID,
		Version:       c.Version(),
		ContentTypeID: c.ContentTypeID().EntityID,
		Invariant:     toLocaleDto(c.Invariant(), statusOf(c, nil)),
	}

	languages := c.LanguageIDs()
	if len(languages) > 0 {
		dto.Locales = make(map[uuid.UUID]LocaleDto, len(languages))
		for _, language := range languages {
			language := language
			locale, _ := c.Locale(language)
			dto.Locales[language] = toLocaleDto(locale, statusOf(c, &language))
		}
	}
	return dto
}

func statusOf(c *Content, languageID *uuid.UUID) *domain.PublishStatus {
	status, ok := c.Status(languageID)
	if !ok {
		return nil
	}
	return &status
}

func toLocaleDto(locale Locale, status *domain.PublishStatus) LocaleDto {
	dto := LocaleDto{
		UniqueName: locale.UniqueName.Value(),
		Status:     status,
	}
	if locale.DisplayName != nil {
		value := locale.DisplayName.Value()
		dto.DisplayName = &value
	}
	if locale.Description != nil {
		value := locale.Description.Value()
		dto.Description = &value
	}
	if len(locale.FieldValues) > 0 {
		dto.FieldValues = make(map[uuid.UUID]string, len(locale.FieldValues))
		for fieldID, value := range locale.FieldValues {
			dto.FieldValues[fieldID] = value.Value()
		}
	}
	return dto
}
