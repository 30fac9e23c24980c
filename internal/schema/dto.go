package schema

import (
	"github.com/google/uuid"
)

// Dto is the flat, serializable view of a content type exposed to callers.
type Dto struct {
	ID          uuid.UUID  `json:"id"`
	RealmID     uuid.UUID  `json:"realm_id,omitempty"`
	Version     int        `json:"version"`
	UniqueName  string     `json:"unique_name"`
	DisplayName *string    `json:"display_name,omitempty"`
	Description *string    `json:"description,omitempty"`
	IsInvariant bool       `json:"is_invariant"`
	Fields      []FieldDto `json:"fields"`
}

// FieldDto is the flat view of a field definition. Ordinal mirrors the
// definition's position in the schema's ordered field list.
type FieldDto struct {
	ID          uuid.UUID `json:"id"`
	FieldTypeID uuid.UUID `json:"field_type_id"`
	Ordinal     int       `json:"ordinal"`
	IsInvariant bool      `json:"is_invariant"`
	IsRequired  bool      `json:"is_required"`
	IsIndexed   bool      `json:"is_indexed"`
	IsUnique    bool      `json:"is_unique"`
	UniqueName  string    `json:"unique_name"`
	DisplayName *string   `json:"display_name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Placeholder *string   `json:"placeholder,omitempty"`
}

// ToDto flattens the aggregate's current state.
func ToDto(ct *ContentType) Dto {
	dto := Dto{
		ID:          ct.ID().EntityID,
		RealmID:     ct.ID().RealmID,
		Version:     ct.Version(),
		UniqueName:  ct.UniqueName().Value(),
		IsInvariant: ct.IsInvariant(),
	}
	if name := ct.DisplayName(); name != nil {
		value := name.Value()
		dto.DisplayName = &value
	}
	if desc := ct.Description(); desc != nil {
		value := desc.Value()
		dto.Description = &value
	}

	fields := ct.Fields()
	dto.Fields = make([]FieldDto, 0, len(fields))
	for ordinal, field := range fields {
		dto.Fields = append(dto.Fields, toFieldDto(field, ordinal))
	}
	return dto
}

func toFieldDto(field FieldDefinition, ordinal int) FieldDto {
	dto := FieldDto{
		ID:          field.ID,
		FieldTypeID: field.FieldTypeID.EntityID,
		Ordinal:     ordinal,
		IsInvariant: field.IsInvariant,
		IsRequired:  field.IsRequired,
		IsIndexed:   field.IsIndexed,
		IsUnique:    field.IsUnique,
		UniqueName:  field.UniqueName.Value(),
	}
	if field.DisplayName != nil {
		value := field.DisplayName.Value()
		dto.DisplayName = &value
	}
	if field.Description != nil {
		value := field.Description.Value()
		dto.Description = &value
	}
	if field.Placeholder != nil {
		value := field.Placeholder.Value()
		dto.Placeholder = &value
	}
	return dto
}
