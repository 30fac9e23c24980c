package fields

import (
	"github.com/google/uuid"
)

// Dto is the flat, serializable view of a field type exposed to callers. The
// aggregate itself never serializes; queriers translate it through this shape.
type Dto struct {
	ID          uuid.UUID       `json:"id"`
	RealmID     uuid.UUID       `json:"realm_id,omitempty"`
	Version     int             `json:"version"`
	UniqueName  string          `json:"unique_name"`
	DisplayName *string         `json:"display_name,omitempty"`
	Description *string         `json:"description,omitempty"`
	DataType    DataType        `json:"data_type"`
	Settings    SettingsPayload `json:"settings"`
}

// ToDto flattens the aggregate's current state.
func ToDto(ft *FieldType) Dto {
	dto := Dto{
		ID:         ft.ID().EntityID,
		RealmID:    ft.ID().RealmID,
		Version:    ft.Version(),
		UniqueName: ft.UniqueName().Value(),
		DataType:   ft.DataType(),
		Settings:   NewSettingsPayload(ft.Settings()),
	}
	if name := ft.DisplayName(); name != nil {
		value := name.Value()
		dto.DisplayName = &value
	}
	if desc := ft.Description(); desc != nil {
		value := desc.Value()
		dto.Description = &value
	}
	return dto
}
