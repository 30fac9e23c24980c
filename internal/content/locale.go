package content

import (
	"github.com/goliatone/go-content-engine/internal/domain"
	"github.com/google/uuid"
)

// Locale is the per-slot value payload of a content instance: naming plus a
// map of field-definition id to raw field value. It has no identity; equality
// is structural, and assigning an equal locale is a no-op that raises no
// event.
type Locale struct {
	UniqueName  domain.UniqueName              `json:"unique_name"`
	DisplayName *domain.DisplayName            `json:"display_name,omitempty"`
	Description *domain.Description            `json:"description,omitempty"`
	FieldValues map[uuid.UUID]domain.FieldValue `json:"field_values,omitempty"`
}

// NewLocale builds a locale, copying the field-value map so the aggregate
// exclusively owns its slots.
func NewLocale(uniqueName domain.UniqueName, displayName *domain.DisplayName, description *domain.Description, values map[uuid.UUID]domain.FieldValue) Locale {
	return Locale{
		UniqueName:  uniqueName,
		DisplayName: displayName,
		Description: description,
		FieldValues: copyValues(values),
	}
}

// FieldValue returns the raw value stored for a field definition id.
func (l Locale) FieldValue(fieldID uuid.UUID) (domain.FieldValue, bool) {
	value, ok := l.FieldValues[fieldID]
	return value, ok
}

// Equal reports structural equality across naming and field values.
func (l Locale) Equal(other Locale) bool {
	if !l.UniqueName.Equal(other.UniqueName) ||
		!equalDisplayName(l.DisplayName, other.DisplayName) ||
		!equalDescription(l.Description, other.Description) {
		return false
	}
	if len(l.FieldValues) != len(other.FieldValues) {
		return false
	}
	for fieldID, value := range l.FieldValues {
		otherValue, ok := other.FieldValues[fieldID]
		if !ok || !value.Equal(otherValue) {
			return false
		}
	}
	return true
}

func (l Locale) clone() Locale {
	clone := l
	clone.FieldValues = copyValues(l.FieldValues)
	return clone
}

func copyValues(values map[uuid.UUID]domain.FieldValue) map[uuid.UUID]domain.FieldValue {
	if values == nil {
		return nil
	}
	out := make(map[uuid.UUID]domain.FieldValue, len(values))
	for fieldID, value := range values {
		out[fieldID] = value
	}
	return out
}

func equalDisplayName(a, b *domain.DisplayName) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Value() == b.Value()
}

func equalDescription(a, b *domain.Description) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Value() == b.Value()
}
