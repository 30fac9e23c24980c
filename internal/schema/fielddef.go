package schema

import (
	"github.com/goliatone/go-content-engine/internal/domain"
	"github.com/google/uuid"
)

// FieldDefinition attaches a field type to a content type with per-type
// flags, naming, and an externally observable 0-based ordinal. The record is
// immutable; SetField replaces the whole definition.
type FieldDefinition struct {
	ID          uuid.UUID           `json:"id"`
	FieldTypeID domain.AggregateID  `json:"field_type_id"`
	IsInvariant bool                `json:"is_invariant"`
	IsRequired  bool                `json:"is_required"`
	IsIndexed   bool                `json:"is_indexed"`
	IsUnique    bool                `json:"is_unique"`
	UniqueName  domain.Identifier   `json:"unique_name"`
	DisplayName *domain.DisplayName `json:"display_name,omitempty"`
	Description *domain.Description `json:"description,omitempty"`
	Placeholder *domain.Placeholder `json:"placeholder,omitempty"`
}

// Equal reports structural equality; assigning an equal definition is a
// no-op that raises no event.
func (d FieldDefinition) Equal(other FieldDefinition) bool {
	if d.ID != other.ID ||
		d.FieldTypeID != other.FieldTypeID ||
		d.IsInvariant != other.IsInvariant ||
		d.IsRequired != other.IsRequired ||
		d.IsIndexed != other.IsIndexed ||
		d.IsUnique != other.IsUnique ||
		!d.UniqueName.Equal(other.UniqueName) {
		return false
	}
	return equalDisplayName(d.DisplayName, other.DisplayName) &&
		equalDescription(d.Description, other.Description) &&
		equalPlaceholder(d.Placeholder, other.Placeholder)
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

func equalPlaceholder(a, b *domain.Placeholder) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Value() == b.Value()
}
