package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	defaultNamePattern = regexp.MustCompile(`^[\w.-]+$`)
	identifierPattern  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)
)

// NamePolicy captures the realm-specific rules applied to unique names. The
// tenant context supplies one; DefaultNamePolicy covers realm-less usage.
type NamePolicy struct {
	MaxLength int
	Pattern   *regexp.Regexp
}

// DefaultNamePolicy allows word characters, dots and dashes up to 255 runes.
func DefaultNamePolicy() NamePolicy {
	return NamePolicy{MaxLength: 255, Pattern: defaultNamePattern}
}

func (p NamePolicy) maxLength() int {
	if p.MaxLength <= 0 {
		return 255
	}
	return p.MaxLength
}

func (p NamePolicy) pattern() *regexp.Regexp {
	if p.Pattern == nil {
		return defaultNamePattern
	}
	return p.Pattern
}

// UniqueName is a realm-scoped, case-insensitively unique name for an
// aggregate. Uniqueness comparisons use the Normalized form.
type UniqueName struct {
	value string
}

// NewUniqueName validates value against the supplied policy.
func NewUniqueName(policy NamePolicy, value string) (UniqueName, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return UniqueName{}, fmt.Errorf("unique name: %w", ErrValueRequired)
	}
	if len([]rune(trimmed)) > policy.maxLength() {
		return UniqueName{}, fmt.Errorf("unique name %q: %w", trimmed, ErrValueTooLong)
	}
	if !policy.pattern().MatchString(trimmed) {
		return UniqueName{}, fmt.Errorf("unique name %q: %w", trimmed, ErrValueInvalid)
	}
	return UniqueName{value: trimmed}, nil
}

func (n UniqueName) Value() string  { return n.value }
func (n UniqueName) String() string { return n.value }
func (n UniqueName) IsZero() bool   { return n.value == "" }

// Normalized returns the case-folded form used for uniqueness checks.
func (n UniqueName) Normalized() string { return NormalizeName(n.value) }

func (n UniqueName) Equal(other UniqueName) bool { return n.value == other.value }

func (n UniqueName) MarshalJSON() ([]byte, error) { return json.Marshal(n.value) }

// UnmarshalJSON restores a persisted value without re-validation; events are
// the source of truth once appended.
func (n *UniqueName) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &n.value)
}

// NormalizeName case-folds and trims a raw name the same way UniqueName does.
func NormalizeName(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// Identifier is a code-safe name (letters, digits, underscore, dash; must
// start with a letter or underscore) used for field definitions inside a
// content type.
type Identifier struct {
	value string
}

// NewIdentifier validates value as an identifier of at most 255 runes.
func NewIdentifier(value string) (Identifier, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Identifier{}, fmt.Errorf("identifier: %w", ErrValueRequired)
	}
	if len([]rune(trimmed)) > 255 {
		return Identifier{}, fmt.Errorf("identifier %q: %w", trimmed, ErrValueTooLong)
	}
	if !identifierPattern.MatchString(trimmed) {
		return Identifier{}, fmt.Errorf("identifier %q: %w", trimmed, ErrValueInvalid)
	}
	return Identifier{value: trimmed}, nil
}

func (i Identifier) Value() string      { return i.value }
func (i Identifier) String() string     { return i.value }
func (i Identifier) IsZero() bool       { return i.value == "" }
func (i Identifier) Normalized() string { return NormalizeName(i.value) }

func (i Identifier) Equal(other Identifier) bool { return i.value == other.value }

func (i Identifier) MarshalJSON() ([]byte, error) { return json.Marshal(i.value) }

func (i *Identifier) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &i.value)
}

// DisplayName is an optional human-facing label capped at 255 runes.
type DisplayName struct {
	value string
}

func NewDisplayName(value string) (DisplayName, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return DisplayName{}, fmt.Errorf("display name: %w", ErrValueRequired)
	}
	if len([]rune(trimmed)) > 255 {
		return DisplayName{}, fmt.Errorf("display name %q: %w", trimmed, ErrValueTooLong)
	}
	return DisplayName{value: trimmed}, nil
}

// OptionalDisplayName maps empty input to nil instead of an error.
func OptionalDisplayName(value *string) (*DisplayName, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	name, err := NewDisplayName(*value)
	if err != nil {
		return nil, err
	}
	return &name, nil
}

func (d DisplayName) Value() string  { return d.value }
func (d DisplayName) String() string { return d.value }

func (d DisplayName) MarshalJSON() ([]byte, error) { return json.Marshal(d.value) }

func (d *DisplayName) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &d.value)
}

// Description is optional free-form text; only surrounding whitespace is
// rejected, length is unconstrained.
type Description struct {
	value string
}

func NewDescription(value string) (Description, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Description{}, fmt.Errorf("description: %w", ErrValueRequired)
	}
	return Description{value: trimmed}, nil
}

// OptionalDescription maps empty input to nil instead of an error.
func OptionalDescription(value *string) (*Description, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	desc, err := NewDescription(*value)
	if err != nil {
		return nil, err
	}
	return &desc, nil
}

func (d Description) Value() string  { return d.value }
func (d Description) String() string { return d.value }

func (d Description) MarshalJSON() ([]byte, error) { return json.Marshal(d.value) }

func (d *Description) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &d.value)
}

// Placeholder is the optional input hint shown for a field, capped at 255 runes.
type Placeholder struct {
	value string
}

func NewPlaceholder(value string) (Placeholder, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Placeholder{}, fmt.Errorf("placeholder: %w", ErrValueRequired)
	}
	if len([]rune(trimmed)) > 255 {
		return Placeholder{}, fmt.Errorf("placeholder %q: %w", trimmed, ErrValueTooLong)
	}
	return Placeholder{value: trimmed}, nil
}

// OptionalPlaceholder maps empty input to nil instead of an error.
func OptionalPlaceholder(value *string) (*Placeholder, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	ph, err := NewPlaceholder(*value)
	if err != nil {
		return nil, err
	}
	return &ph, nil
}

func (p Placeholder) Value() string  { return p.value }
func (p Placeholder) String() string { return p.value }

func (p Placeholder) MarshalJSON() ([]byte, error) { return json.Marshal(p.value) }

func (p *Placeholder) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &p.value)
}

// FieldValue is the raw string payload stored for a field. Values are
// validated against the field type settings at write time, not here; the
// wrapper only guarantees trimmed, non-empty text.
type FieldValue struct {
	value string
}

func NewFieldValue(value string) (FieldValue, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return FieldValue{}, fmt.Errorf("field value: %w", ErrValueRequired)
	}
	return FieldValue{value: trimmed}, nil
}

func (v FieldValue) Value() string  { return v.value }
func (v FieldValue) String() string { return v.value }
func (v FieldValue) IsZero() bool   { return v.value == "" }

func (v FieldValue) Equal(other FieldValue) bool { return v.value == other.value }

func (v FieldValue) MarshalJSON() ([]byte, error) { return json.Marshal(v.value) }

func (v *FieldValue) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &v.value)
}

// StringChange distinguishes "leave untouched" (nil wrapper) from "clear the
// value" (wrapper holding nil) in partial update payloads and events.
type StringChange struct {
	Value *string `json:"value"`
}

// ChangeTo wraps a concrete replacement value.
func ChangeTo(value string) *StringChange {
	return &StringChange{Value: &value}
}

// Clear marks the target value for removal.
func Clear() *StringChange {
	return &StringChange{}
}
