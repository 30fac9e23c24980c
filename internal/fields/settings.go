package fields

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DataType enumerates the eight field kinds. A field type's data type is
// fixed at creation and never changes.
type DataType string

const (
	DataTypeBoolean        DataType = "boolean"
	DataTypeDateTime       DataType = "date_time"
	DataTypeNumber         DataType = "number"
	DataTypeRelatedContent DataType = "related_content"
	DataTypeRichText       DataType = "rich_text"
	DataTypeSelect         DataType = "select"
	DataTypeString         DataType = "string"
	DataTypeTags           DataType = "tags"
)

var (
	ErrSettingsBoundsInverted = errors.New("fields: minimum bound exceeds maximum bound")
	ErrSettingsPatternInvalid = errors.New("fields: pattern is not a valid regular expression")
	ErrSettingsOptionInvalid  = errors.New("fields: select option requires a non-empty text")
	ErrSettingsTargetRequired = errors.New("fields: related content settings require a content type id")
	ErrSettingsVariantCount   = errors.New("fields: exactly one settings variant must be set")
)

// Settings is the polymorphic specification attached to a field type. Exactly
// one concrete variant exists per DataType.
type Settings interface {
	DataType() DataType
}

// BooleanSettings carries no constraints; the value must parse as a boolean.
type BooleanSettings struct{}

func (BooleanSettings) DataType() DataType { return DataTypeBoolean }

// DateTimeSettings optionally bounds the accepted timestamp range.
type DateTimeSettings struct {
	MinimumValue *time.Time `json:"minimum_value,omitempty"`
	MaximumValue *time.Time `json:"maximum_value,omitempty"`
}

func NewDateTimeSettings(minimum, maximum *time.Time) (DateTimeSettings, error) {
	if minimum != nil && maximum != nil && minimum.After(*maximum) {
		return DateTimeSettings{}, ErrSettingsBoundsInverted
	}
	return DateTimeSettings{MinimumValue: minimum, MaximumValue: maximum}, nil
}

func (DateTimeSettings) DataType() DataType { return DataTypeDateTime }

// NumberSettings optionally bounds the accepted numeric range.
type NumberSettings struct {
	MinimumValue *float64 `json:"minimum_value,omitempty"`
	MaximumValue *float64 `json:"maximum_value,omitempty"`
}

func NewNumberSettings(minimum, maximum *float64) (NumberSettings, error) {
	if minimum != nil && maximum != nil && *minimum > *maximum {
		return NumberSettings{}, ErrSettingsBoundsInverted
	}
	return NumberSettings{MinimumValue: minimum, MaximumValue: maximum}, nil
}

func (NumberSettings) DataType() DataType { return DataTypeNumber }

// RelatedContentSettings points a field at content instances of one target
// content type. IsMultiple allows more than one reference per value.
type RelatedContentSettings struct {
	ContentTypeID uuid.UUID `json:"content_type_id"`
	IsMultiple    bool      `json:"is_multiple"`
}

func NewRelatedContentSettings(contentTypeID uuid.UUID, isMultiple bool) (RelatedContentSettings, error) {
	if contentTypeID == uuid.Nil {
		return RelatedContentSettings{}, ErrSettingsTargetRequired
	}
	return RelatedContentSettings{ContentTypeID: contentTypeID, IsMultiple: isMultiple}, nil
}

func (RelatedContentSettings) DataType() DataType { return DataTypeRelatedContent }

// RichTextSettings optionally bounds the character length of rich text.
type RichTextSettings struct {
	MinimumLength *int `json:"minimum_length,omitempty"`
	MaximumLength *int `json:"maximum_length,omitempty"`
}

func NewRichTextSettings(minimum, maximum *int) (RichTextSettings, error) {
	if minimum != nil && maximum != nil && *minimum > *maximum {
		return RichTextSettings{}, ErrSettingsBoundsInverted
	}
	return RichTextSettings{MinimumLength: minimum, MaximumLength: maximum}, nil
}

func (RichTextSettings) DataType() DataType { return DataTypeRichText }

// SelectOption is one configurable choice; values match against Value when
// present, falling back to Text.
type SelectOption struct {
	Text       string  `json:"text"`
	Value      *string `json:"value,omitempty"`
	IsDisabled bool    `json:"is_disabled"`
}

// Matches reports whether raw equals the option's value-or-text.
func (o SelectOption) Matches(raw string) bool {
	if o.Value != nil {
		return raw == *o.Value
	}
	return raw == o.Text
}

// SelectSettings constrains values to a configured option list.
type SelectSettings struct {
	IsMultiple bool           `json:"is_multiple"`
	Options    []SelectOption `json:"options,omitempty"`
}

func NewSelectSettings(isMultiple bool, options []SelectOption) (SelectSettings, error) {
	for _, opt := range options {
		if strings.TrimSpace(opt.Text) == "" {
			return SelectSettings{}, ErrSettingsOptionInvalid
		}
	}
	copied := make([]SelectOption, len(options))
	copy(copied, options)
	return SelectSettings{IsMultiple: isMultiple, Options: copied}, nil
}

func (SelectSettings) DataType() DataType { return DataTypeSelect }

// StringSettings optionally bounds length and enforces a regular expression.
type StringSettings struct {
	MinimumLength *int    `json:"minimum_length,omitempty"`
	MaximumLength *int    `json:"maximum_length,omitempty"`
	Pattern       *string `json:"pattern,omitempty"`
}

func NewStringSettings(minimum, maximum *int, pattern *string) (StringSettings, error) {
	if minimum != nil && maximum != nil && *minimum > *maximum {
		return StringSettings{}, ErrSettingsBoundsInverted
	}
	if pattern != nil {
		if _, err := regexp.Compile(*pattern); err != nil {
			return StringSettings{}, fmt.Errorf("%w: %v", ErrSettingsPatternInvalid, err)
		}
	}
	return StringSettings{MinimumLength: minimum, MaximumLength: maximum, Pattern: pattern}, nil
}

func (StringSettings) DataType() DataType { return DataTypeString }

// TagsSettings carries no constraints; the value must be a JSON array of tags.
type TagsSettings struct{}

func (TagsSettings) DataType() DataType { return DataTypeTags }

// SettingsPayload is the wire shape of the settings union: exactly one
// variant pointer must be set. It keeps events and command payloads flat and
// JSON-friendly while preserving the one-of rule.
type SettingsPayload struct {
	Boolean        *BooleanSettings        `json:"boolean,omitempty"`
	DateTime       *DateTimeSettings       `json:"date_time,omitempty"`
	Number         *NumberSettings         `json:"number,omitempty"`
	RelatedContent *RelatedContentSettings `json:"related_content,omitempty"`
	RichText       *RichTextSettings       `json:"rich_text,omitempty"`
	Select         *SelectSettings         `json:"select,omitempty"`
	String         *StringSettings         `json:"string,omitempty"`
	Tags           *TagsSettings           `json:"tags,omitempty"`
}

// NewSettingsPayload wraps a concrete variant into the union shape.
func NewSettingsPayload(settings Settings) SettingsPayload {
	payload := SettingsPayload{}
	switch s := settings.(type) {
	case BooleanSettings:
		payload.Boolean = &s
	case DateTimeSettings:
		payload.DateTime = &s
	case NumberSettings:
		payload.Number = &s
	case RelatedContentSettings:
		payload.RelatedContent = &s
	case RichTextSettings:
		payload.RichText = &s
	case SelectSettings:
		payload.Select = &s
	case StringSettings:
		payload.String = &s
	case TagsSettings:
		payload.Tags = &s
	}
	return payload
}

// Settings unwraps the union, rejecting payloads with zero or multiple
// variants set.
func (p SettingsPayload) Settings() (Settings, error) {
	var out Settings
	count := 0
	if p.Boolean != nil {
		out, count = *p.Boolean, count+1
	}
	if p.DateTime != nil {
		out, count = *p.DateTime, count+1
	}
	if p.Number != nil {
		out, count = *p.Number, count+1
	}
	if p.RelatedContent != nil {
		out, count = *p.RelatedContent, count+1
	}
	if p.RichText != nil {
		out, count = *p.RichText, count+1
	}
	if p.Select != nil {
		out, count = *p.Select, count+1
	}
	if p.String != nil {
		out, count = *p.String, count+1
	}
	if p.Tags != nil {
		out, count = *p.Tags, count+1
	}
	if count != 1 {
		return nil, ErrSettingsVariantCount
	}
	return out, nil
}

// SettingsEqual reports structural equality between two settings values.
func SettingsEqual(a, b Settings) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.DataType() != b.DataType() {
		return false
	}
	switch left := a.(type) {
	case BooleanSettings, TagsSettings:
		return true
	case DateTimeSettings:
		right := b.(DateTimeSettings)
		return equalTimePtr(left.MinimumValue, right.MinimumValue) &&
			equalTimePtr(left.MaximumValue, right.MaximumValue)
	case NumberSettings:
		right := b.(NumberSettings)
		return equalFloatPtr(left.MinimumValue, right.MinimumValue) &&
			equalFloatPtr(left.MaximumValue, right.MaximumValue)
	case RelatedContentSettings:
		right := b.(RelatedContentSettings)
		return left == right
	case RichTextSettings:
		right := b.(RichTextSettings)
		return equalIntPtr(left.MinimumLength, right.MinimumLength) &&
			equalIntPtr(left.MaximumLength, right.MaximumLength)
	case SelectSettings:
		right := b.(SelectSettings)
		if left.IsMultiple != right.IsMultiple || len(left.Options) != len(right.Options) {
			return false
		}
		for i, opt := range left.Options {
			other := right.Options[i]
			if opt.Text != other.Text || opt.IsDisabled != other.IsDisabled ||
				!equalStringPtr(opt.Value, other.Value) {
				return false
			}
		}
		return true
	case StringSettings:
		right := b.(StringSettings)
		return equalIntPtr(left.MinimumLength, right.MinimumLength) &&
			equalIntPtr(left.MaximumLength, right.MaximumLength) &&
			equalStringPtr(left.Pattern, right.Pattern)
	default:
		return false
	}
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalFloatPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
