package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-content-engine/internal/fields"
	"github.com/goliatone/go-content-engine/internal/schema"
	"github.com/google/uuid"
)

// Validation failure codes raised at the locale level, on top of the
// per-value codes from the fields package.
const (
	FailureCodeUnknownField    = "unknown_field"
	FailureCodeValueRequired   = "value_required"
	FailureCodeWrongSlot       = "wrong_slot"
	FailureCodeMissingSettings = "missing_settings"
)

var ErrLocaleInvalid = errors.New("content: locale validation failed")

// FieldFailure groups every failure raised for one field of a locale.
type FieldFailure struct {
	FieldID   uuid.UUID
	FieldName string
	Failures  []fields.ValidationFailure
}

// LocaleValidationError aggregates all field failures of one locale so a
// request surfaces every problem in a single pass instead of stopping at the
// first.
type LocaleValidationError struct {
	Fields []FieldFailure
}

func (e *LocaleValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		codes := make([]string, 0, len(field.Failures))
		for _, failure := range field.Failures {
			codes = append(codes, failure.Code)
		}
		label := field.FieldName
		if label == "" {
			label = field.FieldID.String()
		}
		parts = append(parts, fmt.Sprintf("%s: %s", label, strings.Join(codes, ", ")))
	}
	return "content: locale validation failed: " + strings.Join(parts, "; ")
}

func (e *LocaleValidationError) Unwrap() error { return ErrLocaleInvalid }

// Validator checks locale payloads against their content type's field
// definitions before any event is raised. It is pure apart from the
// related-content lookup.
type Validator struct {
	resolver fields.ContentTypeResolver
}

// NewValidator builds a validator. The resolver may be nil when no
// related-content fields exist; validation then fails fast if one shows up.
func NewValidator(resolver fields.ContentTypeResolver) *Validator {
	return &Validator{resolver: resolver}
}

// ValidateLocale validates one locale slot against the content type. A nil
// languageID targets the invariant slot. Settings are looked up per field
// type entity id; fields are slot-gated: invariant fields carry values in the
// invariant slot, localizable fields in language slots.
func (v *Validator) ValidateLocale(ctx context.Context, ct *schema.ContentType, settings map[uuid.UUID]fields.Settings, locale Locale, languageID *uuid.UUID) error {
	invariantSlot := languageID == nil
	failures := make([]FieldFailure, 0)

	for fieldID := range locale.FieldValues {
		if _, _, ok := ct.FieldByID(fieldID); !ok {
			failures = append(failures, FieldFailure{
				FieldID: fieldID,
				Failures: []fields.ValidationFailure{{
					Code:    FailureCodeUnknownField,
					Message: "field does not exist on the content type",
				}},
			})
		}
	}

	for _, field := range ct.Fields() {
		slotMatches := field.IsInvariant == invariantSlot || ct.IsInvariant()
		value, present := locale.FieldValue(field.ID)

		if present && !slotMatches {
			failures = append(failures, FieldFailure{
				FieldID:   field.ID,
				FieldName: field.UniqueName.Value(),
				Failures: []fields.ValidationFailure{{
					Code:           FailureCodeWrongSlot,
					Message:        slotMessage(field.IsInvariant),
					AttemptedValue: value.Value(),
				}},
			})
			continue
		}
		if !present {
			if field.IsRequired && slotMatches {
				failures = append(failures, FieldFailure{
					FieldID:   field.ID,
					FieldName: field.UniqueName.Value(),
					Failures: []fields.ValidationFailure{{
						Code:    FailureCodeValueRequired,
						Message: "a value is required",
					}},
				})
			}
			continue
		}

		fieldSettings, ok := settings[field.FieldTypeID.EntityID]
		if !ok {
			failures = append(failures, FieldFailure{
				FieldID:   field.ID,
				FieldName: field.UniqueName.Value(),
				Failures: []fields.ValidationFailure{{
					Code:    FailureCodeMissingSettings,
					Message: "no settings resolved for the field's type",
				}},
			})
			continue
		}

		valueFailures, err := fields.ValidateValue(ctx, value, fieldSettings, v.resolver)
		if err != nil {
			return err
		}
		if len(valueFailures) > 0 {
			failures = append(failures, FieldFailure{
				FieldID:   field.ID,
				FieldName: field.UniqueName.Value(),
				Failures:  valueFailures,
			})
		}
	}

	if len(failures) > 0 {
		return &LocaleValidationError{Fields: failures}
	}
	return nil
}

func slotMessage(isInvariant bool) string {
	if isInvariant {
		return "invariant fields carry their value in the invariant locale"
	}
	return "localizable fields carry their values in language locales"
}
