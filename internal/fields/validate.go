package fields

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/goliatone/go-content-engine/internal/domain"
	"github.com/google/uuid"
)

// Failure codes emitted by the field value validators.
const (
	FailureCodeInvalidBoolean     = "invalid_boolean"
	FailureCodeInvalidDateTime    = "invalid_date_time"
	FailureCodeInvalidNumber      = "invalid_number"
	FailureCodeValueBelowMinimum  = "value_below_minimum"
	FailureCodeValueAboveMaximum  = "value_above_maximum"
	FailureCodeValueTooShort      = "value_too_short"
	FailureCodeValueTooLong       = "value_too_long"
	FailureCodePatternMismatch    = "pattern_mismatch"
	FailureCodeInvalidList        = "invalid_list"
	FailureCodeEmptyList          = "empty_list"
	FailureCodeMultipleNotAllowed = "multiple_values_not_allowed"
	FailureCodeUnknownOption      = "unknown_option"
	FailureCodeInvalidUUID        = "invalid_uuid"
	FailureCodeContentNotFound    = "related_content_not_found"
	FailureCodeWrongContentType   = "related_content_wrong_type"
)

// ValidationFailure describes one rule violation for a raw field value.
// Validators never throw on bad data; they aggregate failures so an entire
// locale's field map can be pre-validated in one pass.
type ValidationFailure struct {
	Code           string `json:"code"`
	Message        string `json:"message"`
	AttemptedValue string `json:"attempted_value"`
}

func failure(code, message, attempted string) ValidationFailure {
	return ValidationFailure{Code: code, Message: message, AttemptedValue: attempted}
}

// ContentTypeResolver resolves content ids to their content type ids. Used by
// the related-content validator; unresolved ids are reported as failures.
type ContentTypeResolver interface {
	FindContentTypeIDs(ctx context.Context, contentIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error)
}

// ValidateValue checks a raw value against the supplied settings and returns
// every rule violation found. The error return is reserved for infrastructure
// faults (related-content lookups); rule violations never produce an error.
func ValidateValue(ctx context.Context, value domain.FieldValue, settings Settings, resolver ContentTypeResolver) ([]ValidationFailure, error) {
	switch s := settings.(type) {
	case BooleanSettings:
		return validateBoolean(value), nil
	case DateTimeSettings:
		return validateDateTime(value, s), nil
	case NumberSettings:
		return validateNumber(value, s), nil
	case RichTextSettings:
		return validateRichText(value, s), nil
	case SelectSettings:
		return validateSelect(value, s), nil
	case StringSettings:
		return validateString(value, s), nil
	case TagsSettings:
		return validateTags(value), nil
	case RelatedContentSettings:
		return validateRelatedContent(ctx, value, s, resolver)
	default:
		return nil, fmt.Errorf("fields: unsupported settings type %T", settings)
	}
}

func validateBoolean(value domain.FieldValue) []ValidationFailure {
	if _, err := strconv.ParseBool(value.Value()); err != nil {
		return []ValidationFailure{failure(FailureCodeInvalidBoolean, "value is not a boolean", value.Value())}
	}
	return nil
}

func validateDateTime(value domain.FieldValue, settings DateTimeSettings) []ValidationFailure {
	parsed, err := parseDateTime(value.Value())
	if err != nil {
		return []ValidationFailure{failure(FailureCodeInvalidDateTime, "value is not a date-time", value.Value())}
	}

	var failures []ValidationFailure
	if settings.MinimumValue != nil && parsed.Before(*settings.MinimumValue) {
		failures = append(failures, failure(FailureCodeValueBelowMinimum,
			fmt.Sprintf("value precedes the minimum %s", settings.MinimumValue.Format(time.RFC3339)), value.Value()))
	}
	if settings.MaximumValue != nil && parsed.After(*settings.MaximumValue) {
		failures = append(failures, failure(FailureCodeValueAboveMaximum,
			fmt.Sprintf("value exceeds the maximum %s", settings.MaximumValue.Format(time.RFC3339)), value.Value()))
	}
	return failures
}

func parseDateTime(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("fields: unparseable date-time %q", raw)
}

func validateNumber(value domain.FieldValue, settings NumberSettings) []ValidationFailure {
	parsed, err := strconv.ParseFloat(value.Value(), 64)
	if err != nil {
		return []ValidationFailure{failure(FailureCodeInvalidNumber, "value is not a number", value.Value())}
	}

	var failures []ValidationFailure
	if settings.MinimumValue != nil && parsed < *settings.MinimumValue {
		failures = append(failures, failure(FailureCodeValueBelowMinimum,
			fmt.Sprintf("value is below the minimum %v", *settings.MinimumValue), value.Value()))
	}
	if settings.MaximumValue != nil && parsed > *settings.MaximumValue {
		failures = append(failures, failure(FailureCodeValueAboveMaximum,
			fmt.Sprintf("value is above the maximum %v", *settings.MaximumValue), value.Value()))
	}
	return failures
}

func validateLength(raw string, minimum, maximum *int) []ValidationFailure {
	length := len([]rune(raw))
	var failures []ValidationFailure
	if minimum != nil && length < *minimum {
		failures = append(failures, failure(FailureCodeValueTooShort,
			fmt.Sprintf("value is shorter than %d characters", *minimum), raw))
	}
	if maximum != nil && length > *maximum {
		failures = append(failures, failure(FailureCodeValueTooLong,
			fmt.Sprintf("value is longer than %d characters", *maximum), raw))
	}
	return failures
}

func validateRichText(value domain.FieldValue, settings RichTextSettings) []ValidationFailure {
	return validateLength(value.Value(), settings.MinimumLength, settings.MaximumLength)
}

func validateString(value domain.FieldValue, settings StringSettings) []ValidationFailure {
	failures := validateLength(value.Value(), settings.MinimumLength, settings.MaximumLength)
	if settings.Pattern != nil {
		// The pattern was compiled at settings construction; a failure here
		// means the settings were restored from a stream written by an older
		// build, so the value is reported rather than dropped silently.
		re, err := regexp.Compile(*settings.Pattern)
		if err != nil || !re.MatchString(value.Value()) {
			failures = append(failures, failure(FailureCodePatternMismatch,
				fmt.Sprintf("value does not match the pattern %q", *settings.Pattern), value.Value()))
		}
	}
	return failures
}

func parseStringList(raw string) ([]string, bool) {
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, false
	}
	return items, true
}

func validateSelect(value domain.FieldValue, settings SelectSettings) []ValidationFailure {
	items, ok := parseStringList(value.Value())
	if !ok {
		return []ValidationFailure{failure(FailureCodeInvalidList, "value is not a JSON array of strings", value.Value())}
	}
	if len(items) == 0 {
		return []ValidationFailure{failure(FailureCodeEmptyList, "at least one option is required", value.Value())}
	}

	var failures []ValidationFailure
	if len(items) > 1 && !settings.IsMultiple {
		failures = append(failures, failure(FailureCodeMultipleNotAllowed, "only one option is allowed", value.Value()))
	}
	for _, item := range items {
		if !matchesAnyOption(item, settings.Options) {
			failures = append(failures, failure(FailureCodeUnknownOption,
				fmt.Sprintf("option %q is not configured", item), item))
		}
	}
	return failures
}

func matchesAnyOption(raw string, options []SelectOption) bool {
	for _, opt := range options {
		if opt.Matches(raw) {
			return true
		}
	}
	return false
}

func validateTags(value domain.FieldValue) []ValidationFailure {
	items, ok := parseStringList(value.Value())
	if !ok {
		return []ValidationFailure{failure(FailureCodeInvalidList, "value is not a JSON array of strings", value.Value())}
	}
	if len(items) == 0 {
		return []ValidationFailure{failure(FailureCodeEmptyList, "at least one tag is required", value.Value())}
	}
	return nil
}

func validateRelatedContent(ctx context.Context, value domain.FieldValue, settings RelatedContentSettings, resolver ContentTypeResolver) ([]ValidationFailure, error) {
	items, ok := parseStringList(value.Value())
	if !ok {
		return []ValidationFailure{failure(FailureCodeInvalidList, "value is not a JSON array of UUIDs", value.Value())}, nil
	}
	if len(items) == 0 {
		return []ValidationFailure{failure(FailureCodeEmptyList, "at least one content id is required", value.Value())}, nil
	}

	var failures []ValidationFailure
	if len(items) > 1 && !settings.IsMultiple {
		failures = append(failures, failure(FailureCodeMultipleNotAllowed, "only one content id is allowed", value.Value()))
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		id, err := uuid.Parse(item)
		if err != nil {
			failures = append(failures, failure(FailureCodeInvalidUUID,
				fmt.Sprintf("%q is not a valid UUID", item), item))
			continue
		}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return failures, nil
	}

	resolved, err := resolver.FindContentTypeIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fields: resolve related content: %w", err)
	}

	// All problems surface in one pass: unresolved ids and type mismatches
	// are both reported without short-circuiting.
	for _, id := range ids {
		contentTypeID, found := resolved[id]
		switch {
		case !found:
			failures = append(failures, failure(FailureCodeContentNotFound,
				fmt.Sprintf("content %s does not exist", id), id.String()))
		case contentTypeID != settings.ContentTypeID:
			failures = append(failures, failure(FailureCodeWrongContentType,
				fmt.Sprintf("content %s is not of content type %s", id, settings.ContentTypeID), id.String()))
		}
	}
	return failures, nil
}
