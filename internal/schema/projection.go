package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-content-engine/internal/fields"
	"github.com/google/uuid"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var ErrProjectionValidation = errors.New("schema: document validation failed")

// ValidationIssue captures a single document validation failure.
type ValidationIssue struct {
	Location string
	Message  string
}

// DocumentValidationError surfaces projection validation issues with
// location-aware context.
type DocumentValidationError struct {
	Issues []ValidationIssue
	Cause  error
}

func (e *DocumentValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrProjectionValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimSpace(issue.Location)
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *DocumentValidationError) Unwrap() error {
	return ErrProjectionValidation
}

// Projection derives a portable JSON Schema document from a content type's
// field definitions, resolving each field's constraints through the supplied
// settings map (keyed by field type entity id). Fields whose settings are
// missing project as unconstrained properties.
func Projection(ct *ContentType, settings map[uuid.UUID]fields.Settings) map[string]any {
	properties := make(map[string]any)
	required := make([]string, 0)

	for _, field := range ct.Fields() {
		name := field.UniqueName.Value()
		property := projectField(field, settings[field.FieldTypeID.EntityID])
		properties[name] = property
		if field.IsRequired {
			required = append(required, name)
		}
	}

	document := map[string]any{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"title":                ct.UniqueName().Value(),
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if desc := ct.Description(); desc != nil {
		document["description"] = desc.Value()
	}
	if len(required) > 0 {
		document["required"] = required
	}
	return document
}

func projectField(field FieldDefinition, settings fields.Settings) map[string]any {
	property := projectSettings(settings)
	if field.Description != nil {
		property["description"] = field.Description.Value()
	}
	return property
}

func projectSettings(settings fields.Settings) map[string]any {
	switch s := settings.(type) {
	case fields.BooleanSettings:
		return map[string]any{"type": "boolean"}
	case fields.DateTimeSettings:
		return map[string]any{"type": "string", "format": "date-time"}
	case fields.NumberSettings:
		property := map[string]any{"type": "number"}
		if s.MinimumValue != nil {
			property["minimum"] = *s.MinimumValue
		}
		if s.MaximumValue != nil {
			property["maximum"] = *s.MaximumValue
		}
		return property
	case fields.StringSettings:
		property := map[string]any{"type": "string"}
		if s.MinimumLength != nil {
			property["minLength"] = *s.MinimumLength
		}
		if s.MaximumLength != nil {
			property["maxLength"] = *s.MaximumLength
		}
		if s.Pattern != nil {
			property["pattern"] = *s.Pattern
		}
		return property
	case fields.RichTextSettings:
		property := map[string]any{"type": "string"}
		if s.MinimumLength != nil {
			property["minLength"] = *s.MinimumLength
		}
		if s.MaximumLength != nil {
			property["maxLength"] = *s.MaximumLength
		}
		return property
	case fields.SelectSettings:
		values := make([]any, 0, len(s.Options))
		for _, opt := range s.Options {
			if opt.Value != nil {
				values = append(values, *opt.Value)
				continue
			}
			values = append(values, opt.Text)
		}
		choice := map[string]any{"type": "string"}
		if len(values) > 0 {
			choice["enum"] = values
		}
		if s.IsMultiple {
			return map[string]any{"type": "array", "items": choice, "uniqueItems": true}
		}
		return choice
	case fields.TagsSettings:
		return map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"uniqueItems": true,
		}
	case fields.RelatedContentSettings:
		reference := map[string]any{"type": "string", "format": "uuid"}
		if s.IsMultiple {
			return map[string]any{"type": "array", "items": reference, "uniqueItems": true}
		}
		return reference
	default:
		return map[string]any{}
	}
}

// CompileProjection compiles a projected document for repeated validation.
func CompileProjection(document map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(document)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
}

// ValidateDocument checks a document against a content type's projection.
func ValidateDocument(ct *ContentType, settings map[uuid.UUID]fields.Settings, document map[string]any) error {
	compiled, err := CompileProjection(Projection(ct, settings))
	if err != nil {
		return err
	}
	if document == nil {
		document = map[string]any{}
	}
	if err := compiled.Validate(document); err != nil {
		return &DocumentValidationError{
			Issues: collectValidationIssues(err),
			Cause:  err,
		}
	}
	return nil
}

func collectValidationIssues(err error) []ValidationIssue {
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) || validationErr == nil {
		return []ValidationIssue{{Message: err.Error()}}
	}

	issues := []ValidationIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, ValidationIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(validationErr)
	return issues
}
