package schema

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-content-engine/internal/fields"
)

type projectionFixture struct {
	ct       *ContentType
	settings map[uuid.UUID]fields.Settings
}

func newProjectionFixture(t *testing.T) projectionFixture {
	t.Helper()
	realm := uuid.New()
	actor := uuid.New()
	ct := newTestContentType(t, realm, "article")

	stringSettings, err := fields.NewStringSettings(ptr(3), ptr(80), nil)
	if err != nil {
		t.Fatalf("NewStringSettings: %v", err)
	}
	numberSettings, err := fields.NewNumberSettings(ptr(0.0), ptr(5.0))
	if err != nil {
		t.Fatalf("NewNumberSettings: %v", err)
	}
	selectSettings, err := fields.NewSelectSettings(false, []fields.SelectOption{
		{Text: "Draft", Value: ptr("draft")},
		{Text: "Final"},
	})
	if err != nil {
		t.Fatalf("NewSelectSettings: %v", err)
	}

	settings := map[uuid.UUID]fields.Settings{}
	add := func(name string, s fields.Settings, required bool) {
		field := testField(t, realm, name)
		field.IsRequired = required
		if err := ct.SetField(field, actor); err != nil {
			t.Fatalf("SetField(%s): %v", name, err)
		}
		settings[field.FieldTypeID.EntityID] = s
	}
	add("title", stringSettings, true)
	add("rating", numberSettings, false)
	add("stage", selectSettings, false)
	add("tags", fields.TagsSettings{}, false)

	return projectionFixture{ct: ct, settings: settings}
}

func TestProjectionShape(t *testing.T) {
	fx := newProjectionFixture(t)
	document := Projection(fx.ct, fx.settings)

	if document["title"] != "article" || document["type"] != "object" {
		t.Fatalf("unexpected document envelope: %#v", document)
	}
	if document["additionalProperties"] != false {
		t.Fatal("projection must reject unknown properties")
	}
	required, ok := document["required"].([]string)
	if !ok || len(required) != 1 || required[0] != "title" {
		t.Fatalf("required list should carry only title: %#v", document["required"])
	}

	properties := document["properties"].(map[string]any)
	title := properties["title"].(map[string]any)
	if title["type"] != "string" || title["minLength"] != 3 || title["maxLength"] != 80 {
		t.Fatalf("string bounds lost: %#v", title)
	}
	rating := properties["rating"].(map[string]any)
	if rating["type"] != "number" || rating["minimum"] != 0.0 || rating["maximum"] != 5.0 {
		t.Fatalf("number bounds lost: %#v", rating)
	}
	stage := properties["stage"].(map[string]any)
	enum, ok := stage["enum"].([]any)
	if !ok || len(enum) != 2 || enum[0] != "draft" || enum[1] != "Final" {
		t.Fatalf("select enum should prefer explicit values: %#v", stage)
	}
	tags := properties["tags"].(map[string]any)
	if tags["type"] != "array" || tags["uniqueItems"] != true {
		t.Fatalf("tags should project as a unique string array: %#v", tags)
	}
}

func TestProjectionMissingSettingsUnconstrained(t *testing.T) {
	realm := uuid.New()
	actor := uuid.New()
	ct := newTestContentType(t, realm, "article")
	if err := ct.SetField(testField(t, realm, "anything"), actor); err != nil {
		t.Fatalf("SetField: %v", err)
	}

	document := Projection(ct, nil)
	properties := document["properties"].(map[string]any)
	property := properties["anything"].(map[string]any)
	if len(property) != 0 {
		t.Fatalf("missing settings should project unconstrained: %#v", property)
	}
}

func TestCompileProjection(t *testing.T) {
	fx := newProjectionFixture(t)
	compiled, err := CompileProjection(Projection(fx.ct, fx.settings))
	if err != nil {
		t.Fatalf("CompileProjection: %v", err)
	}
	if compiled == nil {
		t.Fatal("expected a compiled schema")
	}
}

func TestValidateDocument(t *testing.T) {
	fx := newProjectionFixture(t)

	err := ValidateDocument(fx.ct, fx.settings, map[string]any{
		"title":  "Structured content",
		"rating": 4.5,
		"stage":  "draft",
		"tags":   []any{"go", "cms"},
	})
	if err != nil {
		t.Fatalf("valid document rejected: %v", err)
	}

	err = ValidateDocument(fx.ct, fx.settings, map[string]any{
		"title":   "ab",
		"stage":   "unknown",
		"surplus": true,
	})
	var docErr *DocumentValidationError
	if !errors.As(err, &docErr) {
		t.Fatalf("expected DocumentValidationError, got %v", err)
	}
	if !errors.Is(err, ErrProjectionValidation) {
		t.Fatalf("validation error should unwrap to the sentinel, got %v", err)
	}
	if len(docErr.Issues) == 0 {
		t.Fatalf("issues should be collected: %#v", docErr)
	}
}

func TestValidateDocumentNil(t *testing.T) {
	fx := newProjectionFixture(t)
	if err := ValidateDocument(fx.ct, fx.settings, nil); err == nil {
		t.Fatal("nil document should miss the required title")
	}
}
