package schema

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-content-engine/internal/domain"
	"github.com/goliatone/go-content-engine/internal/eventstore"
)

func mustUniqueName(t *testing.T, value string) domain.UniqueName {
	t.Helper()
	name, err := domain.NewUniqueName(domain.DefaultNamePolicy(), value)
	if err != nil {
		t.Fatalf("NewUniqueName(%q): %v", value, err)
	}
	return name
}

func mustIdentifier(t *testing.T, value string) domain.Identifier {
	t.Helper()
	id, err := domain.NewIdentifier(value)
	if err != nil {
		t.Fatalf("NewIdentifier(%q): %v", value, err)
	}
	return id
}

func testField(t *testing.T, realm uuid.UUID, name string) FieldDefinition {
	t.Helper()
	return FieldDefinition{
		ID:          uuid.New(),
		FieldTypeID: domain.NewAggregateID(realm, uuid.New()),
		UniqueName:  mustIdentifier(t, name),
	}
}

func newTestContentType(t *testing.T, realm uuid.UUID, name string) *ContentType {
	t.Helper()
	ct, err := Create(domain.NewAggregateID(realm, uuid.New()), mustUniqueName(t, name), false, uuid.New())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return ct
}

func fieldNames(ct *ContentType) []string {
	fields := ct.Fields()
	names := make([]string, 0, len(fields))
	for _, field := range fields {
		names = append(names, field.UniqueName.Value())
	}
	return names
}

func assertOrder(t *testing.T, ct *ContentType, want ...string) {
	t.Helper()
	got := fieldNames(ct)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %q, got %v", i, want[i], got)
		}
	}
	for i, field := range ct.Fields() {
		if _, ordinal, ok := ct.FieldByID(field.ID); !ok || ordinal != i {
			t.Fatalf("field %s: expected ordinal %d, got %d (ok=%v)", field.UniqueName, i, ordinal, ok)
		}
	}
}

func TestContentTypeFieldOrdinals(t *testing.T) {
	realm := uuid.New()
	actor := uuid.New()
	ct := newTestContentType(t, realm, "article")

	title := testField(t, realm, "title")
	body := testField(t, realm, "body")
	tags := testField(t, realm, "tags")
	for _, field := range []FieldDefinition{title, body, tags} {
		if err := ct.SetField(field, actor); err != nil {
			t.Fatalf("SetField(%s): %v", field.UniqueName, err)
		}
	}
	assertOrder(t, ct, "title", "body", "tags")

	// Replacing by id keeps the slot, even under a new name.
	renamed := body
	renamed.UniqueName = mustIdentifier(t, "summary")
	if err := ct.SetField(renamed, actor); err != nil {
		t.Fatalf("SetField replace: %v", err)
	}
	assertOrder(t, ct, "title", "summary", "tags")
	if _, _, ok := ct.FieldByName("body"); ok {
		t.Fatal("stale name should be released after rename")
	}

	if !ct.RemoveField(title.ID, actor) {
		t.Fatal("RemoveField should report true for a known field")
	}
	assertOrder(t, ct, "summary", "tags")
	if ct.RemoveField(title.ID, actor) {
		t.Fatal("removing twice should report false")
	}

	if err := ct.SwitchFields(renamed.ID, tags.ID, actor); err != nil {
		t.Fatalf("SwitchFields: %v", err)
	}
	assertOrder(t, ct, "tags", "summary")
}

func TestContentTypeSetFieldIdempotent(t *testing.T) {
	realm := uuid.New()
	actor := uuid.New()
	ct := newTestContentType(t, realm, "article")
	field := testField(t, realm, "title")

	if err := ct.SetField(field, actor); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	before := len(ct.Pending())
	if err := ct.SetField(field, actor); err != nil {
		t.Fatalf("SetField repeat: %v", err)
	}
	if got := len(ct.Pending()); got != before {
		t.Fatalf("equal definition should raise nothing, got %d new events", got-before)
	}
}

func TestContentTypeFieldNameConflict(t *testing.T) {
	realm := uuid.New()
	actor := uuid.New()
	ct := newTestContentType(t, realm, "article")

	first := testField(t, realm, "title")
	if err := ct.SetField(first, actor); err != nil {
		t.Fatalf("SetField: %v", err)
	}

	clash := testField(t, realm, "Title")
	err := ct.SetField(clash, actor)
	var conflict *FieldNameConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected FieldNameConflictError, got %v", err)
	}
	if conflict.ConflictingID != first.ID {
		t.Fatalf("conflict should name the holder %s, got %s", first.ID, conflict.ConflictingID)
	}
}

func TestContentTypeFieldRealmMismatch(t *testing.T) {
	actor := uuid.New()
	ct := newTestContentType(t, uuid.New(), "article")

	foreign := testField(t, uuid.New(), "title")
	err := ct.SetField(foreign, actor)
	var mismatch *domain.RealmMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected RealmMismatchError, got %v", err)
	}
}

func TestContentTypeInvariantRules(t *testing.T) {
	realm := uuid.New()
	actor := uuid.New()

	invariant, err := Create(domain.NewAggregateID(realm, uuid.New()), mustUniqueName(t, "settings"), true, actor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := invariant.SetField(testField(t, realm, "title"), actor); !errors.Is(err, ErrFieldMustBeInvariant) {
		t.Fatalf("expected ErrFieldMustBeInvariant, got %v", err)
	}
	field := testField(t, realm, "title")
	field.IsInvariant = true
	if err := invariant.SetField(field, actor); err != nil {
		t.Fatalf("SetField invariant: %v", err)
	}

	variant := newTestContentType(t, realm, "article")
	if err := variant.SetField(testField(t, realm, "body"), actor); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if err := variant.SetInvariant(true); !errors.Is(err, ErrFieldsNotInvariant) {
		t.Fatalf("expected ErrFieldsNotInvariant, got %v", err)
	}
}

func TestContentTypeResolveField(t *testing.T) {
	realm := uuid.New()
	actor := uuid.New()
	ct := newTestContentType(t, realm, "article")
	field := testField(t, realm, "title")
	if err := ct.SetField(field, actor); err != nil {
		t.Fatalf("SetField: %v", err)
	}

	if got := ct.ResolveField(field.ID.String()); got == nil || got.ID != field.ID {
		t.Fatalf("resolve by id failed: %#v", got)
	}
	if got := ct.ResolveField("TITLE"); got == nil || got.ID != field.ID {
		t.Fatalf("resolve by name should be case-insensitive: %#v", got)
	}
	if got := ct.ResolveField(uuid.New().String()); got != nil {
		t.Fatalf("unknown id should resolve to nil, got %#v", got)
	}
	if got := ct.ResolveField("missing"); got != nil {
		t.Fatalf("unknown name should resolve to nil, got %#v", got)
	}
}

func TestContentTypeReplay(t *testing.T) {
	ctx := context.Background()
	realm := uuid.New()
	actor := uuid.New()
	repo := NewRepository(eventstore.NewMemoryStore())

	ct := newTestContentType(t, realm, "article")
	for _, name := range []string{"title", "body"} {
		if err := ct.SetField(testField(t, realm, name), actor); err != nil {
			t.Fatalf("SetField(%s): %v", name, err)
		}
	}
	if err := repo.Save(ctx, ct); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := repo.Get(ctx, ct.ID())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	assertOrder(t, loaded, "title", "body")
	if loaded.Version() != ct.Version() {
		t.Fatalf("replay version mismatch: %d vs %d", loaded.Version(), ct.Version())
	}
}
