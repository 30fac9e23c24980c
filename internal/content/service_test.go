package content

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-content-engine/internal/domain"
	"github.com/goliatone/go-content-engine/internal/eventstore"
	"github.com/goliatone/go-content-engine/internal/fields"
	"github.com/goliatone/go-content-engine/internal/schema"
)

type serviceFixture struct {
	svc   Service
	index *MemoryIndex

	realm uuid.UUID
	actor uuid.UUID

	contentTypeID   uuid.UUID
	invariantTypeID uuid.UUID
	titleFieldID    uuid.UUID
	ratingFieldID   uuid.UUID
	settingsFieldID uuid.UUID
}

// newServiceFixture wires the full write path: two field types, a variant
// "blog-article" content type (required localizable title, optional invariant
// rating) and an invariant "site-settings" one.
func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	ctx := context.Background()
	fx := &serviceFixture{realm: uuid.New(), actor: uuid.New()}
	clock := func() time.Time { return time.Unix(1700000000, 0) }

	fieldsRepo := fields.NewRepository(eventstore.NewMemoryStore(), fields.WithClock(clock))
	fieldsIndex := fields.NewMemoryNameIndex()
	fieldsSvc := fields.NewService(fields.NewManager(fieldsRepo, fieldsIndex, fields.WithNameIndexer(fieldsIndex)))

	newFieldType := func(name string, settings fields.Settings) uuid.UUID {
		result, err := fieldsSvc.CreateOrReplace(ctx, fields.CreateOrReplaceRequest{
			RealmID:    fx.realm,
			UniqueName: name,
			Settings:   fields.NewSettingsPayload(settings),
			ActorID:    fx.actor,
		})
		if err != nil {
			t.Fatalf("create field type %s: %v", name, err)
		}
		return result.FieldType.ID
	}
	stringSettings, err := fields.NewStringSettings(nil, nil, nil)
	if err != nil {
		t.Fatalf("NewStringSettings: %v", err)
	}
	numberSettings, err := fields.NewNumberSettings(nil, nil)
	if err != nil {
		t.Fatalf("NewNumberSettings: %v", err)
	}
	textTypeID := newFieldType("text", stringSettings)
	numberTypeID := newFieldType("number", numberSettings)

	schemaRepo := schema.NewRepository(eventstore.NewMemoryStore(), schema.WithClock(clock))
	schemaIndex := schema.NewMemoryNameIndex()
	schemaSvc := schema.NewService(schema.NewManager(schemaRepo, schemaIndex, schema.WithNameIndexer(schemaIndex)))

	created, err := schemaSvc.CreateOrReplace(ctx, schema.CreateOrReplaceRequest{
		RealmID:    fx.realm,
		UniqueName: "blog-article",
		ActorID:    fx.actor,
	})
	if err != nil {
		t.Fatalf("create content type: %v", err)
	}
	fx.contentTypeID = created.ContentType.ID

	setField := func(ctID, fieldTypeID uuid.UUID, name string, invariant, required bool) uuid.UUID {
		dto, err := schemaSvc.SetField(ctx, schema.SetFieldRequest{
			RealmID:       fx.realm,
			ContentTypeID: ctID,
			Field: schema.FieldPayload{
				FieldTypeID: fieldTypeID,
				UniqueName:  name,
				IsInvariant: invariant,
				IsRequired:  required,
			},
			ActorID: fx.actor,
		})
		if err != nil {
			t.Fatalf("set field %s: %v", name, err)
		}
		for _, field := range dto.Fields {
			if field.UniqueName == name {
				return field.ID
			}
		}
		t.Fatalf("field %s missing from dto", name)
		return uuid.Nil
	}
	fx.titleFieldID = setField(fx.contentTypeID, textTypeID, "title", false, true)
	fx.ratingFieldID = setField(fx.contentTypeID, numberTypeID, "rating", true, false)

	invariantType, err := schemaSvc.CreateOrReplace(ctx, schema.CreateOrReplaceRequest{
		RealmID:     fx.realm,
		UniqueName:  "site-settings",
		IsInvariant: true,
		ActorID:     fx.actor,
	})
	if err != nil {
		t.Fatalf("create invariant content type: %v", err)
	}
	fx.invariantTypeID = invariantType.ContentType.ID
	fx.settingsFieldID = setField(fx.invariantTypeID, textTypeID, "site-name", true, false)

	contentRepo := NewRepository(eventstore.NewMemoryStore(), WithClock(clock))
	fx.index = NewMemoryIndex()
	manager := NewManager(contentRepo, fx.index, WithNameIndexer(fx.index), WithTypeIndexer(fx.index))
	fx.svc = NewService(manager, schemaRepo, fieldsRepo, NewValidator(fx.index))
	return fx
}

func (fx *serviceFixture) articlePayload(title string) CreateOrReplaceRequest {
	return CreateOrReplaceRequest{
		RealmID:       fx.realm,
		ContentTypeID: fx.contentTypeID,
		Invariant: LocalePayload{
			UniqueName:  "my-blog-article",
			FieldValues: map[uuid.UUID]string{fx.ratingFieldID: "4.5"},
		},
		Locales: map[uuid.UUID]LocalePayload{
			uuid.New(): {
				UniqueName:  "my-blog-article",
				FieldValues: map[uuid.UUID]string{fx.titleFieldID: title},
			},
		},
		ActorID: fx.actor,
	}
}

func TestServiceCreateOrReplaceCreates(t *testing.T) {
	fx := newServiceFixture(t)
	ctx := context.Background()

	result, err := fx.svc.CreateOrReplace(ctx, fx.articlePayload("My Blog Article"))
	if err != nil {
		t.Fatalf("CreateOrReplace: %v", err)
	}
	if !result.Created || result.Content == nil {
		t.Fatalf("expected creation, got %#v", result)
	}
	if result.Content.Invariant.UniqueName != "my-blog-article" {
		t.Fatalf("invariant lost: %#v", result.Content.Invariant)
	}
	if len(result.Content.Locales) != 1 {
		t.Fatalf("expected one language locale, got %#v", result.Content.Locales)
	}
	if result.Content.ContentTypeID != fx.contentTypeID {
		t.Fatalf("content type reference lost: %#v", result.Content)
	}

	// The name index binds the invariant unique name within the content type.
	id, err := fx.index.FindIDByUniqueName(ctx, fx.realm, fx.contentTypeID, "my-blog-article")
	if err != nil || id != result.Content.ID {
		t.Fatalf("name index should resolve the instance: id=%s err=%v", id, err)
	}
}

func TestServiceCreateOrReplaceValidates(t *testing.T) {
	fx := newServiceFixture(t)
	ctx := context.Background()

	req := fx.articlePayload("My Blog Article")
	for language, payload := range req.Locales {
		payload.FieldValues = nil
		req.Locales[language] = payload
	}
	_, err := fx.svc.CreateOrReplace(ctx, req)
	if !errors.Is(err, ErrLocaleInvalid) {
		t.Fatalf("missing required title should fail validation, got %v", err)
	}
}

func TestServiceCreateOrReplaceInvariantType(t *testing.T) {
	fx := newServiceFixture(t)
	ctx := context.Background()

	_, err := fx.svc.CreateOrReplace(ctx, CreateOrReplaceRequest{
		RealmID:       fx.realm,
		ContentTypeID: fx.invariantTypeID,
		Invariant:     LocalePayload{UniqueName: "main"},
		Locales: map[uuid.UUID]LocalePayload{
			uuid.New(): {UniqueName: "main"},
		},
		ActorID: fx.actor,
	})
	if !errors.Is(err, ErrContentTypeInvariant) {
		t.Fatalf("expected ErrContentTypeInvariant, got %v", err)
	}

	// Without language locales the invariant type accepts instances, and
	// the invariant slot takes the invariant field's value.
	result, err := fx.svc.CreateOrReplace(ctx, CreateOrReplaceRequest{
		RealmID:       fx.realm,
		ContentTypeID: fx.invariantTypeID,
		Invariant: LocalePayload{
			UniqueName:  "main",
			FieldValues: map[uuid.UUID]string{fx.settingsFieldID: "My Site"},
		},
		ActorID: fx.actor,
	})
	if err != nil || !result.Created {
		t.Fatalf("invariant instance should create: %#v err=%v", result, err)
	}
}

func TestServiceUniqueNameConflict(t *testing.T) {
	fx := newServiceFixture(t)
	ctx := context.Background()

	first, err := fx.svc.CreateOrReplace(ctx, fx.articlePayload("My Blog Article"))
	if err != nil {
		t.Fatalf("CreateOrReplace: %v", err)
	}

	_, err = fx.svc.CreateOrReplace(ctx, fx.articlePayload("Someone Else"))
	var taken *domain.UniqueNameTakenError
	if !errors.As(err, &taken) {
		t.Fatalf("expected UniqueNameTakenError, got %v", err)
	}
	if taken.ConflictingID != first.Content.ID {
		t.Fatalf("conflict should name the holder %s, got %s", first.Content.ID, taken.ConflictingID)
	}
}

func TestServicePublishCascade(t *testing.T) {
	fx := newServiceFixture(t)
	ctx := context.Background()

	created, err := fx.svc.CreateOrReplace(ctx, fx.articlePayload("My Blog Article"))
	if err != nil {
		t.Fatalf("CreateOrReplace: %v", err)
	}
	contentID := created.Content.ID
	var language uuid.UUID
	for id := range created.Content.Locales {
		language = id
	}

	dto, err := fx.svc.Publish(ctx, PublishRequest{RealmID: fx.realm, ContentID: contentID, ActorID: fx.actor})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if dto.Invariant.Status == nil || *dto.Invariant.Status != domain.PublishStatusLatest {
		t.Fatalf("invariant slot should be latest: %#v", dto.Invariant)
	}
	if locale := dto.Locales[language]; locale.Status == nil || *locale.Status != domain.PublishStatusLatest {
		t.Fatalf("cascade should publish the language slot: %#v", locale)
	}

	// Editing the language slot demotes only that slot.
	dto, err = fx.svc.SetLocale(ctx, SetLocaleRequest{
		RealmID:    fx.realm,
		ContentID:  contentID,
		LanguageID: &language,
		Locale: LocalePayload{
			UniqueName:  "my-blog-article",
			FieldValues: map[uuid.UUID]string{fx.titleFieldID: "My Blog Article, Edited"},
		},
		ActorID: fx.actor,
	})
	if err != nil {
		t.Fatalf("SetLocale: %v", err)
	}
	if locale := dto.Locales[language]; locale.Status == nil || *locale.Status != domain.PublishStatusPublished {
		t.Fatalf("edited slot should demote to published: %#v", locale)
	}
	if dto.Invariant.Status == nil || *dto.Invariant.Status != domain.PublishStatusLatest {
		t.Fatalf("invariant slot should stay latest: %#v", dto.Invariant)
	}

	// Re-publishing the one slot promotes it back.
	dto, err = fx.svc.Publish(ctx, PublishRequest{RealmID: fx.realm, ContentID: contentID, LanguageID: &language, ActorID: fx.actor})
	if err != nil {
		t.Fatalf("Publish language: %v", err)
	}
	if locale := dto.Locales[language]; locale.Status == nil || *locale.Status != domain.PublishStatusLatest {
		t.Fatalf("re-publish should promote: %#v", locale)
	}

	dto, err = fx.svc.Unpublish(ctx, PublishRequest{RealmID: fx.realm, ContentID: contentID, ActorID: fx.actor})
	if err != nil {
		t.Fatalf("Unpublish: %v", err)
	}
	if dto.Invariant.Status != nil || dto.Locales[language].Status != nil {
		t.Fatalf("cascading unpublish should clear every slot: %#v", dto)
	}
}

func TestServiceCreateOrReplaceReferenceVersion(t *testing.T) {
	fx := newServiceFixture(t)
	ctx := context.Background()

	req := fx.articlePayload("My Blog Article")
	created, err := fx.svc.CreateOrReplace(ctx, req)
	if err != nil {
		t.Fatalf("CreateOrReplace: %v", err)
	}
	contentID := created.Content.ID
	baseVersion := created.Content.Version

	// A concurrent editor adds a second language after the replacer read
	// its snapshot.
	french := uuid.New()
	if _, err := fx.svc.SetLocale(ctx, SetLocaleRequest{
		RealmID:    fx.realm,
		ContentID:  contentID,
		LanguageID: &french,
		Locale: LocalePayload{
			UniqueName:  "my-blog-article",
			FieldValues: map[uuid.UUID]string{fx.titleFieldID: "Mon Article"},
		},
		ActorID: fx.actor,
	}); err != nil {
		t.Fatalf("SetLocale french: %v", err)
	}

	// The stale payload does not mention french but names its reference
	// version; the concurrent locale must survive the replace.
	req.ID = &contentID
	req.Version = &baseVersion
	result, err := fx.svc.CreateOrReplace(ctx, req)
	if err != nil {
		t.Fatalf("CreateOrReplace replace: %v", err)
	}
	if result.Created {
		t.Fatal("replace should not report creation")
	}
	if _, ok := result.Content.Locales[french]; !ok {
		t.Fatalf("concurrent locale should survive: %#v", result.Content.Locales)
	}

	// A blind replace of the same payload removes it: without a reference
	// version the payload is authoritative.
	req.Version = nil
	result, err = fx.svc.CreateOrReplace(ctx, req)
	if err != nil {
		t.Fatalf("CreateOrReplace blind: %v", err)
	}
	if _, ok := result.Content.Locales[french]; ok {
		t.Fatalf("blind replace should drop unmentioned locales: %#v", result.Content.Locales)
	}
}

func TestServiceCreateOrReplaceKeepsContentTypeBinding(t *testing.T) {
	fx := newServiceFixture(t)
	ctx := context.Background()

	created, err := fx.svc.CreateOrReplace(ctx, fx.articlePayload("My Blog Article"))
	if err != nil {
		t.Fatalf("CreateOrReplace: %v", err)
	}
	contentID := created.Content.ID

	// A replace naming another content type must be rejected, not silently
	// retyped; its field values belong to the other schema.
	_, err = fx.svc.CreateOrReplace(ctx, CreateOrReplaceRequest{
		RealmID:       fx.realm,
		ContentTypeID: fx.invariantTypeID,
		ID:            &contentID,
		Invariant: LocalePayload{
			UniqueName:  "my-blog-article",
			FieldValues: map[uuid.UUID]string{fx.settingsFieldID: "My Site"},
		},
		ActorID: fx.actor,
	})
	var mismatch *ContentTypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected ContentTypeMismatchError, got %v", err)
	}
	if mismatch.Expected != fx.contentTypeID || mismatch.Actual != fx.invariantTypeID {
		t.Fatalf("mismatch should name both types: %+v", mismatch)
	}

	dto, err := fx.svc.Get(ctx, domain.NewAggregateID(fx.realm, contentID))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if dto.ContentTypeID != fx.contentTypeID {
		t.Fatalf("instance must keep its type: %#v", dto)
	}
	if _, ok := dto.Invariant.FieldValues[fx.settingsFieldID]; ok {
		t.Fatalf("foreign field value must not be stored: %#v", dto.Invariant)
	}
}

func TestServiceCreateOrReplaceMissingReference(t *testing.T) {
	fx := newServiceFixture(t)
	ctx := context.Background()

	req := fx.articlePayload("My Blog Article")
	id := uuid.New()
	version := 3
	req.ID = &id
	req.Version = &version
	result, err := fx.svc.CreateOrReplace(ctx, req)
	if err != nil {
		t.Fatalf("CreateOrReplace: %v", err)
	}
	if result.Content != nil || result.Created {
		t.Fatalf("replacing a version of an absent aggregate should report nothing, got %#v", result)
	}
}

func TestServiceDelete(t *testing.T) {
	fx := newServiceFixture(t)
	ctx := context.Background()

	created, err := fx.svc.CreateOrReplace(ctx, fx.articlePayload("My Blog Article"))
	if err != nil {
		t.Fatalf("CreateOrReplace: %v", err)
	}
	contentID := created.Content.ID

	deleted, err := fx.svc.Delete(ctx, DeleteRequest{RealmID: fx.realm, ID: contentID, ActorID: fx.actor})
	if err != nil || !deleted {
		t.Fatalf("Delete: deleted=%v err=%v", deleted, err)
	}
	deleted, err = fx.svc.Delete(ctx, DeleteRequest{RealmID: fx.realm, ID: contentID, ActorID: fx.actor})
	if err != nil || deleted {
		t.Fatalf("second delete should report false: deleted=%v err=%v", deleted, err)
	}

	if _, err := fx.svc.Get(ctx, domain.NewAggregateID(fx.realm, contentID)); !domain.IsNotFound(err) {
		t.Fatalf("deleted content should be not found, got %v", err)
	}
	if id, err := fx.index.FindIDByUniqueName(ctx, fx.realm, fx.contentTypeID, "my-blog-article"); err != nil || id != uuid.Nil {
		t.Fatalf("name should be released on delete: id=%s err=%v", id, err)
	}

	// The released name is reusable.
	if _, err := fx.svc.CreateOrReplace(ctx, fx.articlePayload("My Blog Article")); err != nil {
		t.Fatalf("recreate after delete: %v", err)
	}
}
