package schema

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-content-engine/internal/domain"
	"github.com/goliatone/go-content-engine/internal/eventstore"
)

func newTestService(t *testing.T) (Service, *MemoryNameIndex, *MemoryUsageIndex) {
	t.Helper()
	store := eventstore.NewMemoryStore()
	repo := NewRepository(store, WithClock(func() time.Time {
		return time.Unix(1700000000, 0)
	}))
	names := NewMemoryNameIndex()
	usage := NewMemoryUsageIndex()
	manager := NewManager(repo, names, WithNameIndexer(names), WithUsageIndexer(usage))
	return NewService(manager), names, usage
}

func ptr[T any](value T) *T { return &value }

func TestServiceCreateOrReplaceCreates(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	realm := uuid.New()

	result, err := svc.CreateOrReplace(ctx, CreateOrReplaceRequest{
		RealmID:     realm,
		UniqueName:  "blog-article",
		DisplayName: ptr("Blog Article"),
		ActorID:     uuid.New(),
	})
	if err != nil {
		t.Fatalf("CreateOrReplace: %v", err)
	}
	if !result.Created || result.ContentType == nil {
		t.Fatalf("expected creation, got %#v", result)
	}
	// Creation metadata flushes as a second, batched update event on top of
	// the creation event.
	if result.ContentType.Version != 2 {
		t.Fatalf("creation with metadata should land at version 2, got %d", result.ContentType.Version)
	}

	dto, err := svc.Get(ctx, domain.NewAggregateID(realm, result.ContentType.ID))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if dto.UniqueName != "blog-article" || dto.DisplayName == nil || *dto.DisplayName != "Blog Article" {
		t.Fatalf("round trip lost metadata: %#v", dto)
	}
}

func TestServiceCreateOrReplaceUniqueNameConflict(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	realm := uuid.New()
	actor := uuid.New()

	first, err := svc.CreateOrReplace(ctx, CreateOrReplaceRequest{RealmID: realm, UniqueName: "article", ActorID: actor})
	if err != nil {
		t.Fatalf("CreateOrReplace: %v", err)
	}

	_, err = svc.CreateOrReplace(ctx, CreateOrReplaceRequest{RealmID: realm, UniqueName: "Article", ActorID: actor})
	var taken *domain.UniqueNameTakenError
	if !errors.As(err, &taken) {
		t.Fatalf("expected UniqueNameTakenError, got %v", err)
	}
	if taken.ConflictingID != first.ContentType.ID {
		t.Fatalf("conflict should name the holder %s, got %s", first.ContentType.ID, taken.ConflictingID)
	}

	// Same name in another realm is fine.
	if _, err := svc.CreateOrReplace(ctx, CreateOrReplaceRequest{RealmID: uuid.New(), UniqueName: "article", ActorID: actor}); err != nil {
		t.Fatalf("cross-realm create: %v", err)
	}
}

func TestServiceCreateOrReplaceReferenceVersion(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	realm := uuid.New()
	actor := uuid.New()

	created, err := svc.CreateOrReplace(ctx, CreateOrReplaceRequest{RealmID: realm, UniqueName: "article", ActorID: actor})
	if err != nil {
		t.Fatalf("CreateOrReplace: %v", err)
	}
	id := created.ContentType.ID
	baseVersion := created.ContentType.Version

	// Concurrent edit after the replacer read its snapshot.
	if _, err := svc.Update(ctx, UpdateRequest{
		RealmID:     realm,
		ID:          id,
		Description: domain.ChangeTo("written elsewhere"),
		ActorID:     actor,
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	// Stale full payload omits the description but names a reference
	// version; only its own delta may land.
	result, err := svc.CreateOrReplace(ctx, CreateOrReplaceRequest{
		RealmID:     realm,
		ID:          &id,
		Version:     &baseVersion,
		UniqueName:  "article",
		DisplayName: ptr("Article"),
		ActorID:     actor,
	})
	if err != nil {
		t.Fatalf("CreateOrReplace replace: %v", err)
	}
	if result.Created {
		t.Fatal("replace should not report creation")
	}
	if result.ContentType.Description == nil || *result.ContentType.Description != "written elsewhere" {
		t.Fatalf("concurrent description should survive: %#v", result.ContentType)
	}
	if result.ContentType.DisplayName == nil || *result.ContentType.DisplayName != "Article" {
		t.Fatalf("display name delta should apply: %#v", result.ContentType)
	}
}

func TestServiceCreateOrReplaceBlindReplace(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	realm := uuid.New()
	actor := uuid.New()

	created, err := svc.CreateOrReplace(ctx, CreateOrReplaceRequest{
		RealmID:     realm,
		UniqueName:  "article",
		DisplayName: ptr("Article"),
		ActorID:     actor,
	})
	if err != nil {
		t.Fatalf("CreateOrReplace: %v", err)
	}
	id := created.ContentType.ID

	// No reference version: the payload is authoritative and omitted
	// members clear.
	result, err := svc.CreateOrReplace(ctx, CreateOrReplaceRequest{
		RealmID:    realm,
		ID:         &id,
		UniqueName: "article",
		ActorID:    actor,
	})
	if err != nil {
		t.Fatalf("CreateOrReplace replace: %v", err)
	}
	if result.ContentType.DisplayName != nil {
		t.Fatalf("blind replace should clear omitted display name: %#v", result.ContentType)
	}
}

func TestServiceCreateOrReplaceMissingReference(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	id := uuid.New()
	result, err := svc.CreateOrReplace(ctx, CreateOrReplaceRequest{
		RealmID:    uuid.New(),
		ID:         &id,
		Version:    ptr(3),
		UniqueName: "article",
		ActorID:    uuid.New(),
	})
	if err != nil {
		t.Fatalf("CreateOrReplace: %v", err)
	}
	if result.ContentType != nil || result.Created {
		t.Fatalf("replacing a version of an absent aggregate should report nothing, got %#v", result)
	}
}

func TestServiceFieldLifecycle(t *testing.T) {
	svc, _, usage := newTestService(t)
	ctx := context.Background()
	realm := uuid.New()
	actor := uuid.New()

	created, err := svc.CreateOrReplace(ctx, CreateOrReplaceRequest{RealmID: realm, UniqueName: "article", ActorID: actor})
	if err != nil {
		t.Fatalf("CreateOrReplace: %v", err)
	}
	ctID := created.ContentType.ID

	titleType := uuid.New()
	bodyType := uuid.New()
	dto, err := svc.SetField(ctx, SetFieldRequest{
		RealmID:       realm,
		ContentTypeID: ctID,
		Field:         FieldPayload{FieldTypeID: titleType, UniqueName: "title", IsRequired: true},
		ActorID:       actor,
	})
	if err != nil {
		t.Fatalf("SetField title: %v", err)
	}
	if len(dto.Fields) != 1 || dto.Fields[0].Ordinal != 0 {
		t.Fatalf("first field should sit at ordinal 0: %#v", dto.Fields)
	}

	dto, err = svc.SetField(ctx, SetFieldRequest{
		RealmID:       realm,
		ContentTypeID: ctID,
		Field:         FieldPayload{FieldTypeID: bodyType, UniqueName: "body"},
		ActorID:       actor,
	})
	if err != nil {
		t.Fatalf("SetField body: %v", err)
	}
	if len(dto.Fields) != 2 || dto.Fields[1].UniqueName != "body" {
		t.Fatalf("second field should append: %#v", dto.Fields)
	}

	users, err := usage.FindIDsByFieldType(ctx, realm, titleType)
	if err != nil {
		t.Fatalf("FindIDsByFieldType: %v", err)
	}
	if len(users) != 1 || users[0] != ctID {
		t.Fatalf("usage index should track the content type, got %v", users)
	}

	dto, err = svc.SwitchFields(ctx, SwitchFieldsRequest{
		RealmID:       realm,
		ContentTypeID: ctID,
		SourceID:      dto.Fields[0].ID,
		TargetID:      dto.Fields[1].ID,
		ActorID:       actor,
	})
	if err != nil {
		t.Fatalf("SwitchFields: %v", err)
	}
	if dto.Fields[0].UniqueName != "body" || dto.Fields[1].UniqueName != "title" {
		t.Fatalf("switch should transpose ordinals: %#v", dto.Fields)
	}

	removed, err := svc.RemoveField(ctx, RemoveFieldRequest{
		RealmID:       realm,
		ContentTypeID: ctID,
		FieldID:       dto.Fields[0].ID,
		ActorID:       actor,
	})
	if err != nil || !removed {
		t.Fatalf("RemoveField: removed=%v err=%v", removed, err)
	}
	removed, err = svc.RemoveField(ctx, RemoveFieldRequest{
		RealmID:       realm,
		ContentTypeID: ctID,
		FieldID:       dto.Fields[0].ID,
		ActorID:       actor,
	})
	if err != nil || removed {
		t.Fatalf("second remove should be a quiet no-op: removed=%v err=%v", removed, err)
	}

	users, err = usage.FindIDsByFieldType(ctx, realm, bodyType)
	if err != nil {
		t.Fatalf("FindIDsByFieldType: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("usage index should drop the removed field type, got %v", users)
	}
}

func TestServiceDelete(t *testing.T) {
	svc, names, usage := newTestService(t)
	ctx := context.Background()
	realm := uuid.New()
	actor := uuid.New()

	created, err := svc.CreateOrReplace(ctx, CreateOrReplaceRequest{RealmID: realm, UniqueName: "article", ActorID: actor})
	if err != nil {
		t.Fatalf("CreateOrReplace: %v", err)
	}
	ctID := created.ContentType.ID
	fieldType := uuid.New()
	if _, err := svc.SetField(ctx, SetFieldRequest{
		RealmID:       realm,
		ContentTypeID: ctID,
		Field:         FieldPayload{FieldTypeID: fieldType, UniqueName: "title"},
		ActorID:       actor,
	}); err != nil {
		t.Fatalf("SetField: %v", err)
	}

	deleted, err := svc.Delete(ctx, DeleteRequest{RealmID: realm, ID: ctID, ActorID: actor})
	if err != nil || !deleted {
		t.Fatalf("Delete: deleted=%v err=%v", deleted, err)
	}
	deleted, err = svc.Delete(ctx, DeleteRequest{RealmID: realm, ID: ctID, ActorID: actor})
	if err != nil || deleted {
		t.Fatalf("second delete should report false: deleted=%v err=%v", deleted, err)
	}

	if _, err := svc.Get(ctx, domain.NewAggregateID(realm, ctID)); !domain.IsNotFound(err) {
		t.Fatalf("deleted content type should be not found, got %v", err)
	}
	if id, err := names.FindIDByUniqueName(ctx, realm, "article"); err != nil || id != uuid.Nil {
		t.Fatalf("name should be released on delete: id=%s err=%v", id, err)
	}
	if users, err := usage.FindIDsByFieldType(ctx, realm, fieldType); err != nil || len(users) != 0 {
		t.Fatalf("usage should be released on delete: users=%v err=%v", users, err)
	}

	// The released name is reusable.
	if _, err := svc.CreateOrReplace(ctx, CreateOrReplaceRequest{RealmID: realm, UniqueName: "article", ActorID: actor}); err != nil {
		t.Fatalf("recreate after delete: %v", err)
	}
}
