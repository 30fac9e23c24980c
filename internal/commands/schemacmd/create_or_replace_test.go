package schemacmd

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-content-engine/internal/domain"
	"github.com/goliatone/go-content-engine/internal/schema"
)

func TestCreateOrReplaceContentTypeHandlerAppliesPayload(t *testing.T) {
	id := uuid.New()
	svc := &stubSchemaService{
		createResult: schema.CreateOrReplaceResult{ContentType: &schema.Dto{ID: id}},
	}
	handler := NewCreateOrReplaceContentTypeHandler(svc, nil)

	msg := CreateOrReplaceContentTypeCommand{
		RealmID:    uuid.New(),
		UniqueName: "article",
		ActorID:    uuid.New(),
	}
	if err := handler.Execute(context.Background(), msg); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(svc.createRequests) != 1 || svc.createRequests[0].UniqueName != "article" {
		t.Fatalf("expected one request for %q, got %#v", "article", svc.createRequests)
	}
}

func TestCreateOrReplaceContentTypeHandlerReportsMissingReference(t *testing.T) {
	svc := &stubSchemaService{}
	handler := NewCreateOrReplaceContentTypeHandler(svc, nil)

	id := uuid.New()
	version := 2
	msg := CreateOrReplaceContentTypeCommand{
		RealmID:    uuid.New(),
		ID:         &id,
		Version:    &version,
		UniqueName: "article",
		ActorID:    uuid.New(),
	}
	err := handler.Execute(context.Background(), msg)
	if err == nil {
		t.Fatal("replacing an absent content type should fail, not report success")
	}
	if !domain.IsNotFound(err) {
		t.Fatalf("expected a not-found error, got %v", err)
	}
}
