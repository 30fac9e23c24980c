package contentcmd

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-content-engine/internal/content"
	"github.com/goliatone/go-content-engine/internal/domain"
)

func TestCreateOrReplaceContentHandlerAppliesPayload(t *testing.T) {
	id := uuid.New()
	svc := &stubContentService{
		createResult: content.CreateOrReplaceResult{Content: &content.Dto{ID: id}},
	}
	handler := NewCreateOrReplaceContentHandler(svc, nil)

	language := uuid.New()
	msg := CreateOrReplaceContentCommand{
		RealmID:       uuid.New(),
		ContentTypeID: uuid.New(),
		Invariant:     LocalePayload{UniqueName: "welcome"},
		Locales: map[uuid.UUID]LocalePayload{
			language: {UniqueName: "welcome-en"},
		},
		ActorID: uuid.New(),
	}
	if err := handler.Execute(context.Background(), msg); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(svc.createRequests) != 1 {
		t.Fatalf("expected one service call, got %d", len(svc.createRequests))
	}
	req := svc.createRequests[0]
	if req.Invariant.UniqueName != "welcome" || req.Locales[language].UniqueName != "welcome-en" {
		t.Fatalf("payload lost locale data: %+v", req)
	}
}

func TestCreateOrReplaceContentHandlerReportsMissingReference(t *testing.T) {
	svc := &stubContentService{}
	handler := NewCreateOrReplaceContentHandler(svc, nil)

	id := uuid.New()
	version := 4
	msg := CreateOrReplaceContentCommand{
		RealmID:       uuid.New(),
		ID:            &id,
		Version:       &version,
		ContentTypeID: uuid.New(),
		Invariant:     LocalePayload{UniqueName: "welcome"},
		ActorID:       uuid.New(),
	}
	err := handler.Execute(context.Background(), msg)
	if err == nil {
		t.Fatal("replacing an absent instance should fail, not report success")
	}
	if !domain.IsNotFound(err) {
		t.Fatalf("expected a not-found error, got %v", err)
	}
}
