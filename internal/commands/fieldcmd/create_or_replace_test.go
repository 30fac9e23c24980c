package fieldcmd

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-content-engine/internal/domain"
	"github.com/goliatone/go-content-engine/internal/fields"
)

func textSettings(t *testing.T) fields.SettingsPayload {
	t.Helper()
	settings, err := fields.NewStringSettings(nil, nil, nil)
	if err != nil {
		t.Fatalf("NewStringSettings: %v", err)
	}
	return fields.NewSettingsPayload(settings)
}

func TestCreateOrReplaceFieldTypeHandlerAppliesPayload(t *testing.T) {
	id := uuid.New()
	service := &stubFieldTypeService{
		createResult: fields.CreateOrReplaceResult{FieldType: &fields.Dto{ID: id}},
	}
	handler := NewCreateOrReplaceFieldTypeHandler(service, nil)

	msg := CreateOrReplaceFieldTypeCommand{
		RealmID:    uuid.New(),
		UniqueName: "text",
		Settings:   textSettings(t),
		ActorID:    uuid.New(),
	}
	if err := handler.Execute(context.Background(), msg); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(service.createRequests) != 1 || service.createRequests[0].UniqueName != "text" {
		t.Fatalf("expected one request for %q, got %#v", "text", service.createRequests)
	}
}

func TestCreateOrReplaceFieldTypeHandlerReportsMissingReference(t *testing.T) {
	service := &stubFieldTypeService{}
	handler := NewCreateOrReplaceFieldTypeHandler(service, nil)

	id := uuid.New()
	version := 3
	msg := CreateOrReplaceFieldTypeCommand{
		RealmID:    uuid.New(),
		ID:         &id,
		Version:    &version,
		UniqueName: "text",
		Settings:   textSettings(t),
		ActorID:    uuid.New(),
	}
	err := handler.Execute(context.Background(), msg)
	if err == nil {
		t.Fatal("replacing an absent field type should fail, not report success")
	}
	if !domain.IsNotFound(err) {
		t.Fatalf("expected a not-found error, got %v", err)
	}
	if len(service.createRequests) != 1 {
		t.Fatalf("expected the service to be consulted once, got %d calls", len(service.createRequests))
	}
}
