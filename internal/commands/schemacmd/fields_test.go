package schemacmd

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-content-engine/internal/domain"
	"github.com/goliatone/go-content-engine/internal/schema"
)

type stubSchemaService struct {
	createRequests   []schema.CreateOrReplaceRequest
	createResult     schema.CreateOrReplaceResult
	setFieldRequests []schema.SetFieldRequest
	switchRequests   []schema.SwitchFieldsRequest
	setFieldErr      error
}

func (s *stubSchemaService) CreateOrReplace(_ context.Context, req schema.CreateOrReplaceRequest) (schema.CreateOrReplaceResult, error) {
	s.createRequests = append(s.createRequests, req)
	return s.createResult, nil
}

func (s *stubSchemaService) Update(context.Context, schema.UpdateRequest) (*schema.Dto, error) {
	return nil, errors.New("not implemented")
}

func (s *stubSchemaService) SetField(_ context.Context, req schema.SetFieldRequest) (*schema.Dto, error) {
	s.setFieldRequests = append(s.setFieldRequests, req)
	if s.setFieldErr != nil {
		return nil, s.setFieldErr
	}
	return &schema.Dto{ID: req.ContentTypeID, RealmID: req.RealmID}, nil
}

func (s *stubSchemaService) RemoveField(context.Context, schema.RemoveFieldRequest) (bool, error) {
	return false, errors.New("not implemented")
}

func (s *stubSchemaService) SwitchFields(_ context.Context, req schema.SwitchFieldsRequest) (*schema.Dto, error) {
	s.switchRequests = append(s.switchRequests, req)
	return &schema.Dto{ID: req.ContentTypeID, RealmID: req.RealmID}, nil
}

func (s *stubSchemaService) Delete(context.Context, schema.DeleteRequest) (bool, error) {
	return false, errors.New("not implemented")
}

func (s *stubSchemaService) Get(context.Context, domain.AggregateID) (*schema.Dto, error) {
	return nil, errors.New("not implemented")
}

func TestSetFieldHandlerExecutesService(t *testing.T) {
	svc := &stubSchemaService{}
	handler := NewSetFieldHandler(svc, nil)

	realm := uuid.New()
	contentType := uuid.New()
	fieldType := uuid.New()

	err := handler.Execute(context.Background(), SetFieldCommand{
		RealmID:       realm,
		ContentTypeID: contentType,
		FieldTypeID:   fieldType,
		UniqueName:    "title",
		IsRequired:    true,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if len(svc.setFieldRequests) != 1 {
		t.Fatalf("expected one service call, got %d", len(svc.setFieldRequests))
	}
	req := svc.setFieldRequests[0]
	if req.ContentTypeID != contentType || req.Field.FieldTypeID != fieldType {
		t.Fatalf("request lost identifiers: %+v", req)
	}
	if req.Field.UniqueName != "title" || !req.Field.IsRequired {
		t.Fatalf("request lost field payload: %+v", req.Field)
	}
}

func TestSetFieldCommandValidates(t *testing.T) {
	svc := &stubSchemaService{}
	handler := NewSetFieldHandler(svc, nil)

	err := handler.Execute(context.Background(), SetFieldCommand{
		ContentTypeID: uuid.New(),
		FieldTypeID:   uuid.New(),
	})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category for missing unique_name, got %v", err)
	}
	if len(svc.setFieldRequests) != 0 {
		t.Fatal("invalid message must not reach the service")
	}
}

func TestSwitchFieldsHandlerExecutesService(t *testing.T) {
	svc := &stubSchemaService{}
	handler := NewSwitchFieldsHandler(svc, nil)

	source := uuid.New()
	target := uuid.New()

	err := handler.Execute(context.Background(), SwitchFieldsCommand{
		ContentTypeID: uuid.New(),
		SourceID:      source,
		TargetID:      target,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(svc.switchRequests) != 1 {
		t.Fatalf("expected one service call, got %d", len(svc.switchRequests))
	}
	if svc.switchRequests[0].SourceID != source || svc.switchRequests[0].TargetID != target {
		t.Fatalf("request lost field ids: %+v", svc.switchRequests[0])
	}
}

func TestSwitchFieldsCommandRejectsEqualIDs(t *testing.T) {
	svc := &stubSchemaService{}
	handler := NewSwitchFieldsHandler(svc, nil)

	id := uuid.New()
	err := handler.Execute(context.Background(), SwitchFieldsCommand{
		ContentTypeID: uuid.New(),
		SourceID:      id,
		TargetID:      id,
	})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category for equal ids, got %v", err)
	}
	if len(svc.switchRequests) != 0 {
		t.Fatal("invalid message must not reach the service")
	}
}
