package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestAggregateIDStreamKey(t *testing.T) {
	realm := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	entity := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	scoped := NewAggregateID(realm, entity)
	want := "content:" + realm.String() + ":" + entity.String()
	if got := scoped.StreamKey("content"); got != want {
		t.Fatalf("StreamKey = %q, want %q", got, want)
	}

	// Realm-less identities keep an empty realm segment so keys stay
	// unambiguous.
	global := NewAggregateID(uuid.Nil, entity)
	want = "content::" + entity.String()
	if got := global.StreamKey("content"); got != want {
		t.Fatalf("StreamKey = %q, want %q", got, want)
	}
}

func TestAggregateIDSameRealm(t *testing.T) {
	realm := uuid.New()
	a := NewAggregateID(realm, uuid.New())
	b := NewAggregateID(realm, uuid.New())
	c := NewAggregateID(uuid.New(), a.EntityID)

	if !a.SameRealm(b) {
		t.Fatalf("expected same realm")
	}
	if a.SameRealm(c) {
		t.Fatalf("expected realm mismatch")
	}
}

func TestAggregateRootRecordAndAdvance(t *testing.T) {
	root := NewAggregateRoot(NewAggregateID(uuid.Nil, uuid.New()))

	root.Record(stubEvent{})
	root.Record(stubEvent{})
	if root.Version() != 2 {
		t.Fatalf("Version = %d, want 2", root.Version())
	}
	if len(root.Pending()) != 2 {
		t.Fatalf("expected 2 pending events")
	}

	root.ClearPending()
	if root.HasPending() {
		t.Fatalf("expected empty buffer after ClearPending")
	}
	if root.Version() != 2 {
		t.Fatalf("ClearPending must not rewind the version")
	}

	root.Advance()
	if root.Version() != 3 {
		t.Fatalf("Advance should bump version without buffering")
	}
	if root.HasPending() {
		t.Fatalf("Advance must not buffer events")
	}
}

type stubEvent struct{}

func (stubEvent) EventType() string { return "test.stub" }
