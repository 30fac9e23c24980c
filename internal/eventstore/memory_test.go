package eventstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-content-engine/internal/domain"
)

type renamed struct {
	Name string `json:"name"`
}

func (renamed) EventType() string { return "test.renamed" }

func testEnvelopes(t *testing.T, key string, base int, names ...string) []Envelope {
	t.Helper()
	events := make([]domain.Event, 0, len(names))
	for _, name := range names {
		events = append(events, renamed{Name: name})
	}
	envs, err := EncodeAll(key, base, events, time.Unix(1700000000, 0))
	if err != nil {
		t.Fatalf("EncodeAll: %v", err)
	}
	return envs
}

func TestMemoryStoreAppendAndLoad(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Append(ctx, "ft::a", 0, testEnvelopes(t, "ft::a", 0, "one", "two")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	envs, err := store.Load(ctx, "ft::a", LoadAll)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(envs) != 2 {
		t.Fatalf("expected 2 envelopes, got %d", len(envs))
	}
	if envs[0].Version != 1 || envs[1].Version != 2 {
		t.Fatalf("versions must be consecutive from 1: %d, %d", envs[0].Version, envs[1].Version)
	}

	// Unknown streams load empty, not as an error.
	envs, err = store.Load(ctx, "ft::missing", LoadAll)
	if err != nil || len(envs) != 0 {
		t.Fatalf("unknown stream: got %d envelopes, err %v", len(envs), err)
	}
}

func TestMemoryStoreVersionConflict(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Append(ctx, "ct::a", 0, testEnvelopes(t, "ct::a", 0, "one")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	err := store.Append(ctx, "ct::a", 0, testEnvelopes(t, "ct::a", 0, "stale"))
	var conflict *VersionConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected VersionConflictError, got %v", err)
	}
	if conflict.Expected != 0 || conflict.Actual != 1 {
		t.Fatalf("conflict versions wrong: %+v", conflict)
	}

	// The rejected batch must not be partially applied.
	envs, _ := store.Load(ctx, "ct::a", LoadAll)
	if len(envs) != 1 {
		t.Fatalf("stream should still hold 1 envelope, got %d", len(envs))
	}
}

func TestMemoryStoreTimeTravel(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Append(ctx, "c::a", 0, testEnvelopes(t, "c::a", 0, "one", "two", "three")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	envs, err := store.Load(ctx, "c::a", 2)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(envs) != 2 {
		t.Fatalf("expected history up to version 2, got %d envelopes", len(envs))
	}

	// atVersion beyond the head returns everything there is.
	envs, _ = store.Load(ctx, "c::a", 99)
	if len(envs) != 3 {
		t.Fatalf("expected full stream, got %d", len(envs))
	}

	// Version 0 is the empty prefix.
	envs, _ = store.Load(ctx, "c::a", 0)
	if len(envs) != 0 {
		t.Fatalf("version 0 should be empty, got %d", len(envs))
	}
}

func TestRegistryDecode(t *testing.T) {
	registry := NewRegistry()
	registry.Register("test.renamed", func() domain.Event { return &renamed{} })

	envs := testEnvelopes(t, "x::y", 0, "hello")
	events, err := registry.DecodeAll(envs)
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	evt, ok := events[0].(*renamed)
	if !ok || evt.Name != "hello" {
		t.Fatalf("decoded event wrong: %#v", events[0])
	}

	if _, err := registry.Decode(Envelope{Type: "test.unknown"}); err == nil {
		t.Fatalf("expected unknown type error")
	}
}
