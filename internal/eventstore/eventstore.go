package eventstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/goliatone/go-content-engine/internal/domain"
)

// LoadAll requests the full stream instead of a time-travel load.
const LoadAll = -1

// Envelope is one serialized event at a position in a stream.
type Envelope struct {
	StreamKey  string
	Version    int
	Type       string
	Payload    []byte
	RecordedAt time.Time
}

// Store is the append-only aggregate store contract. Append is atomic per
// stream and rejects the whole batch when the stream advanced past
// expectedVersion (optimistic concurrency). Load with atVersion >= 0
// reconstructs history up to that version (time-travel).
type Store interface {
	Load(ctx context.Context, streamKey string, atVersion int) ([]Envelope, error)
	Append(ctx context.Context, streamKey string, expectedVersion int, envelopes []Envelope) error
}

// VersionConflictError reports a rejected append against a stream that moved
// past the version the aggregate was loaded at.
type VersionConflictError struct {
	StreamKey string
	Expected  int
	Actual    int
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("eventstore: stream %s at version %d, expected %d", e.StreamKey, e.Actual, e.Expected)
}

// Registry maps event type names to factories so envelopes can be decoded
// back into typed events. Each aggregate package owns one registry.
type Registry struct {
	factories map[string]func() domain.Event
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]func() domain.Event{}}
}

// Register binds an event type name to its factory. Later registrations for
// the same name win, which keeps test doubles simple.
func (r *Registry) Register(eventType string, factory func() domain.Event) {
	r.factories[eventType] = factory
}

// Decode unmarshals an envelope into its typed event.
func (r *Registry) Decode(env Envelope) (domain.Event, error) {
	factory, ok := r.factories[env.Type]
	if !ok {
		return nil, fmt.Errorf("eventstore: unknown event type %q in stream %s", env.Type, env.StreamKey)
	}
	evt := factory()
	if err := json.Unmarshal(env.Payload, evt); err != nil {
		return nil, fmt.Errorf("eventstore: decode %s: %w", env.Type, err)
	}
	return evt, nil
}

// DecodeAll unmarshals a loaded stream in order.
func (r *Registry) DecodeAll(envelopes []Envelope) ([]domain.Event, error) {
	out := make([]domain.Event, 0, len(envelopes))
	for _, env := range envelopes {
		evt, err := r.Decode(env)
		if err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, nil
}

// Encode serializes one pending event into an envelope at the given position.
func Encode(streamKey string, version int, evt domain.Event, recordedAt time.Time) (Envelope, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return Envelope{}, fmt.Errorf("eventstore: encode %s: %w", evt.EventType(), err)
	}
	return Envelope{
		StreamKey:  streamKey,
		Version:    version,
		Type:       evt.EventType(),
		Payload:    payload,
		RecordedAt: recordedAt,
	}, nil
}

// EncodeAll serializes an aggregate's pending events into consecutive
// envelopes starting right after baseVersion.
func EncodeAll(streamKey string, baseVersion int, events []domain.Event, recordedAt time.Time) ([]Envelope, error) {
	out := make([]Envelope, 0, len(events))
	for i, evt := range events {
		env, err := Encode(streamKey, baseVersion+i+1, evt, recordedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, env)
	}
	return out, nil
}
