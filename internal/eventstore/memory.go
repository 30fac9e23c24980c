package eventstore

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for scaffolding and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	streams map[string][]Envelope
}

// NewMemoryStore creates an empty in-memory event store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{streams: make(map[string][]Envelope)}
}

// Load returns the stream up to atVersion, or the whole stream for LoadAll.
// An unknown stream yields an empty slice, not an error.
func (m *MemoryStore) Load(_ context.Context, streamKey string, atVersion int) ([]Envelope, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stream := m.streams[streamKey]
	out := make([]Envelope, 0, len(stream))
	for _, env := range stream {
		if atVersion >= 0 && env.Version > atVersion {
			break
		}
		out = append(out, env)
	}
	return out, nil
}

// Append commits envelopes when the stream is still at expectedVersion.
func (m *MemoryStore) Append(_ context.Context, streamKey string, expectedVersion int, envelopes []Envelope) error {
	if len(envelopes) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stream := m.streams[streamKey]
	if len(stream) != expectedVersion {
		return &VersionConflictError{
			StreamKey: streamKey,
			Expected:  expectedVersion,
			Actual:    len(stream),
		}
	}
	m.streams[streamKey] = append(stream, envelopes...)
	return nil
}
