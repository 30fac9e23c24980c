package domain

// Event is a single immutable fact recorded against an aggregate stream.
// Concrete event types are plain JSON-serializable structs.
type Event interface {
	EventType() string
}

// AggregateRoot carries the identity, version, and pending-event buffer
// shared by every aggregate. Mutators append an event and apply it to cached
// state synchronously, so reads reflect uncommitted writes within the same
// instance. The helpers below are intended for aggregate implementations and
// their repositories, not for general callers.
type AggregateRoot struct {
	id      AggregateID
	version int
	pending []Event
	deleted bool
}

// NewAggregateRoot seeds a root with its identity at version zero.
func NewAggregateRoot(id AggregateID) AggregateRoot {
	return AggregateRoot{id: id}
}

// ID returns the composite aggregate identity.
func (r *AggregateRoot) ID() AggregateID { return r.id }

// Version returns the number of events applied so far, committed or pending.
func (r *AggregateRoot) Version() int { return r.version }

// Pending returns the ordered buffer of unsaved events.
func (r *AggregateRoot) Pending() []Event { return r.pending }

// HasPending reports whether any unsaved events are buffered.
func (r *AggregateRoot) HasPending() bool { return len(r.pending) > 0 }

// ClearPending drops the buffer after a successful append.
func (r *AggregateRoot) ClearPending() { r.pending = nil }

// IsDeleted reports whether the aggregate has been tombstoned.
func (r *AggregateRoot) IsDeleted() bool { return r.deleted }

// MarkDeleted flips the tombstone flag; used by apply handlers.
func (r *AggregateRoot) MarkDeleted(deleted bool) { r.deleted = deleted }

// Record buffers a new event and advances the version. Aggregates call it
// from their raise helpers after applying the event in memory.
func (r *AggregateRoot) Record(evt Event) {
	r.pending = append(r.pending, evt)
	r.version++
}

// Advance bumps the version without buffering; repositories call it while
// replaying committed history.
func (r *AggregateRoot) Advance() { r.version++ }
