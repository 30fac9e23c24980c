package fields

import (
	"context"
	"time"

	"github.com/goliatone/go-content-engine/internal/domain"
	"github.com/goliatone/go-content-engine/internal/eventstore"
)

func newEventRegistry() *eventstore.Registry {
	registry := eventstore.NewRegistry()
	registry.Register(EventTypeCreated, func() domain.Event { return &Created{} })
	registry.Register(EventTypeUniqueNameChanged, func() domain.Event { return &UniqueNameChanged{} })
	registry.Register(EventTypeUpdated, func() domain.Event { return &Updated{} })
	registry.Register(EventTypeSettingsChanged, func() domain.Event { return &SettingsChanged{} })
	registry.Register(EventTypeDeleted, func() domain.Event { return &Deleted{} })
	return registry
}

// RepositoryOption configures the repository at construction time.
type RepositoryOption func(*Repository)

// WithClock overrides the clock used to stamp appended events.
func WithClock(clock func() time.Time) RepositoryOption {
	return func(r *Repository) {
		if clock != nil {
			r.now = clock
		}
	}
}

// Repository loads and saves field type aggregates against an event stream.
type Repository struct {
	store    eventstore.Store
	registry *eventstore.Registry
	now      func() time.Time
}

// NewRepository wires a repository over the supplied store.
func NewRepository(store eventstore.Store, opts ...RepositoryOption) *Repository {
	r := &Repository{
		store:    store,
		registry: newEventRegistry(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get replays the current state of a field type. Tombstoned aggregates are
// returned with IsDeleted set; callers decide whether that is fatal.
func (r *Repository) Get(ctx context.Context, id domain.AggregateID) (*FieldType, error) {
	return r.load(ctx, id, eventstore.LoadAll)
}

// GetAt replays the field type as it existed at the given version, serving as
// the diff baseline for reference-version replace operations.
func (r *Repository) GetAt(ctx context.Context, id domain.AggregateID, version int) (*FieldType, error) {
	return r.load(ctx, id, version)
}

func (r *Repository) load(ctx context.Context, id domain.AggregateID, atVersion int) (*FieldType, error) {
	envelopes, err := r.store.Load(ctx, id.StreamKey(StreamKind), atVersion)
	if err != nil {
		return nil, err
	}
	if len(envelopes) == 0 {
		return nil, &domain.NotFoundError{Resource: "field type", Key: id.String()}
	}

	events, err := r.registry.DecodeAll(envelopes)
	if err != nil {
		return nil, err
	}

	ft := &FieldType{AggregateRoot: domain.NewAggregateRoot(id)}
	for _, evt := range events {
		ft.apply(unwrap(evt))
		ft.Advance()
	}
	return ft, nil
}

// Save appends the aggregate's pending events atomically. Saving a clean
// aggregate is a no-op.
func (r *Repository) Save(ctx context.Context, ft *FieldType) error {
	pending := ft.Pending()
	if len(pending) == 0 {
		return nil
	}

	base := ft.Version() - len(pending)
	envelopes, err := eventstore.EncodeAll(ft.ID().StreamKey(StreamKind), base, pending, r.now())
	if err != nil {
		return err
	}
	if err := r.store.Append(ctx, ft.ID().StreamKey(StreamKind), base, envelopes); err != nil {
		return err
	}
	ft.ClearPending()
	return nil
}

// unwrap normalizes decoded pointer events back to the value shapes apply
// switches on.
func unwrap(evt domain.Event) domain.Event {
	switch e := evt.(type) {
	case *Created:
		return *e
	case *UniqueNameChanged:
		return *e
	case *Updated:
		return *e
	case *SettingsChanged:
		return *e
	case *Deleted:
		return *e
	default:
		return evt
	}
}
