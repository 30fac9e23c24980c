package schema

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
	registry.Register(EventTypeFieldSet, func() domain.Event { return &FieldSet{} })
	registry.Register(EventTypeFieldRemoved, func() domain.Event { return &FieldRemoved{} })
	registry.Register(EventTypeFieldsSwitched, func() domain.Event { return &FieldsSwitched{} })
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

// Repository loads and saves content type aggregates against an event stream.
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

// Get replays the current state of a content type.
func (r *Repository) Get(ctx context.Context, id domain.AggregateID) (*ContentType, error) {
	return r.load(ctx, id, eventstore.LoadAll)
}

// GetAt replays the content type as of a historical version, serving as the
// diff baseline for reference-version replace operations.
func (r *Repository) GetAt(ctx context.Context, id domain.AggregateID, version int) (*ContentType, error) {
	return r.load(ctx, id, version)
}

func (r *Repository) load(ctx context.Context, id domain.AggregateID, atVersion int) (*ContentType, error) {
	envelopes, err := r.store.Load(ctx, id.StreamKey(StreamKind), atVersion)
	if err != nil {
		return nil, err
	}
	if len(envelopes) == 0 {
		return nil, &domain.NotFoundError{Resource: "content type", Key: id.String()}
	}

	events, err := r.registry.DecodeAll(envelopes)
	if err != nil {
		return nil, err
	}

	ct := newContentType(id)
	for _, evt := range events {
		ct.apply(unwrap(evt))
		ct.Advance()
	}
	return ct, nil
}

// Save appends the aggregate's pending events atomically.
func (r *Repository) Save(ctx context.Context, ct *ContentType) error {
	pending := ct.Pending()
	if len(pending) == 0 {
		return nil
	}

	base := ct.Version() - len(pending)
	key := ct.ID().StreamKey(StreamKind)
	envelopes, err := eventstore.EncodeAll(key, base, pending, r.now())
	if err != nil {
		return err
	}
	if err := r.store.Append(ctx, key, base, envelopes); err != nil {
		return err
	}
	ct.ClearPending()
	return nil
}

func unwrap(evt domain.Event) domain.Event {
	switch e := evt.(type) {
	case *Created:
		return *e
	case *UniqueNameChanged:
		return *e
	case *Updated:
		return *e
	case *FieldSet:
		return *e
	case *FieldRemoved:
		return *e
	case *FieldsSwitched:
		return *e
	case *Deleted:
		return *e
	default:
		return evt
	}
}
