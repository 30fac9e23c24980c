package content

import (
	"context"
	"time"

	"github.com/goliatone/go-content-engine/internal/domain"
	"github.com/goliatone/go-content-engine/internal/eventstore"
)

func newEventRegistry() *eventstore.Registry {
	registry := eventstore.NewRegistry()
	registry.Register(EventTypeCreated, func() domain.Event { return &Created{} })
	registry.Register(EventTypeLocaleSet, func() domain.Event { return &LocaleSet{} })
	registry.Register(EventTypeLocaleRemoved, func() domain.Event { return &LocaleRemoved{} })
	registry.Register(EventTypePublished, func() domain.Event { return &Published{} })
	registry.Register(EventTypeUnpublished, func() domain.Event { return &Unpublished{} })
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

// Repository loads and saves content aggregates against an event stream.
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

// Get replays the current state of a content instance.
func (r *Repository) Get(ctx context.Context, id domain.AggregateID) (*Content, error) {
	return r.load(ctx, id, eventstore.LoadAll)
}

// GetAt replays the content instance as of a historical version.
func (r *Repository) GetAt(ctx context.Context, id domain.AggregateID, version int) (*Content, error) {
	return r.load(ctx, id, version)
}

func (r *Repository) load(ctx context.Context, id domain.AggregateID, atVersion int) (*Content, error) {
	envelopes, err := r.store.Load(ctx, id.StreamKey(StreamKind), atVersion)
	if err != nil {
		return nil, err
	}
	if len(envelopes) == 0 {
		return nil, &domain.NotFoundError{Resource: "content", Key: id.String()}
	}

	events, err := r.registry.DecodeAll(envelopes)
	if err != nil {
		return nil, err
	}

	c := newContent(id)
	for _, evt := range events {
		c.apply(unwrap(evt))
		c.Advance()
	}
	return c, nil
}

// Save appends the aggregate's pending events atomically.
func (r *Repository) Save(ctx context.Context, c *Content) error {
	pending := c.Pending()
	if len(pending) == 0 {
		return nil
	}

	base := c.Version() - len(pending)
	key := c.ID().StreamKey(StreamKind)
	envelopes, err := eventstore.EncodeAll(key, base, pending, r.now())
	if err != nil {
		return err
	}
	if err := r.store.Append(ctx, key, base, envelopes); err != nil {
		return err
	}
	c.ClearPending()
	return nil
}

func unwrap(evt domain.Event) domain.Event {
	switch e := evt.(type) {
	case *Created:
		return *e
	case *LocaleSet:
		return *e
	case *LocaleRemoved:
		return *e
	case *Published:
		return *e
	case *Unpublished:
		return *e
	case *Deleted:
		return *e
	default:
		return evt
	}
}
