package content

import (
	"errors"
	"sort"

	"github.com/goliatone/go-content-engine/internal/domain"
	"github.com/google/uuid"
)

// StreamKind prefixes every content event stream key.
const StreamKind = "content"

var (
	ErrContentTypeRequired   = errors.New("content: content type reference is required")
	ErrInvariantNameRequired = errors.New("content: invariant locale unique name is required")
	ErrLocaleNameRequired    = errors.New("content: locale unique name is required")
)

// Event type identifiers for the content stream.
const (
	EventTypeCreated       = "engine.content.created"
	EventTypeLocaleSet     = "engine.content.locale_set"
	EventTypeLocaleRemoved = "engine.content.locale_removed"
	EventTypePublished     = "engine.content.published"
	EventTypeUnpublished   = "engine.content.unpublished"
	EventTypeDeleted       = "engine.content.deleted"
)

// Created records the birth of a content instance with its invariant locale.
type Created struct {
	ActorID       uuid.UUID `json:"actor_id"`
	ContentTypeID uuid.UUID `json:"content_type_id"`
	Invariant     Locale    `json:"invariant"`
}

func (Created) EventType() string { return EventTypeCreated }

// LocaleSet records a locale upsert. A nil LanguageID targets the invariant
// slot.
type LocaleSet struct {
	ActorID    uuid.UUID  `json:"actor_id"`
	LanguageID *uuid.UUID `json:"language_id,omitempty"`
	Locale     Locale     `json:"locale"`
}

func (LocaleSet) EventType() string { return EventTypeLocaleSet }

// LocaleRemoved records the removal of a language slot, including any publish
// status it carried.
type LocaleRemoved struct {
	ActorID    uuid.UUID `json:"actor_id"`
	LanguageID uuid.UUID `json:"language_id"`
}

func (LocaleRemoved) EventType() string { return EventTypeLocaleRemoved }

// Published records a publish of one locale slot.
type Published struct {
	ActorID    uuid.UUID  `json:"actor_id"`
	LanguageID *uuid.UUID `json:"language_id,omitempty"`
}

func (Published) EventType() string { return EventTypePublished }

// Unpublished records the retraction of one locale slot.
type Unpublished struct {
	ActorID    uuid.UUID  `json:"actor_id"`
	LanguageID *uuid.UUID `json:"language_id,omitempty"`
}

func (Unpublished) EventType() string { return EventTypeUnpublished }

// Deleted tombstones the content instance.
type Deleted struct {
	ActorID uuid.UUID `json:"actor_id"`
}

func (Deleted) EventType() string { return EventTypeDeleted }

// Content is an instance of a content type: one invariant locale, zero or
// more per-language locales, and an independent publish status per slot. The
// invariant slot is keyed by uuid.Nil in the status map.
//
// Publish status is a two-state freshness model on top of "absent": Latest
// means published and unchanged since, Published means published but edited
// since. Edits demote Latest to Published; re-publishing promotes back.
type Content struct {
	domain.AggregateRoot

	contentTypeID domain.AggregateID
	invariant     Locale
	locales       map[uuid.UUID]Locale
	statuses      map[uuid.UUID]domain.PublishStatus
}

// Create starts a new content instance owning its invariant locale. The
// content type must live in the same realm as the instance.
func Create(id domain.AggregateID, contentTypeID domain.AggregateID, invariant Locale, actorID uuid.UUID) (*Content, error) {
	if contentTypeID.IsZero() {
		return nil, ErrContentTypeRequired
	}
	if !contentTypeID.SameRealm(id) {
		return nil, &domain.RealmMismatchError{
			Reference: "content type",
			Expected:  id.RealmID,
			Actual:    contentTypeID.RealmID,
		}
	}
	if invariant.UniqueName.IsZero() {
		return nil, ErrInvariantNameRequired
	}

	c := newContent(id)
	c.raise(Created{
		ActorID:       actorID,
		ContentTypeID: contentTypeID.EntityID,
		Invariant:     invariant.clone(),
	})
	return c, nil
}

func newContent(id domain.AggregateID) *Content {
	return &Content{
		AggregateRoot: domain.NewAggregateRoot(id),
		locales:       make(map[uuid.UUID]Locale),
		statuses:      make(map[uuid.UUID]domain.PublishStatus),
	}
}

// ContentTypeID returns the immutable owning content type reference.
func (c *Content) ContentTypeID() domain.AggregateID { return c.contentTypeID }

// Invariant returns the invariant locale.
func (c *Content) Invariant() Locale { return c.invariant.clone() }

// Locale returns the locale stored for a language.
func (c *Content) Locale(languageID uuid.UUID) (Locale, bool) {
	locale, ok := c.locales[languageID]
	if !ok {
		return Locale{}, false
	}
	return locale.clone(), true
}

// LanguageIDs returns the existing language slots in sorted order.
func (c *Content) LanguageIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.locales))
	for languageID := range c.locales {
		ids = append(ids, languageID)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

// Status reports the publish status of a slot. A nil language targets the
// invariant slot; ok is false when the slot has never been published (or was
// unpublished).
func (c *Content) Status(languageID *uuid.UUID) (domain.PublishStatus, bool) {
	status, ok := c.statuses[slotKey(languageID)]
	return status, ok
}

// SetInvariant replaces the invariant locale. Structurally equal values are a
// no-op.
func (c *Content) SetInvariant(locale Locale, actorID uuid.UUID) error {
	if locale.UniqueName.IsZero() {
		return ErrInvariantNameRequired
	}
	if c.invariant.Equal(locale) {
		return nil
	}
	c.raise(LocaleSet{ActorID: actorID, Locale: locale.clone()})
	return nil
}

// SetLocale upserts a per-language locale. The language must live in the same
// realm as the content; structurally equal values are a no-op.
func (c *Content) SetLocale(languageID domain.AggregateID, locale Locale, actorID uuid.UUID) error {
	if !languageID.SameRealm(c.ID()) {
		return &domain.RealmMismatchError{
			Reference: "language",
			Expected:  c.ID().RealmID,
			Actual:    languageID.RealmID,
		}
	}
	if locale.UniqueName.IsZero() {
		return ErrLocaleNameRequired
	}
	if existing, ok := c.locales[languageID.EntityID]; ok && existing.Equal(locale) {
		return nil
	}
	language := languageID.EntityID
	c.raise(LocaleSet{ActorID: actorID, LanguageID: &language, Locale: locale.clone()})
	return nil
}

// RemoveLocale drops a language slot together with its publish status. It
// reports false when the slot does not exist so callers can distinguish
// "already absent" from a hard failure.
func (c *Content) RemoveLocale(languageID uuid.UUID, actorID uuid.UUID) bool {
	if _, ok := c.locales[languageID]; !ok {
		return false
	}
	c.raise(LocaleRemoved{ActorID: actorID, LanguageID: languageID})
	return true
}

// Publish promotes a slot to Latest. A nil language publishes the invariant
// slot and cascades to every existing language slot, each independently
// gated: already-Latest slots raise nothing.
func (c *Content) Publish(languageID *uuid.UUID, actorID uuid.UUID) error {
	if languageID != nil {
		if _, ok := c.locales[*languageID]; !ok {
			return &domain.NotFoundError{Resource: "content locale", Key: languageID.String()}
		}
		c.publishSlot(languageID, actorID)
		return nil
	}

	c.publishSlot(nil, actorID)
	for _, language := range c.LanguageIDs() {
		language := language
		c.publishSlot(&language, actorID)
	}
	return nil
}

func (c *Content) publishSlot(languageID *uuid.UUID, actorID uuid.UUID) {
	if status, ok := c.statuses[slotKey(languageID)]; ok && status == domain.PublishStatusLatest {
		return
	}
	c.raise(Published{ActorID: actorID, LanguageID: copyLanguage(languageID)})
}

// Unpublish retracts a slot back to absent. A nil language unpublishes the
// invariant slot and cascades to every existing language slot; never-published
// slots raise nothing.
func (c *Content) Unpublish(languageID *uuid.UUID, actorID uuid.UUID) error {
	if languageID != nil {
		if _, ok := c.locales[*languageID]; !ok {
			return &domain.NotFoundError{Resource: "content locale", Key: languageID.String()}
		}
		c.unpublishSlot(languageID, actorID)
		return nil
	}

	c.unpublishSlot(nil, actorID)
	for _, language := range c.LanguageIDs() {
		language := language
		c.unpublishSlot(&language, actorID)
	}
	return nil
}

func (c *Content) unpublishSlot(languageID *uuid.UUID, actorID uuid.UUID) {
	if _, ok := c.statuses[slotKey(languageID)]; !ok {
		return
	}
	c.raise(Unpublished{ActorID: actorID, LanguageID: copyLanguage(languageID)})
}

// Delete tombstones the content instance. Deleting twice is a no-op.
func (c *Content) Delete(actorID uuid.UUID) {
	if c.IsDeleted() {
		return
	}
	c.raise(Deleted{ActorID: actorID})
}

func (c *Content) raise(evt domain.Event) {
	c.apply(evt)
	c.Record(evt)
}

func (c *Content) apply(evt domain.Event) {
	switch e := evt.(type) {
	case Created:
		c.contentTypeID = domain.NewAggregateID(c.ID().RealmID, e.ContentTypeID)
		c.invariant = e.Invariant.clone()
	case LocaleSet:
		c.applyLocaleSet(e)
	case LocaleRemoved:
		delete(c.locales, e.LanguageID)
		delete(c.statuses, e.LanguageID)
	case Published:
		c.statuses[slotKey(e.LanguageID)] = domain.PublishStatusLatest
	case Unpublished:
		delete(c.statuses, slotKey(e.LanguageID))
	case Deleted:
		c.MarkDeleted(true)
	}
}

func (c *Content) applyLocaleSet(e LocaleSet) {
	key := slotKey(e.LanguageID)
	if e.LanguageID == nil {
		c.invariant = e.Locale.clone()
	} else {
		c.locales[*e.LanguageID] = e.Locale.clone()
	}

	// An edit never retracts visibility; it demotes a fresh publish to
	// stale-but-live.
	if c.statuses[key] == domain.PublishStatusLatest {
		c.statuses[key] = domain.PublishStatusPublished
	}
}

func slotKey(languageID *uuid.UUID) uuid.UUID {
	if languageID == nil {
		return uuid.Nil
	}
	return *languageID
}

func copyLanguage(languageID *uuid.UUID) *uuid.UUID {
	if languageID == nil {
		return nil
	}
	language := *languageID
	return &language
}
