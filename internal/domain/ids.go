package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// AggregateID is the composite identity shared by every aggregate: an
// optional realm (tenant) boundary plus a local entity UUID. Two aggregates
// with the same entity UUID but different realms are distinct.
type AggregateID struct {
	RealmID  uuid.UUID `json:"realm_id"`
	EntityID uuid.UUID `json:"entity_id"`
}

// NewAggregateID builds a realm-scoped aggregate identity. Pass uuid.Nil as
// realmID for aggregates that live outside any realm.
func NewAggregateID(realmID, entityID uuid.UUID) AggregateID {
	return AggregateID{RealmID: realmID, EntityID: entityID}
}

// IsZero reports whether the identity carries no entity UUID.
func (id AggregateID) IsZero() bool {
	return id.EntityID == uuid.Nil
}

// SameRealm reports whether both identities belong to the same realm.
func (id AggregateID) SameRealm(other AggregateID) bool {
	return id.RealmID == other.RealmID
}

// StreamKey serializes the identity into the opaque event stream key for the
// given aggregate kind. The realm segment is empty for realm-less aggregates.
func (id AggregateID) StreamKey(kind string) string {
	realm := ""
	if id.RealmID != uuid.Nil {
		realm = id.RealmID.String()
	}
	return fmt.Sprintf("%s:%s:%s", kind, realm, id.EntityID)
}

func (id AggregateID) String() string {
	if id.RealmID == uuid.Nil {
		return id.EntityID.String()
	}
	return id.RealmID.String() + "/" + id.EntityID.String()
}
