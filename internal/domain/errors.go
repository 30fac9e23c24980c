package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrValueRequired = errors.New("domain: value is required")
	ErrValueTooLong  = errors.New("domain: value exceeds maximum length")
	ErrValueInvalid  = errors.New("domain: value contains invalid characters")
)

// NotFoundError represents missing aggregates or records. Callers treat it as
// recoverable (404-equivalent), never fatal.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// UniqueNameTakenError is the conflict surfaced when a create or rename
// collides with another aggregate holding the same normalized unique name in
// the same realm. Both the offending value and the conflicting id are
// reported verbatim.
type UniqueNameTakenError struct {
	Resource      string
	UniqueName    string
	RealmID       uuid.UUID
	ConflictingID uuid.UUID
}

func (e *UniqueNameTakenError) Error() string {
	return fmt.Sprintf("%s unique name %q already used by %s", e.Resource, e.UniqueName, e.ConflictingID)
}

// RealmMismatchError signals a cross-aggregate reference whose realm differs
// from its owner. This is a hard invariant violation, not a business rule.
type RealmMismatchError struct {
	Reference string
	Expected  uuid.UUID
	Actual    uuid.UUID
}

func (e *RealmMismatchError) Error() string {
	return fmt.Sprintf("%s realm %s does not match aggregate realm %s", e.Reference, realmLabel(e.Actual), realmLabel(e.Expected))
}

func realmLabel(id uuid.UUID) string {
	if id == uuid.Nil {
		return "<none>"
	}
	return id.String()
}
