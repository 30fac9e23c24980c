package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions
// (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// FieldTypeUUID derives a stable id for a field type by realm and name, used
// by import flows that must be re-runnable.
func FieldTypeUUID(realm, uniqueName string) uuid.UUID {
	return UUID("go-content-engine:field_type:" + strings.TrimSpace(realm) + ":" + strings.ToLower(strings.TrimSpace(uniqueName)))
}

// ContentTypeUUID derives a stable id for a content type by realm and name.
func ContentTypeUUID(realm, uniqueName string) uuid.UUID {
	return UUID("go-content-engine:content_type:" + strings.TrimSpace(realm) + ":" + strings.ToLower(strings.TrimSpace(uniqueName)))
}

// ContentUUID derives a stable id for a content instance by realm, content
// type, and invariant unique name.
func ContentUUID(realm string, contentTypeID uuid.UUID, uniqueName string) uuid.UUID {
	return UUID("go-content-engine:content:" + strings.TrimSpace(realm) + ":" + contentTypeID.String() + ":" + strings.ToLower(strings.TrimSpace(uniqueName)))
}

// LanguageUUID derives a stable id for a language code, letting hosts map
// locale codes onto language aggregates without a registry.
func LanguageUUID(code string) uuid.UUID {
	return UUID("go-content-engine:language:" + strings.ToLower(strings.TrimSpace(code)))
}
