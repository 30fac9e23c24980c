package fields

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// FieldTypeRow is the flat unique-name projection row for field types.
type FieldTypeRow struct {
	bun.BaseModel `bun:"table:engine_field_type_names,alias:ftn"`

	ID         uuid.UUID `bun:",pk,type:uuid" json:"id"`
	RealmID    uuid.UUID `bun:"realm_id,type:uuid" json:"realm_id"`
	UniqueName string    `bun:"unique_name,notnull" json:"unique_name"`
	LookupKey  string    `bun:"lookup_key,notnull" json:"lookup_key"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// NewFieldTypeRowRepository creates the go-repository-bun repository managing
// projection rows. The lookup key doubles as the repository identifier.
func NewFieldTypeRowRepository(db *bun.DB) repository.Repository[*FieldTypeRow] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*FieldTypeRow]{
		NewRecord: func() *FieldTypeRow { return &FieldTypeRow{} },
		GetID: func(row *FieldTypeRow) uuid.UUID {
			return row.ID
		},
		SetID: func(row *FieldTypeRow, id uuid.UUID) {
			row.ID = id
		},
		GetIdentifier: func() string {
			return "lookup_key"
		},
		GetIdentifierValue: func(row *FieldTypeRow) string {
			return row.LookupKey
		},
	})
}

// BunNameIndex is the bun-backed unique-name read model for field types.
type BunNameIndex struct {
	db   *bun.DB
	repo repository.Repository[*FieldTypeRow]
}

// NewBunNameIndex wires the index without caching.
func NewBunNameIndex(db *bun.DB) *BunNameIndex {
	return NewBunNameIndexWithCache(db, nil, nil)
}

// NewBunNameIndexWithCache optionally wraps lookups with go-repository-cache.
func NewBunNameIndexWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunNameIndex {
	base := NewFieldTypeRowRepository(db)
	if cacheService != nil && keySerializer != nil {
		base = repositorycache.New(base, cacheService, keySerializer)
	}
	return &BunNameIndex{db: db, repo: base}
}

// CreateTables provisions the projection table for embedded deployments.
func (b *BunNameIndex) CreateTables(ctx context.Context) error {
	_, err := b.db.NewCreateTable().Model((*FieldTypeRow)(nil)).IfNotExists().Exec(ctx)
	return err
}

// FindIDByUniqueName implements NameQuerier.
func (b *BunNameIndex) FindIDByUniqueName(ctx context.Context, realmID uuid.UUID, normalized string) (uuid.UUID, error) {
	row, err := b.repo.GetByIdentifier(ctx, nameKey(realmID, normalized))
	if err != nil {
		if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return uuid.Nil, nil
		}
		return uuid.Nil, err
	}
	return row.ID, nil
}

// IndexName implements NameIndexer via upsert.
func (b *BunNameIndex) IndexName(ctx context.Context, realmID, id uuid.UUID, normalized string) error {
	_, err := b.repo.Upsert(ctx, &FieldTypeRow{
		ID:         id,
		RealmID:    realmID,
		UniqueName: normalized,
		LookupKey:  nameKey(realmID, normalized),
		UpdatedAt:  time.Now(),
	})
	return err
}

// RemoveName implements NameIndexer.
func (b *BunNameIndex) RemoveName(ctx context.Context, _, id uuid.UUID) error {
	err := b.repo.Delete(ctx, &FieldTypeRow{ID: id})
	if err != nil && goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return nil
	}
	return err
}
