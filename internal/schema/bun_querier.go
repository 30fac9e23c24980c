package schema

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

// ContentTypeRow is the flat unique-name projection row for content types.
type ContentTypeRow struct {
	bun.BaseModel `bun:"table:engine_content_type_names,alias:ctn"`

	ID         uuid.UUID `bun:",pk,type:uuid" json:"id"`
	RealmID    uuid.UUID `bun:"realm_id,type:uuid" json:"realm_id"`
	UniqueName string    `bun:"unique_name,notnull" json:"unique_name"`
	LookupKey  string    `bun:"lookup_key,notnull" json:"lookup_key"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// FieldUsageRow records that a content type carries a field of a given field
// type. One row per (content type, field type) pair.
type FieldUsageRow struct {
	bun.BaseModel `bun:"table:engine_field_usages,alias:fu"`

	ID            uuid.UUID `bun:",pk,type:uuid" json:"id"`
	RealmID       uuid.UUID `bun:"realm_id,type:uuid" json:"realm_id"`
	ContentTypeID uuid.UUID `bun:"content_type_id,type:uuid,notnull" json:"content_type_id"`
	FieldTypeID   uuid.UUID `bun:"field_type_id,type:uuid,notnull" json:"field_type_id"`
	LookupKey     string    `bun:"lookup_key,notnull" json:"lookup_key"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// NewContentTypeRowRepository creates the go-repository-bun repository
// managing name projection rows. The lookup key doubles as the repository
// identifier.
func NewContentTypeRowRepository(db *bun.DB) repository.Repository[*ContentTypeRow] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*ContentTypeRow]{
		NewRecord: func() *ContentTypeRow { return &ContentTypeRow{} },
		GetID: func(row *ContentTypeRow) uuid.UUID {
			return row.ID
		},
		SetID: func(row *ContentTypeRow, id uuid.UUID) {
			row.ID = id
		},
		GetIdentifier: func() string {
			return "lookup_key"
		},
		GetIdentifierValue: func(row *ContentTypeRow) string {
			return row.LookupKey
		},
	})
}

// NewFieldUsageRowRepository creates the go-repository-bun repository managing
// usage rows.
func NewFieldUsageRowRepository(db *bun.DB) repository.Repository[*FieldUsageRow] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*FieldUsageRow]{
		NewRecord: func() *FieldUsageRow { return &FieldUsageRow{} },
		GetID: func(row *FieldUsageRow) uuid.UUID {
			return row.ID
		},
		SetID: func(row *FieldUsageRow, id uuid.UUID) {
			row.ID = id
		},
		GetIdentifier: func() string {
			return "lookup_key"
		},
		GetIdentifierValue: func(row *FieldUsageRow) string {
			return row.LookupKey
		},
	})
}

// BunNameIndex is the bun-backed unique-name read model for content types.
type BunNameIndex struct {
	db   *bun.DB
	repo repository.Repository[*ContentTypeRow]
}

// NewBunNameIndex wires the index without caching.
func NewBunNameIndex(db *bun.DB) *BunNameIndex {
	return NewBunNameIndexWithCache(db, nil, nil)
}

// NewBunNameIndexWithCache optionally wraps lookups with go-repository-cache.
func NewBunNameIndexWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunNameIndex {
	base := NewContentTypeRowRepository(db)
	if cacheService != nil && keySerializer != nil {
		base = repositorycache.New(base, cacheService, keySerializer)
	}
	return &BunNameIndex{db: db, repo: base}
}

// CreateTables provisions the projection table for embedded deployments.
func (b *BunNameIndex) CreateTables(ctx context.Context) error {
	_, err := b.db.NewCreateTable().Model((*ContentTypeRow)(nil)).IfNotExists().Exec(ctx)
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
	_, err := b.repo.Upsert(ctx, &ContentTypeRow{
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
	err := b.repo.Delete(ctx, &ContentTypeRow{ID: id})
	if err != nil && goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return nil
	}
	return err
}

// BunUsageIndex is the bun-backed field-type usage read model. Each save
// replaces the schema's rows wholesale, keeping the projection idempotent.
type BunUsageIndex struct {
	db   *bun.DB
	repo repository.Repository[*FieldUsageRow]
}

// NewBunUsageIndex wires the usage index.
func NewBunUsageIndex(db *bun.DB) *BunUsageIndex {
	return &BunUsageIndex{db: db, repo: NewFieldUsageRowRepository(db)}
}

// CreateTables provisions the usage table for embedded deployments.
func (b *BunUsageIndex) CreateTables(ctx context.Context) error {
	_, err := b.db.NewCreateTable().Model((*FieldUsageRow)(nil)).IfNotExists().Exec(ctx)
	return err
}

// FindIDsByFieldType implements UsageQuerier.
func (b *BunUsageIndex) FindIDsByFieldType(ctx context.Context, realmID, fieldTypeID uuid.UUID) ([]uuid.UUID, error) {
	var rows []FieldUsageRow
	err := b.db.NewSelect().
		Model(&rows).
		Where("fu.realm_id = ?", realmID).
		Where("fu.field_type_id = ?", fieldTypeID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ContentTypeID)
	}
	return ids, nil
}

// IndexUsage implements UsageIndexer.
func (b *BunUsageIndex) IndexUsage(ctx context.Context, realmID, contentTypeID uuid.UUID, fieldTypeIDs []uuid.UUID) error {
	if err := b.RemoveUsage(ctx, realmID, contentTypeID); err != nil {
		return err
	}
	now := time.Now()
	for _, fieldTypeID := range fieldTypeIDs {
		_, err := b.repo.Upsert(ctx, &FieldUsageRow{
			ID:            uuid.New(),
			RealmID:       realmID,
			ContentTypeID: contentTypeID,
			FieldTypeID:   fieldTypeID,
			LookupKey:     contentTypeID.String() + ":" + fieldTypeID.String(),
			UpdatedAt:     now,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// RemoveUsage implements UsageIndexer.
func (b *BunUsageIndex) RemoveUsage(ctx context.Context, _, contentTypeID uuid.UUID) error {
	_, err := b.db.NewDelete().
		Model((*FieldUsageRow)(nil)).
		Where("content_type_id = ?", contentTypeID).
		Exec(ctx)
	return err
}
