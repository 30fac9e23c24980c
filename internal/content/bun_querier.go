package content

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

// ContentRow is the flat projection row for content instances, serving both
// the unique-name lookup and the content-type lookup.
type ContentRow struct {
	bun.BaseModel `bun:"table:engine_content_names,alias:cn"`

	ID            uuid.UUID `bun:",pk,type:uuid" json:"id"`
	RealmID       uuid.UUID `bun:"realm_id,type:uuid" json:"realm_id"`
	ContentTypeID uuid.UUID `bun:"content_type_id,type:uuid,notnull" json:"content_type_id"`
	UniqueName    string    `bun:"unique_name,notnull" json:"unique_name"`
	LookupKey     string    `bun:"lookup_key,notnull" json:"lookup_key"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// NewContentRowRepository creates the go-repository-bun repository managing
// projection rows. The lookup key doubles as the repository identifier.
func NewContentRowRepository(db *bun.DB) repository.Repository[*ContentRow] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*ContentRow]{
		NewRecord: func() *ContentRow { return &ContentRow{} },
		GetID: func(row *ContentRow) uuid.UUID {
			return row.ID
		},
		SetID: func(row *ContentRow, id uuid.UUID) {
			row.ID = id
		},
		GetIdentifier: func() string {
			return "lookup_key"
		},
		GetIdentifierValue: func(row *ContentRow) string {
			return row.LookupKey
		},
	})
}

// BunIndex is the bun-backed content read model covering unique-name and
// content-type lookups in one table.
type BunIndex struct {
	db   *bun.DB
	repo repository.Repository[*ContentRow]
}

// NewBunIndex wires the index without caching.
func NewBunIndex(db *bun.DB) *BunIndex {
	return NewBunIndexWithCache(db, nil, nil)
}

// NewBunIndexWithCache optionally wraps lookups with go-repository-cache.
func NewBunIndexWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunIndex {
	base := NewContentRowRepository(db)
	if cacheService != nil && keySerializer != nil {
		base = repositorycache.New(base, cacheService, keySerializer)
	}
	return &BunIndex{db: db, repo: base}
}

// CreateTables provisions the projection table for embedded deployments.
func (b *BunIndex) CreateTables(ctx context.Context) error {
	_, err := b.db.NewCreateTable().Model((*ContentRow)(nil)).IfNotExists().Exec(ctx)
	return err
}

// FindIDByUniqueName implements NameQuerier.
func (b *BunIndex) FindIDByUniqueName(ctx context.Context, realmID, contentTypeID uuid.UUID, normalized string) (uuid.UUID, error) {
	row, err := b.repo.GetByIdentifier(ctx, nameKey(realmID, contentTypeID, normalized))
	if err != nil {
		if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return uuid.Nil, nil
		}
		return uuid.Nil, err
	}
	return row.ID, nil
}

// IndexName implements NameIndexer via upsert.
func (b *BunIndex) IndexName(ctx context.Context, realmID, contentTypeID, id uuid.UUID, normalized string) error {
	_, err := b.repo.Upsert(ctx, &ContentRow{
		ID:            id,
		RealmID:       realmID,
		ContentTypeID: contentTypeID,
		UniqueName:    normalized,
		LookupKey:     nameKey(realmID, contentTypeID, normalized),
		UpdatedAt:     time.Now(),
	})
	return err
}

// RemoveName implements NameIndexer.
func (b *BunIndex) RemoveName(ctx context.Context, _, id uuid.UUID) error {
	err := b.repo.Delete(ctx, &ContentRow{ID: id})
	if err != nil && goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return nil
	}
	return err
}

// FindContentTypeIDs implements TypeQuerier.
func (b *BunIndex) FindContentTypeIDs(ctx context.Context, contentIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	out := make(map[uuid.UUID]uuid.UUID, len(contentIDs))
	if len(contentIDs) == 0 {
		return out, nil
	}

	var rows []ContentRow
	err := b.db.NewSelect().
		Model(&rows).
		Where("cn.id IN (?)", bun.In(contentIDs)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row.ContentTypeID
	}
	return out, nil
}

// FindIDsByContentType implements ListQuerier.
func (b *BunIndex) FindIDsByContentType(ctx context.Context, realmID, contentTypeID uuid.UUID) ([]uuid.UUID, error) {
	var rows []ContentRow
	err := b.db.NewSelect().
		Model(&rows).
		Where("cn.realm_id = ?", realmID).
		Where("cn.content_type_id = ?", contentTypeID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

// IndexType implements TypeIndexer. The name upsert already records the
// content type, so a standalone type index write is a no-op when the row
// exists; creation paths always index the name first.
func (b *BunIndex) IndexType(ctx context.Context, realmID, id, contentTypeID uuid.UUID) error {
	return nil
}

// RemoveType implements TypeIndexer; row removal happens with the name.
func (b *BunIndex) RemoveType(ctx context.Context, _, _ uuid.UUID) error {
	return nil
}
