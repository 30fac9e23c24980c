package content_test

import (
	"context"
	"testing"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-content-engine/internal/content"
	"github.com/goliatone/go-content-engine/pkg/testsupport"
)

func newBunIndex(t *testing.T) *content.BunIndex {
	t.Helper()

	sqlDB, err := testsupport.NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	bunDB := bun.NewDB(sqlDB, sqlitedialect.New())
	bunDB.SetMaxOpenConns(1)

	cacheCfg := repocache.DefaultConfig()
	cacheCfg.TTL = time.Minute
	cacheSvc, err := repocache.NewCacheService(cacheCfg)
	if err != nil {
		t.Fatalf("cache service: %v", err)
	}

	index := content.NewBunIndexWithCache(bunDB, cacheSvc, repocache.NewDefaultKeySerializer())
	if err := index.CreateTables(context.Background()); err != nil {
		t.Fatalf("create tables: %v", err)
	}
	return index
}

func TestBunIndexNameLookup(t *testing.T) {
	index := newBunIndex(t)
	ctx := context.Background()

	realm := uuid.New()
	contentType := uuid.New()
	id := uuid.New()

	if err := index.IndexName(ctx, realm, contentType, id, "welcome"); err != nil {
		t.Fatalf("index name: %v", err)
	}

	found, err := index.FindIDByUniqueName(ctx, realm, contentType, "welcome")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found != id {
		t.Fatalf("expected %s, got %s", id, found)
	}

	missing, err := index.FindIDByUniqueName(ctx, realm, contentType, "absent")
	if err != nil {
		t.Fatalf("find absent: %v", err)
	}
	if missing != uuid.Nil {
		t.Fatalf("expected nil id for unknown name, got %s", missing)
	}

	// Same name under another content type resolves independently.
	otherType := uuid.New()
	other, err := index.FindIDByUniqueName(ctx, realm, otherType, "welcome")
	if err != nil {
		t.Fatalf("find other type: %v", err)
	}
	if other != uuid.Nil {
		t.Fatalf("expected name to be scoped per content type, got %s", other)
	}
}

func TestBunIndexTypeLookups(t *testing.T) {
	index := newBunIndex(t)
	ctx := context.Background()

	realm := uuid.New()
	contentType := uuid.New()
	first := uuid.New()
	second := uuid.New()

	if err := index.IndexName(ctx, realm, contentType, first, "first"); err != nil {
		t.Fatalf("index first: %v", err)
	}
	if err := index.IndexName(ctx, realm, contentType, second, "second"); err != nil {
		t.Fatalf("index second: %v", err)
	}

	types, err := index.FindContentTypeIDs(ctx, []uuid.UUID{first, second, uuid.New()})
	if err != nil {
		t.Fatalf("find content type ids: %v", err)
	}
	if len(types) != 2 || types[first] != contentType || types[second] != contentType {
		t.Fatalf("unexpected type map: %#v", types)
	}

	ids, err := index.FindIDsByContentType(ctx, realm, contentType)
	if err != nil {
		t.Fatalf("find ids by content type: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 instances, got %v", ids)
	}
}

func TestBunIndexRemoveName(t *testing.T) {
	index := newBunIndex(t)
	ctx := context.Background()

	realm := uuid.New()
	contentType := uuid.New()
	id := uuid.New()

	if err := index.IndexName(ctx, realm, contentType, id, "ephemeral"); err != nil {
		t.Fatalf("index name: %v", err)
	}
	if err := index.RemoveName(ctx, realm, id); err != nil {
		t.Fatalf("remove name: %v", err)
	}
	if err := index.RemoveName(ctx, realm, id); err != nil {
		t.Fatalf("repeat remove should be silent: %v", err)
	}

	found, err := index.FindIDByUniqueName(ctx, realm, contentType, "ephemeral")
	if err != nil {
		t.Fatalf("find after remove: %v", err)
	}
	if found != uuid.Nil {
		t.Fatalf("expected released name, got %s", found)
	}
}
