package engine

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-content-engine/internal/content"
	"github.com/goliatone/go-content-engine/internal/eventstore"
	"github.com/goliatone/go-content-engine/internal/fields"
	"github.com/goliatone/go-content-engine/internal/schema"
)

// Migrate provisions the engine's tables on the supplied database: the event
// stream plus the name, usage, and content lookup projections. Intended for
// embedded/sqlite deployments and tests; managed databases should express the
// same tables through their own migration tooling.
func Migrate(ctx context.Context, db *bun.DB) error {
	steps := []interface {
		CreateTables(context.Context) error
	}{
		eventstore.NewBunStore(db),
		fields.NewBunNameIndex(db),
		schema.NewBunNameIndex(db),
		schema.NewBunUsageIndex(db),
		content.NewBunIndex(db),
	}

	for _, step := range steps {
		if err := step.CreateTables(ctx); err != nil {
			return err
		}
	}
	return nil
}
