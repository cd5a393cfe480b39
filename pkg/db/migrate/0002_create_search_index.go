package migrate

import (
	"context"

	"github.com/pathwayhq/pathway/pkg/db"
)

const (
	createSearchIndexName    = "create search index"
	createSearchIndexVersion = 2
)

var createSearchIndex = Migration{
	Version: createSearchIndexVersion,
	Name:    createSearchIndexName,
	Migrate: func(ctx context.Context, tx *db.Tx) error {
		return migrateUp(ctx, tx, createSearchIndexVersion, createSearchIndexName)
	},
	Rollback: func(ctx context.Context, tx *db.Tx) error {
		return migrateDown(ctx, tx, createSearchIndexVersion, createSearchIndexName)
	},
}
