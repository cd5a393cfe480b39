// Package database implements store.Store on top of SQL.
package database

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/pathwayhq/pathway/pkg/config"
	"github.com/pathwayhq/pathway/pkg/db"
	"github.com/pathwayhq/pathway/pkg/store"
)

type datastore struct {
	ctx    context.Context
	cfg    *config.Config
	db     *db.DB
	logger *log.Logger

	*settingsStore
	*userStore
	*schoolStore
	*orgStore
	*editionStore
	*activityStore
	*volunteeringStore
	*embeddingStore
}

// New returns a new store.Store database.
func New(ctx context.Context, db *db.DB) store.Store {
	cfg := config.FromContext(ctx)
	logger := log.FromContext(ctx).WithPrefix("store")

	s := &datastore{
		ctx:    ctx,
		cfg:    cfg,
		db:     db,
		logger: logger,

		settingsStore:     &settingsStore{},
		userStore:         &userStore{},
		schoolStore:       &schoolStore{},
		orgStore:          &orgStore{},
		editionStore:      &editionStore{},
		activityStore:     &activityStore{},
		volunteeringStore: &volunteeringStore{},
		embeddingStore:    &embeddingStore{},
	}

	return s
}
