package migrate

import (
	"context"
	"fmt"

	"github.com/pathwayhq/pathway/pkg/db"
)

const (
	createTablesName    = "create tables"
	createTablesVersion = 1
)

// defaultSettings are inserted once when the schema is created.
var defaultSettings = []struct {
	Key   string
	Value string
}{
	{"color_primary", "#2563eb"},
}

var createTables = Migration{
	Version: createTablesVersion,
	Name:    createTablesName,
	Migrate: func(ctx context.Context, tx *db.Tx) error {
		if err := migrateUp(ctx, tx, createTablesVersion, createTablesName); err != nil {
			return err
		}

		insert := "INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)"
		switch tx.DriverName() {
		case driverSQLite, driverSQLite3:
			insert = "INSERT OR IGNORE INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)"
		case driverPostgres:
			insert += " ON CONFLICT DO NOTHING"
		}

		insert = tx.Rebind(insert)
		for _, s := range defaultSettings {
			if _, err := tx.ExecContext(ctx, insert, s.Key, s.Value); err != nil {
				return fmt.Errorf("inserting default settings %q: %w", s.Key, err)
			}
		}

		return nil
	},
	Rollback: func(ctx context.Context, tx *db.Tx) error {
		return migrateDown(ctx, tx, createTablesVersion, createTablesName)
	},
}
