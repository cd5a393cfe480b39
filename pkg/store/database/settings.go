package database

import (
	"context"
	"strings"

	"github.com/pathwayhq/pathway/pkg/db"
	"github.com/pathwayhq/pathway/pkg/db/models"
	"github.com/pathwayhq/pathway/pkg/store"
)

type settingsStore struct{}

var _ store.SettingStore = (*settingsStore)(nil)

// GetSetting implements store.SettingStore.
func (*settingsStore) GetSetting(ctx context.Context, tx db.Handler, key string) (models.Settings, error) {
	var s models.Settings
	query := tx.Rebind(`SELECT * FROM settings WHERE key = ?`)
	err := tx.GetContext(ctx, &s, query, key)
	return s, db.WrapError(err)
}

// SetSetting implements store.SettingStore. It inserts the key or
// overwrites its value.
func (*settingsStore) SetSetting(ctx context.Context, tx db.Handler, key string, value string) error {
	query := tx.Rebind(`INSERT INTO settings (key, value, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`)
	_, err := tx.ExecContext(ctx, query, key, value)
	return db.WrapError(err)
}

// DeleteSetting implements store.SettingStore.
func (*settingsStore) DeleteSetting(ctx context.Context, tx db.Handler, key string) error {
	query := tx.Rebind(`DELETE FROM settings WHERE key = ?`)
	_, err := tx.ExecContext(ctx, query, key)
	return db.WrapError(err)
}

// ListSettings implements store.SettingStore.
func (*settingsStore) ListSettings(ctx context.Context, tx db.Handler, prefix string) ([]models.Settings, error) {
	var all []models.Settings
	query := tx.Rebind(`SELECT * FROM settings WHERE key LIKE ? ORDER BY key`)
	if err := tx.SelectContext(ctx, &all, query, prefix+"%"); err != nil {
		return nil, db.WrapError(err)
	}

	// LIKE treats "_" as a wildcard.
	settings := all[:0]
	for _, s := range all {
		if strings.HasPrefix(s.Key, prefix) {
			settings = append(settings, s)
		}
	}
	return settings, nil
}
