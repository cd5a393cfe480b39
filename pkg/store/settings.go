package store

import (
	"context"

	"github.com/pathwayhq/pathway/pkg/db"
	"github.com/pathwayhq/pathway/pkg/db/models"
)

// SettingStore is a key/value store over the settings table.
type SettingStore interface {
	GetSetting(ctx context.Context, h db.Handler, key string) (models.Settings, error)
	SetSetting(ctx context.Context, h db.Handler, key string, value string) error
	DeleteSetting(ctx context.Context, h db.Handler, key string) error
	ListSettings(ctx context.Context, h db.Handler, prefix string) ([]models.Settings, error)
}
