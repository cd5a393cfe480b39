package backend

import (
	"context"
	"errors"

	"github.com/pathwayhq/pathway/pkg/advisory"
	"github.com/pathwayhq/pathway/pkg/db"
	"github.com/pathwayhq/pathway/pkg/proto"
	"github.com/pathwayhq/pathway/pkg/store"
	"github.com/pathwayhq/pathway/pkg/utils"
)

// Setting is a raw settings record.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Setting returns the value stored under key.
func (d *Backend) Setting(ctx context.Context, key string) (Setting, error) {
	if err := utils.ValidateSettingKey(key); err != nil {
		return Setting{}, invalid("key", err)
	}

	var s Setting
	err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		m, err := d.store.GetSetting(ctx, tx, key)
		if err != nil {
			return err
		}
		s = Setting{Key: m.Key, Value: m.Value}
		return nil
	})
	err = db.WrapError(err)
	if errors.Is(err, db.ErrRecordNotFound) {
		return Setting{}, proto.ErrSettingNotFound
	}
	return s, err
}

// SetSetting stores value under key, replacing any previous value.
func (d *Backend) SetSetting(ctx context.Context, key string, value string) error {
	if err := utils.ValidateSettingKey(key); err != nil {
		return invalid("key", err)
	}

	return db.WrapError(
		d.db.TransactionContext(ctx, func(tx *db.Tx) error {
			return d.store.SetSetting(ctx, tx, key, value)
		}),
	)
}

// DeleteSetting removes key. Deleting a missing key is not an error.
func (d *Backend) DeleteSetting(ctx context.Context, key string) error {
	if err := utils.ValidateSettingKey(key); err != nil {
		return invalid("key", err)
	}

	return db.WrapError(
		d.db.TransactionContext(ctx, func(tx *db.Tx) error {
			return d.store.DeleteSetting(ctx, tx, key)
		}),
	)
}

// Settings lists the records whose key starts with prefix.
func (d *Backend) Settings(ctx context.Context, prefix string) ([]Setting, error) {
	var settings []Setting
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		ms, err := d.store.ListSettings(ctx, tx, prefix)
		if err != nil {
			return err
		}
		for _, m := range ms {
			settings = append(settings, Setting{Key: m.Key, Value: m.Value})
		}
		return nil
	}); err != nil {
		return nil, db.WrapError(err)
	}

	return settings, nil
}

// txSettings exposes the settings table of one transaction to packages
// that only need key/value access.
type txSettings struct {
	store store.SettingStore
	tx    db.Handler
}

var _ advisory.Settings = txSettings{}

// Get implements advisory.Settings.
func (s txSettings) Get(ctx context.Context, key string) (string, bool, error) {
	m, err := s.store.GetSetting(ctx, s.tx, key)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return m.Value, true, nil
}

// Set implements advisory.Settings.
func (s txSettings) Set(ctx context.Context, key string, value string) error {
	return s.store.SetSetting(ctx, s.tx, key, value)
}

// Delete implements advisory.Settings.
func (s txSettings) Delete(ctx context.Context, key string) error {
	return s.store.DeleteSetting(ctx, s.tx, key)
}
