// Package cmd holds helpers shared by the pathway subcommands.
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/pathwayhq/pathway/pkg/backend"
	"github.com/pathwayhq/pathway/pkg/config"
	"github.com/pathwayhq/pathway/pkg/db"
	"github.com/pathwayhq/pathway/pkg/store"
	"github.com/pathwayhq/pathway/pkg/store/database"
	"github.com/spf13/cobra"
)

// InitBackendContext opens the database and puts it, the store and the
// backend in the command context.
func InitBackendContext(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	if cfg == nil {
		return config.ErrNilConfig
	}
	if _, err := os.Stat(cfg.DataPath); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(cfg.DataPath, os.ModePerm); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}
	dbx, err := db.Open(ctx, cfg.DB.Driver, cfg.DB.DataSource)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	ctx = db.WithContext(ctx, dbx)
	dbstore := database.New(ctx, dbx)
	ctx = store.WithContext(ctx, dbstore)
	be, err := backend.New(ctx, cfg, dbx, dbstore)
	if err != nil {
		dbx.Close() //nolint:errcheck
		return fmt.Errorf("create backend: %w", err)
	}
	ctx = backend.WithContext(ctx, be)

	cmd.SetContext(ctx)

	return nil
}

// CloseDBContext stops the backend and closes the database.
func CloseDBContext(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if be := backend.FromContext(ctx); be != nil {
		if err := be.Close(); err != nil {
			return fmt.Errorf("close backend: %w", err)
		}
	}
	dbx := db.FromContext(ctx)
	if dbx != nil {
		if err := dbx.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
	}

	return nil
}

// WriteJSON writes v to w as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
