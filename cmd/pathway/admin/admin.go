// Package admin implements the database administration commands.
package admin

import (
	"fmt"

	"github.com/pathwayhq/pathway/cmd"
	"github.com/pathwayhq/pathway/pkg/config"
	"github.com/pathwayhq/pathway/pkg/db"
	"github.com/pathwayhq/pathway/pkg/db/migrate"
	"github.com/spf13/cobra"
)

var (
	// Command is the admin command.
	Command = &cobra.Command{
		Use:   "admin",
		Short: "Administrate the server",
	}

	migrateCmd = &cobra.Command{
		Use:                "migrate",
		Short:              "Migrate the database to the latest version",
		PersistentPreRunE:  cmd.InitBackendContext,
		PersistentPostRunE: cmd.CloseDBContext,
		RunE: func(c *cobra.Command, _ []string) error {
			ctx := c.Context()
			dbx := db.FromContext(ctx)
			if err := migrate.Migrate(ctx, dbx); err != nil {
				return fmt.Errorf("migration: %w", err)
			}

			v, err := migrate.Version(ctx, dbx)
			if err != nil {
				return err
			}
			c.Printf("database at version %d\n", v)
			return nil
		},
	}

	rollbackCmd = &cobra.Command{
		Use:                "rollback",
		Short:              "Rollback the database to the previous version",
		PersistentPreRunE:  cmd.InitBackendContext,
		PersistentPostRunE: cmd.CloseDBContext,
		RunE: func(c *cobra.Command, _ []string) error {
			ctx := c.Context()
			if err := migrate.Rollback(ctx, db.FromContext(ctx)); err != nil {
				return fmt.Errorf("rollback: %w", err)
			}

			return nil
		},
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as environment variables",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg := config.FromContext(c.Context())
			for _, kv := range cfg.Environ() {
				c.Println(kv)
			}
			return nil
		},
	}
)

func init() {
	Command.AddCommand(
		migrateCmd,
		rollbackCmd,
		configCmd,
	)
}
