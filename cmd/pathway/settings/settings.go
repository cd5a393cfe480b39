// Package settings implements the settings commands.
package settings

import (
	"github.com/caarlos0/tablewriter"
	"github.com/pathwayhq/pathway/cmd"
	"github.com/pathwayhq/pathway/pkg/backend"
	"github.com/spf13/cobra"
)

// Command manages raw settings records.
var Command = &cobra.Command{
	Use:                "settings",
	Short:              "Manage settings",
	PersistentPreRunE:  cmd.InitBackendContext,
	PersistentPostRunE: cmd.CloseDBContext,
}

// truncate shortens long values in listings.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	var asJSON bool
	listCmd := &cobra.Command{
		Use:     "list [PREFIX]",
		Aliases: []string{"ls"},
		Short:   "List settings",
		Args:    cobra.RangeArgs(0, 1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)
			var prefix string
			if len(args) > 0 {
				prefix = args[0]
			}

			settings, err := be.Settings(ctx, prefix)
			if err != nil {
				return err
			}
			if asJSON {
				if settings == nil {
					settings = []backend.Setting{}
				}
				return cmd.WriteJSON(c.OutOrStdout(), settings)
			}
			if len(settings) == 0 {
				c.Println("No settings found")
				return nil
			}

			return tablewriter.Render(
				c.OutOrStdout(),
				settings,
				[]string{"Key", "Value"},
				func(s backend.Setting) ([]string, error) {
					return []string{s.Key, truncate(s.Value, 60)}, nil
				},
			)
		},
	}
	listCmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")

	Command.AddCommand(
		listCmd,
		&cobra.Command{
			Use:   "get KEY",
			Short: "Print a setting",
			Args:  cobra.ExactArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				ctx := c.Context()
				s, err := backend.FromContext(ctx).Setting(ctx, args[0])
				if err != nil {
					return err
				}

				c.Println(s.Value)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set KEY VALUE",
			Short: "Store a setting",
			Args:  cobra.ExactArgs(2),
			RunE: func(c *cobra.Command, args []string) error {
				ctx := c.Context()
				return backend.FromContext(ctx).SetSetting(ctx, args[0], args[1])
			},
		},
		&cobra.Command{
			Use:     "delete KEY",
			Aliases: []string{"rm"},
			Short:   "Delete a setting",
			Args:    cobra.ExactArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				ctx := c.Context()
				return backend.FromContext(ctx).DeleteSetting(ctx, args[0])
			},
		},
	)
}
