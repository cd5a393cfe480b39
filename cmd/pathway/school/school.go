// Package school implements the school management commands.
package school

import (
	"strconv"
	"strings"

	"github.com/caarlos0/tablewriter"
	"github.com/pathwayhq/pathway/cmd"
	"github.com/pathwayhq/pathway/pkg/backend"
	"github.com/spf13/cobra"
)

// Command is the school command.
var Command = &cobra.Command{
	Use:                "school",
	Aliases:            []string{"schools"},
	Short:              "Manage schools",
	PersistentPreRunE:  cmd.InitBackendContext,
	PersistentPostRunE: cmd.CloseDBContext,
}

func init() {
	Command.AddCommand(
		&cobra.Command{
			Use:   "create NAME",
			Short: "Create a school",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				be := backend.FromContext(ctx)
				s, err := be.CreateSchool(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}

				cmd.Printf("created school %d %s\n", s.ID, s.Name)
				return nil
			},
		},
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "List schools",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx := cmd.Context()
				be := backend.FromContext(ctx)
				schools, err := be.Schools(ctx)
				if err != nil {
					return err
				}

				if len(schools) == 0 {
					cmd.Println("No schools found")
					return nil
				}

				return tablewriter.Render(
					cmd.OutOrStdout(),
					schools,
					[]string{"ID", "Name"},
					func(s backend.School) ([]string, error) {
						return []string{strconv.FormatInt(s.ID, 10), s.Name}, nil
					},
				)
			},
		},
	)
}
