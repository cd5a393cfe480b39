// Package user implements the user management commands.
package user

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/caarlos0/duration"
	"github.com/caarlos0/tablewriter"
	"github.com/dustin/go-humanize"
	"github.com/pathwayhq/pathway/cmd"
	"github.com/pathwayhq/pathway/pkg/access"
	"github.com/pathwayhq/pathway/pkg/backend"
	"github.com/pathwayhq/pathway/pkg/config"
	"github.com/pathwayhq/pathway/pkg/proto"
	"github.com/spf13/cobra"
)

// Command is the user command.
var Command = &cobra.Command{
	Use:                "user",
	Aliases:            []string{"users"},
	Short:              "Manage users",
	PersistentPreRunE:  cmd.InitBackendContext,
	PersistentPostRunE: cmd.CloseDBContext,
}

// lookup finds a user by id or email.
func lookup(ctx context.Context, be *backend.Backend, arg string) (proto.User, error) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return be.UserByID(ctx, id)
	}
	return be.UserByEmail(ctx, arg)
}

func parseRole(s string) (access.Role, error) {
	role := access.ParseRole(s)
	if role < 0 || role == access.Anonymous {
		return role, fmt.Errorf("invalid role %q", s)
	}
	return role, nil
}

func init() {
	var (
		name     string
		roleName string
		schoolID int64
	)
	userCreateCommand := &cobra.Command{
		Use:   "create EMAIL",
		Short: "Create a new user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)
			role, err := parseRole(roleName)
			if err != nil {
				return err
			}

			u, err := be.CreateUser(ctx, args[0], proto.UserOptions{
				Name:     name,
				Role:     role,
				SchoolID: schoolID,
			})
			if err != nil {
				return err
			}

			cmd.Printf("created user %d %s\n", u.ID(), u.Email())
			return nil
		},
	}
	userCreateCommand.Flags().StringVarP(&name, "name", "n", "", "display name of the user")
	userCreateCommand.Flags().StringVarP(&roleName, "role", "r", access.Student.String(), "role of the user (student, advisor, organization, admin)")
	userCreateCommand.Flags().Int64Var(&schoolID, "school", 0, "id of the user's school")

	userDeleteCommand := &cobra.Command{
		Use:   "delete ID|EMAIL",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)
			u, err := lookup(ctx, be, args[0])
			if err != nil {
				return err
			}

			return be.DeleteUser(ctx, u.ID())
		},
	}

	userListCommand := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List users",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)
			users, err := be.Users(ctx)
			if err != nil {
				return err
			}

			if len(users) == 0 {
				cmd.Println("No users found")
				return nil
			}

			return tablewriter.Render(
				cmd.OutOrStdout(),
				users,
				[]string{"ID", "Email", "Name", "Role", "School"},
				func(u proto.User) ([]string, error) {
					school := "-"
					if u.SchoolID() > 0 {
						school = strconv.FormatInt(u.SchoolID(), 10)
					}
					return []string{
						strconv.FormatInt(u.ID(), 10),
						u.Email(),
						u.Name(),
						u.Role().String(),
						school,
					}, nil
				},
			)
		},
	}

	userSetRoleCommand := &cobra.Command{
		Use:   "set-role ID|EMAIL ROLE",
		Short: "Change the role of a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)
			role, err := parseRole(args[1])
			if err != nil {
				return err
			}
			u, err := lookup(ctx, be, args[0])
			if err != nil {
				return err
			}

			return be.SetUserRole(ctx, u.ID(), role)
		},
	}

	userSetSchoolCommand := &cobra.Command{
		Use:   "set-school ID|EMAIL SCHOOL_ID",
		Short: "Move a user to a school",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)
			sid, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid school id %q", args[1])
			}
			u, err := lookup(ctx, be, args[0])
			if err != nil {
				return err
			}

			return be.SetUserSchool(ctx, u.ID(), sid)
		},
	}

	var expiresIn string
	userTokenCommand := &cobra.Command{
		Use:   "token ID|EMAIL",
		Short: "Generate a session token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)
			u, err := lookup(ctx, be, args[0])
			if err != nil {
				return err
			}

			d := config.FromContext(ctx).Auth.TokenExpiry
			if expiresIn != "" {
				d, err = duration.Parse(expiresIn)
				if err != nil {
					return err
				}
			}
			if d <= 0 {
				d = backend.DefaultTokenExpiry
			}

			token, err := be.GenerateToken(ctx, u, d)
			if err != nil {
				return err
			}

			cmd.PrintErrln("Token created (expires " + humanize.Time(time.Now().Add(d)) + ")")
			cmd.Println(token)
			return nil
		},
	}
	userTokenCommand.Flags().StringVar(&expiresIn, "expires-in", "", "token expiration time (e.g. 1y, 3mo, 2w, 5d4h, 1h30m)")

	Command.AddCommand(
		userCreateCommand,
		userDeleteCommand,
		userListCommand,
		userSetRoleCommand,
		userSetSchoolCommand,
		userTokenCommand,
	)
}
