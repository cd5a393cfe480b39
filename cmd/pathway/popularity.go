package main

import (
	"fmt"
	"time"

	"github.com/pathwayhq/pathway/cmd"
	"github.com/pathwayhq/pathway/pkg/backend"
	"github.com/spf13/cobra"
)

var popularityCmd = &cobra.Command{
	Use:                "popularity",
	Short:              "Recompute edition popularity scores",
	Args:               cobra.NoArgs,
	PersistentPreRunE:  cmd.InitBackendContext,
	PersistentPostRunE: cmd.CloseDBContext,
	RunE: func(c *cobra.Command, _ []string) error {
		ctx := c.Context()
		be := backend.FromContext(ctx)

		start := time.Now()
		res, err := be.RecomputePopularity(ctx)
		if err != nil {
			return fmt.Errorf("recompute popularity after %d updates: %w", res.Updated, err)
		}

		c.Printf("updated %d editions in %s\n", res.Updated, time.Since(start).Round(time.Millisecond))
		return nil
	},
}
