package commands

import (
	"github.com/grindlemire/graft"
	"github.com/spf13/cobra"
	"go.trai.ch/rex/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [targets...]",
		Short: "Build the specified targets",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Help()
				return nil
			}

			// Components are materialized here, after flag parsing, so
			// the options node sees the final flag values.
			components, _, err := graft.ExecuteFor[*app.Components](cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = components.App.Close() }()

			force, _ := cmd.Flags().GetBool("force")
			return components.App.Run(cmd.Context(), args, app.RunOptions{
				Force: force,
			})
		},
	}
	cmd.Flags().BoolP("force", "f", false, "Force rebuild, bypassing build stamps")
	return cmd
}
