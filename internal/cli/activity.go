package cli

import (
	"github.com/spf13/cobra"

	"github.com/rpggio/flowboard/internal/mcp"
)

func newActivityCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent changes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var params mcp.RecentActivityParams
			params.Collection, _ = cmd.Flags().GetString("collection")
			params.Limit, _ = cmd.Flags().GetInt("limit")
			if cmd.Flags().Changed("entity") {
				entityID, _ := cmd.Flags().GetInt64("entity")
				params.EntityID = &entityID
			}
			return runAndPrint(cmd, opts, "recent_activity", params)
		},
	}
	cmd.Flags().String("collection", "", "projects or tasks")
	cmd.Flags().Int64("entity", 0, "Project or task ID")
	cmd.Flags().Int("limit", 20, "Max entries")
	return cmd
}
