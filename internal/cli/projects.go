package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rpggio/flowboard/internal/domain/project"
	"github.com/rpggio/flowboard/internal/mcp"
)

func newProjectsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "List and edit projects",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.openSession(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			result, err := s.call(cmd.Context(), "list_projects", nil)
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return printJSON(cmd.OutOrStdout(), result)
			}

			state := result.(project.State)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCOLOR\tCREATED")
			for _, p := range state.Projects {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.Color, p.CreatedAt.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
	list.Flags().Bool("json", false, "Print the store state as JSON")

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			description, _ := cmd.Flags().GetString("description")
			color, _ := cmd.Flags().GetString("color")
			return runAndPrint(cmd, opts, "create_project", mcp.CreateProjectParams{
				Name:        name,
				Description: description,
				Color:       color,
			})
		},
	}
	create.Flags().String("name", "", "Project name (required)")
	create.Flags().String("description", "", "Project description")
	create.Flags().String("color", "", "Display color")
	_ = create.MarkFlagRequired("name")

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runAndPrint(cmd, opts, "update_project", mcp.UpdateProjectParams{
				ID:          id,
				Name:        changedString(cmd, "name"),
				Description: changedString(cmd, "description"),
				Color:       changedString(cmd, "color"),
			})
		},
	}
	update.Flags().String("name", "", "New name")
	update.Flags().String("description", "", "New description")
	update.Flags().String("color", "", "New color")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project (its tasks are kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runAndPrint(cmd, opts, "delete_project", mcp.IDParams{ID: id})
		},
	}

	cmd.AddCommand(list, create, update, del)
	return cmd
}

// runAndPrint opens a session, runs method and prints its result as JSON.
func runAndPrint(cmd *cobra.Command, opts *rootOptions, method string, params any) error {
	s, err := opts.openSession(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := s.call(cmd.Context(), method, params)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

// changedString returns the flag value only if it was set on the command line.
func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}
