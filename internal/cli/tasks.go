package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rpggio/flowboard/internal/domain/task"
	"github.com/rpggio/flowboard/internal/mcp"
)

func newTasksCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "List, edit and reorder tasks",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List tasks in board order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var params mcp.ListTasksParams
			if cmd.Flags().Changed("project") {
				projectID, _ := cmd.Flags().GetInt64("project")
				params.ProjectID = &projectID
			}

			s, err := opts.openSession(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			result, err := s.call(cmd.Context(), "list_tasks", params)
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return printJSON(cmd.OutOrStdout(), result)
			}

			resp := result.(mcp.TaskListResponse)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tPROJECT\tSTATUS\tPRIORITY\tTITLE")
			for _, t := range resp.Tasks {
				fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", t.ID, t.ProjectID, t.Status, t.Priority, t.Title)
			}
			return tw.Flush()
		},
	}
	list.Flags().Int64("project", 0, "Only list tasks of this project")
	list.Flags().Bool("json", false, "Print the store state as JSON")

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			projectID, _ := cmd.Flags().GetInt64("project")
			title, _ := cmd.Flags().GetString("title")
			description, _ := cmd.Flags().GetString("description")
			status, _ := cmd.Flags().GetString("status")
			priority, _ := cmd.Flags().GetString("priority")
			return runAndPrint(cmd, opts, "create_task", mcp.CreateTaskParams{
				ProjectID:   projectID,
				Title:       title,
				Description: description,
				Status:      task.Status(status),
				Priority:    task.Priority(priority),
			})
		},
	}
	create.Flags().Int64("project", 0, "Owning project ID (required)")
	create.Flags().String("title", "", "Task title (required)")
	create.Flags().String("description", "", "Task description")
	create.Flags().String("status", "", "todo, in_progress or done (default todo)")
	create.Flags().String("priority", "", "low, medium or high (default medium)")
	_ = create.MarkFlagRequired("project")
	_ = create.MarkFlagRequired("title")

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			params := mcp.UpdateTaskParams{
				ID:          id,
				Title:       changedString(cmd, "title"),
				Description: changedString(cmd, "description"),
			}
			if cmd.Flags().Changed("project") {
				projectID, _ := cmd.Flags().GetInt64("project")
				params.ProjectID = &projectID
			}
			if v := changedString(cmd, "status"); v != nil {
				status := task.Status(*v)
				params.Status = &status
			}
			if v := changedString(cmd, "priority"); v != nil {
				priority := task.Priority(*v)
				params.Priority = &priority
			}
			return runAndPrint(cmd, opts, "update_task", params)
		},
	}
	update.Flags().Int64("project", 0, "Move to this project")
	update.Flags().String("title", "", "New title")
	update.Flags().String("description", "", "New description")
	update.Flags().String("status", "", "New status")
	update.Flags().String("priority", "", "New priority")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runAndPrint(cmd, opts, "delete_task", mcp.IDParams{ID: id})
		},
	}

	reorder := &cobra.Command{
		Use:   "reorder --project <id> [task-id...]",
		Short: "Set the order of a project's tasks; unlisted tasks of the project are removed",
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, _ := cmd.Flags().GetInt64("project")
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return runAndPrint(cmd, opts, "update_task_order", mcp.UpdateTaskOrderParams{
				ProjectID: projectID,
				TaskIDs:   ids,
			})
		},
	}
	reorder.Flags().Int64("project", 0, "Project whose tasks are reordered (required)")
	_ = reorder.MarkFlagRequired("project")

	cmd.AddCommand(list, create, update, del, reorder)
	return cmd
}
