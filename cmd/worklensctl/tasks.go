package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	tasksCmd := &cobra.Command{Use: "tasks", Short: "Task operations"}

	var project, parent, title, description, assignee, actor string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task, or a subtask when --parent is set",
		RunE: func(cmd *cobra.Command, args []string) error {
			if project == "" || title == "" {
				return fmt.Errorf("--project and --title required")
			}
			payload := map[string]interface{}{
				"title":      title,
				"actorEmail": actor,
			}
			if description != "" {
				payload["description"] = description
			}
			if assignee != "" {
				payload["assignee"] = assignee
			}
			url := fmt.Sprintf("%s/api/projects/%s/tasks", apiFlag, project)
			if parent != "" {
				url = fmt.Sprintf("%s/api/projects/%s/tasks/%s/subtasks", apiFlag, project, parent)
			}
			data, err := doPostJSON(url, payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	createCmd.Flags().StringVarP(&project, "project", "p", "", "Project ID (required)")
	createCmd.Flags().StringVar(&parent, "parent", "", "Parent task ID (creates a subtask)")
	createCmd.Flags().StringVarP(&title, "title", "t", "", "Task title (required)")
	createCmd.Flags().StringVarP(&description, "description", "d", "", "Task description")
	createCmd.Flags().StringVar(&assignee, "assignee", "", "Assignee email")
	createCmd.Flags().StringVar(&actor, "actor", "", "Acting user email")
	_ = createCmd.MarkFlagRequired("project")
	_ = createCmd.MarkFlagRequired("title")
	tasksCmd.AddCommand(createCmd)

	getCmd := &cobra.Command{
		Use:   "get PROJECT_ID TASK_ID",
		Short: "Get a task with its subtask tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(fmt.Sprintf("%s/api/projects/%s/tasks/%s", apiFlag, args[0], args[1]))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	tasksCmd.AddCommand(getCmd)

	var includeCompleted bool
	userCmd := &cobra.Command{
		Use:   "user EMAIL",
		Short: "List a user's assigned tasks across their projects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := fmt.Sprintf("%s/api/users/%s/tasks?includeCompleted=%t", apiFlag, args[0], includeCompleted)
			if project != "" {
				url += "&projectId=" + project
			}
			data, err := doGet(url)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	userCmd.Flags().StringVarP(&project, "project", "p", "", "Limit to one project")
	userCmd.Flags().BoolVar(&includeCompleted, "include-completed", true, "Include completed tasks")
	tasksCmd.AddCommand(userCmd)

	rootCmd.AddCommand(tasksCmd)
}
