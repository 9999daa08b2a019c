package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	adviceCmd := &cobra.Command{Use: "advice", Short: "Advice queue operations"}

	var user, reason, when, project, task, adviceType string
	var priority int
	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Queue an advice item",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" || reason == "" || when == "" {
				return fmt.Errorf("--user, --reason and --time required")
			}
			payload := map[string]interface{}{
				"userEmail":  user,
				"priority":   priority,
				"reason":     reason,
				"adviceTime": when,
			}
			if project != "" {
				payload["projectId"] = project
			}
			if task != "" {
				payload["taskId"] = task
			}
			if adviceType != "" {
				payload["adviceType"] = adviceType
			}
			data, err := doPostJSON(fmt.Sprintf("%s/api/advice", apiFlag), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	scheduleCmd.Flags().StringVarP(&user, "user", "u", "", "Target user email (required)")
	scheduleCmd.Flags().IntVarP(&priority, "priority", "P", 3, "Priority 1-5")
	scheduleCmd.Flags().StringVarP(&reason, "reason", "r", "", "Advice reason (required)")
	scheduleCmd.Flags().StringVarP(&when, "time", "t", "", "Proposed ISO-8601 time (required)")
	scheduleCmd.Flags().StringVarP(&project, "project", "p", "", "Project ID")
	scheduleCmd.Flags().StringVar(&task, "task", "", "Task ID")
	scheduleCmd.Flags().StringVar(&adviceType, "type", "", "Advice type")
	adviceCmd.AddCommand(scheduleCmd)

	var pendingUser string
	var withinHours int
	pendingCmd := &cobra.Command{
		Use:   "pending",
		Short: "List pending and processing advice items",
		RunE: func(cmd *cobra.Command, args []string) error {
			url := fmt.Sprintf("%s/api/advice/pending?withinHours=%d", apiFlag, withinHours)
			if pendingUser != "" {
				url += "&user=" + pendingUser
			}
			data, err := doGet(url)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	pendingCmd.Flags().StringVarP(&pendingUser, "user", "u", "", "Filter to one user")
	pendingCmd.Flags().IntVarP(&withinHours, "within", "w", 24, "Trailing window in hours")
	adviceCmd.AddCommand(pendingCmd)

	var result string
	statusCmd := &cobra.Command{
		Use:   "status ADVICE_ID STATUS",
		Short: "Set an advice item's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{"status": args[1]}
			if result != "" {
				payload["result"] = result
			}
			data, err := doJSON(http.MethodPatch,
				fmt.Sprintf("%s/api/advice/%s/status", apiFlag, args[0]), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	statusCmd.Flags().StringVarP(&result, "result", "r", "", "Worker result payload")
	adviceCmd.AddCommand(statusCmd)

	rootCmd.AddCommand(adviceCmd)
}
