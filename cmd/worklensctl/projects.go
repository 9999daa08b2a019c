package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	projectsCmd := &cobra.Command{Use: "projects", Short: "Project operations"}

	// list
	var statusFilter string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			url := fmt.Sprintf("%s/api/projects", apiFlag)
			if statusFilter != "" {
				url += "?status=" + statusFilter
			}
			data, err := doGet(url)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	listCmd.Flags().StringVarP(&statusFilter, "status", "s", "", "Filter by project status")
	projectsCmd.AddCommand(listCmd)

	// get
	getCmd := &cobra.Command{
		Use:   "get PROJECT_ID",
		Short: "Get project by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(fmt.Sprintf("%s/api/projects/%s", apiFlag, args[0]))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	projectsCmd.AddCommand(getCmd)

	// create
	var owner, name, overview string
	var members []string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if owner == "" || name == "" {
				return fmt.Errorf("--owner and --name required")
			}
			payload := map[string]interface{}{
				"ownerEmail":  owner,
				"projectName": name,
			}
			if overview != "" {
				payload["projectOverview"] = overview
			}
			if len(members) > 0 {
				payload["members"] = members
			}
			data, err := doPostJSON(fmt.Sprintf("%s/api/projects", apiFlag), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	createCmd.Flags().StringVarP(&owner, "owner", "o", "", "Owner email (required)")
	createCmd.Flags().StringVarP(&name, "name", "n", "", "Project name (required)")
	createCmd.Flags().StringVar(&overview, "overview", "", "Project overview")
	createCmd.Flags().StringSliceVarP(&members, "member", "m", nil, "Member email (repeatable)")
	_ = createCmd.MarkFlagRequired("owner")
	_ = createCmd.MarkFlagRequired("name")
	projectsCmd.AddCommand(createCmd)

	rootCmd.AddCommand(projectsCmd)
}
