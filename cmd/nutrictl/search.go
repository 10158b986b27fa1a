package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	var userFlag, queryFlag string
	var topkFlag int

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Search a user's conversation memory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userFlag == "" {
				return fmt.Errorf("--user required")
			}
			data, err := doPostJSON("/api/users/"+userFlag+"/conversations/search", map[string]interface{}{
				"query": queryFlag,
				"topK":  topkFlag,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	searchCmd.Flags().StringVarP(&userFlag, "user", "u", "", "User ID (required)")
	searchCmd.Flags().StringVarP(&queryFlag, "query", "q", "", "Search query text (required)")
	searchCmd.Flags().IntVarP(&topkFlag, "topk", "k", 5, "Number of top results to return")
	_ = searchCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(searchCmd)

	planCmd := &cobra.Command{
		Use:   "plan USER_ID",
		Short: "Show the user's active meal plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet("/api/users/" + args[0] + "/meal-plans/active")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	rootCmd.AddCommand(planCmd)
}
