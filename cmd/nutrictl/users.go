package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	usersCmd := &cobra.Command{Use: "users", Short: "User operations"}

	// create
	var name, sex, activity, goal string
	var age int
	var height, weight float64
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user profile and generate the first weekly plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name required")
			}
			payload := map[string]interface{}{
				"name":          name,
				"age":           age,
				"sex":           sex,
				"heightCm":      height,
				"weightKg":      weight,
				"activityLevel": activity,
				"goalType":      goal,
			}
			data, err := doPostJSON("/api/users", payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	createCmd.Flags().StringVarP(&name, "name", "n", "", "Full name (required)")
	createCmd.Flags().IntVar(&age, "age", 30, "Age in years")
	createCmd.Flags().StringVar(&sex, "sex", "male", "Sex (male|female)")
	createCmd.Flags().Float64Var(&height, "height", 175, "Height in cm")
	createCmd.Flags().Float64Var(&weight, "weight", 75, "Weight in kg")
	createCmd.Flags().StringVar(&activity, "activity", "moderately_active", "Activity level")
	createCmd.Flags().StringVar(&goal, "goal", "maintain", "Goal type")
	_ = createCmd.MarkFlagRequired("name")
	usersCmd.AddCommand(createCmd)

	// get
	getCmd := &cobra.Command{
		Use:   "get USER_ID",
		Short: "Get user by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet("/api/users/" + args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	usersCmd.AddCommand(getCmd)

	// context
	contextCmd := &cobra.Command{
		Use:   "context USER_ID",
		Short: "Get aggregated user context (profile, goal, restrictions, memory)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet("/api/users/" + args[0] + "/context")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	usersCmd.AddCommand(contextCmd)

	// delete
	deleteCmd := &cobra.Command{
		Use:   "delete USER_ID",
		Short: "Delete a user and all their data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doDelete("/api/users/" + args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	usersCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(usersCmd)
}
