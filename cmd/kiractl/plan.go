package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"kira/internal/app"
	"kira/internal/domain"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage account plans",
}

var planSetCmd = &cobra.Command{
	Use:   "set <account-id> <plan> <status>",
	Short: "Set an account's plan and subscription status",
	Long: `Set the plan (basic, premium) and subscription status of an account.

Examples:
  kiractl plan set 5f0c... premium active
  kiractl plan set 5f0c... basic canceled`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan := domain.Plan(strings.ToLower(strings.TrimSpace(args[1])))
		status := domain.SubscriptionStatus(strings.ToLower(strings.TrimSpace(args[2])))
		return withContainer(cmd.Context(), false, func(c *app.Container) error {
			if err := c.Service.SetPlan(cmd.Context(), args[0], plan, status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "account %s: plan=%s status=%s\n", args[0], plan, status)
			return nil
		})
	},
}

func init() {
	planCmd.AddCommand(planSetCmd)
}
