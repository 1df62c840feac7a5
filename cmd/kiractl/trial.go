package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"kira/internal/app"
	"kira/internal/entitlement"
)

var trialCmd = &cobra.Command{
	Use:   "trial",
	Short: "Inspect trials",
}

var trialStatusCmd = &cobra.Command{
	Use:   "status <account-id>",
	Short: "Show an account's trial and entitlement status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd.Context(), false, func(c *app.Container) error {
			st, err := c.Service.TrialStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), st)
			return nil
		})
	},
}

func init() {
	trialCmd.AddCommand(trialStatusCmd)
}

func printStatus(w io.Writer, st entitlement.Status) {
	fmt.Fprintf(w, "Premium:      %t\n", st.IsPremium)
	fmt.Fprintf(w, "Trial active: %t\n", st.IsTrialActive)
	fmt.Fprintf(w, "Days left:    %d\n", st.DaysLeft)
	fmt.Fprintf(w, "Reports used: %d\n", st.ReportsUsed)
	fmt.Fprintf(w, "Can generate: %t\n", st.CanGenerate)
	if st.TrialStartPending {
		fmt.Fprintln(w, "Trial ends:   not started")
		return
	}
	fmt.Fprintf(w, "Trial ends:   %s\n", st.TrialEnd.UTC().Format(time.RFC3339))
}
