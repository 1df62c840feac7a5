package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"kira/internal/app"
	"kira/internal/infra/credentials"
)

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage stored provider API keys",
}

var apikeySetCmd = &cobra.Command{
	Use:   "set <provider> <key>",
	Short: "Store a text provider API key (postgres only)",
	Long: `Store an API key for xai, openai or gemini in integration_tokens.
Keys from the environment take precedence over stored keys.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := strings.ToLower(strings.TrimSpace(args[0]))
		if !credentials.Supported(provider) {
			return fmt.Errorf("unsupported provider %q", args[0])
		}
		return withContainer(cmd.Context(), false, func(c *app.Container) error {
			if c.Credentials == nil {
				return errors.New("stored api keys require STORE_DRIVER=postgres")
			}
			if err := c.Credentials.SetAPIKey(cmd.Context(), provider, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s api key stored\n", provider)
			return nil
		})
	},
}

func init() {
	apikeyCmd.AddCommand(apikeySetCmd)
}
