// Command kiractl performs operator tasks against the configured store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"kira/internal/app"
	"kira/internal/infra"
)

var rootCmd = &cobra.Command{
	Use:           "kiractl",
	Short:         "Operate a KIRA deployment",
	Long:          `Manage plans, trials, provider keys, migrations and daily runs for a KIRA deployment.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(trialCmd)
	rootCmd.AddCommand(apikeyCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(dailyCmd)
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func loadConfig() (*infra.Config, zerolog.Logger, error) {
	cfg, err := infra.LoadConfig()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, infra.NewLogger(cfg, "kiractl"), nil
}

// withContainer builds the application, runs fn and releases it.
func withContainer(ctx context.Context, withGenerator bool, fn func(*app.Container) error) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	c, err := app.NewContainer(ctx, cfg, logger, withGenerator)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}
