package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"food-storefront/app"
	"food-storefront/config"
	"food-storefront/logging"
)

const version = "1.0.0"

var (
	configPath string
	forceSeed  bool
	confirmed  bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Food storefront API",
	Long: `storefront serves the food ordering API: menu, cart, wishlist,
checkout and admin order management, with orders progressing on their own
from pending to delivered.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := app.New(ctx, cfg, logger)
		if err != nil {
			return err
		}
		runErr := a.Run(ctx)
		if err := a.Close(); err != nil {
			logger.Warn("close storage", zap.Error(err))
		}
		return runErr
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the default menu and admin accounts to storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		written, err := app.Seed(cmd.Context(), cfg, logger, forceSeed)
		if err != nil {
			return err
		}
		if len(written) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "nothing to seed")
			return nil
		}
		for _, key := range written {
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %s\n", key)
		}
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all stored storefront data",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmed {
			return errors.New("reset deletes every order, account and cart; pass --yes to continue")
		}
		deleted, err := app.Reset(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d keys\n", len(deleted))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "storefront %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	seedCmd.Flags().BoolVar(&forceSeed, "force", false, "overwrite the catalog and admins even if present")
	resetCmd.Flags().BoolVar(&confirmed, "yes", false, "confirm deleting all data")

	rootCmd.AddCommand(serveCmd, seedCmd, resetCmd, versionCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
