package main

import (
	"fmt"
	"os"

	"github.com/artvoid/artvoid-api/config"
	"github.com/artvoid/artvoid-api/logger"
	"github.com/artvoid/artvoid-api/models"
	"github.com/artvoid/artvoid-api/repository"
	"github.com/artvoid/artvoid-api/seed"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Reset the Art Void catalog",
	Long: `Clears every product, message and order from the configured database
and inserts the five starting catalog products. Users and settings are kept.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runReset,
}

func runReset(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	if err := config.ConnectDatabase(cfg); err != nil {
		return err
	}
	db := config.GetDB()
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("resetting catalog")
	_, err = seed.Reset(cmd.Context(), seed.Store{
		Products: repository.NewProductRepository(db),
		Messages: repository.NewMessageRepository(db),
		Orders:   repository.NewOrderRepository(db),
	}, log)
	if err != nil {
		log.Error("reset failed", zap.Error(err))
		return err
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
