package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prodmap/assist/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "assist",
	Short: "Extraction service for product management records",
	Long:  "Turns free-form product notes into schema-valid entity drafts (tasks, features, strategies, costs, ...) via Claude, with context grounding from the product service.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
