package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/statsight/sic-cli/internal/config"
)

var (
	cfg          *config.Config
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "sic-cli",
	Short: "SIC code resolution toolkit",
	Long:  "Resolves free-text activity descriptions to Standard Industrial Classification codes, derives division groupings, and enriches classifier payloads with reviewed descriptions.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

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
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "json", "output format (json|yaml)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
