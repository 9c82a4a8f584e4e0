package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/profiler-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:          "profiler-cli",
	Short:        "Company profiling pipeline",
	Long:         "Profiles a company from its website: scrapes the homepage, fetches recent news, generates a structured LLM insight, and persists the profile keyed by normalized URL.",
	SilenceUsage: true,
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
