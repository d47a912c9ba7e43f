// Command catalog-tasks runs the catalog pipeline stages: supplier
// discovery, enrichment, storefront sync and maintenance. Stages are
// meant to be scheduled independently.
package main

import (
	"log"
	"os"

	"catalog-sync-backend/internal/config"
	"catalog-sync-backend/internal/database"
	"catalog-sync-backend/internal/logging"

	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "catalog-tasks",
	Short:         "Run catalog pipeline tasks",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		database.Init(cfg)
		if err := logging.Init(cfg); err != nil {
			log.Fatal("Failed to initialize logging: ", err)
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logging.L.Log("task_failed", logging.LevelError, "", "", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
}
