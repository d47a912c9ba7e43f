package main

import (
	"fmt"
	"time"

	"catalog-sync-backend/internal/tasks"

	"github.com/spf13/cobra"
)

var (
	supplierLimit  int
	supplierDryRun bool
)

var updateSuppliersCmd = &cobra.Command{
	Use:   "update_supplier_data",
	Short: "Reconcile stored supplier links against live feeds",
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := tasks.UpdateSuppliers(cmd.Context(), cfg, tasks.UpdateSuppliersOptions{
			Limit:  supplierLimit,
			DryRun: supplierDryRun,
		})
		if err != nil {
			return err
		}
		fmt.Printf("suppliers: %d refreshed, %d pruned, %d unchanged, %d listings reflagged\n",
			summary.Refreshed, summary.Pruned, summary.Unchanged, summary.Reflagged)
		return nil
	},
}

var pruneLogsCmd = &cobra.Command{
	Use:   "prune_old_logs",
	Short: "Delete log entries past the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		deleted, err := tasks.PruneLogs(time.Now())
		if err != nil {
			return err
		}
		fmt.Printf("pruned %d log entries\n", deleted)
		return nil
	},
}

func init() {
	updateSuppliersCmd.Flags().IntVar(&supplierLimit, "limit", 0, "max products per supplier")
	updateSuppliersCmd.Flags().BoolVar(&supplierDryRun, "dry-run", false, "report without writing")

	rootCmd.AddCommand(updateSuppliersCmd, pruneLogsCmd)
}
