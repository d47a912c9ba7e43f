package main

import (
	"fmt"
	"time"

	"catalog-sync-backend/internal/tasks"

	"github.com/spf13/cobra"
)

var (
	createBarcode string
	createShop    string
	createLimit   int
	createDryRun  bool
	createWorkers int

	updateShop   string
	updateLimit  int
	updateDryRun bool
)

var flagCreateCmd = &cobra.Command{
	Use:   "flag_products_to_create",
	Short: "Flag eligible products for listing on ready shops",
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := tasks.FlagForCreate()
		if err != nil {
			return err
		}
		fmt.Printf("flagged %d products (%d skipped)\n", summary.Flagged, summary.Skipped)
		return nil
	},
}

var createListingsCmd = &cobra.Command{
	Use:   "create_products_on_shopify",
	Short: "Create pending listings on their shops",
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := tasks.CreateListings(cmd.Context(), cfg, tasks.CreateListingsOptions{
			Barcode: createBarcode,
			Shop:    createShop,
			Limit:   createLimit,
			DryRun:  createDryRun,
			Workers: createWorkers,
		})
		if err != nil {
			return err
		}
		fmt.Printf("created %d listings, %d failed, %d skipped\n",
			summary.Created, summary.Failed, summary.Skipped)
		return nil
	},
}

var updateListingsCmd = &cobra.Command{
	Use:   "update_products_on_shopify",
	Short: "Push pending updates to live listings",
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := tasks.UpdateListings(cmd.Context(), cfg, tasks.UpdateListingsOptions{
			Shop:   updateShop,
			Limit:  updateLimit,
			DryRun: updateDryRun,
		})
		if err != nil {
			return err
		}
		fmt.Printf("updated %d listings, %d failed, %d skipped\n",
			summary.Updated, summary.Failed, summary.Skipped)
		return nil
	},
}

var retryFailedCmd = &cobra.Command{
	Use:   "retry_failed_listings",
	Short: "Reflag failed creates whose backoff has elapsed",
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := tasks.RetryFailed(time.Now())
		if err != nil {
			return err
		}
		fmt.Printf("reflagged %d listings (%d still waiting)\n",
			summary.Reflagged, summary.Waiting)
		return nil
	},
}

func init() {
	createListingsCmd.Flags().StringVar(&createBarcode, "barcode", "", "only create this barcode")
	createListingsCmd.Flags().StringVar(&createShop, "shop", "", "only create for this shop domain")
	createListingsCmd.Flags().IntVar(&createLimit, "limit", 0, "max listings to create")
	createListingsCmd.Flags().BoolVar(&createDryRun, "dry-run", false, "log what would happen without writing")
	createListingsCmd.Flags().IntVar(&createWorkers, "workers", 0, "concurrent workers")

	updateListingsCmd.Flags().StringVar(&updateShop, "shop", "", "only update this shop domain")
	updateListingsCmd.Flags().IntVar(&updateLimit, "limit", 0, "max listings to update")
	updateListingsCmd.Flags().BoolVar(&updateDryRun, "dry-run", false, "log what would happen without writing")

	rootCmd.AddCommand(flagCreateCmd, createListingsCmd, updateListingsCmd, retryFailedCmd)
}
