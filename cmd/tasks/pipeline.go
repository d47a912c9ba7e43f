package main

import (
	"fmt"

	"catalog-sync-backend/internal/tasks"

	"github.com/spf13/cobra"
)

var (
	maxNewProducts int
	lookupLimit    int
	lookupWorkers  int
	imagesLimit    int
	imagesWorkers  int
	aiLimit        int
	aiWorkers      int
	aiBarcodes     []string
	aiBrands       []string
)

var discoverCmd = &cobra.Command{
	Use:   "discover_new_products",
	Short: "Pull supplier feeds and register unseen products",
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := tasks.Discover(cmd.Context(), cfg, tasks.DiscoverOptions{
			MaxNewProducts: maxNewProducts,
		})
		if err != nil {
			return err
		}
		fmt.Printf("discovered %d new products, %d new supplier links (%d feeds failed)\n",
			summary.NewProducts, summary.NewSupplierLinks, summary.FailedSuppliers)
		return nil
	},
}

var enrichLookupCmd = &cobra.Command{
	Use:   "enrich_products_barcode_lookup",
	Short: "Fetch barcode lookup data for pending products",
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := tasks.EnrichLookup(cmd.Context(), cfg, tasks.EnrichLookupOptions{
			Limit:   lookupLimit,
			Workers: lookupWorkers,
		})
		if err != nil {
			return err
		}
		fmt.Printf("lookup: %d enriched, %d failed\n", summary.Enriched, summary.Failed)
		return nil
	},
}

var enrichImagesCmd = &cobra.Command{
	Use:   "enrich_products_images",
	Short: "Mirror product images onto the CDN",
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := tasks.EnrichImages(cmd.Context(), cfg, tasks.EnrichImagesOptions{
			Limit:   imagesLimit,
			Workers: imagesWorkers,
		})
		if err != nil {
			return err
		}
		fmt.Printf("images: %d processed, %d mirrored\n", summary.Processed, summary.Mirrored)
		return nil
	},
}

var enrichAICmd = &cobra.Command{
	Use:   "enrich_products_ai",
	Short: "Generate listing copy for enriched products",
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := tasks.EnrichAI(cmd.Context(), cfg, tasks.EnrichAIOptions{
			Limit:    aiLimit,
			Barcodes: aiBarcodes,
			Brands:   aiBrands,
			Workers:  aiWorkers,
		})
		if err != nil {
			return err
		}
		fmt.Printf("ai: %d generated, %d failed, %d cache hits, cost $%.4f\n",
			summary.Success, summary.Failed, summary.CacheHits, summary.TotalCost)
		return nil
	},
}

func init() {
	discoverCmd.Flags().IntVar(&maxNewProducts, "max-new-products", 0, "cap on newly created products (0 = unlimited)")

	enrichLookupCmd.Flags().IntVar(&lookupLimit, "limit", 0, "max products to process")
	enrichLookupCmd.Flags().IntVar(&lookupWorkers, "workers", 0, "concurrent workers")

	enrichImagesCmd.Flags().IntVar(&imagesLimit, "limit", 0, "max products to process")
	enrichImagesCmd.Flags().IntVar(&imagesWorkers, "workers", 0, "concurrent workers")

	enrichAICmd.Flags().IntVar(&aiLimit, "limit", 0, "max products to process")
	enrichAICmd.Flags().IntVar(&aiWorkers, "workers", 0, "concurrent workers")
	enrichAICmd.Flags().StringSliceVar(&aiBarcodes, "barcodes", nil, "only process these barcodes")
	enrichAICmd.Flags().StringSliceVar(&aiBrands, "brands", nil, "only process these brands")

	rootCmd.AddCommand(discoverCmd, enrichLookupCmd, enrichImagesCmd, enrichAICmd)
}
