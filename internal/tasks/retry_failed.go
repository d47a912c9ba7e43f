package tasks

import (
	"time"

	"catalog-sync-backend/internal/catalog"
	"catalog-sync-backend/internal/logging"
	"catalog-sync-backend/internal/models"
)

// retryBackoff is the wait before a failed create is retried, indexed
// by how many retries it has already had. Waits cap at the last rung,
// so listings keep retrying every 48h until a create succeeds.
var retryBackoff = []time.Duration{
	12 * time.Hour,
	24 * time.Hour,
	48 * time.Hour,
}

type RetrySummary struct {
	Reflagged int
	Waiting   int
}

// RetryFailed moves create_failed listings back to create_pending once
// their backoff window has elapsed.
func RetryFailed(now time.Time) (RetrySummary, error) {
	taskID := logging.L.TaskStart("retry_failed_listings")
	start := time.Now()

	pairs, err := catalog.FailedCreates()
	if err != nil {
		return RetrySummary{}, err
	}

	var summary RetrySummary
	for i := range pairs {
		pair := pairs[i]
		rung := pair.Listing.RetryCount
		if rung >= len(retryBackoff) {
			rung = len(retryBackoff) - 1
		}

		wait := retryBackoff[rung]
		if now.Sub(pair.Listing.UpdatedAt) < wait {
			summary.Waiting++
			continue
		}

		if err := catalog.ReflagForRetry(&pair.Listing); err != nil {
			return summary, err
		}
		summary.Reflagged++
		logging.L.Log("listing_reflagged_for_retry", logging.LevelInfo, pair.Shop.Domain, taskID, models.JSONMap{
			"barcode":     pair.Product.Barcode,
			"retry_count": pair.Listing.RetryCount + 1,
			"last_error":  pair.Listing.LastError,
		})
	}

	logging.L.Log("retry_failed_listings_summary", logging.LevelInfo, "", taskID, models.JSONMap{
		"reflagged": summary.Reflagged,
		"waiting":   summary.Waiting,
	})
	logging.L.TaskEnd(taskID, "retry_failed_listings", summary.Reflagged, 0, time.Since(start), 0)
	return summary, nil
}
