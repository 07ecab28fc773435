package scheduler

import (
	"time"

	alertdomain "github.com/kickwatch/alerts-service/internal/alert/domain"
	warehousedomain "github.com/kickwatch/alerts-service/internal/warehouse/domain"
)

// applyFired marks an alert triggered and refreshes its cached
// product fields from the row. Empty row fields leave the cached
// values untouched. The write back is last-writer-wins; concurrent
// runs over the same date are not serialized (see DESIGN.md).
func applyFired(alert *alertdomain.Alert, row warehousedomain.ScrapedProduct, now time.Time) {
	alert.Status = alertdomain.AlertStatusTriggered
	alert.LastTriggeredAt = &now
	alert.UpdatedAt = now

	if row.Title != "" {
		alert.ProductName = row.Title
	}
	if row.Brand != "" {
		alert.ProductBrand = row.Brand
	}
	if row.Image != "" {
		alert.ProductImage = row.Image
		alert.ProductImageURL = row.Image
	}
	if row.URL != "" {
		alert.ProductURL = row.URL
	}
	if row.PriceOriginal != nil {
		alert.ProductOriginalPrice = row.PriceOriginal
	}
	if price := row.EffectivePrice(); price != nil {
		alert.ProductCurrentPrice = price
	}
}
