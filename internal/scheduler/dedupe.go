package scheduler

import (
	warehousedomain "github.com/kickwatch/alerts-service/internal/warehouse/domain"
)

// dedupeRows collapses a scrape batch to one row per product id. Rows
// without a product id are discarded. The comparator is total, so the
// result does not depend on the input order.
func dedupeRows(rows []warehousedomain.ScrapedProduct) map[string]warehousedomain.ScrapedProduct {
	deduped := make(map[string]warehousedomain.ScrapedProduct, len(rows))
	for _, row := range rows {
		if row.ProductID == "" {
			continue
		}
		existing, ok := deduped[row.ProductID]
		if !ok || betterRow(row, existing) {
			deduped[row.ProductID] = row
		}
	}
	return deduped
}

// betterRow reports whether candidate should replace current.
// The lower effective price wins; a row without a price always loses
// to one with a price. On an exact price tie the lexicographically
// greater batch id wins, so a newer batch overrides an older one, and
// a missing batch id loses to a present one.
func betterRow(candidate, current warehousedomain.ScrapedProduct) bool {
	candidatePrice := candidate.EffectivePrice()
	currentPrice := current.EffectivePrice()

	if candidatePrice == nil {
		return false
	}
	if currentPrice == nil {
		return true
	}
	if *candidatePrice != *currentPrice {
		return *candidatePrice < *currentPrice
	}

	if candidate.DWID == "" {
		return false
	}
	if current.DWID == "" {
		return true
	}
	return candidate.DWID > current.DWID
}
