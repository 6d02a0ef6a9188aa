// Package stats computes spending statistics from the current item
// collection. Results are always derived on demand and never stored, so they
// cannot drift from the items they describe.
package stats

import (
	"github.com/rfduarte/feira/internal/model"
	"github.com/rfduarte/feira/internal/price"
)

// Compute returns the statistics for the given items. An empty or nil slice
// yields all-zero statistics.
func Compute(items []model.Item) model.Statistics {
	var s model.Statistics
	s.TotalItems = len(items)

	for _, item := range items {
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		total := item.UnitPrice * float64(qty)
		s.TotalValue += total

		if item.Status == model.StatusPurchased {
			s.PurchasedItems++
			s.PurchasedValue += total
		} else {
			s.PendingItems++
			s.PendingValue += total
		}
	}

	s.TotalValue = price.Round(s.TotalValue)
	s.PurchasedValue = price.Round(s.PurchasedValue)
	s.PendingValue = price.Round(s.PendingValue)
	return s
}
