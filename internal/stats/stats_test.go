package stats

import (
	"testing"

	"github.com/rfduarte/feira/internal/model"
)

func TestComputeEmpty(t *testing.T) {
	s := Compute(nil)
	if s != (model.Statistics{}) {
		t.Errorf("Compute(nil) = %+v, want all zero", s)
	}
}

func TestCompute(t *testing.T) {
	items := []model.Item{
		{Name: "Rice", Quantity: 2, UnitPrice: 8.50, Status: model.StatusPending},
		{Name: "Milk", Quantity: 1, UnitPrice: 4.25, Status: model.StatusPurchased},
		{Name: "Soap", Quantity: 3, UnitPrice: 1.10, Status: model.StatusPurchased},
	}

	s := Compute(items)

	if s.TotalItems != 3 {
		t.Errorf("TotalItems = %d, want 3", s.TotalItems)
	}
	if s.PurchasedItems != 2 {
		t.Errorf("PurchasedItems = %d, want 2", s.PurchasedItems)
	}
	if s.PendingItems != 1 {
		t.Errorf("PendingItems = %d, want 1", s.PendingItems)
	}
	if s.TotalValue != 24.55 {
		t.Errorf("TotalValue = %v, want 24.55", s.TotalValue)
	}
	if s.PurchasedValue != 7.55 {
		t.Errorf("PurchasedValue = %v, want 7.55", s.PurchasedValue)
	}
	if s.PendingValue != 17.00 {
		t.Errorf("PendingValue = %v, want 17.00", s.PendingValue)
	}
}

func TestComputeDefaultsQuantity(t *testing.T) {
	// Legacy rows can carry a zero quantity; value math treats them as one.
	items := []model.Item{
		{Name: "Bread", Quantity: 0, UnitPrice: 2.00, Status: model.StatusPending},
	}
	s := Compute(items)
	if s.TotalValue != 2.00 {
		t.Errorf("TotalValue = %v, want 2.00", s.TotalValue)
	}
}
