package syncer

import (
	"strconv"

	"github.com/rfduarte/feira/internal/category"
	"github.com/rfduarte/feira/internal/model"
	"github.com/rfduarte/feira/internal/price"
)

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// itemRow encodes an item as its eight-column sheet row:
// ID, Name, Quantity, Category, Price, Status, CreatedAt, PurchasedAt.
func itemRow(item model.Item) []string {
	return []string{
		item.ID,
		item.Name,
		strconv.Itoa(item.Quantity),
		item.Category,
		price.Format(item.UnitPrice),
		item.Status,
		item.CreatedAt,
		item.PurchasedAt,
	}
}

// parseItemRow decodes a sheet row into an item. Rows with a blank id cell
// (left behind by removals) report ok false and are skipped. Malformed cells
// degrade to defaults rather than failing the whole load.
func parseItemRow(row []string) (model.Item, bool) {
	id := cell(row, 0)
	if id == "" {
		return model.Item{}, false
	}

	qty, err := strconv.Atoi(cell(row, 2))
	if err != nil || qty < 1 {
		qty = 1
	}
	unitPrice, err := price.Parse(cell(row, 4))
	if err != nil {
		unitPrice = 0
	}

	item := model.Item{
		ID:          id,
		Name:        cell(row, 1),
		Quantity:    qty,
		Category:    category.Normalize(cell(row, 3)),
		UnitPrice:   unitPrice,
		Status:      model.StatusPending,
		CreatedAt:   cell(row, 6),
		PurchasedAt: "",
	}
	if cell(row, 5) == model.StatusPurchased {
		item.Status = model.StatusPurchased
		item.PurchasedAt = cell(row, 7)
		if item.PurchasedAt == "" {
			// Legacy rows without a purchase date; fall back to creation.
			item.PurchasedAt = item.CreatedAt
		}
	}
	return item, true
}

// historyRow encodes a history entry as its eight-column sheet row:
// Date, Item, Quantity, Price, Category, Store, Total, ID.
func historyRow(e model.HistoryEntry) []string {
	return []string{
		e.Date,
		e.ItemName,
		strconv.Itoa(e.Quantity),
		price.Format(e.UnitPrice),
		e.Category,
		e.Store,
		price.Format(e.Total),
		e.SourceItemID,
	}
}

// parseHistoryRow decodes a sheet row into a history entry. Rows with no
// item name report ok false.
func parseHistoryRow(row []string) (model.HistoryEntry, bool) {
	name := cell(row, 1)
	if name == "" {
		return model.HistoryEntry{}, false
	}

	qty, err := strconv.Atoi(cell(row, 2))
	if err != nil || qty < 1 {
		qty = 1
	}
	unitPrice, err := price.Parse(cell(row, 3))
	if err != nil {
		unitPrice = 0
	}
	total, err := price.Parse(cell(row, 6))
	if err != nil {
		total = price.Round(unitPrice * float64(qty))
	}
	store := cell(row, 5)
	if store == "" {
		store = model.DefaultStore
	}

	return model.HistoryEntry{
		Date:         cell(row, 0),
		ItemName:     name,
		Quantity:     qty,
		UnitPrice:    unitPrice,
		Category:     category.Normalize(cell(row, 4)),
		Store:        store,
		Total:        total,
		SourceItemID: cell(row, 7),
	}, true
}
