package model

// Item status values.
const (
	StatusPending   = "pending"
	StatusPurchased = "purchased"
)

// Categories is the fixed set of item categories, in display order.
var Categories = []string{
	"grains",
	"meat",
	"dairy",
	"produce",
	"beverages",
	"cleaning",
	"hygiene",
	"bakery",
	"frozen",
	"other",
}

// ValidCategory reports whether name is one of the fixed categories.
func ValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// Item is a pending or purchased shopping-list entry. Dates are dd/mm/yyyy
// strings, matching the format persisted to the remote spreadsheet.
// PurchasedAt is non-empty exactly when Status is "purchased".
type Item struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	Category    string  `json:"category"`
	UnitPrice   float64 `json:"unit_price"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	PurchasedAt string  `json:"purchased_at"`
}

// HistoryEntry is an immutable record of one finalized purchase line.
type HistoryEntry struct {
	Date         string  `json:"date"`
	ItemName     string  `json:"item_name"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	Category     string  `json:"category"`
	Store        string  `json:"store"`
	Total        float64 `json:"total"`
	SourceItemID string  `json:"source_item_id"`
}

// DefaultStore is recorded on history entries when no store name is known.
const DefaultStore = "not informed"

// Statistics is derived from the current item collection and never persisted.
type Statistics struct {
	TotalItems     int     `json:"total_items"`
	PurchasedItems int     `json:"purchased_items"`
	PendingItems   int     `json:"pending_items"`
	TotalValue     float64 `json:"total_value"`
	PurchasedValue float64 `json:"purchased_value"`
	PendingValue   float64 `json:"pending_value"`
}
