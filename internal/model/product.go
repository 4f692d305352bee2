package model

import "time"

// Product is a stock snapshot for one catalog item. The analysis core only reads it;
// purchases and sales mutate it through the store.
type Product struct {
	ID              int64   `json:"product_id"`
	Name            string  `json:"product_name"`
	Brand           string  `json:"brand"`
	Category        string  `json:"category"`
	CurrentQuantity int     `json:"current_quantity"`
	ReorderLevel    int     `json:"reorder_level"`
	MaxStockLevel   int     `json:"max_stock_level"`
	PurchasePrice   float64 `json:"purchase_price"`
	SellingPrice    float64 `json:"selling_price"`
}

// SaleEvent is a single recorded sale. Events on the same day add up.
type SaleEvent struct {
	ProductID    int64     `json:"product_id"`
	Date         time.Time `json:"sale_date"`
	QuantitySold int       `json:"quantity_sold"`
	UnitPrice    float64   `json:"unit_price"`
}

// DateLayout is the calendar-day layout used for storage and JSON.
const DateLayout = "2006-01-02"

// Day truncates t to its calendar day at UTC midnight, discarding time of day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
