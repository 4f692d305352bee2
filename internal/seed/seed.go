// Package seed fills a store with a sample catalog and sales history.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"StockSentinel/internal/model"
	"StockSentinel/internal/store"
)

const (
	DefaultSeed    = 42
	DefaultDays    = 180
	RestockQty     = 100
	weekendBoost   = 1.4
	monthEndBoost  = 1.3
	monthEndDay    = 25
	minBaseDemand  = 3
	maxBaseDemand  = 15
	demandVariance = 0.2
)

// Catalog is the built-in sample product list.
var Catalog = []model.Product{
	{Name: "Maybelline Lipstick Red Rouge", Brand: "Maybelline", Category: "Cosmetics", PurchasePrice: 150, SellingPrice: 250, CurrentQuantity: 120},
	{Name: "Lakme Foundation Natural Beige", Brand: "Lakme", Category: "Cosmetics", PurchasePrice: 300, SellingPrice: 450, CurrentQuantity: 200},
	{Name: "MAC Lipstick Ruby Woo", Brand: "MAC", Category: "Cosmetics", PurchasePrice: 800, SellingPrice: 1200, CurrentQuantity: 45},
	{Name: "Samsung Galaxy Buds Pro", Brand: "Samsung", Category: "Electronics", PurchasePrice: 3000, SellingPrice: 4500, CurrentQuantity: 65},
	{Name: "JBL Flip 6 Bluetooth Speaker", Brand: "JBL", Category: "Electronics", PurchasePrice: 2000, SellingPrice: 3000, CurrentQuantity: 80},
	{Name: "Sony WH-1000XM5 Headphones", Brand: "Sony", Category: "Electronics", PurchasePrice: 18000, SellingPrice: 25000, CurrentQuantity: 25},
	{Name: "Levis 511 Slim Fit Jeans Blue", Brand: "Levis", Category: "Clothing", PurchasePrice: 1200, SellingPrice: 2000, CurrentQuantity: 95},
	{Name: "Nike Dri-FIT T-Shirt White", Brand: "Nike", Category: "Clothing", PurchasePrice: 500, SellingPrice: 899, CurrentQuantity: 200},
	{Name: "Coca Cola 2 Liter", Brand: "Coca Cola", Category: "Food & Beverages", PurchasePrice: 60, SellingPrice: 90, CurrentQuantity: 500},
	{Name: "Cadbury Dairy Milk 55g", Brand: "Cadbury", Category: "Food & Beverages", PurchasePrice: 25, SellingPrice: 40, CurrentQuantity: 600},
	{Name: "Amul Taaza Toned Milk 1L", Brand: "Amul", Category: "Food & Beverages", PurchasePrice: 48, SellingPrice: 60, CurrentQuantity: 400},
	{Name: "Prestige Deluxe Pressure Cooker 5L", Brand: "Prestige", Category: "Home & Kitchen", PurchasePrice: 1200, SellingPrice: 1800, CurrentQuantity: 120},
	{Name: "Milton Thermosteel Bottle 1L", Brand: "Milton", Category: "Home & Kitchen", PurchasePrice: 200, SellingPrice: 350, CurrentQuantity: 180},
	{Name: "Pigeon Mixer Grinder", Brand: "Pigeon", Category: "Home & Kitchen", PurchasePrice: 1500, SellingPrice: 2299, CurrentQuantity: 60},
}

// Generator writes the catalog and a synthetic sales history.
type Generator struct {
	Products store.ProductStore
	Sales    store.SalesStore
	Days     int
	Now      func() time.Time
	rng      *rand.Rand
}

// NewGenerator returns a generator with a fixed random seed.
func NewGenerator(products store.ProductStore, sales store.SalesStore, seed uint64) *Generator {
	return &Generator{
		Products: products,
		Sales:    sales,
		Days:     DefaultDays,
		Now:      time.Now,
		rng:      rand.New(rand.NewPCG(seed, seed^0x5eed)),
	}
}

// Summary counts what Run wrote.
type Summary struct {
	Products int
	Sales    int
	Restocks int
}

// Run adds every catalog product and Days of sales ending yesterday.
func (g *Generator) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	end := model.Day(g.Now())
	for _, p := range Catalog {
		added, err := g.Products.AddProduct(ctx, p)
		if err != nil {
			return sum, fmt.Errorf("add product %q: %w", p.Name, err)
		}
		sum.Products++

		for day := g.Days; day >= 1; day-- {
			if err := ctx.Err(); err != nil {
				return sum, err
			}
			date := end.AddDate(0, 0, -day)
			qty := g.Quantity(date)
			restocked, err := g.sell(ctx, added.ID, qty, date)
			if err != nil {
				return sum, err
			}
			if restocked {
				sum.Restocks++
			}
			sum.Sales++
		}
	}
	log.Printf("[INFO] seeded %d products, %d sales, %d restocks", sum.Products, sum.Sales, sum.Restocks)
	return sum, nil
}

// sell records a sale, restocking once when stock runs short.
func (g *Generator) sell(ctx context.Context, id int64, qty int, date time.Time) (bool, error) {
	_, err := g.Sales.RecordSale(ctx, id, qty, date)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrInsufficientStock) {
		return false, fmt.Errorf("record sale for %d: %w", id, err)
	}
	if _, err := g.Products.RecordPurchase(ctx, id, RestockQty); err != nil {
		return false, fmt.Errorf("restock %d: %w", id, err)
	}
	if _, err := g.Sales.RecordSale(ctx, id, qty, date); err != nil && !errors.Is(err, store.ErrInsufficientStock) {
		return true, fmt.Errorf("record sale for %d: %w", id, err)
	}
	return true, nil
}

// Quantity draws one day's demand for date.
func (g *Generator) Quantity(date time.Time) int {
	return g.noisy(BaseDemand(minBaseDemand+g.rng.IntN(maxBaseDemand-minBaseDemand+1), date))
}

func (g *Generator) noisy(base int) int {
	b := float64(base)
	return max(1, int(b+g.rng.NormFloat64()*b*demandVariance))
}

// BaseDemand applies the weekend and month-end boosts to base, truncating after each.
func BaseDemand(base int, date time.Time) int {
	if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
		base = int(float64(base) * weekendBoost)
	}
	if date.Day() >= monthEndDay {
		base = int(float64(base) * monthEndBoost)
	}
	return base
}
