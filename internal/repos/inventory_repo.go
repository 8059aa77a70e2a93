package repos

import (
	"fmt"
	"math"
	"sort"

	"campusmart/internal/domain"
	"campusmart/internal/store"
)

// InventoryRepo is the stock ledger. Every mutation is one load/validate/save
// critical section on the products document.
type InventoryRepo struct{ products *store.JSON[Catalog] }

func NewInventoryRepo(products *store.JSON[Catalog]) *InventoryRepo {
	return &InventoryRepo{products: products}
}

// Row used by admin inventory pages
type InventoryRow struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Qty       int    `json:"qty"`
}

func (r *InventoryRepo) ListAll() []InventoryRow {
	cat := r.products.Load()
	rows := make([]InventoryRow, 0, len(cat))
	for _, p := range cat {
		rows = append(rows, InventoryRow{ProductID: p.ID, Name: p.Name, Qty: p.Stock})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].ProductID < rows[j].ProductID
	})
	return rows
}

// Qty returns current stock, 0 for an unknown product.
func (r *InventoryRepo) Qty(productID string) int {
	return r.products.Load()[productID].Stock
}

// SetQty overwrites the stock of an existing product.
func (r *InventoryRepo) SetQty(productID string, qty int) error {
	if qty < 0 {
		return domain.ErrNegativeStock
	}
	return r.products.Update(func(cat *Catalog) error {
		p, ok := (*cat)[productID]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
		}
		p.Stock = qty
		(*cat)[productID] = p
		return nil
	})
}

// Change applies delta to the stock and returns the new level. A delta that
// would take stock below zero is rejected and nothing is written.
func (r *InventoryRepo) Change(productID string, delta int) (int, error) {
	var next int
	err := r.products.Update(func(cat *Catalog) error {
		p, ok := (*cat)[productID]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
		}
		if delta > 0 && p.Stock > math.MaxInt-delta {
			return fmt.Errorf("%w: stock overflow for %s", domain.ErrInvalidProduct, productID)
		}
		next = p.Stock + delta
		if next < 0 {
			return fmt.Errorf("%w for %s (need %d, have %d)", domain.ErrInsufficientStock, productID, -delta, p.Stock)
		}
		p.Stock = next
		(*cat)[productID] = p
		return nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}
