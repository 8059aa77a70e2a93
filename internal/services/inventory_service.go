package services

import (
	"campusmart/internal/domain"
	"campusmart/internal/repos"
	"campusmart/internal/validate"
)

const defaultLowStockAt = 5

type InventoryService struct {
	Inv        *repos.InventoryRepo
	Prods      *repos.ProductRepo
	LowStockAt int
}

func NewInventoryService(inv *repos.InventoryRepo, prods *repos.ProductRepo) *InventoryService {
	return &InventoryService{Inv: inv, Prods: prods, LowStockAt: defaultLowStockAt}
}

// GetStock returns 0 for an unknown product.
func (s *InventoryService) GetStock(productID string) int { return s.Inv.Qty(productID) }

func (s *InventoryService) SetStock(productID string, qty int) error {
	return s.Inv.SetQty(productID, qty)
}

// ChangeStock is the only path that moves stock relative to its current
// level; it refuses to go below zero.
func (s *InventoryService) ChangeStock(productID string, delta int) error {
	_, err := s.Inv.Change(productID, delta)
	return err
}

func (s *InventoryService) AddProduct(p domain.Product) error {
	if p.Price < 0 || p.Stock < 0 {
		return domain.ErrInvalidProduct
	}
	return s.Prods.Add(p)
}

func (s *InventoryService) GenerateProductID() string { return s.Prods.NextID() }

// CreateProduct validates the admin form and inserts the product under a
// freshly allocated id.
func (s *InventoryService) CreateProduct(f validate.ProductForm) (domain.Product, error) {
	if err := validate.First(&f); err != nil {
		return domain.Product{}, err
	}
	p := domain.Product{Name: f.Name, Price: f.Price, Stock: f.Stock, Image: f.Image, Phone: f.Phone}
	if p.Image == "" {
		p.Image = "/static/picture/default.svg"
	}
	return s.Prods.Create(p)
}

func (s *InventoryService) Products() []domain.Product { return s.Prods.List() }

func (s *InventoryService) Stock() []repos.InventoryRow { return s.Inv.ListAll() }

// CheckAvailability maps the stock level to IN_STOCK, LOW_STOCK or OUT_OF_STOCK.
func (s *InventoryService) CheckAvailability(productID string) (domain.Availability, error) {
	if _, err := s.Prods.Get(productID); err != nil {
		return domain.Availability{}, err
	}
	qty := s.Inv.Qty(productID)
	low := s.LowStockAt
	if low <= 0 {
		low = defaultLowStockAt
	}
	status := "OUT_OF_STOCK"
	switch {
	case qty >= low:
		status = "IN_STOCK"
	case qty > 0:
		status = "LOW_STOCK"
	}
	return domain.Availability{Status: status, Qty: qty}, nil
}
