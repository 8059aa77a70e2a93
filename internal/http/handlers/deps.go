package handlers

import (
	"campusmart/internal/config"
	"campusmart/internal/repos"
	"campusmart/internal/services"
)

type Deps struct {
	CartHandler      *CartHandler
	OrderHandler     *OrderHandler
	InventoryHandler *InventoryHandler
	LocationHandler  *LocationHandler
	AdminHandler     *AdminHandler
	ProductHandler   *ProductHandler

	Carts          *services.CartService
	AdminTokenHash string
}

func NewDeps(st *repos.Stores, cfg config.Config) *Deps {
	prodRepo := repos.NewProductRepo(st.Products)
	invRepo := repos.NewInventoryRepo(st.Products)
	cartRepo := repos.NewCartRepo(st.Carts)
	orderRepo := repos.NewOrderRepo(st.Orders)
	locRepo := repos.NewLocationRepo(st.Locations)

	invSvc := services.NewInventoryService(invRepo, prodRepo)
	if cfg.LowStockAt > 0 {
		invSvc.LowStockAt = cfg.LowStockAt
	}
	cartSvc := services.NewCartService(cartRepo, prodRepo, invRepo)
	cartSvc.MaxItems = cfg.MaxCartItems
	cartSvc.MaxQty = cfg.MaxQtyPerItem
	orderSvc := services.NewOrderService(orderRepo)
	pickupSvc := services.NewPickupService(locRepo)
	checkoutSvc := services.NewCheckoutService(cartSvc, orderSvc, pickupSvc)

	return &Deps{
		CartHandler:      &CartHandler{Cart: cartSvc},
		OrderHandler:     &OrderHandler{Checkout: checkoutSvc, Orders: orderSvc, Pickups: pickupSvc},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
		LocationHandler:  &LocationHandler{Pickups: pickupSvc},
		AdminHandler:     &AdminHandler{Inv: invSvc, Orders: orderSvc, Pickups: pickupSvc},
		ProductHandler:   &ProductHandler{Catalog: services.NewCatalogService(prodRepo)},
		Carts:            cartSvc,
		AdminTokenHash:   cfg.AdminTokenHash,
	}
}
