package services

import (
	"errors"
	"fmt"

	"campusmart/internal/domain"
	applog "campusmart/internal/log"
	"campusmart/internal/validate"
)

const maxIDAttempts = 3

type CheckoutService struct {
	Carts   *CartService
	Orders  *OrderService
	Pickups *PickupService
}

func NewCheckoutService(carts *CartService, orders *OrderService, pickups *PickupService) *CheckoutService {
	return &CheckoutService{Carts: carts, Orders: orders, Pickups: pickups}
}

type CheckoutSummary struct {
	Cart      CartView                `json:"cart"`
	Locations []domain.PickupLocation `json:"locations"`
}

func (s *CheckoutService) Summary(sessionID string) CheckoutSummary {
	return CheckoutSummary{Cart: s.Carts.View(sessionID), Locations: s.Pickups.List()}
}

// Place turns the session's cart into an order. Stock was reserved when the
// items were added, so nothing is decremented here. The cart is discarded
// only after the order is stored.
func (s *CheckoutService) Place(sessionID string, owner domain.User, f validate.CheckoutForm) (domain.Order, error) {
	unlock := s.Carts.sessions.lock(sessionID)
	defer unlock()

	cart := s.Carts.Carts.Get(sessionID)
	if len(cart.Lines) == 0 {
		return domain.Order{}, domain.ErrCartEmpty
	}
	if err := validate.First(&f); err != nil {
		return domain.Order{}, err
	}
	if !validate.Checked(f.TermsAgreed) {
		return domain.Order{}, domain.Invalid("terms_agreed", "you must accept the terms and conditions")
	}
	if !s.Pickups.Exists(f.PickupLocation) {
		return domain.Order{}, domain.Invalid("pickup_location", "is not a known pickup location")
	}

	items := make([]domain.OrderItem, len(cart.Lines))
	for i, l := range cart.Lines {
		items[i] = domain.OrderItem{ProductID: l.ProductID, Name: l.Name, Price: l.Price, Quantity: l.Quantity, Phone: l.Phone}
	}
	o := domain.Order{
		UserID:         owner.ID,
		UserName:       owner.Name,
		Fullname:       f.Fullname,
		Phone:          f.Phone,
		Items:          items,
		PickupLocation: f.PickupLocation,
		Notes:          f.Notes,
	}

	var (
		placed domain.Order
		err    error
	)
	for i := 0; i < maxIDAttempts; i++ {
		o.ID = NewOrderID()
		placed, err = s.Orders.Create(o)
		if !errors.Is(err, domain.ErrDuplicateOrder) {
			break
		}
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("place order: %w", err)
	}

	if err := s.Carts.Carts.Discard(sessionID); err != nil {
		// the order stands; the leftover lines belong to it and must not be released
		applog.Error(nil, "checkout.cart.discard.fail", err, map[string]any{"sid": sessionID, "order": placed.ID})
	}
	return placed, nil
}
