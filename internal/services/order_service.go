package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"campusmart/internal/domain"
	"campusmart/internal/repos"
	"campusmart/internal/store"
)

type OrderService struct {
	Orders *repos.OrderRepo
	now    func() time.Time
}

func NewOrderService(orders *repos.OrderRepo) *OrderService {
	return &OrderService{Orders: orders, now: time.Now}
}

// NewOrderID returns an id of the form ORD-1A2B3C4D.
func NewOrderID() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Create validates o, fills defaults and appends it. The stored total is
// always recomputed from the items.
func (s *OrderService) Create(o domain.Order) (domain.Order, error) {
	if err := checkOrder(o); err != nil {
		return domain.Order{}, err
	}
	if o.Status == "" {
		o.Status = domain.StatusPending
	}
	st, ok := domain.ParseOrderStatus(string(o.Status))
	if !ok {
		return domain.Order{}, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, o.Status)
	}
	o.Status = st
	if o.PaymentStatus == "" {
		o.PaymentStatus = domain.PaymentPending
	}
	if _, ok := domain.ParsePaymentStatus(string(o.PaymentStatus)); !ok {
		return domain.Order{}, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, o.PaymentStatus)
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.now()
	}
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	o.Total = o.ItemsTotal()

	if err := s.Orders.Create(o); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func checkOrder(o domain.Order) error {
	required := []struct{ field, value string }{
		{"order_id", o.ID},
		{"user_id", o.UserID},
		{"fullname", o.Fullname},
		{"phone", o.Phone},
		{"pickup_location", o.PickupLocation},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return domain.Invalid(r.field, "is required")
		}
	}
	if len(o.Items) == 0 {
		return domain.Invalid("items", "must contain at least one item")
	}
	for i, it := range o.Items {
		switch {
		case strings.TrimSpace(it.Name) == "":
			return domain.Invalid(fmt.Sprintf("items[%d].name", i), "is required")
		case it.Price < 0:
			return domain.Invalid(fmt.Sprintf("items[%d].price", i), "must not be negative")
		case it.Quantity < 1:
			return domain.Invalid(fmt.Sprintf("items[%d].quantity", i), "must be at least 1")
		}
	}
	return nil
}

func (s *OrderService) Get(id string) (domain.Order, error) { return s.Orders.Get(id) }

func (s *OrderService) ListByOwner(userID string) []domain.Order { return s.Orders.ListByUser(userID) }

func (s *OrderService) ListAll() []domain.Order { return s.Orders.ListLatest(0) }

// UpdateStatus moves the order along the status table. Setting the current
// status again is a no-op.
func (s *OrderService) UpdateStatus(id, status string) (domain.Order, error) {
	next, ok := domain.ParseOrderStatus(status)
	if !ok {
		return domain.Order{}, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	return s.Orders.Mutate(id, func(o *domain.Order) error {
		cur := o.Status.Normalize()
		if cur == next {
			return store.ErrSkip
		}
		if !domain.CanTransition(cur, next) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrIllegalTransition, cur, next)
		}
		o.Status = next
		s.touch(o)
		return nil
	})
}

func (s *OrderService) UpdatePaymentStatus(id, status string) (domain.Order, error) {
	next, ok := domain.ParsePaymentStatus(status)
	if !ok {
		return domain.Order{}, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	return s.Orders.Mutate(id, func(o *domain.Order) error {
		if o.PaymentStatus == next {
			return store.ErrSkip
		}
		o.PaymentStatus = next
		s.touch(o)
		return nil
	})
}

func (s *OrderService) touch(o *domain.Order) {
	t := s.now()
	o.UpdatedAt = &t
}

func (s *OrderService) Delete(id string) error { return s.Orders.Delete(id) }

// Statistics aggregates over the current snapshot; it never writes.
func (s *OrderService) Statistics() domain.OrderStats {
	st := domain.OrderStats{
		StatusBreakdown:  map[domain.OrderStatus]int{},
		PaymentBreakdown: map[domain.PaymentStatus]int{},
	}
	for _, o := range s.Orders.All() {
		st.TotalOrders++
		st.TotalRevenue += o.Total
		st.StatusBreakdown[o.Status.Normalize()]++
		if o.PaymentStatus != "" {
			st.PaymentBreakdown[o.PaymentStatus]++
		}
	}
	return st
}
