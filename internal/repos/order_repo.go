package repos

import (
	"fmt"
	"sort"

	"campusmart/internal/domain"
	"campusmart/internal/store"
)

// OrderRepo is the append-only order list.
type OrderRepo struct{ orders *store.JSON[Orders] }

func NewOrderRepo(orders *store.JSON[Orders]) *OrderRepo { return &OrderRepo{orders: orders} }

// Create appends o; ids are unique.
func (r *OrderRepo) Create(o domain.Order) error {
	return r.orders.Update(func(all *Orders) error {
		for _, x := range *all {
			if x.ID == o.ID {
				return fmt.Errorf("%w: %s", domain.ErrDuplicateOrder, o.ID)
			}
		}
		*all = append(*all, o)
		return nil
	})
}

func (r *OrderRepo) Get(id string) (domain.Order, error) {
	for _, o := range r.orders.Load() {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepo) ListByUser(userID string) []domain.Order {
	var out []domain.Order
	for _, o := range r.orders.Load() {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return newestFirst(out)
}

// ListLatest returns up to limit orders, newest first; limit <= 0 means all.
func (r *OrderRepo) ListLatest(limit int) []domain.Order {
	out := newestFirst(r.orders.Load())
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// All returns orders in insertion order.
func (r *OrderRepo) All() []domain.Order { return r.orders.Load() }

// Mutate applies fn to the order in place and saves it. fn may return
// store.ErrSkip to leave the ledger untouched.
func (r *OrderRepo) Mutate(id string, fn func(o *domain.Order) error) (domain.Order, error) {
	var out domain.Order
	err := r.orders.Update(func(all *Orders) error {
		for i := range *all {
			if (*all)[i].ID != id {
				continue
			}
			if err := fn(&(*all)[i]); err != nil {
				out = (*all)[i]
				return err
			}
			out = (*all)[i]
			return nil
		}
		return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	})
	if err != nil {
		return domain.Order{}, err
	}
	return out, nil
}

// Delete removes the order; absence is not an error.
func (r *OrderRepo) Delete(id string) error {
	return r.orders.Update(func(all *Orders) error {
		for i, o := range *all {
			if o.ID == id {
				*all = append((*all)[:i], (*all)[i+1:]...)
				return nil
			}
		}
		return store.ErrSkip
	})
}

// Ties keep insertion order.
func newestFirst(orders []domain.Order) []domain.Order {
	if orders == nil {
		return []domain.Order{}
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders
}
