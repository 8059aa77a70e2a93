package repos

import (
	"fmt"
	"time"

	"campusmart/internal/domain"
	"campusmart/internal/store"
)

type CartRepo struct {
	carts *store.JSON[Carts]
	now   func() time.Time
}

func NewCartRepo(carts *store.JSON[Carts]) *CartRepo {
	return &CartRepo{carts: carts, now: time.Now}
}

// Get returns the session's cart, empty if it has none yet.
func (r *CartRepo) Get(sessionID string) domain.Cart {
	c, ok := r.carts.Load()[sessionID]
	if !ok {
		return domain.Cart{SessionID: sessionID, Lines: []domain.CartLine{}}
	}
	if c.Lines == nil {
		c.Lines = []domain.CartLine{}
	}
	return c
}

func (r *CartRepo) Line(sessionID, productID string) (domain.CartLine, bool) {
	c := r.Get(sessionID)
	if i := c.Index(productID); i >= 0 {
		return c.Lines[i], true
	}
	return domain.CartLine{}, false
}

// UpsertLine adds line to the cart or, when the product is already there,
// increments its quantity. maxLines and maxQty of 0 mean unlimited.
func (r *CartRepo) UpsertLine(sessionID string, line domain.CartLine, maxLines, maxQty int) error {
	return r.carts.Update(func(all *Carts) error {
		c := (*all)[sessionID]
		c.SessionID = sessionID
		if i := c.Index(line.ProductID); i >= 0 {
			q := c.Lines[i].Quantity + line.Quantity
			if maxQty > 0 && q > maxQty {
				return fmt.Errorf("%w: at most %d per item", domain.ErrInvalidQuantity, maxQty)
			}
			c.Lines[i].Quantity = q
		} else {
			if maxLines > 0 && len(c.Lines) >= maxLines {
				return fmt.Errorf("%w (max %d)", domain.ErrCartFull, maxLines)
			}
			c.Lines = append(c.Lines, line)
		}
		c.UpdatedAt = r.now()
		(*all)[sessionID] = c
		return nil
	})
}

// RemoveLines drops the given products from the cart. Missing lines are
// ignored; an emptied cart is deleted.
func (r *CartRepo) RemoveLines(sessionID string, productIDs ...string) error {
	drop := make(map[string]bool, len(productIDs))
	for _, id := range productIDs {
		drop[id] = true
	}
	return r.carts.Update(func(all *Carts) error {
		c, ok := (*all)[sessionID]
		if !ok {
			return store.ErrSkip
		}
		kept := c.Lines[:0]
		for _, l := range c.Lines {
			if !drop[l.ProductID] {
				kept = append(kept, l)
			}
		}
		if len(kept) == len(c.Lines) {
			return store.ErrSkip
		}
		if len(kept) == 0 {
			delete(*all, sessionID)
			return nil
		}
		c.Lines = kept
		c.UpdatedAt = r.now()
		(*all)[sessionID] = c
		return nil
	})
}

// Discard deletes the cart without touching stock.
func (r *CartRepo) Discard(sessionID string) error {
	return r.carts.Update(func(all *Carts) error {
		if _, ok := (*all)[sessionID]; !ok {
			return store.ErrSkip
		}
		delete(*all, sessionID)
		return nil
	})
}

// IdleSince lists carts not touched since cutoff.
func (r *CartRepo) IdleSince(cutoff time.Time) []domain.Cart {
	var out []domain.Cart
	for _, c := range r.carts.Load() {
		if len(c.Lines) > 0 && c.UpdatedAt.Before(cutoff) {
			out = append(out, c)
		}
	}
	return out
}
