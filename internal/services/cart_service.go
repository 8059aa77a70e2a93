package services

import (
	"errors"
	"fmt"
	"time"

	"campusmart/internal/domain"
	applog "campusmart/internal/log"
	"campusmart/internal/repos"
)

type CartService struct {
	Carts *repos.CartRepo
	Prods *repos.ProductRepo
	Inv   *repos.InventoryRepo

	MaxItems int // distinct lines per cart, 0 = unlimited
	MaxQty   int // units per line, 0 = unlimited

	sessions sessionLocks
}

func NewCartService(carts *repos.CartRepo, prods *repos.ProductRepo, inv *repos.InventoryRepo) *CartService {
	return &CartService{Carts: carts, Prods: prods, Inv: inv, MaxItems: 50, MaxQty: 99}
}

type CartView struct {
	Lines []domain.CartLine `json:"lines"`
	Total int64             `json:"total"`
	Count int               `json:"count"`
}

// Add reserves qty units and records them in the session's cart. Name, price
// and contact come from the catalog, never from the client.
func (s *CartService) Add(sessionID, productID string, qty int) (CartView, error) {
	if qty < 1 || (s.MaxQty > 0 && qty > s.MaxQty) {
		return CartView{}, domain.ErrInvalidQuantity
	}
	p, err := s.Prods.Get(productID)
	if err != nil {
		return CartView{}, err
	}

	unlock := s.sessions.lock(sessionID)
	defer unlock()

	// cheap pre-checks so a full cart does not touch stock at all
	cart := s.Carts.Get(sessionID)
	if i := cart.Index(productID); i >= 0 {
		if s.MaxQty > 0 && cart.Lines[i].Quantity+qty > s.MaxQty {
			return CartView{}, fmt.Errorf("%w: at most %d per item", domain.ErrInvalidQuantity, s.MaxQty)
		}
	} else if s.MaxItems > 0 && len(cart.Lines) >= s.MaxItems {
		return CartView{}, fmt.Errorf("%w (max %d)", domain.ErrCartFull, s.MaxItems)
	}

	line := domain.CartLine{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: qty, Phone: p.Phone}
	err = withReservation(s.Inv, productID, qty, func() error {
		return s.Carts.UpsertLine(sessionID, line, s.MaxItems, s.MaxQty)
	})
	if err != nil {
		return CartView{}, err
	}
	return s.view(sessionID), nil
}

// Remove releases the line's reservation and drops it. A missing line is a
// no-op.
func (s *CartService) Remove(sessionID, productID string) (CartView, error) {
	unlock := s.sessions.lock(sessionID)
	defer unlock()

	line, ok := s.Carts.Line(sessionID, productID)
	if !ok {
		return s.view(sessionID), nil
	}
	restored, err := s.release(line)
	if err != nil {
		return CartView{}, err
	}
	if err := s.Carts.RemoveLines(sessionID, productID); err != nil {
		if !restored {
			return CartView{}, err
		}
		// take the units back so the line and the ledger agree again
		if _, cerr := s.Inv.Change(productID, -line.Quantity); cerr != nil {
			applog.Error(nil, "stock.compensate.fail", cerr, map[string]any{"product": productID, "qty": line.Quantity})
			return CartView{}, errors.Join(err, cerr)
		}
		return CartView{}, err
	}
	return s.view(sessionID), nil
}

// Clear releases every line. Lines whose stock could not be restored stay in
// the cart and the failures are returned together.
func (s *CartService) Clear(sessionID string) error {
	unlock := s.sessions.lock(sessionID)
	defer unlock()
	return s.clear(sessionID)
}

func (s *CartService) clear(sessionID string) error {
	cart := s.Carts.Get(sessionID)
	var (
		released []domain.CartLine
		restored []domain.CartLine
		errs     []error
	)
	for _, l := range cart.Lines {
		ok, err := s.release(l)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		released = append(released, l)
		if ok {
			restored = append(restored, l)
		}
	}
	if len(released) > 0 {
		ids := make([]string, len(released))
		for i, l := range released {
			ids[i] = l.ProductID
		}
		if err := s.Carts.RemoveLines(sessionID, ids...); err != nil {
			for _, l := range restored {
				if _, cerr := s.Inv.Change(l.ProductID, -l.Quantity); cerr != nil {
					applog.Error(nil, "stock.compensate.fail", cerr, map[string]any{"product": l.ProductID, "qty": l.Quantity})
					errs = append(errs, cerr)
				}
			}
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		applog.Warn(nil, "cart.clear.partial", errors.Join(errs...), map[string]any{
			"sid": sessionID, "released": len(released), "lines": len(cart.Lines),
		})
		return errors.Join(errs...)
	}
	return nil
}

// release returns a line's units to stock. A product that has left the
// catalog has no stock to return; its line is released without restoring.
func (s *CartService) release(l domain.CartLine) (restored bool, err error) {
	_, err = s.Inv.Change(l.ProductID, l.Quantity)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrProductNotFound):
		applog.Warn(nil, "cart.release.orphan", err, map[string]any{"product": l.ProductID, "qty": l.Quantity})
		return false, nil
	}
	return false, fmt.Errorf("release %s: %w", l.ProductID, err)
}

// Discard drops the cart without returning stock; its lines have been
// handed over to an order.
func (s *CartService) Discard(sessionID string) error {
	unlock := s.sessions.lock(sessionID)
	defer unlock()
	return s.Carts.Discard(sessionID)
}

// View recomputes the total on every call.
func (s *CartService) View(sessionID string) CartView { return s.view(sessionID) }

func (s *CartService) view(sessionID string) CartView {
	c := s.Carts.Get(sessionID)
	return CartView{Lines: c.Lines, Total: c.Total(), Count: len(c.Lines)}
}

// Total is the sum of price*quantity over the current lines.
func (s *CartService) Total(sessionID string) int64 { return s.Carts.Get(sessionID).Total() }

// ReleaseStale clears carts idle for longer than maxAge, returning their
// stock. It reports how many carts were fully released.
func (s *CartService) ReleaseStale(maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	var (
		n    int
		errs []error
	)
	for _, c := range s.Carts.IdleSince(time.Now().Add(-maxAge)) {
		unlock := s.sessions.lock(c.SessionID)
		// re-check under the session lock; the cart may have been used since
		cur := s.Carts.Get(c.SessionID)
		if len(cur.Lines) == 0 || !cur.UpdatedAt.Equal(c.UpdatedAt) {
			unlock()
			continue
		}
		if err := s.clear(c.SessionID); err != nil {
			errs = append(errs, err)
		} else {
			n++
			applog.Info(nil, "cart.expired", map[string]any{"sid": c.SessionID, "lines": len(c.Lines)})
		}
		unlock()
	}
	return n, errors.Join(errs...)
}
