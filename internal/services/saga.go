package services

import (
	"errors"
	"fmt"
	"sync"

	applog "campusmart/internal/log"
	"campusmart/internal/repos"
)

// withReservation takes qty units of productID out of stock, then runs apply.
// If apply fails the units are put back. Stock and carts live in separate
// documents, so this compensates rather than commits atomically.
func withReservation(inv *repos.InventoryRepo, productID string, qty int, apply func() error) error {
	if _, err := inv.Change(productID, -qty); err != nil {
		return err
	}
	err := apply()
	if err == nil {
		return nil
	}
	if _, cerr := inv.Change(productID, qty); cerr != nil {
		applog.Error(nil, "stock.compensate.fail", cerr, map[string]any{
			"product": productID, "qty": qty, "cause": err.Error(),
		})
		return errors.Join(err, fmt.Errorf("restore %d of %s: %w", qty, productID, cerr))
	}
	return err
}

// sessionLocks serializes cart operations issued by one session.
type sessionLocks struct{ m sync.Map }

func (l *sessionLocks) lock(sessionID string) func() {
	v, _ := l.m.LoadOrStore(sessionID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
