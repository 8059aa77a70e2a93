package repos

import (
	"fmt"
	"sort"

	"campusmart/internal/domain"
	"campusmart/internal/store"
)

type LocationRepo struct{ locations *store.JSON[Locations] }

func NewLocationRepo(locations *store.JSON[Locations]) *LocationRepo {
	return &LocationRepo{locations: locations}
}

func (r *LocationRepo) List() []domain.PickupLocation {
	all := r.locations.Load()
	out := make([]domain.PickupLocation, 0, len(all))
	for _, l := range all {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *LocationRepo) Get(id string) (domain.PickupLocation, bool) {
	l, ok := r.locations.Load()[id]
	return l, ok
}

// Put inserts or replaces the location stored under loc.ID.
func (r *LocationRepo) Put(loc domain.PickupLocation) error {
	return r.locations.Update(func(all *Locations) error {
		(*all)[loc.ID] = loc
		return nil
	})
}

// Patch applies fn to an existing location.
func (r *LocationRepo) Patch(id string, fn func(l *domain.PickupLocation)) (domain.PickupLocation, error) {
	var out domain.PickupLocation
	err := r.locations.Update(func(all *Locations) error {
		l, ok := (*all)[id]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrLocationNotFound, id)
		}
		fn(&l)
		l.ID = id
		(*all)[id] = l
		out = l
		return nil
	})
	return out, err
}

func (r *LocationRepo) Delete(id string) error {
	return r.locations.Update(func(all *Locations) error {
		if _, ok := (*all)[id]; !ok {
			return fmt.Errorf("%w: %s", domain.ErrLocationNotFound, id)
		}
		delete(*all, id)
		return nil
	})
}
