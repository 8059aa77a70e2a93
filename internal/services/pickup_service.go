package services

import (
	"fmt"

	"campusmart/internal/domain"
	"campusmart/internal/repos"
	"campusmart/internal/validate"
)

const unknownLocation = "Unknown Location"

type PickupService struct {
	Locations *repos.LocationRepo
}

func NewPickupService(locations *repos.LocationRepo) *PickupService {
	return &PickupService{Locations: locations}
}

func (s *PickupService) List() []domain.PickupLocation { return s.Locations.List() }

func (s *PickupService) Get(id string) (domain.PickupLocation, error) {
	l, ok := s.Locations.Get(id)
	if !ok {
		return domain.PickupLocation{}, fmt.Errorf("%w: %s", domain.ErrLocationNotFound, id)
	}
	return l, nil
}

func (s *PickupService) Exists(id string) bool {
	_, ok := s.Locations.Get(id)
	return ok
}

// Name is the display name for id, or "Unknown Location".
func (s *PickupService) Name(id string) string {
	if l, ok := s.Locations.Get(id); ok {
		return l.Name
	}
	return unknownLocation
}

// Add inserts a location. An existing id is replaced.
func (s *PickupService) Add(f validate.LocationForm) (domain.PickupLocation, error) {
	if err := validate.First(&f); err != nil {
		return domain.PickupLocation{}, err
	}
	loc := domain.PickupLocation{
		ID:             f.ID,
		Name:           f.Name,
		Address:        f.Address,
		OperatingHours: f.OperatingHours,
		Phone:          f.Phone,
		Description:    f.Description,
	}
	if err := s.Locations.Put(loc); err != nil {
		return domain.PickupLocation{}, err
	}
	return loc, nil
}

// Update overwrites the non-empty fields of p.
func (s *PickupService) Update(id string, p validate.LocationPatch) (domain.PickupLocation, error) {
	if err := validate.First(&p); err != nil {
		return domain.PickupLocation{}, err
	}
	return s.Locations.Patch(id, func(l *domain.PickupLocation) {
		set := func(dst *string, v string) {
			if v != "" {
				*dst = v
			}
		}
		set(&l.Name, p.Name)
		set(&l.Address, p.Address)
		set(&l.OperatingHours, p.OperatingHours)
		set(&l.Phone, p.Phone)
		set(&l.Description, p.Description)
	})
}

func (s *PickupService) Delete(id string) error { return s.Locations.Delete(id) }
