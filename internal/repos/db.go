package repos

import (
	"fmt"
	"log"

	"campusmart/internal/config"
	"campusmart/internal/domain"
	"campusmart/internal/store"
)

type (
	Catalog   = map[string]domain.Product
	Carts     = map[string]domain.Cart
	Orders    = []domain.Order
	Locations = map[string]domain.PickupLocation
)

// Stores holds one typed document per collection, each persisted separately.
type Stores struct {
	Products  *store.JSON[Catalog]
	Carts     *store.JSON[Carts]
	Orders    *store.JSON[Orders]
	Locations *store.JSON[Locations]
}

func NewStores(b store.Backend) *Stores {
	return &Stores{
		Products:  store.NewJSON(b, "products", func() Catalog { return Catalog{} }),
		Carts:     store.NewJSON(b, "carts", func() Carts { return Carts{} }),
		Orders:    store.NewJSON(b, "orders", func() Orders { return Orders{} }),
		Locations: store.NewJSON(b, "pickup_locations", func() Locations { return Locations{} }),
	}
}

// OpenBackend picks the storage engine named by cfg.StoreBackend. The
// returned closer releases the underlying connection, if any.
func OpenBackend(cfg config.Config) (store.Backend, func() error, error) {
	switch cfg.StoreBackend {
	case "sqlite":
		b, err := store.OpenSQLite(cfg.DBDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite %s: %w", cfg.DBDSN, err)
		}
		return b, b.Close, nil
	case "redis":
		b, err := store.NewRedisBackend(cfg.RedisAddr, "campusmart")
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		return b, b.Close, nil
	default:
		b, err := store.NewFileBackend(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return b, func() error { return nil }, nil
	}
}

// Open builds the stores and seeds reference data (idempotent; safe to run
// every start).
func Open(b store.Backend) (*Stores, error) {
	s := NewStores(b)
	if seeded, err := s.Products.Seed(demoProducts()); err != nil {
		return nil, fmt.Errorf("seed products: %w", err)
	} else if seeded {
		log.Println("[seed] inserting demo catalog")
	}
	if seeded, err := s.Locations.Seed(DefaultLocations()); err != nil {
		return nil, fmt.Errorf("seed pickup locations: %w", err)
	} else if seeded {
		log.Println("[seed] inserting default pickup locations")
	}
	return s, nil
}

func demoProducts() Catalog {
	return Catalog{
		"p_produk_1":    {ID: "p_produk_1", Name: "Kaos Polos Kampus", Price: 75000, Stock: 20, Image: "/static/picture/kaos.svg", Phone: "081234567890"},
		"p_sepatu_2":    {ID: "p_sepatu_2", Name: "Sepatu Kanvas", Price: 250000, Stock: 8, Image: "/static/picture/sepatu.svg", Phone: "081234567891"},
		"p_headphone_3": {ID: "p_headphone_3", Name: "Headphone Bekas", Price: 180000, Stock: 3, Image: "/static/picture/headphone.svg", Phone: "081234567892"},
		"p_laptop_4":    {ID: "p_laptop_4", Name: "Laptop Second", Price: 3500000, Stock: 1, Image: "/static/picture/laptop.svg", Phone: "081234567893"},
	}
}

func DefaultLocations() Locations {
	return Locations{
		"loc_library": {
			ID:             "loc_library",
			Name:           "Perpustakaan Utama",
			Address:        "Gedung Perpustakaan Kampus, Lantai 1",
			OperatingHours: "08:00 - 17:00",
			Phone:          "021-12345678",
			Description:    "Lobi utama perpustakaan, dekat dengan meja informasi",
		},
		"loc_canteen": {
			ID:             "loc_canteen",
			Name:           "Kafeteria Kantin Utama",
			Address:        "Gedung Student Center, Lantai 2",
			OperatingHours: "10:00 - 18:00",
			Phone:          "021-12345679",
			Description:    "Area kasir kafeteria, meja pickup khusus",
		},
		"loc_student_center": {
			ID:             "loc_student_center",
			Name:           "Student Center",
			Address:        "Gedung Student Center, Lantai 1",
			OperatingHours: "09:00 - 19:00",
			Phone:          "021-12345680",
			Description:    "Lobby utama Student Center, meja layanan mahasiswa",
		},
	}
}
