package repos

import (
	"fmt"
	"sort"

	"campusmart/internal/domain"
	"campusmart/internal/store"
)

const productIDPrefix = "p_produk_"

type ProductRepo struct{ products *store.JSON[Catalog] }

func NewProductRepo(products *store.JSON[Catalog]) *ProductRepo {
	return &ProductRepo{products: products}
}

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	p, ok := r.products.Load()[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	return p, nil
}

func (r *ProductRepo) List() []domain.Product {
	cat := r.products.Load()
	out := make([]domain.Product, 0, len(cat))
	for _, p := range cat {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Add inserts p under its own id; the id must be set and unused.
func (r *ProductRepo) Add(p domain.Product) error {
	if p.ID == "" {
		return fmt.Errorf("%w: missing id", domain.ErrInvalidProduct)
	}
	return r.products.Update(func(cat *Catalog) error {
		if _, taken := (*cat)[p.ID]; taken {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateProduct, p.ID)
		}
		(*cat)[p.ID] = p
		return nil
	})
}

// NextID proposes the smallest unused p_produk_<n>. The proposal is not
// reserved; use Create to allocate and insert atomically.
func (r *ProductRepo) NextID() string {
	return nextProductID(r.products.Load())
}

// Create allocates an id and inserts p in the same critical section.
func (r *ProductRepo) Create(p domain.Product) (domain.Product, error) {
	err := r.products.Update(func(cat *Catalog) error {
		p.ID = nextProductID(*cat)
		(*cat)[p.ID] = p
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func nextProductID(cat Catalog) string {
	for n := 1; ; n++ {
		id := fmt.Sprintf("%s%d", productIDPrefix, n)
		if _, taken := cat[id]; !taken {
			return id
		}
	}
}
