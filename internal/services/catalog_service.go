package services

import (
	"strings"

	"campusmart/internal/domain"
	"campusmart/internal/repos"
)

const defaultPageSize = 12

type CatalogService struct {
	Prods *repos.ProductRepo
}

func NewCatalogService(prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Prods: prods}
}

func (s *CatalogService) GetProduct(id string) (domain.Product, error) {
	return s.Prods.Get(id)
}

// Search returns one page of products whose name contains q, ignoring case.
// An empty q matches everything. The second result is the total match count.
func (s *CatalogService) Search(q string, page, pageSize int) ([]domain.Product, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	q = strings.ToLower(strings.TrimSpace(q))

	var hits []domain.Product
	for _, p := range s.Prods.List() {
		if q == "" || strings.Contains(strings.ToLower(p.Name), q) {
			hits = append(hits, p)
		}
	}
	if page-1 >= (len(hits)+pageSize-1)/pageSize {
		return []domain.Product{}, len(hits)
	}
	offset := (page - 1) * pageSize
	end := min(offset+pageSize, len(hits))
	return hits[offset:end], len(hits)
}
