package repositories

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"catalogo/internal/models"

	"gorm.io/gorm"
)

// MemoryProductRepository is an in-memory implementation of
// ProductRepository. It backs DB-less runs and keeps the same observable
// semantics as the GORM repository, including the id tiebreak on listings.
type MemoryProductRepository struct {
	products map[uint]models.Producto
	nextID   uint
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates an empty in-memory repository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[uint]models.Producto),
		nextID:   1,
	}
}

// WithTx is a no-op; the in-memory store has no transactions.
func (r *MemoryProductRepository) WithTx(tx *gorm.DB) ProductRepository {
	return r
}

func less(a, b *models.Producto, o Order) (bool, bool) {
	var cmp int
	switch o.Field {
	case "id":
		cmp = int(a.ID) - int(b.ID)
	case "nombre":
		cmp = strings.Compare(a.Nombre, b.Nombre)
	case "descripcion":
		cmp = strings.Compare(a.Descripcion, b.Descripcion)
	case "precio":
		switch {
		case a.Precio < b.Precio:
			cmp = -1
		case a.Precio > b.Precio:
			cmp = 1
		}
	case "stock":
		cmp = a.Stock - b.Stock
	}
	if cmp == 0 {
		return false, false
	}
	if o.Descending {
		return cmp > 0, true
	}
	return cmp < 0, true
}

func (r *MemoryProductRepository) sorted(s Sort) []models.Producto {
	productos := make([]models.Producto, 0, len(r.products))
	for _, p := range r.products {
		productos = append(productos, p)
	}
	sort.Slice(productos, func(i, j int) bool {
		for _, o := range s {
			if before, decided := less(&productos[i], &productos[j], o); decided {
				return before
			}
		}
		return productos[i].ID < productos[j].ID
	})
	return productos
}

// ListSorted returns all products ordered by sort.
func (r *MemoryProductRepository) ListSorted(sort Sort) ([]models.Producto, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(sort), nil
}

// ListPaged returns the requested window of the sorted products.
func (r *MemoryProductRepository) ListPaged(page, size int, sort Sort) (*Page, error) {
	if page < 0 || size <= 0 {
		return nil, fmt.Errorf("invalid page request: page=%d size=%d", page, size)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	productos := r.sorted(sort)
	total := int64(len(productos))

	start := page * size
	if start > len(productos) {
		start = len(productos)
	}
	end := start + size
	if end > len(productos) {
		end = len(productos)
	}
	return &Page{Items: productos[start:end], TotalCount: total}, nil
}

// FindByID returns the product or nil when absent.
func (r *MemoryProductRepository) FindByID(id uint) (*models.Producto, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	producto, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return &producto, nil
}

// Save assigns an id on first insert and replaces the stored row otherwise.
func (r *MemoryProductRepository) Save(product *models.Producto) (*models.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.Presentacion != nil && product.PresentacionID == nil {
		product.PresentacionID = &product.Presentacion.ID
	}
	if product.ID == 0 {
		product.ID = r.nextID
		r.nextID++
	} else if product.ID >= r.nextID {
		r.nextID = product.ID + 1
	}
	r.products[product.ID] = *product
	return product, nil
}

// Delete removes the product row if present.
func (r *MemoryProductRepository) Delete(product *models.Producto) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.products, product.ID)
	return nil
}
