package repositories

import (
	"errors"
	"fmt"
	"strings"

	"catalogo/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMProductRepository is the GORM implementation of ProductRepository.
// Reads join the presentation with Joins("Presentacion"), so each call is
// a single SELECT with a LEFT JOIN instead of a query per row.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// WithTx returns a copy of the repository bound to the transaction handle.
func (r *GORMProductRepository) WithTx(tx *gorm.DB) ProductRepository {
	if tx == nil {
		return r
	}
	return &GORMProductRepository{db: tx}
}

// sortColumns are the entity fields a listing may be ordered by.
var sortColumns = map[string]string{
	"id":          "producto.id",
	"nombre":      "producto.nombre",
	"descripcion": "producto.descripcion",
	"precio":      "producto.precio",
	"stock":       "producto.stock",
}

// orderClause renders the sort as a SQL ORDER BY fragment, appending
// producto.id as the tiebreak so listings are totally ordered.
func orderClause(sort Sort) (string, error) {
	parts := make([]string, 0, len(sort)+1)
	for _, o := range sort {
		column, ok := sortColumns[o.Field]
		if !ok {
			return "", fmt.Errorf("unsupported sort field %q", o.Field)
		}
		if o.Descending {
			column += " DESC"
		}
		parts = append(parts, column)
	}
	parts = append(parts, "producto.id")
	return strings.Join(parts, ", "), nil
}

// ListSorted retrieves all products with their presentations, ordered by sort.
func (r *GORMProductRepository) ListSorted(sort Sort) ([]models.Producto, error) {
	order, err := orderClause(sort)
	if err != nil {
		return nil, err
	}
	var productos []models.Producto
	if err := r.db.Joins("Presentacion").Order(order).Find(&productos).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return productos, nil
}

// ListPaged retrieves one page of products. The data query carries the
// presentation join; the count query does not, so the total stays exact
// regardless of the join cardinality.
func (r *GORMProductRepository) ListPaged(page, size int, sort Sort) (*Page, error) {
	if page < 0 || size <= 0 {
		return nil, fmt.Errorf("invalid page request: page=%d size=%d", page, size)
	}
	order, err := orderClause(sort)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := r.db.Model(&models.Producto{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	var productos []models.Producto
	if err := r.db.Joins("Presentacion").Order(order).
		Limit(size).Offset(page * size).
		Find(&productos).Error; err != nil {
		return nil, fmt.Errorf("failed to list products page %d: %w", page, err)
	}

	return &Page{Items: productos, TotalCount: total}, nil
}

// FindByID retrieves a single product with its presentation. A missing id
// is reported as (nil, nil), not as an error.
func (r *GORMProductRepository) FindByID(id uint) (*models.Producto, error) {
	var producto models.Producto
	err := r.db.Joins("Presentacion").First(&producto, "producto.id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &producto, nil
}

// Save persists the product: INSERT when the ID is unassigned, otherwise an
// upsert that replaces the existing row. The presentation itself is never
// written through this path, only the foreign key to it.
func (r *GORMProductRepository) Save(product *models.Producto) (*models.Producto, error) {
	if product.Presentacion != nil && product.PresentacionID == nil {
		product.PresentacionID = &product.Presentacion.ID
	}

	tx := r.db.Omit(clause.Associations)
	if product.ID != 0 {
		tx = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		})
	}
	if err := tx.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}
	return product, nil
}

// Delete removes the product row. The referenced presentation is untouched.
func (r *GORMProductRepository) Delete(product *models.Producto) error {
	if err := r.db.Delete(&models.Producto{}, product.ID).Error; err != nil {
		return fmt.Errorf("failed to delete product %d: %w", product.ID, err)
	}
	return nil
}
