package repositories

import (
	"catalogo/internal/models"

	"gorm.io/gorm"
)

// Order is a single (field, direction) sort pair.
type Order struct {
	Field      string
	Descending bool
}

// Sort is the ordered list of sort pairs applied to a listing. Ties are
// always broken by id ascending, which the implementations append themselves.
type Sort []Order

// SortByNombre is the catalog's fixed listing order.
func SortByNombre() Sort {
	return Sort{{Field: "nombre"}}
}

// Page is one window of a paginated listing together with the exact
// total row count, counted without the presentation join.
type Page struct {
	Items      []models.Producto
	TotalCount int64
}

// ProductRepository defines the data access contract for products.
// Every read returns products with their Presentacion already joined
// in the same query; implementations must not issue per-row lookups.
type ProductRepository interface {
	// ListSorted returns all products ordered by sort.
	ListSorted(sort Sort) ([]models.Producto, error)

	// ListPaged returns the zero-based page of the given size ordered by
	// sort, plus the total product count.
	ListPaged(page, size int, sort Sort) (*Page, error)

	// FindByID returns the product with its presentation, or nil when absent.
	FindByID(id uint) (*models.Producto, error)

	// Save inserts the product when its ID is zero and replaces the row
	// when it is set. The persisted product is returned with its ID assigned.
	Save(product *models.Producto) (*models.Producto, error)

	// Delete removes the product row. The referenced presentation is untouched.
	Delete(product *models.Producto) error

	// WithTx returns a repository bound to the given transaction handle.
	// Implementations without transactions return themselves.
	WithTx(tx *gorm.DB) ProductRepository
}

// TxManager runs a function inside a single database transaction.
type TxManager interface {
	Do(fn func(tx *gorm.DB) error) error
}

// GormTxManager is the gorm-backed TxManager.
type GormTxManager struct {
	db *gorm.DB
}

// NewGormTxManager creates a TxManager over the given database handle.
func NewGormTxManager(db *gorm.DB) *GormTxManager {
	return &GormTxManager{db: db}
}

// Do wraps fn in a transaction, committing when it returns nil.
func (m *GormTxManager) Do(fn func(tx *gorm.DB) error) error {
	return m.db.Transaction(fn)
}

// NoopTxManager satisfies TxManager for repositories without a
// transactional store behind them, such as the in-memory one.
type NoopTxManager struct{}

func (NoopTxManager) Do(fn func(tx *gorm.DB) error) error {
	return fn(nil)
}
