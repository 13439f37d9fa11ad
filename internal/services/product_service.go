package services

import (
	"log"

	"catalogo/internal/models"
	"catalogo/internal/repositories"
	"catalogo/pkg/rabbitmq"

	"gorm.io/gorm"
)

// ProductService is the transactional façade over the product repository.
// Each mutation runs inside a single transaction; reads go straight to the
// repository. After a committed mutation a catalog event is published on a
// best-effort basis.
type ProductService struct {
	repo   repositories.ProductRepository
	tx     repositories.TxManager
	events *rabbitmq.Client // may be nil when no broker is configured
}

// NewProductService creates a new ProductService. events may be nil.
func NewProductService(repo repositories.ProductRepository, tx repositories.TxManager, events *rabbitmq.Client) *ProductService {
	return &ProductService{
		repo:   repo,
		tx:     tx,
		events: events,
	}
}

// FindAll retrieves every product, with its presentation, ordered by sort.
func (s *ProductService) FindAll(sort repositories.Sort) ([]models.Producto, error) {
	return s.repo.ListSorted(sort)
}

// FindPage retrieves one page of products ordered by sort.
func (s *ProductService) FindPage(page, size int, sort repositories.Sort) (*repositories.Page, error) {
	return s.repo.ListPaged(page, size, sort)
}

// FindByID retrieves a single product with its presentation. An unknown id
// yields (nil, nil); errors are reserved for infrastructure failures.
func (s *ProductService) FindByID(id uint) (*models.Producto, error) {
	return s.repo.FindByID(id)
}

// Save persists the product inside one transaction. Saving the same value
// twice for a given id leaves the row unchanged.
func (s *ProductService) Save(product *models.Producto) (*models.Producto, error) {
	accion := "producto.actualizado"
	if product.ID == 0 {
		accion = "producto.creado"
	}

	var saved *models.Producto
	err := s.tx.Do(func(tx *gorm.DB) error {
		var txErr error
		saved, txErr = s.repo.WithTx(tx).Save(product)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.publish(accion, saved)
	return saved, nil
}

// Delete removes the product inside one transaction. The associated image
// blob is intentionally left in the file store.
func (s *ProductService) Delete(product *models.Producto) error {
	err := s.tx.Do(func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(product)
	})
	if err != nil {
		return err
	}

	s.publish("producto.eliminado", product)
	return nil
}

// publish emits a catalog event after a committed mutation. Event delivery
// is best-effort: a broker failure must not fail the request.
func (s *ProductService) publish(accion string, product *models.Producto) {
	if s.events == nil {
		return
	}
	event := map[string]interface{}{
		"accion": accion,
		"id":     product.ID,
		"nombre": product.Nombre,
	}
	if err := s.events.PublishCatalogEvent(event); err != nil {
		log.Printf("Failed to publish catalog event for product %d: %v", product.ID, err)
	}
}
