package repositories_test

import (
	"fmt"
	"testing"

	"catalogo/internal/models"
	"catalogo/internal/repositories"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupDB opens a test-scoped in-memory SQLite database and migrates the schema.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.Presentacion{}, &models.Producto{}))
	return db
}

func seed(t *testing.T, db *gorm.DB) {
	t.Helper()
	caja := models.Presentacion{Nombre: "Caja de 12"}
	assert.NoError(t, db.Create(&caja).Error)

	productos := []models.Producto{
		{Nombre: "Banana", Precio: 1.20, Stock: 100, PresentacionID: &caja.ID},
		{Nombre: "Apple", Precio: 0.80, Stock: 50},
	}
	assert.NoError(t, db.Create(&productos).Error)
}

func TestGORMProductRepository_ListSorted(t *testing.T) {
	db := setupDB(t)
	seed(t, db)
	repo := repositories.NewGORMProductRepository(db)

	productos, err := repo.ListSorted(repositories.SortByNombre())
	assert.NoError(t, err)
	assert.Len(t, productos, 2)
	assert.Equal(t, "Apple", productos[0].Nombre)
	assert.Equal(t, "Banana", productos[1].Nombre)

	// The presentation arrives with the same query: populated when the row
	// has a foreign key, nil when it does not.
	assert.Nil(t, productos[0].Presentacion)
	if assert.NotNil(t, productos[1].Presentacion) {
		assert.Equal(t, "Caja de 12", productos[1].Presentacion.Nombre)
	}
}

func TestGORMProductRepository_ListSorted_TiesBrokenByID(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGORMProductRepository(db)

	for i := 0; i < 3; i++ {
		_, err := repo.Save(&models.Producto{Nombre: "Mismo"})
		assert.NoError(t, err)
	}

	productos, err := repo.ListSorted(repositories.SortByNombre())
	assert.NoError(t, err)
	assert.Len(t, productos, 3)
	assert.True(t, productos[0].ID < productos[1].ID)
	assert.True(t, productos[1].ID < productos[2].ID)
}

func TestGORMProductRepository_ListSorted_UnknownField(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGORMProductRepository(db)

	_, err := repo.ListSorted(repositories.Sort{{Field: "precio; DROP TABLE producto"}})
	assert.Error(t, err)
}

func TestGORMProductRepository_ListPaged(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGORMProductRepository(db)

	for _, nombre := range []string{"E", "C", "A", "D", "B"} {
		_, err := repo.Save(&models.Producto{Nombre: nombre})
		assert.NoError(t, err)
	}

	page, err := repo.ListPaged(1, 2, repositories.SortByNombre())
	assert.NoError(t, err)
	assert.Equal(t, int64(5), page.TotalCount)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, "C", page.Items[0].Nombre)
	assert.Equal(t, "D", page.Items[1].Nombre)

	// Last page is short, count stays the same.
	page, err = repo.ListPaged(2, 2, repositories.SortByNombre())
	assert.NoError(t, err)
	assert.Equal(t, int64(5), page.TotalCount)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, "E", page.Items[0].Nombre)

	// Past the end: empty page, exact count.
	page, err = repo.ListPaged(9, 2, repositories.SortByNombre())
	assert.NoError(t, err)
	assert.Equal(t, int64(5), page.TotalCount)
	assert.Empty(t, page.Items)

	_, err = repo.ListPaged(-1, 2, repositories.SortByNombre())
	assert.Error(t, err)
	_, err = repo.ListPaged(0, 0, repositories.SortByNombre())
	assert.Error(t, err)
}

func TestGORMProductRepository_FindByID(t *testing.T) {
	db := setupDB(t)
	seed(t, db)
	repo := repositories.NewGORMProductRepository(db)

	productos, err := repo.ListSorted(repositories.SortByNombre())
	assert.NoError(t, err)

	banana := productos[1]
	found, err := repo.FindByID(banana.ID)
	assert.NoError(t, err)
	if assert.NotNil(t, found) {
		assert.Equal(t, "Banana", found.Nombre)
		if assert.NotNil(t, found.Presentacion) {
			assert.Equal(t, "Caja de 12", found.Presentacion.Nombre)
		}
	}

	// A miss is (nil, nil), not an error.
	found, err = repo.FindByID(9999)
	assert.NoError(t, err)
	assert.Nil(t, found)
}

func TestGORMProductRepository_SaveAssignsID(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGORMProductRepository(db)

	saved, err := repo.Save(&models.Producto{Nombre: "Miel", Precio: 6.25})
	assert.NoError(t, err)
	assert.NotZero(t, saved.ID)
}

func TestGORMProductRepository_SaveReplacesExistingRow(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGORMProductRepository(db)

	saved, err := repo.Save(&models.Producto{Nombre: "old", Precio: 1})
	assert.NoError(t, err)

	_, err = repo.Save(&models.Producto{ID: saved.ID, Nombre: "new", Precio: 2})
	assert.NoError(t, err)

	found, err := repo.FindByID(saved.ID)
	assert.NoError(t, err)
	assert.Equal(t, "new", found.Nombre)
	assert.Equal(t, 2.0, found.Precio)

	// Replaying the same value is a no-op on observable fields.
	_, err = repo.Save(&models.Producto{ID: saved.ID, Nombre: "new", Precio: 2})
	assert.NoError(t, err)
	again, err := repo.FindByID(saved.ID)
	assert.NoError(t, err)
	assert.Equal(t, found.Nombre, again.Nombre)
	assert.Equal(t, found.Precio, again.Precio)
}

func TestGORMProductRepository_SaveWithUnknownIDInserts(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGORMProductRepository(db)

	// Upsert semantics: an unseen id creates the row with that id.
	saved, err := repo.Save(&models.Producto{ID: 42, Nombre: "Directo"})
	assert.NoError(t, err)
	assert.Equal(t, uint(42), saved.ID)

	found, err := repo.FindByID(42)
	assert.NoError(t, err)
	assert.NotNil(t, found)
}

func TestGORMProductRepository_Delete(t *testing.T) {
	db := setupDB(t)
	seed(t, db)
	repo := repositories.NewGORMProductRepository(db)

	productos, err := repo.ListSorted(repositories.SortByNombre())
	assert.NoError(t, err)
	banana := productos[1]

	assert.NoError(t, repo.Delete(&banana))

	found, err := repo.FindByID(banana.ID)
	assert.NoError(t, err)
	assert.Nil(t, found)

	// The referenced presentation survives the product.
	var presentaciones int64
	assert.NoError(t, db.Model(&models.Presentacion{}).Count(&presentaciones).Error)
	assert.Equal(t, int64(1), presentaciones)
}
