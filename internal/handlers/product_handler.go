package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"reflect"
	"strconv"
	"strings"

	"catalogo/internal/models"
	"catalogo/internal/repositories"
	"catalogo/internal/services"
	"catalogo/pkg/filestore"

	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	estranslations "github.com/go-playground/validator/v10/translations/es"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service  *services.ProductService
	files    filestore.Store
	validate *validator.Validate
	trans    ut.Translator
}

// NewProductHandler creates a new ProductHandler. Validation messages are
// the validator's default Spanish translations, keyed by json field name.
func NewProductHandler(service *services.ProductService, files filestore.Store) *ProductHandler {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	esLocale := es.New()
	uni := ut.New(esLocale, esLocale)
	trans, _ := uni.GetTranslator("es")
	if err := estranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		log.Printf("Failed to register validation translations: %v", err)
	}

	return &ProductHandler{
		service:  service,
		files:    files,
		validate: validate,
		trans:    trans,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productos := router.Group("/productos")
	productos.Get("/", h.HandleList)
	productos.Get("/:id", h.HandleGetByID)
	productos.Post("/", h.HandleCreate)
	productos.Put("/:id", h.HandleUpdate)
	productos.Delete("/:id", h.HandleDelete)
}

// HandleList retrieves products sorted by nombre. When both page and size
// are present the response is that page's items only; otherwise all
// products are returned. Pagination metadata is not exposed.
func (h *ProductHandler) HandleList(c *fiber.Ctx) error {
	sortByNombre := repositories.SortByNombre()

	pageParam := c.Query("page")
	sizeParam := c.Query("size")

	if pageParam != "" && sizeParam != "" {
		page, pageErr := strconv.Atoi(pageParam)
		size, sizeErr := strconv.Atoi(sizeParam)
		if pageErr != nil || sizeErr != nil || page < 0 || size <= 0 {
			return c.SendStatus(fiber.StatusBadRequest)
		}

		productosPaginados, err := h.service.FindPage(page, size, sortByNombre)
		if err != nil {
			log.Printf("Error listing products page %d: %v", page, err)
			return c.SendStatus(fiber.StatusBadRequest)
		}
		return c.JSON(productosPaginados.Items)
	}

	productos, err := h.service.FindAll(sortByNombre)
	if err != nil {
		log.Printf("Error listing products: %v", err)
		return c.SendStatus(fiber.StatusBadRequest)
	}
	return c.JSON(productos)
}

// HandleGetByID retrieves a single product, with its presentation, by id.
func (h *ProductHandler) HandleGetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 0 {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	producto, err := h.service.FindByID(uint(id))
	if err != nil {
		log.Printf("Error getting product by ID %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error grave",
		})
	}
	if producto == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": fmt.Sprintf("No se ha encontrado el producto con id: %d", id),
		})
	}

	return c.JSON(fiber.Map{
		"mensaje":  fmt.Sprintf("Se ha encontrado el producto con id: %d correctamente", id),
		"producto": producto,
	})
}

// HandleCreate persists a new product. The request is multipart/form-data
// with a JSON part named "producto" and a binary part named "file". A
// non-empty file is written to the file store before the save and its
// {fileCode}-{originalName} becomes the product's imagenProducto.
func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	var producto models.Producto
	if err := json.Unmarshal([]byte(c.FormValue("producto")), &producto); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errores": []string{"la parte producto no contiene un JSON válido"},
		})
	}

	if err := h.validate.Struct(&producto); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errores": h.validationMessages(err),
		})
	}

	var storedName string
	fileHeader, err := c.FormFile("file")
	if err == nil && fileHeader.Size > 0 {
		src, err := fileHeader.Open()
		if err != nil {
			return h.errorGrave(c, err)
		}
		fileCode, err := h.files.SaveFile(fileHeader.Filename, src)
		src.Close()
		if err != nil {
			return h.errorGrave(c, err)
		}
		storedName = fileCode + "-" + fileHeader.Filename
		producto.ImagenProducto = &storedName
	}

	productoDB, err := h.service.Save(&producto)
	if err != nil {
		// The blob was written outside the transaction; reclaim it so a
		// failed save does not orphan the upload.
		if storedName != "" {
			if delErr := h.files.Delete(storedName); delErr != nil {
				log.Printf("Failed to reclaim blob %s: %v", storedName, delErr)
			}
		}
		return h.errorGrave(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"mensaje":  "El producto se ha creado correctamente",
		"producto": productoDB,
	})
}

// HandleUpdate replaces the product row. The path id is authoritative and
// overwrites any id carried in the body; an absent id is created (the save
// is an upsert, matching the store's merge semantics).
func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"mensaje": "El producto no se ha actualizado correctamente",
		})
	}

	var producto models.Producto
	if err := c.BodyParser(&producto); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"mensaje": "El producto no se ha actualizado correctamente",
		})
	}

	if err := h.validate.Struct(&producto); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errores": h.validationMessages(err),
		})
	}

	producto.ID = uint(id)
	productoDB, err := h.service.Save(&producto)
	if err != nil {
		return h.errorGrave(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"mensaje":  "El producto se ha actualizado correctamente",
		"producto": productoDB,
	})
}

// HandleDelete removes a product by its path id. Any request body is
// ignored. The associated image blob is intentionally not reclaimed.
func (h *ProductHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 0 {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	producto, err := h.service.FindByID(uint(id))
	if err != nil {
		log.Printf("Error looking up product %d for deletion: %v", id, err)
		// Infra failures on this endpoint answer with an empty body.
		return c.Status(fiber.StatusInternalServerError).Send(nil)
	}
	if producto == nil {
		return c.Status(fiber.StatusNotFound).SendString("No existe el producto que quiere borrar.")
	}

	if err := h.service.Delete(producto); err != nil {
		log.Printf("Error deleting product %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).Send(nil)
	}

	return c.SendString("Se ha borrado correctamente.")
}

// validationMessages collects the default message of every failed
// constraint, preserving the validator's reporting order.
func (h *ProductHandler) validationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	mensajes := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		mensajes = append(mensajes, fe.Translate(h.trans))
	}
	return mensajes
}

// errorGrave maps an infrastructure failure to a 500 whose diagnostic
// carries the most specific underlying cause.
func (h *ProductHandler) errorGrave(c *fiber.Ctx, err error) error {
	log.Printf("Infrastructure error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"errorGrave": fmt.Sprintf("Ha tenido lugar un error grave y, la causa más probable puede ser: %v", rootCause(err)),
	})
}

// rootCause unwraps err to its deepest cause.
func rootCause(err error) error {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err
		}
		err = unwrapped
	}
}
