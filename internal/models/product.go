package models

// Producto represents a catalog product. The Presentacion association is
// nullable and only populated by read paths that join it explicitly.
type Producto struct {
	ID             uint          `json:"id" gorm:"primaryKey"`
	Nombre         string        `json:"nombre" gorm:"not null" validate:"required"`
	Descripcion    string        `json:"descripcion" validate:"omitempty,max=500"`
	Precio         float64       `json:"precio" validate:"omitempty,gte=0"`
	Stock          int           `json:"stock" validate:"gte=0"`
	ImagenProducto *string       `json:"imagenProducto"`
	PresentacionID *uint         `json:"-"`
	Presentacion   *Presentacion `json:"presentacion" gorm:"foreignKey:PresentacionID" validate:"-"`
}

// TableName keeps the singular table name used by the schema.
func (Producto) TableName() string {
	return "producto"
}
