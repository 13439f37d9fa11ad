package models

// Presentacion is the packaging/unit descriptor a product may reference.
// It exists independently of any product; at most one per product.
type Presentacion struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	Nombre string `json:"nombre" gorm:"not null"`
}

func (Presentacion) TableName() string {
	return "presentacion"
}
