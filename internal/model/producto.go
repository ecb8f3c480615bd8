package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Producto is a rentable catalog entry (tables, chairs, dishware...).
// Stock is informational only: orders never reserve or decrement it.
type Producto struct {
	ID              uint            `gorm:"primaryKey"`
	Nombre          string          `gorm:"size:200;not null;index"`
	Categoria       Categoria       `gorm:"type:varchar(20);not null;default:'otros';index"`
	PrecioPorUnidad decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock           int             `gorm:"not null;default:0"`
	Descripcion     string          `gorm:"type:text;not null;default:''"`
	Activo          bool            `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Producto) TableName() string { return "productos" }
