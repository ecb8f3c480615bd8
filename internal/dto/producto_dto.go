package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ProductoRequest is used for POST, PUT and PATCH. Pointer fields distinguish
// "absent" from zero values on partial updates.
type ProductoRequest struct {
	Name         *string          `json:"name"           validate:"omitempty,min=1,max=200"`
	Category     *string          `json:"category"`
	PricePerUnit *decimal.Decimal `json:"price_per_unit"`
	Stock        *int             `json:"stock"`
	Description  *string          `json:"description"`
	IsActive     *bool            `json:"is_active"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductoFilter struct {
	Category string `form:"category"`
	IsActive string `form:"is_active"` // "true" | "false" | "" = todos
	Search   string `form:"search"`
	Ordering string `form:"ordering"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=50"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID              uint            `json:"id"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	CategoryDisplay string          `json:"category_display"`
	PricePerUnit    decimal.Decimal `json:"price_per_unit"`
	Stock           int             `json:"stock"`
	Description     string          `json:"description"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ProductoListItem is the lightweight row used by list endpoints.
type ProductoListItem struct {
	ID              uint            `json:"id"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	CategoryDisplay string          `json:"category_display"`
	PricePerUnit    decimal.Decimal `json:"price_per_unit"`
	Stock           int             `json:"stock"`
	IsActive        bool            `json:"is_active"`
}

type ProductoListResponse struct {
	Count    int64              `json:"count"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Results  []ProductoListItem `json:"results"`
}
