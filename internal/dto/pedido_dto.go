package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// FechaLayout is the wire format of calendar dates (event, delivery, return).
const FechaLayout = "2006-01-02"

// ─── Filter / List ──────────────────────────────────────────────────────────

// PedidoFilter is bound from the query string of GET /api/orders.
type PedidoFilter struct {
	Status    string `form:"status"`
	StartDate string `form:"start_date"` // YYYY-MM-DD, inclusive, on event_date
	EndDate   string `form:"end_date"`
	Search    string `form:"search"`
	Ordering  string `form:"ordering"`
	Page      int    `form:"page,default=1"`
	PageSize  int    `form:"page_size,default=50"`
}

// PedidoListItem is the lightweight row returned by list endpoints.
type PedidoListItem struct {
	ID            uint            `json:"id"`
	CustomerName  string          `json:"customer_name"`
	EventDate     string          `json:"event_date"`
	DeliveryDate  string          `json:"delivery_date"`
	Status        string          `json:"status"`
	StatusDisplay string          `json:"status_display"`
	ItemsCount    int             `json:"items_count"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     time.Time       `json:"created_at"`
}

type PedidoListResponse struct {
	Count    int64            `json:"count"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Results  []PedidoListItem `json:"results"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemPedidoRequest struct {
	Product   uint             `json:"product"    validate:"required"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

type CrearPedidoRequest struct {
	CustomerName    string              `json:"customer_name"    validate:"required,max=200"`
	CustomerPhone   string              `json:"customer_phone"   validate:"max=50"`
	CustomerAddress string              `json:"customer_address"`
	EventDate       string              `json:"event_date"       validate:"required"`
	DeliveryDate    string              `json:"delivery_date"    validate:"required"`
	ReturnDate      string              `json:"return_date"      validate:"required"`
	Observations    string              `json:"observations"`
	Items           []ItemPedidoRequest `json:"items"            validate:"dive"`
}

// ActualizarPedidoRequest serves PUT and PATCH. A nil Items pointer means
// "leave items untouched"; a non-nil one replaces the whole set.
type ActualizarPedidoRequest struct {
	CustomerName    *string              `json:"customer_name"    validate:"omitempty,min=1,max=200"`
	CustomerPhone   *string              `json:"customer_phone"   validate:"omitempty,max=50"`
	CustomerAddress *string              `json:"customer_address"`
	EventDate       *string              `json:"event_date"`
	DeliveryDate    *string              `json:"delivery_date"`
	ReturnDate      *string              `json:"return_date"`
	Observations    *string              `json:"observations"`
	Status          *string              `json:"status"`
	Items           *[]ItemPedidoRequest `json:"items"`
}

type CambiarEstadoRequest struct {
	Status string `json:"status" validate:"required"`
}

type EnviarFacturaRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemPedidoResponse struct {
	ID              uint             `json:"id"`
	Product         uint             `json:"product"`
	ProductName     string           `json:"product_name"`
	ProductCategory string           `json:"product_category"`
	Quantity        int              `json:"quantity"`
	UnitPrice       *decimal.Decimal `json:"unit_price"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
}

type PedidoResponse struct {
	ID              uint                 `json:"id"`
	CustomerName    string               `json:"customer_name"`
	CustomerPhone   string               `json:"customer_phone"`
	CustomerAddress string               `json:"customer_address"`
	EventDate       string               `json:"event_date"`
	DeliveryDate    string               `json:"delivery_date"`
	ReturnDate      string               `json:"return_date"`
	Status          string               `json:"status"`
	StatusDisplay   string               `json:"status_display"`
	Observations    string               `json:"observations"`
	Items           []ItemPedidoResponse `json:"items"`
	ItemsCount      int                  `json:"items_count"`
	Total           decimal.Decimal      `json:"total"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// FacturaPDF is a rendered invoice ready to be streamed or mailed.
type FacturaPDF struct {
	Filename  string
	Contenido []byte
}
