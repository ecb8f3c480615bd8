package dto

import "github.com/shopspring/decimal"

// ReporteFilter carries the raw query parameters of the report endpoints.
// Parsing and defaults happen in the service.
type ReporteFilter struct {
	Date      string `form:"date"`
	Year      string `form:"year"`
	Month     string `form:"month"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

type PedidoReporte struct {
	ID           uint            `json:"id"`
	CustomerName string          `json:"customer_name"`
	EventDate    string          `json:"event_date"`
	ItemsCount   int             `json:"items_count"`
	Total        decimal.Decimal `json:"total"`
}

// ReporteIngresos is the revenue report over an inclusive event_date range.
// WeekNumber is set only for weekly reports, Year/Month only for monthly ones.
type ReporteIngresos struct {
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	OrdersCount  int             `json:"orders_count"`
	Orders       []PedidoReporte `json:"orders"`
	WeekNumber   int             `json:"week_number,omitempty"`
	Year         int             `json:"year,omitempty"`
	Month        int             `json:"month,omitempty"`
}

type ResumenDia struct {
	Date        string          `json:"date"`
	Total       decimal.Decimal `json:"total"`
	OrdersCount int             `json:"orders_count"`
}

type ResumenSemana struct {
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	Total       decimal.Decimal `json:"total"`
	OrdersCount int             `json:"orders_count"`
}

type ResumenMes struct {
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	Total       decimal.Decimal `json:"total"`
	OrdersCount int             `json:"orders_count"`
}

type ResumenResponse struct {
	Today         ResumenDia    `json:"today"`
	Week          ResumenSemana `json:"week"`
	Month         ResumenMes    `json:"month"`
	PendingOrders int64         `json:"pending_orders"`
}
