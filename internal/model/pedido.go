package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EstadoPedido: "pendiente" | "entregado" | "cancelado".
// cancelado is terminal.
type EstadoPedido string

const (
	EstadoPendiente EstadoPedido = "pendiente"
	EstadoEntregado EstadoPedido = "entregado"
	EstadoCancelado EstadoPedido = "cancelado"
)

var estadoLabels = map[EstadoPedido]string{
	EstadoPendiente: "Pendiente",
	EstadoEntregado: "Entregado",
	EstadoCancelado: "Cancelado",
}

func (e EstadoPedido) Label() string {
	if l, ok := estadoLabels[e]; ok {
		return l
	}
	return string(e)
}

func (e EstadoPedido) Valido() bool {
	_, ok := estadoLabels[e]
	return ok
}

// Pedido is a customer rental order. Dates are calendar days stored as UTC midnight.
// Total and item count are never persisted; see Total and CantidadItems.
type Pedido struct {
	ID               uint         `gorm:"primaryKey"`
	ClienteNombre    string       `gorm:"size:200;not null"`
	ClienteTelefono  string       `gorm:"size:50;not null;default:''"`
	ClienteDireccion string       `gorm:"type:text;not null;default:''"`
	FechaEvento      time.Time    `gorm:"type:date;not null;index"`
	FechaEntrega     time.Time    `gorm:"type:date;not null"`
	FechaDevolucion  time.Time    `gorm:"type:date;not null"`
	Estado           EstadoPedido `gorm:"type:varchar(20);not null;default:'pendiente';index"`
	Observaciones    string       `gorm:"type:text;not null;default:''"`
	CreatedAt        time.Time    `gorm:"index"`
	UpdatedAt        time.Time

	Items []PedidoItem `gorm:"foreignKey:PedidoID;constraint:OnDelete:CASCADE"`
}

func (Pedido) TableName() string { return "pedidos" }

// PedidoItem is one product line of an order. PrecioUnitario is a snapshot
// taken when the line is created and never follows later catalog changes.
type PedidoItem struct {
	ID             uint                `gorm:"primaryKey"`
	PedidoID       uint                `gorm:"not null;index"`
	ProductoID     uint                `gorm:"not null;index"`
	Cantidad       int                 `gorm:"not null"`
	PrecioUnitario decimal.NullDecimal `gorm:"type:decimal(10,2)"`

	Producto *Producto `gorm:"foreignKey:ProductoID;constraint:OnDelete:RESTRICT"`
}

func (PedidoItem) TableName() string { return "pedido_items" }

// Subtotal is Cantidad × PrecioUnitario, or zero when no price was captured.
func (i PedidoItem) Subtotal() decimal.Decimal {
	if !i.PrecioUnitario.Valid {
		return decimal.Zero
	}
	return i.PrecioUnitario.Decimal.Mul(decimal.NewFromInt(int64(i.Cantidad)))
}

// Total sums the subtotals of the current item set. Recomputed on every call.
func (p *Pedido) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range p.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// CantidadItems is the sum of item quantities.
func (p *Pedido) CantidadItems() int {
	n := 0
	for _, it := range p.Items {
		n += it.Cantidad
	}
	return n
}

// ResolverPrecio returns the unit price to freeze on a new item: the explicit
// price when present and non-zero, otherwise the product's current price.
func ResolverPrecio(explicito *decimal.Decimal, producto *Producto) decimal.NullDecimal {
	if explicito != nil && !explicito.IsZero() {
		return decimal.NewNullDecimal(*explicito)
	}
	return decimal.NewNullDecimal(producto.PrecioPorUnidad)
}
