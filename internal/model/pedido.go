package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EstadoPedido is the order lifecycle state.
type EstadoPedido string

const (
	PedidoPendiente     EstadoPedido = "pendiente"
	PedidoEnPreparacion EstadoPedido = "en_preparacion"
	PedidoListo         EstadoPedido = "listo"
	PedidoEntregado     EstadoPedido = "entregado"
	PedidoCancelado     EstadoPedido = "cancelado"
)

// TipoEnvio selects the delivery-mode pricing policy.
type TipoEnvio string

const (
	EnvioTakeAway TipoEnvio = "take_away"
	EnvioDelivery TipoEnvio = "delivery"
)

// EstadoPago reflects the externally confirmed payment state. The backend
// only records it (webhook-driven); it never blocks on the gateway.
type EstadoPago string

const (
	PagoPendiente EstadoPago = "pendiente"
	PagoAprobado  EstadoPago = "aprobado"
	PagoRechazado EstadoPago = "rechazado"
)

// Valido reports whether the state is one the gateway may notify.
func (e EstadoPago) Valido() bool {
	switch e {
	case PagoPendiente, PagoAprobado, PagoRechazado:
		return true
	}
	return false
}

// Pedido is an order snapshot. Total is the single authoritative amount
// (post promotions and delivery-mode policy); every other breakdown shown to
// users is derived for display only.
type Pedido struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero     int       `gorm:"uniqueIndex;not null"`
	ClienteID  uuid.UUID `gorm:"type:uuid;index;not null"`
	SucursalID uuid.UUID `gorm:"type:uuid;index;not null"`

	TipoEnvio TipoEnvio    `gorm:"type:varchar(20);not null"`
	Estado    EstadoPedido `gorm:"type:varchar(20);not null;default:'pendiente';index"`
	// DomicilioEntrega is the branch address for take-away, the client
	// address for delivery — snapshotted at placement.
	DomicilioEntrega string `gorm:"not null"`

	// Total is post all discounts/surcharges. TotalCosto is the summed
	// ingredient cost of the order, kept for margin reporting.
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalCosto decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// DescuentoPromociones is the Σ of per-line promotion discounts,
	// stored so the invoice decomposition never re-derives it.
	DescuentoPromociones decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	EstadoPago   EstadoPago `gorm:"type:varchar(20);not null;default:'pendiente'"`
	PagoExternoID *string   `gorm:"type:varchar(80)"`

	FechaPedido time.Time `gorm:"not null"`
	Detalles    []PedidoDetalle

	Cliente  *Cliente  `gorm:"foreignKey:ClienteID"`
	Sucursal *Sucursal `gorm:"foreignKey:SucursalID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PedidoDetalle is one order line. Invariant:
// Subtotal = Cantidad×PrecioUnitario − Descuento, with 0 ≤ Descuento ≤ Cantidad×PrecioUnitario.
type PedidoDetalle struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PedidoID   uuid.UUID `gorm:"type:uuid;index;not null"`
	ArticuloID uuid.UUID `gorm:"type:uuid;not null"`

	Cantidad int `gorm:"not null"`
	// PrecioUnitario is the catalog price at order time.
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Descuento is the absolute promotion discount for the whole line
	// (per-line plus its share of a grouped promotion).
	Descuento decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	PromocionID *uuid.UUID `gorm:"type:uuid"`
	// LeyendaPromocion is the human-readable summary of applied promotions.
	LeyendaPromocion string `gorm:"type:varchar(200)"`
	Nota             string `gorm:"type:varchar(200)"`

	Articulo  *Articulo  `gorm:"foreignKey:ArticuloID"`
	Promocion *Promocion `gorm:"foreignKey:PromocionID"`
}

// TableName overrides GORM's default pluralization.
func (PedidoDetalle) TableName() string { return "pedido_detalles" }

// transiciones is the closed forward-only transition table. Take-away
// orders may skip "listo" (en_preparacion → entregado).
var transiciones = map[EstadoPedido][]EstadoPedido{
	PedidoPendiente:     {PedidoEnPreparacion, PedidoCancelado},
	PedidoEnPreparacion: {PedidoListo, PedidoEntregado, PedidoCancelado},
	PedidoListo:         {PedidoEntregado, PedidoCancelado},
	PedidoEntregado:     {},
	PedidoCancelado:     {},
}

// PuedeTransicionar reports whether destino is reachable from the current
// state. Skipping "listo" is reserved for take-away: a delivery passes
// through listo so the cadete has something to pick up.
func (p *Pedido) PuedeTransicionar(destino EstadoPedido) bool {
	if p.Estado == PedidoEnPreparacion && destino == PedidoEntregado && p.TipoEnvio != EnvioTakeAway {
		return false
	}
	for _, e := range transiciones[p.Estado] {
		if e == destino {
			return true
		}
	}
	return false
}

// StockDescontado reports whether stock has been debited for this order:
// true from en_preparacion onward (debit happens on pendiente→en_preparacion).
func (p *Pedido) StockDescontado() bool {
	return p.Estado == PedidoEnPreparacion || p.Estado == PedidoListo || p.Estado == PedidoEntregado
}
