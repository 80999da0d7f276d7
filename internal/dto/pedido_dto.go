package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type DetallePedidoRequest struct {
	ArticuloID string `json:"articulo_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
	Nota       string `json:"nota"        validate:"omitempty,max=200"`
	// PromocionID: optional per-line promotion explicitly selected by the
	// client. Invalid or inapplicable promotions degrade silently to "no
	// discount" — they never fail the order.
	PromocionID *string `json:"promocion_id" validate:"omitempty,uuid"`
}

type RegistrarPedidoRequest struct {
	ClienteID  string `json:"cliente_id"  validate:"required,uuid"`
	SucursalID string `json:"sucursal_id" validate:"required,uuid"`
	TipoEnvio  string `json:"tipo_envio"  validate:"required,oneof=take_away delivery"`
	// PromocionAgrupadaID: optional grouped promotion for the whole order,
	// allocated proportionally across eligible lines.
	PromocionAgrupadaID *string                `json:"promocion_agrupada_id" validate:"omitempty,uuid"`
	Detalles            []DetallePedidoRequest `json:"detalles"              validate:"required,min=1,dive"`
}

type TransicionRequest struct {
	Estado string `json:"estado" validate:"required,oneof=en_preparacion listo entregado"`
}

type CancelarPedidoRequest struct {
	Motivo string `json:"motivo" validate:"omitempty,max=200"`
}

// PagoWebhookRequest is posted by the external payment gateway once it has
// confirmed or rejected a payment. The backend only records the outcome.
type PagoWebhookRequest struct {
	PedidoID     string `json:"pedido_id" validate:"required,uuid"`
	Estado       string `json:"estado"    validate:"required,oneof=aprobado rechazado"`
	PagoExternoID string `json:"pago_externo_id" validate:"required"`
}

// ─── Filter / List ──────────────────────────────────────────────────────────

// PedidoFilter is bound from query string of GET /v1/pedidos.
type PedidoFilter struct {
	Fecha  string `form:"fecha"`  // YYYY-MM-DD; empty = today
	Estado string `form:"estado"` // pendiente | en_preparacion | listo | entregado | cancelado | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ──────────────────────────────────────────────────────────

type DetallePedidoResponse struct {
	Articulo         string          `json:"articulo"`
	Cantidad         int             `json:"cantidad"`
	PrecioUnitario   decimal.Decimal `json:"precio_unitario"`
	Descuento        decimal.Decimal `json:"descuento"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	LeyendaPromocion string          `json:"leyenda_promocion,omitempty"`
	Nota             string          `json:"nota,omitempty"`
}

type PedidoResponse struct {
	ID                   string                  `json:"id"`
	Numero               int                     `json:"numero"`
	ClienteID            string                  `json:"cliente_id"`
	SucursalID           string                  `json:"sucursal_id"`
	TipoEnvio            string                  `json:"tipo_envio"`
	Estado               string                  `json:"estado"`
	EstadoPago           string                  `json:"estado_pago"`
	DomicilioEntrega     string                  `json:"domicilio_entrega"`
	Detalles             []DetallePedidoResponse `json:"detalles"`
	DescuentoPromociones decimal.Decimal         `json:"descuento_promociones"`
	Total                decimal.Decimal         `json:"total"`
	FechaPedido          string                  `json:"fecha_pedido"`
}

type PedidoListResponse struct {
	Data  []PedidoResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
