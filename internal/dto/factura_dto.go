package dto

import "github.com/shopspring/decimal"

type FacturaResponse struct {
	ID                string          `json:"id"`
	PedidoID          string          `json:"pedido_id"`
	NumeroComprobante string          `json:"numero_comprobante"`
	FechaComprobante  string          `json:"fecha_comprobante"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	Descuento         decimal.Decimal `json:"descuento"`
	GastosEnvio       decimal.Decimal `json:"gastos_envio"`
	Total             decimal.Decimal `json:"total"`
	ClienteNombre     string          `json:"cliente_nombre"`
	DomicilioEntrega  string          `json:"domicilio_entrega"`
	PDFUrl            *string         `json:"pdf_url"`
	CreatedAt         string          `json:"created_at"`
}
