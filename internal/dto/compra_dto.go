package dto

import "github.com/shopspring/decimal"

// RegistrarCompraRequest records a purchase of an insumo: the only way
// stock increases and the weighted-average cost moves.
type RegistrarCompraRequest struct {
	ArticuloID     string          `json:"articulo_id"     validate:"required,uuid"`
	Cantidad       int             `json:"cantidad"        validate:"required,min=1"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"required"`
}

type CompraResponse struct {
	ID             string          `json:"id"`
	ArticuloID     string          `json:"articulo_id"`
	Articulo       string          `json:"articulo"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	CostoAnterior  decimal.Decimal `json:"costo_anterior"`
	CostoNuevo     decimal.Decimal `json:"costo_nuevo"`
	StockActual    int             `json:"stock_actual"`
	EstadoStock    string          `json:"estado_stock"`
	Fecha          string          `json:"fecha"`
}
