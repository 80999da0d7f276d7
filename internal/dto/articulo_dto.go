package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type DetalleRecetaRequest struct {
	InsumoID string `json:"insumo_id" validate:"required,uuid"`
	Cantidad int    `json:"cantidad"  validate:"required,min=1"`
}

type CrearArticuloRequest struct {
	Denominacion string          `json:"denominacion" validate:"required,min=2,max=120"`
	Tipo         string          `json:"tipo"         validate:"required,oneof=insumo manufacturado"`
	PrecioVenta  decimal.Decimal `json:"precio_venta" validate:"required"`
	// Insumo only
	StockMaximo int `json:"stock_maximo" validate:"omitempty,min=0"`
	// Manufacturado only
	Receta []DetalleRecetaRequest `json:"receta" validate:"omitempty,dive"`
}

type ActualizarArticuloRequest struct {
	Denominacion string          `json:"denominacion" validate:"required,min=2,max=120"`
	PrecioVenta  decimal.Decimal `json:"precio_venta" validate:"required"`
	StockMaximo  int             `json:"stock_maximo" validate:"omitempty,min=0"`
}

// ─── Filter / List ──────────────────────────────────────────────────────────

type ArticuloFilter struct {
	Tipo         string `form:"tipo"` // insumo | manufacturado | all
	Denominacion string `form:"denominacion"`
	Activo       string `form:"activo"` // "false" = inactivos, "all" = todos, default activos
	Page         int    `form:"page,default=1"   validate:"min=1"`
	Limit        int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ──────────────────────────────────────────────────────────

type DetalleRecetaResponse struct {
	Insumo   string `json:"insumo"`
	InsumoID string `json:"insumo_id"`
	Cantidad int    `json:"cantidad"`
}

type ArticuloResponse struct {
	ID           string          `json:"id"`
	Denominacion string          `json:"denominacion"`
	Tipo         string          `json:"tipo"`
	PrecioVenta  decimal.Decimal `json:"precio_venta"`
	Activo       bool            `json:"activo"`

	// Insumo only
	PrecioCosto decimal.Decimal `json:"precio_costo,omitempty"`
	StockActual int             `json:"stock_actual,omitempty"`
	StockMaximo int             `json:"stock_maximo,omitempty"`
	EstadoStock string          `json:"estado_stock,omitempty"`

	// Manufacturado only: derived availability and recipe.
	MaxPreparable int                     `json:"max_preparable,omitempty"`
	Receta        []DetalleRecetaResponse `json:"receta,omitempty"`
}

type ArticuloListResponse struct {
	Data  []ArticuloResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// AlertaStockResponse reports an insumo in estado critico or bajo.
type AlertaStockResponse struct {
	ArticuloID   string `json:"articulo_id"`
	Denominacion string `json:"denominacion"`
	StockActual  int    `json:"stock_actual"`
	StockMaximo  int    `json:"stock_maximo"`
	EstadoStock  string `json:"estado_stock"`
}
