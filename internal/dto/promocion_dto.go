package dto

import "github.com/shopspring/decimal"

type CrearPromocionRequest struct {
	Denominacion string          `json:"denominacion" validate:"required,min=2,max=120"`
	Tipo         string          `json:"tipo"         validate:"required,oneof=porcentaje monto_fijo"`
	Valor        decimal.Decimal `json:"valor"        validate:"required"`
	FechaDesde   string          `json:"fecha_desde"  validate:"required,datetime=2006-01-02"`
	FechaHasta   string          `json:"fecha_hasta"  validate:"required,datetime=2006-01-02"`
	HoraDesde    string          `json:"hora_desde"   validate:"required,datetime=15:04"`
	HoraHasta    string          `json:"hora_hasta"   validate:"required,datetime=15:04"`
	CantidadMinima int           `json:"cantidad_minima" validate:"omitempty,min=1"`
	ArticuloIDs  []string        `json:"articulo_ids" validate:"required,min=1,dive,uuid"`
}

type PromocionResponse struct {
	ID             string          `json:"id"`
	Denominacion   string          `json:"denominacion"`
	Tipo           string          `json:"tipo"`
	Valor          decimal.Decimal `json:"valor"`
	FechaDesde     string          `json:"fecha_desde"`
	FechaHasta     string          `json:"fecha_hasta"`
	HoraDesde      string          `json:"hora_desde"`
	HoraHasta      string          `json:"hora_hasta"`
	CantidadMinima int             `json:"cantidad_minima"`
	Activa         bool            `json:"activa"`
	Vigente        bool            `json:"vigente"`
	ArticuloIDs    []string        `json:"articulo_ids"`
}
