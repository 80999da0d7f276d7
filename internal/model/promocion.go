package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TipoDescuento selects the discount formula of a promotion.
type TipoDescuento string

const (
	DescuentoPorcentaje TipoDescuento = "porcentaje"
	DescuentoMontoFijo  TipoDescuento = "monto_fijo"
)

// Promocion is a discount definition with a double validity window:
// a date range and a time-of-day range, both of which must hold.
type Promocion struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Denominacion string        `gorm:"uniqueIndex;not null"`
	Tipo         TipoDescuento `gorm:"type:varchar(20);not null"`
	// Valor is a percentage (0–100) for porcentaje, an absolute amount for monto_fijo.
	Valor decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	FechaDesde time.Time `gorm:"type:date;not null"`
	FechaHasta time.Time `gorm:"type:date;not null"`
	// HoraDesde / HoraHasta in "15:04" 24h format.
	HoraDesde string `gorm:"type:varchar(5);not null"`
	HoraHasta string `gorm:"type:varchar(5);not null"`

	CantidadMinima int  `gorm:"not null;default:1"`
	Activa         bool `gorm:"not null;default:true"`

	Articulos []Articulo `gorm:"many2many:promocion_articulos"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Vigente reports whether the promotion can be applied at the given instant:
// active flag, date window (inclusive, date precision) and time-of-day window.
func (p *Promocion) Vigente(now time.Time) bool {
	if !p.Activa {
		return false
	}
	dia := now.Format("2006-01-02")
	if dia < p.FechaDesde.Format("2006-01-02") || dia > p.FechaHasta.Format("2006-01-02") {
		return false
	}
	hora := now.Format("15:04")
	return hora >= p.HoraDesde && hora <= p.HoraHasta
}

// AplicaA reports whether the promotion covers the given article.
func (p *Promocion) AplicaA(articuloID uuid.UUID) bool {
	for _, a := range p.Articulos {
		if a.ID == articuloID {
			return true
		}
	}
	return false
}
