package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TipoArticulo discriminates the two closed variants of Articulo.
type TipoArticulo string

const (
	// TipoInsumo is a stock article: directly sold or consumed inventory
	// with its own quantity-on-hand and weighted-average cost.
	TipoInsumo TipoArticulo = "insumo"
	// TipoManufacturado is a composite article whose availability derives
	// from a recipe of insumos. It never stores stock of its own.
	TipoManufacturado TipoArticulo = "manufacturado"
)

// EstadoStock classifies an insumo's stock level against its maximum.
type EstadoStock string

const (
	StockCritico EstadoStock = "critico" // ≤ 20% of maximum
	StockBajo    EstadoStock = "bajo"    // ≤ 50%
	StockNormal  EstadoStock = "normal"  // ≤ 100%
	StockAlto    EstadoStock = "alto"    // over maximum
)

// Articulo represents both variants of sellable/consumable items.
// Insumo-only columns are zero-valued for manufacturados and vice versa;
// services switch on Tipo, never on field presence.
type Articulo struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Denominacion string       `gorm:"index;not null"`
	Tipo         TipoArticulo `gorm:"type:varchar(20);not null;index"`
	PrecioVenta  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Activo       bool            `gorm:"not null;default:true"`

	// Insumo: weighted-average acquisition cost, mutated only by compras.
	PrecioCosto decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	StockActual int             `gorm:"not null;default:0"`
	StockMaximo int             `gorm:"not null;default:0"`
	EstadoStock EstadoStock     `gorm:"type:varchar(10);not null;default:'critico'"`

	// Manufacturado: ordered recipe of insumos.
	Receta []DetalleReceta `gorm:"foreignKey:ArticuloManufacturadoID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Articulo) EsManufacturado() bool { return a.Tipo == TipoManufacturado }

// DetalleReceta is one recipe line: the insumo and how much of it one unit
// of the manufacturado consumes.
type DetalleReceta struct {
	ID                      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ArticuloManufacturadoID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_receta_insumo;not null"`
	InsumoID                uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_receta_insumo;not null"`
	Cantidad                int       `gorm:"not null"`

	Insumo *Articulo `gorm:"foreignKey:InsumoID"`
}

// TableName overrides GORM's default pluralization.
func (DetalleReceta) TableName() string { return "detalles_receta" }

// ClasificarStock derives the stock state from quantity and maximum.
// Negative on-hand readings (possible transiently under concurrent debits)
// are clamped to zero for classification. A zero maximum is always critico.
func ClasificarStock(actual, maximo int) EstadoStock {
	if actual < 0 {
		actual = 0
	}
	if maximo <= 0 {
		return StockCritico
	}
	switch {
	case actual*5 <= maximo: // actual/maximo ≤ 0.20
		return StockCritico
	case actual*2 <= maximo: // ≤ 0.50
		return StockBajo
	case actual <= maximo: // ≤ 1.00
		return StockNormal
	default:
		return StockAlto
	}
}
