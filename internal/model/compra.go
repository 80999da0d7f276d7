package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Compra is an immutable purchase log entry. Compras are the sole driver of
// stock increases and weighted-average cost updates on insumos.
type Compra struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ArticuloID uuid.UUID `gorm:"type:uuid;index;not null"`

	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// CostoAnterior / CostoNuevo capture the weighted average before and
	// after this purchase, for audit.
	CostoAnterior decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CostoNuevo    decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Fecha time.Time `gorm:"not null"`

	Articulo *Articulo `gorm:"foreignKey:ArticuloID"`

	CreatedAt time.Time
}
