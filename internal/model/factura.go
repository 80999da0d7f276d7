package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Factura is the immutable financial record derived from a placed order.
// One per pedido, enforced by the unique index on PedidoID; Total always
// equals the pedido's authoritative total. Subtotal/Descuento/GastosEnvio
// are the display decomposition, not a second source of truth.
type Factura struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PedidoID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`

	// NumeroComprobante is date-scoped: "YYYYMMDD-NNNN". Secuencia restarts
	// per date; (FechaComprobante, Secuencia) is unique.
	NumeroComprobante string    `gorm:"type:varchar(20);uniqueIndex;not null"`
	FechaComprobante  time.Time `gorm:"type:date;not null;uniqueIndex:idx_factura_fecha_seq"`
	Secuencia         int       `gorm:"not null;uniqueIndex:idx_factura_fecha_seq"`

	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descuento   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	GastosEnvio decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	// Snapshot fields — invoices survive later edits to cliente/sucursal.
	ClienteNombre    string `gorm:"not null"`
	DomicilioEntrega string `gorm:"not null"`

	// PDFPath is relative to PDF_STORAGE_PATH; nil until the worker renders it.
	PDFPath *string `gorm:"column:pdf_path"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
