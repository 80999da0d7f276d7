package model

import (
	"time"

	"github.com/google/uuid"
)

// PedidoEvento is the audit trail of lifecycle transitions: one row per
// discrete state change, including cancellations.
type PedidoEvento struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PedidoID       uuid.UUID    `gorm:"type:uuid;not null;index"`
	EstadoAnterior EstadoPedido `gorm:"type:varchar(20);not null"`
	EstadoNuevo    EstadoPedido `gorm:"type:varchar(20);not null"`
	Motivo         string
	CreatedAt      time.Time
}

// TableName overrides GORM's default pluralization.
func (PedidoEvento) TableName() string { return "pedido_eventos" }
