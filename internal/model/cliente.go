package model

import (
	"time"

	"github.com/google/uuid"
)

// Cliente is a read-only collaborator for the ordering pipeline: it is
// looked up by id at placement and snapshotted into pedido/factura.
type Cliente struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"not null"`
	Apellido  string    `gorm:"not null"`
	Email     string    `gorm:"uniqueIndex;not null"`
	Telefono  string
	Domicilio string `gorm:"not null"`
	Activo    bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NombreCompleto is used for invoice snapshots.
func (c *Cliente) NombreCompleto() string { return c.Nombre + " " + c.Apellido }
