package model

import (
	"time"

	"github.com/google/uuid"
)

// Sucursal is the branch a pedido is placed against. Take-away orders use
// its address as the delivery address.
type Sucursal struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"uniqueIndex;not null"`
	Domicilio string    `gorm:"not null"`
	Telefono  string
	Activa    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides GORM's default pluralization (sucursals → sucursales).
func (Sucursal) TableName() string { return "sucursales" }
