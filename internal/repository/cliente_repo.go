package repository

import (
	"context"

	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClienteRepository and SucursalRepository are read-only collaborators for
// the ordering pipeline: lookup-by-id at placement time.

type ClienteRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error)
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).Where("activo = true").First(&c, id).Error
	return &c, err
}

type SucursalRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sucursal, error)
}

type sucursalRepo struct{ db *gorm.DB }

func NewSucursalRepository(db *gorm.DB) SucursalRepository { return &sucursalRepo{db: db} }

func (r *sucursalRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sucursal, error) {
	var s model.Sucursal
	err := r.db.WithContext(ctx).Where("activa = true").First(&s, id).Error
	return &s, err
}
