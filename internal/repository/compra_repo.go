package repository

import (
	"context"

	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompraRepository interface {
	CreateTx(tx *gorm.DB, c *model.Compra) error
	ListByArticulo(ctx context.Context, articuloID uuid.UUID, limit int) ([]model.Compra, error)
}

type compraRepo struct{ db *gorm.DB }

func NewCompraRepository(db *gorm.DB) CompraRepository { return &compraRepo{db: db} }

func (r *compraRepo) CreateTx(tx *gorm.DB, c *model.Compra) error {
	return tx.Create(c).Error
}

func (r *compraRepo) ListByArticulo(ctx context.Context, articuloID uuid.UUID, limit int) ([]model.Compra, error) {
	var compras []model.Compra
	err := r.db.WithContext(ctx).
		Where("articulo_id = ?", articuloID).
		Order("fecha DESC").Limit(limit).
		Find(&compras).Error
	return compras, err
}
