package repository

import (
	"context"

	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/dto"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArticuloRepository defines the data access contract for articles.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via in-memory stubs.
type ArticuloRepository interface {
	Create(ctx context.Context, a *model.Articulo) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Articulo, error)
	List(ctx context.Context, filter dto.ArticuloFilter) ([]model.Articulo, int64, error)
	Update(ctx context.Context, a *model.Articulo) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// ListInsumosEnAlerta returns active insumos in estado critico or bajo.
	ListInsumosEnAlerta(ctx context.Context) ([]model.Articulo, error)

	// ExisteRecetaConInsumo reports whether any recipe references the insumo
	// (delete guard).
	ExisteRecetaConInsumo(ctx context.Context, insumoID uuid.UUID) (bool, error)

	// Used inside transactions — callers must pass the tx instance.
	// FindByIDForUpdateTx takes a row lock so concurrent debits serialize.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Articulo, error)
	UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int, estado model.EstadoStock) error
	UpdateCostoYStockTx(tx *gorm.DB, id uuid.UUID, costo decimal.Decimal, delta int, estado model.EstadoStock) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type articuloRepo struct{ db *gorm.DB }

func NewArticuloRepository(db *gorm.DB) ArticuloRepository { return &articuloRepo{db: db} }

func (r *articuloRepo) Create(ctx context.Context, a *model.Articulo) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *articuloRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Articulo, error) {
	var a model.Articulo
	err := r.db.WithContext(ctx).Preload("Receta.Insumo").First(&a, id).Error
	return &a, err
}

func (r *articuloRepo) List(ctx context.Context, filter dto.ArticuloFilter) ([]model.Articulo, int64, error) {
	var articulos []model.Articulo
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Articulo{})

	switch filter.Activo {
	case "false":
		q = q.Where("activo = false")
	case "all":
		// no filter
	default:
		q = q.Where("activo = true")
	}

	if filter.Tipo != "" && filter.Tipo != "all" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if filter.Denominacion != "" {
		q = q.Where("denominacion ILIKE ?", "%"+filter.Denominacion+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Receta.Insumo").
		Order("denominacion ASC").Limit(filter.Limit).Offset(offset).
		Find(&articulos).Error
	return articulos, total, err
}

func (r *articuloRepo) Update(ctx context.Context, a *model.Articulo) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *articuloRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Articulo{}).
		Where("id = ?", id).Update("activo", false).Error
}

func (r *articuloRepo) ListInsumosEnAlerta(ctx context.Context) ([]model.Articulo, error) {
	var insumos []model.Articulo
	err := r.db.WithContext(ctx).
		Where("tipo = ? AND activo = true AND estado_stock IN ?",
			model.TipoInsumo, []model.EstadoStock{model.StockCritico, model.StockBajo}).
		Order("estado_stock ASC, denominacion ASC").
		Find(&insumos).Error
	return insumos, err
}

func (r *articuloRepo) ExisteRecetaConInsumo(ctx context.Context, insumoID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.DetalleReceta{}).
		Where("insumo_id = ?", insumoID).Count(&count).Error
	return count > 0, err
}

func (r *articuloRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Articulo, error) {
	var a model.Articulo
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Receta.Insumo").First(&a, id).Error
	return &a, err
}

func (r *articuloRepo) UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int, estado model.EstadoStock) error {
	return tx.Model(&model.Articulo{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock_actual": gorm.Expr("stock_actual + ?", delta),
			"estado_stock": estado,
		}).Error
}

func (r *articuloRepo) UpdateCostoYStockTx(tx *gorm.DB, id uuid.UUID, costo decimal.Decimal, delta int, estado model.EstadoStock) error {
	return tx.Model(&model.Articulo{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"precio_costo": costo,
			"stock_actual": gorm.Expr("stock_actual + ?", delta),
			"estado_stock": estado,
		}).Error
}

func (r *articuloRepo) DB() *gorm.DB { return r.db }
