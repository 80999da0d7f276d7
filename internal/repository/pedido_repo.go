package repository

import (
	"context"

	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/dto"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PedidoRepository interface {
	Create(ctx context.Context, tx *gorm.DB, p *model.Pedido) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Pedido, error)
	List(ctx context.Context, filter dto.PedidoFilter) ([]model.Pedido, int64, error)
	NextNumero(ctx context.Context, tx *gorm.DB) (int, error)

	// Lifecycle — all run inside the transition transaction.
	// FindByIDForUpdateTx row-locks the pedido so concurrent transitions serialize.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Pedido, error)
	UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado model.EstadoPedido) error
	CreateEventoTx(tx *gorm.DB, e *model.PedidoEvento) error

	UpdateEstadoPago(ctx context.Context, id uuid.UUID, estado model.EstadoPago, pagoExternoID string) error

	// DB exposes the DB for transaction creation in the service layer.
	DB() *gorm.DB
}

type pedidoRepo struct{ db *gorm.DB }

func NewPedidoRepository(db *gorm.DB) PedidoRepository { return &pedidoRepo{db: db} }

func (r *pedidoRepo) DB() *gorm.DB { return r.db }

func (r *pedidoRepo) Create(ctx context.Context, tx *gorm.DB, p *model.Pedido) error {
	return tx.WithContext(ctx).Create(p).Error
}

func (r *pedidoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Pedido, error) {
	var p model.Pedido
	err := r.db.WithContext(ctx).
		Preload("Detalles.Articulo.Receta.Insumo").
		Preload("Detalles.Promocion").
		Preload("Cliente").Preload("Sucursal").
		First(&p, id).Error
	return &p, err
}

func (r *pedidoRepo) List(ctx context.Context, filter dto.PedidoFilter) ([]model.Pedido, int64, error) {
	var pedidos []model.Pedido
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Pedido{})

	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Fecha != "" {
		q = q.Where("DATE(fecha_pedido) = ?", filter.Fecha)
	} else {
		// Default: today
		q = q.Where("DATE(fecha_pedido) = CURRENT_DATE")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Detalles.Articulo").
		Order("fecha_pedido DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&pedidos).Error

	return pedidos, total, err
}

func (r *pedidoRepo) NextNumero(ctx context.Context, tx *gorm.DB) (int, error) {
	// Uses a PostgreSQL sequence for atomic order number generation
	var num int
	err := tx.WithContext(ctx).Raw("SELECT nextval('pedidos_numero_seq')").Scan(&num).Error
	return num, err
}

func (r *pedidoRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Pedido, error) {
	var p model.Pedido
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Detalles.Articulo.Receta.Insumo").
		First(&p, id).Error
	return &p, err
}

func (r *pedidoRepo) UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado model.EstadoPedido) error {
	return tx.Model(&model.Pedido{}).Where("id = ?", id).Update("estado", estado).Error
}

func (r *pedidoRepo) CreateEventoTx(tx *gorm.DB, e *model.PedidoEvento) error {
	return tx.Create(e).Error
}

func (r *pedidoRepo) UpdateEstadoPago(ctx context.Context, id uuid.UUID, estado model.EstadoPago, pagoExternoID string) error {
	return r.db.WithContext(ctx).Model(&model.Pedido{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"estado_pago":     estado,
			"pago_externo_id": pagoExternoID,
		}).Error
}
