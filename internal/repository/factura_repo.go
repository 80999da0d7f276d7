package repository

import (
	"context"
	"time"

	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FacturaRepository interface {
	// CreateTx inserts inside the placement transaction; the unique index on
	// pedido_id is the backstop for the one-invoice-per-order rule.
	CreateTx(tx *gorm.DB, f *model.Factura) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Factura, error)
	FindByPedidoID(ctx context.Context, pedidoID uuid.UUID) (*model.Factura, error)
	ExistsForPedido(ctx context.Context, pedidoID uuid.UUID) (bool, error)

	// NextSecuencia returns the next per-date comprobante sequence. Must run
	// inside the placement tx so concurrent placements cannot collide.
	NextSecuencia(tx *gorm.DB, fecha time.Time) (int, error)

	Update(ctx context.Context, f *model.Factura) error
	ListSinPDF(ctx context.Context, limit int) ([]model.Factura, error)
}

type facturaRepo struct{ db *gorm.DB }

func NewFacturaRepository(db *gorm.DB) FacturaRepository { return &facturaRepo{db: db} }

func (r *facturaRepo) CreateTx(tx *gorm.DB, f *model.Factura) error {
	return tx.Create(f).Error
}

func (r *facturaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Factura, error) {
	var f model.Factura
	err := r.db.WithContext(ctx).First(&f, id).Error
	return &f, err
}

func (r *facturaRepo) FindByPedidoID(ctx context.Context, pedidoID uuid.UUID) (*model.Factura, error) {
	var f model.Factura
	err := r.db.WithContext(ctx).Where("pedido_id = ?", pedidoID).First(&f).Error
	return &f, err
}

func (r *facturaRepo) ExistsForPedido(ctx context.Context, pedidoID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Factura{}).
		Where("pedido_id = ?", pedidoID).Count(&count).Error
	return count > 0, err
}

func (r *facturaRepo) NextSecuencia(tx *gorm.DB, fecha time.Time) (int, error) {
	var max int
	err := tx.Model(&model.Factura{}).
		Where("fecha_comprobante = ?", fecha.Format("2006-01-02")).
		Select("COALESCE(MAX(secuencia), 0)").Scan(&max).Error
	return max + 1, err
}

func (r *facturaRepo) Update(ctx context.Context, f *model.Factura) error {
	return r.db.WithContext(ctx).Save(f).Error
}

// ListSinPDF returns invoices whose PDF has not been rendered yet — used by
// the retry cron to re-enqueue stale render jobs.
func (r *facturaRepo) ListSinPDF(ctx context.Context, limit int) ([]model.Factura, error) {
	var facturas []model.Factura
	err := r.db.WithContext(ctx).
		Where("pdf_path IS NULL").
		Order("created_at ASC").Limit(limit).
		Find(&facturas).Error
	return facturas, err
}
