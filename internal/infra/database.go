package infra

import (
	"fmt"

	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate and
// applies the SQL objects GORM cannot express (the order-number sequence).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates / updates the schema. Also used by integration tests.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Sucursal{},
		&model.Cliente{},
		&model.Articulo{},
		&model.DetalleReceta{},
		&model.Promocion{},
		&model.Pedido{},
		&model.PedidoDetalle{},
		&model.PedidoEvento{},
		&model.Factura{},
		&model.Compra{},
		&model.MovimientoStock{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Global order number, assigned inside the placement transaction.
		`CREATE SEQUENCE IF NOT EXISTS pedidos_numero_seq START 1`,
		// Daily listing is always date-scoped.
		`CREATE INDEX IF NOT EXISTS idx_pedidos_fecha_estado
		    ON pedidos (fecha_pedido, estado)`,
	}
	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
