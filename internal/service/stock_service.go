package service

import (
	"context"
	"fmt"
	"time"

	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/apierror"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/dto"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/infra"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/model"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockService is the stock ledger: the single owner of quantity-on-hand and
// weighted-average cost. All mutation funnels through RegistrarCompra,
// DescontarPedidoTx and RestaurarPedidoTx — no other call site touches stock.
type StockService interface {
	// RegistrarCompra logs an immutable purchase, increases stock and moves
	// the weighted-average cost. Serialized per article.
	RegistrarCompra(ctx context.Context, req dto.RegistrarCompraRequest) (*dto.CompraResponse, error)

	// VerificarDisponibilidad checks a single article (recipe-expanded for
	// manufacturados) against the given quantity.
	VerificarDisponibilidad(a *model.Articulo, cantidad int) bool

	// VerificarDisponibilidadLineas aggregates insumo demand across all
	// lines and fails with INSUFFICIENT_STOCK naming the first article whose
	// demand cannot be met. Used pre-placement and pre-confirmation.
	VerificarDisponibilidadLineas(lineas []LineaCotizada, articulos map[uuid.UUID]*model.Articulo) error

	// MaxPreparable is the derived availability of a manufacturado:
	// min over recipe lines of floor(stock / required). 0 without recipe.
	MaxPreparable(a *model.Articulo) int

	// CostoLineas sums ingredient acquisition costs for margin reporting.
	CostoLineas(lineas []LineaCotizada, articulos map[uuid.UUID]*model.Articulo) decimal.Decimal

	// DescontarPedidoTx / RestaurarPedidoTx apply the debit/credit pass for
	// every line of a pedido inside the caller's transaction. The ledger
	// performs no idempotency check: the order lifecycle gates when each
	// pass runs. Any failure aborts the whole transaction (no partial pass).
	DescontarPedidoTx(ctx context.Context, tx *gorm.DB, pedido *model.Pedido) error
	RestaurarPedidoTx(ctx context.Context, tx *gorm.DB, pedido *model.Pedido) error

	// Alertas lists insumos in estado critico or bajo.
	Alertas(ctx context.Context) ([]dto.AlertaStockResponse, error)
}

type stockService struct {
	articuloRepo   repository.ArticuloRepository
	compraRepo     repository.CompraRepository
	movimientoRepo repository.MovimientoStockRepository
	locker         *infra.ArticuloLocker
}

func NewStockService(
	articuloRepo repository.ArticuloRepository,
	compraRepo repository.CompraRepository,
	movimientoRepo repository.MovimientoStockRepository,
	locker *infra.ArticuloLocker,
) StockService {
	return &stockService{
		articuloRepo:   articuloRepo,
		compraRepo:     compraRepo,
		movimientoRepo: movimientoRepo,
		locker:         locker,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── RegistrarCompra ───────────────────────────────────────────────────────────
// Weighted average: (oldCost×oldQty + price×qty) / (oldQty+qty) when oldQty>0,
// else the purchase price. Concurrent purchases of the same article are
// serialized by the per-article lock plus the row lock inside the tx.

func (s *stockService) RegistrarCompra(ctx context.Context, req dto.RegistrarCompraRequest) (*dto.CompraResponse, error) {
	articuloID, err := uuid.Parse(req.ArticuloID)
	if err != nil {
		return nil, apierror.Validation("articulo_id invalido: %s", req.ArticuloID)
	}
	if req.Cantidad <= 0 {
		return nil, apierror.Validation("la cantidad comprada debe ser mayor a cero")
	}
	if req.PrecioUnitario.IsNegative() {
		return nil, apierror.Validation("el precio unitario no puede ser negativo")
	}

	release, err := s.locker.Lock(ctx, articuloID)
	if err != nil {
		return nil, fmt.Errorf("lock de articulo %s: %w", articuloID, err)
	}
	defer release()

	var compra model.Compra
	var articulo *model.Articulo

	txErr := runTx(ctx, s.articuloRepo.DB(), func(tx *gorm.DB) error {
		a, err := s.articuloRepo.FindByIDForUpdateTx(tx, articuloID)
		if err != nil {
			return apierror.NotFound("articulo %s no encontrado", req.ArticuloID)
		}
		if a.EsManufacturado() {
			return apierror.Validation("no se puede comprar %q: los manufacturados no tienen stock propio", a.Denominacion)
		}

		costoAnterior := a.PrecioCosto
		cantNueva := decimal.NewFromInt(int64(req.Cantidad))
		costoNuevo := req.PrecioUnitario
		if a.StockActual > 0 {
			cantVieja := decimal.NewFromInt(int64(a.StockActual))
			costoNuevo = redondear(
				costoAnterior.Mul(cantVieja).
					Add(req.PrecioUnitario.Mul(cantNueva)).
					DivRound(cantVieja.Add(cantNueva), 6))
		}

		stockNuevo := a.StockActual + req.Cantidad
		estado := model.ClasificarStock(stockNuevo, a.StockMaximo)
		if err := s.articuloRepo.UpdateCostoYStockTx(tx, a.ID, costoNuevo, req.Cantidad, estado); err != nil {
			return err
		}

		compra = model.Compra{
			ArticuloID:     a.ID,
			Cantidad:       req.Cantidad,
			PrecioUnitario: req.PrecioUnitario,
			CostoAnterior:  costoAnterior,
			CostoNuevo:     costoNuevo,
			Fecha:          time.Now(),
		}
		if err := s.compraRepo.CreateTx(tx, &compra); err != nil {
			return err
		}

		mov := &model.MovimientoStock{
			ArticuloID:    a.ID,
			Tipo:          "compra",
			Cantidad:      req.Cantidad,
			StockAnterior: a.StockActual,
			StockNuevo:    stockNuevo,
			Motivo:        fmt.Sprintf("Compra de %d unidades a $%s", req.Cantidad, req.PrecioUnitario.StringFixed(2)),
			ReferenciaID:  &compra.ID,
		}
		if err := s.movimientoRepo.CreateTx(tx, mov); err != nil {
			return err
		}

		a.StockActual = stockNuevo
		a.PrecioCosto = costoNuevo
		a.EstadoStock = estado
		articulo = a
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return &dto.CompraResponse{
		ID:             compra.ID.String(),
		ArticuloID:     articulo.ID.String(),
		Articulo:       articulo.Denominacion,
		Cantidad:       compra.Cantidad,
		PrecioUnitario: compra.PrecioUnitario,
		CostoAnterior:  compra.CostoAnterior,
		CostoNuevo:     compra.CostoNuevo,
		StockActual:    articulo.StockActual,
		EstadoStock:    string(articulo.EstadoStock),
		Fecha:          compra.Fecha.Format(time.RFC3339),
	}, nil
}

// ── Availability ──────────────────────────────────────────────────────────────

func (s *stockService) MaxPreparable(a *model.Articulo) int {
	if !a.EsManufacturado() || len(a.Receta) == 0 {
		return 0
	}
	min := -1
	for _, det := range a.Receta {
		if det.Cantidad <= 0 || det.Insumo == nil {
			return 0
		}
		disponible := det.Insumo.StockActual
		if disponible < 0 {
			disponible = 0
		}
		preparables := disponible / det.Cantidad
		if min < 0 || preparables < min {
			min = preparables
		}
	}
	if min < 0 {
		return 0
	}
	return min
}

func (s *stockService) VerificarDisponibilidad(a *model.Articulo, cantidad int) bool {
	if a.EsManufacturado() {
		return s.MaxPreparable(a) >= cantidad
	}
	return a.StockActual >= cantidad
}

// demandaInsumos expands every line to its insumo demand, aggregated so that
// two lines sharing an ingredient are checked against the combined need.
func demandaInsumos(lineas []LineaCotizada, articulos map[uuid.UUID]*model.Articulo) (map[uuid.UUID]int, map[uuid.UUID]*model.Articulo) {
	demanda := make(map[uuid.UUID]int)
	insumos := make(map[uuid.UUID]*model.Articulo)
	for i := range lineas {
		a := articulos[lineas[i].ArticuloID]
		if a == nil {
			continue
		}
		if a.EsManufacturado() {
			for j := range a.Receta {
				det := &a.Receta[j]
				demanda[det.InsumoID] += det.Cantidad * lineas[i].Cantidad
				if det.Insumo != nil {
					insumos[det.InsumoID] = det.Insumo
				}
			}
		} else {
			demanda[a.ID] += lineas[i].Cantidad
			insumos[a.ID] = a
		}
	}
	return demanda, insumos
}

func (s *stockService) VerificarDisponibilidadLineas(lineas []LineaCotizada, articulos map[uuid.UUID]*model.Articulo) error {
	demanda, insumos := demandaInsumos(lineas, articulos)
	for insumoID, requerido := range demanda {
		insumo := insumos[insumoID]
		if insumo == nil {
			return apierror.NotFound("insumo %s no encontrado", insumoID)
		}
		if insumo.StockActual < requerido {
			return apierror.InsufficientStock(insumo.Denominacion, requerido, insumo.StockActual)
		}
	}
	return nil
}

func (s *stockService) CostoLineas(lineas []LineaCotizada, articulos map[uuid.UUID]*model.Articulo) decimal.Decimal {
	total := decimal.Zero
	for i := range lineas {
		a := articulos[lineas[i].ArticuloID]
		if a == nil {
			continue
		}
		cant := decimal.NewFromInt(int64(lineas[i].Cantidad))
		if a.EsManufacturado() {
			for j := range a.Receta {
				det := &a.Receta[j]
				if det.Insumo == nil {
					continue
				}
				total = total.Add(det.Insumo.PrecioCosto.
					Mul(decimal.NewFromInt(int64(det.Cantidad))).Mul(cant))
			}
		} else {
			total = total.Add(a.PrecioCosto.Mul(cant))
		}
	}
	return redondear(total)
}

// ── Debit / restore ───────────────────────────────────────────────────────────

func (s *stockService) DescontarPedidoTx(ctx context.Context, tx *gorm.DB, pedido *model.Pedido) error {
	return s.aplicarPasada(ctx, tx, pedido, -1, "pedido",
		fmt.Sprintf("Pedido #%d", pedido.Numero))
}

func (s *stockService) RestaurarPedidoTx(ctx context.Context, tx *gorm.DB, pedido *model.Pedido) error {
	return s.aplicarPasada(ctx, tx, pedido, +1, "restauracion",
		fmt.Sprintf("Cancelacion pedido #%d", pedido.Numero))
}

// aplicarPasada walks every line and applies signo×need to each insumo,
// recipe-expanded for manufacturados. Rows are locked FOR UPDATE so two
// concurrent confirmations of the same scarce ingredient serialize; on a
// debit the locked quantity is re-checked and INSUFFICIENT_STOCK aborts the
// caller's transaction, leaving no partial pass.
func (s *stockService) aplicarPasada(ctx context.Context, tx *gorm.DB, pedido *model.Pedido, signo int, tipo, motivo string) error {
	for i := range pedido.Detalles {
		det := &pedido.Detalles[i]
		a := det.Articulo
		if a == nil {
			return apierror.NotFound("articulo %s no encontrado", det.ArticuloID)
		}
		if a.EsManufacturado() {
			for j := range a.Receta {
				rec := &a.Receta[j]
				if err := s.ajustarInsumo(tx, rec.InsumoID, signo*rec.Cantidad*det.Cantidad, tipo, motivo, pedido.ID); err != nil {
					return err
				}
			}
		} else {
			if err := s.ajustarInsumo(tx, a.ID, signo*det.Cantidad, tipo, motivo, pedido.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *stockService) ajustarInsumo(tx *gorm.DB, insumoID uuid.UUID, delta int, tipo, motivo string, pedidoID uuid.UUID) error {
	insumo, err := s.articuloRepo.FindByIDForUpdateTx(tx, insumoID)
	if err != nil {
		return apierror.NotFound("insumo %s no encontrado", insumoID)
	}
	stockNuevo := insumo.StockActual + delta
	if stockNuevo < 0 {
		return apierror.InsufficientStock(insumo.Denominacion, -delta, insumo.StockActual)
	}
	estado := model.ClasificarStock(stockNuevo, insumo.StockMaximo)
	if err := s.articuloRepo.UpdateStockTx(tx, insumo.ID, delta, estado); err != nil {
		return err
	}
	ref := pedidoID
	mov := &model.MovimientoStock{
		ArticuloID:    insumo.ID,
		Tipo:          tipo,
		Cantidad:      delta,
		StockAnterior: insumo.StockActual,
		StockNuevo:    stockNuevo,
		Motivo:        motivo,
		ReferenciaID:  &ref,
	}
	return s.movimientoRepo.CreateTx(tx, mov)
}

// ── Alertas ───────────────────────────────────────────────────────────────────

func (s *stockService) Alertas(ctx context.Context) ([]dto.AlertaStockResponse, error) {
	insumos, err := s.articuloRepo.ListInsumosEnAlerta(ctx)
	if err != nil {
		return nil, err
	}
	alertas := make([]dto.AlertaStockResponse, 0, len(insumos))
	for _, a := range insumos {
		alertas = append(alertas, dto.AlertaStockResponse{
			ArticuloID:   a.ID.String(),
			Denominacion: a.Denominacion,
			StockActual:  a.StockActual,
			StockMaximo:  a.StockMaximo,
			EstadoStock:  string(a.EstadoStock),
		})
	}
	return alertas, nil
}
