package service

// In-memory repository stubs for unit tests. Map-backed, no concurrency
// handling: each test owns its stubs. DB() returns nil so runTx executes
// the transactional body directly.

import (
	"context"
	"time"

	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/dto"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/model"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Articulos ─────────────────────────────────────────────────────────────────

type stubArticuloRepo struct {
	articulos map[uuid.UUID]*model.Articulo
}

var _ repository.ArticuloRepository = (*stubArticuloRepo)(nil)

func newStubArticuloRepo(articulos ...*model.Articulo) *stubArticuloRepo {
	m := make(map[uuid.UUID]*model.Articulo, len(articulos))
	for _, a := range articulos {
		m[a.ID] = a
	}
	return &stubArticuloRepo{articulos: m}
}

func (r *stubArticuloRepo) Create(_ context.Context, a *model.Articulo) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.articulos[a.ID] = a
	return nil
}

func (r *stubArticuloRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Articulo, error) {
	a, ok := r.articulos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *stubArticuloRepo) List(_ context.Context, _ dto.ArticuloFilter) ([]model.Articulo, int64, error) {
	out := make([]model.Articulo, 0, len(r.articulos))
	for _, a := range r.articulos {
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

func (r *stubArticuloRepo) Update(_ context.Context, a *model.Articulo) error {
	if _, ok := r.articulos[a.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.articulos[a.ID] = a
	return nil
}

func (r *stubArticuloRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	a, ok := r.articulos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.Activo = false
	return nil
}

func (r *stubArticuloRepo) ListInsumosEnAlerta(_ context.Context) ([]model.Articulo, error) {
	var out []model.Articulo
	for _, a := range r.articulos {
		if a.Tipo == model.TipoInsumo && a.Activo &&
			(a.EstadoStock == model.StockCritico || a.EstadoStock == model.StockBajo) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *stubArticuloRepo) ExisteRecetaConInsumo(_ context.Context, insumoID uuid.UUID) (bool, error) {
	for _, a := range r.articulos {
		for _, det := range a.Receta {
			if det.InsumoID == insumoID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *stubArticuloRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Articulo, error) {
	a, ok := r.articulos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *stubArticuloRepo) UpdateStockTx(_ *gorm.DB, id uuid.UUID, delta int, estado model.EstadoStock) error {
	a, ok := r.articulos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.StockActual += delta
	a.EstadoStock = estado
	return nil
}

func (r *stubArticuloRepo) UpdateCostoYStockTx(_ *gorm.DB, id uuid.UUID, costo decimal.Decimal, delta int, estado model.EstadoStock) error {
	a, ok := r.articulos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.PrecioCosto = costo
	a.StockActual += delta
	a.EstadoStock = estado
	return nil
}

func (r *stubArticuloRepo) DB() *gorm.DB { return nil }

// ── Compras / movimientos ─────────────────────────────────────────────────────

type stubCompraRepo struct {
	compras []model.Compra
}

var _ repository.CompraRepository = (*stubCompraRepo)(nil)

func (r *stubCompraRepo) CreateTx(_ *gorm.DB, c *model.Compra) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.compras = append(r.compras, *c)
	return nil
}

func (r *stubCompraRepo) ListByArticulo(_ context.Context, articuloID uuid.UUID, _ int) ([]model.Compra, error) {
	var out []model.Compra
	for _, c := range r.compras {
		if c.ArticuloID == articuloID {
			out = append(out, c)
		}
	}
	return out, nil
}

type stubMovimientoRepo struct {
	movimientos []model.MovimientoStock
}

var _ repository.MovimientoStockRepository = (*stubMovimientoRepo)(nil)

func (r *stubMovimientoRepo) CreateTx(_ *gorm.DB, m *model.MovimientoStock) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubMovimientoRepo) ListByArticulo(_ context.Context, articuloID uuid.UUID, _ int) ([]model.MovimientoStock, error) {
	var out []model.MovimientoStock
	for _, m := range r.movimientos {
		if m.ArticuloID == articuloID {
			out = append(out, m)
		}
	}
	return out, nil
}

// ── Promociones ───────────────────────────────────────────────────────────────

type stubPromocionRepo struct {
	promos    map[uuid.UUID]*model.Promocion
	errCreate error // forced Create failure
}

var _ repository.PromocionRepository = (*stubPromocionRepo)(nil)

func newStubPromocionRepo(promos ...*model.Promocion) *stubPromocionRepo {
	m := make(map[uuid.UUID]*model.Promocion, len(promos))
	for _, p := range promos {
		m[p.ID] = p
	}
	return &stubPromocionRepo{promos: m}
}

func (r *stubPromocionRepo) Create(_ context.Context, p *model.Promocion) error {
	if r.errCreate != nil {
		return r.errCreate
	}
	for _, existente := range r.promos {
		if existente.Denominacion == p.Denominacion {
			return gorm.ErrDuplicatedKey
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.promos[p.ID] = p
	return nil
}

func (r *stubPromocionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Promocion, error) {
	p, ok := r.promos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubPromocionRepo) List(_ context.Context) ([]model.Promocion, error) {
	out := make([]model.Promocion, 0, len(r.promos))
	for _, p := range r.promos {
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubPromocionRepo) Desactivar(_ context.Context, id uuid.UUID) error {
	p, ok := r.promos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Activa = false
	return nil
}

// ── Facturas ──────────────────────────────────────────────────────────────────

type stubFacturaRepo struct {
	facturas   map[uuid.UUID]*model.Factura
	secuencias map[string]int
}

var _ repository.FacturaRepository = (*stubFacturaRepo)(nil)

func newStubFacturaRepo() *stubFacturaRepo {
	return &stubFacturaRepo{
		facturas:   make(map[uuid.UUID]*model.Factura),
		secuencias: make(map[string]int),
	}
}

func (r *stubFacturaRepo) CreateTx(_ *gorm.DB, f *model.Factura) error {
	for _, existente := range r.facturas {
		if existente.PedidoID == f.PedidoID {
			return gorm.ErrDuplicatedKey
		}
	}
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	f.CreatedAt = time.Now()
	r.facturas[f.ID] = f
	return nil
}

func (r *stubFacturaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Factura, error) {
	f, ok := r.facturas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return f, nil
}

func (r *stubFacturaRepo) FindByPedidoID(_ context.Context, pedidoID uuid.UUID) (*model.Factura, error) {
	for _, f := range r.facturas {
		if f.PedidoID == pedidoID {
			return f, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubFacturaRepo) ExistsForPedido(_ context.Context, pedidoID uuid.UUID) (bool, error) {
	for _, f := range r.facturas {
		if f.PedidoID == pedidoID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubFacturaRepo) NextSecuencia(_ *gorm.DB, fecha time.Time) (int, error) {
	dia := fecha.Format("2006-01-02")
	r.secuencias[dia]++
	return r.secuencias[dia], nil
}

func (r *stubFacturaRepo) Update(_ context.Context, f *model.Factura) error {
	if _, ok := r.facturas[f.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.facturas[f.ID] = f
	return nil
}

func (r *stubFacturaRepo) ListSinPDF(_ context.Context, limit int) ([]model.Factura, error) {
	var out []model.Factura
	for _, f := range r.facturas {
		if f.PDFPath == nil || *f.PDFPath == "" {
			out = append(out, *f)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// ── Pedidos ───────────────────────────────────────────────────────────────────

// stubPedidoRepo resolves Detalles[].Articulo through the articulo stub on
// row-locked reads, mirroring the preloads of the real repository.
type stubPedidoRepo struct {
	pedidos   map[uuid.UUID]*model.Pedido
	eventos   []model.PedidoEvento
	articulos *stubArticuloRepo
	numero    int
}

var _ repository.PedidoRepository = (*stubPedidoRepo)(nil)

func newStubPedidoRepo(articulos *stubArticuloRepo) *stubPedidoRepo {
	return &stubPedidoRepo{pedidos: make(map[uuid.UUID]*model.Pedido), articulos: articulos}
}

func (r *stubPedidoRepo) hidratar(p *model.Pedido) {
	for i := range p.Detalles {
		if a, ok := r.articulos.articulos[p.Detalles[i].ArticuloID]; ok {
			p.Detalles[i].Articulo = a
		}
	}
}

func (r *stubPedidoRepo) Create(_ context.Context, _ *gorm.DB, p *model.Pedido) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for i := range p.Detalles {
		if p.Detalles[i].ID == uuid.Nil {
			p.Detalles[i].ID = uuid.New()
		}
		p.Detalles[i].PedidoID = p.ID
	}
	r.pedidos[p.ID] = p
	return nil
}

func (r *stubPedidoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Pedido, error) {
	p, ok := r.pedidos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	r.hidratar(p)
	return p, nil
}

func (r *stubPedidoRepo) List(_ context.Context, _ dto.PedidoFilter) ([]model.Pedido, int64, error) {
	out := make([]model.Pedido, 0, len(r.pedidos))
	for _, p := range r.pedidos {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubPedidoRepo) NextNumero(_ context.Context, _ *gorm.DB) (int, error) {
	r.numero++
	return r.numero, nil
}

func (r *stubPedidoRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Pedido, error) {
	p, ok := r.pedidos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	r.hidratar(p)
	return p, nil
}

func (r *stubPedidoRepo) UpdateEstadoTx(_ *gorm.DB, id uuid.UUID, estado model.EstadoPedido) error {
	p, ok := r.pedidos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Estado = estado
	return nil
}

func (r *stubPedidoRepo) CreateEventoTx(_ *gorm.DB, e *model.PedidoEvento) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.eventos = append(r.eventos, *e)
	return nil
}

func (r *stubPedidoRepo) UpdateEstadoPago(_ context.Context, id uuid.UUID, estado model.EstadoPago, pagoExternoID string) error {
	p, ok := r.pedidos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.EstadoPago = estado
	if pagoExternoID != "" {
		p.PagoExternoID = &pagoExternoID
	}
	return nil
}

func (r *stubPedidoRepo) DB() *gorm.DB { return nil }

// ── Clientes / sucursales ─────────────────────────────────────────────────────

type stubClienteRepo struct {
	clientes map[uuid.UUID]*model.Cliente
}

var _ repository.ClienteRepository = (*stubClienteRepo)(nil)

func (r *stubClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok || !c.Activo {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

type stubSucursalRepo struct {
	sucursales map[uuid.UUID]*model.Sucursal
}

var _ repository.SucursalRepository = (*stubSucursalRepo)(nil)

func (r *stubSucursalRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sucursal, error) {
	s, ok := r.sucursales[id]
	if !ok || !s.Activa {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

// ── Fixture builders ──────────────────────────────────────────────────────────

func insumoFixture(denominacion string, stockActual, stockMaximo int, precioCosto, precioVenta float64) *model.Articulo {
	return &model.Articulo{
		ID:           uuid.New(),
		Denominacion: denominacion,
		Tipo:         model.TipoInsumo,
		PrecioVenta:  decimal.NewFromFloat(precioVenta),
		PrecioCosto:  decimal.NewFromFloat(precioCosto),
		StockActual:  stockActual,
		StockMaximo:  stockMaximo,
		EstadoStock:  model.ClasificarStock(stockActual, stockMaximo),
		Activo:       true,
	}
}

func manufacturadoFixture(denominacion string, precioVenta float64, receta ...model.DetalleReceta) *model.Articulo {
	a := &model.Articulo{
		ID:           uuid.New(),
		Denominacion: denominacion,
		Tipo:         model.TipoManufacturado,
		PrecioVenta:  decimal.NewFromFloat(precioVenta),
		Activo:       true,
	}
	for i := range receta {
		receta[i].ArticuloManufacturadoID = a.ID
	}
	a.Receta = receta
	return a
}

func recetaLinea(insumo *model.Articulo, cantidad int) model.DetalleReceta {
	return model.DetalleReceta{InsumoID: insumo.ID, Cantidad: cantidad, Insumo: insumo}
}

func promocionFixture(denominacion string, tipo model.TipoDescuento, valor float64, articulos ...*model.Articulo) *model.Promocion {
	p := &model.Promocion{
		ID:             uuid.New(),
		Denominacion:   denominacion,
		Tipo:           tipo,
		Valor:          decimal.NewFromFloat(valor),
		FechaDesde:     time.Now().AddDate(0, 0, -1),
		FechaHasta:     time.Now().AddDate(0, 0, 1),
		HoraDesde:      "00:00",
		HoraHasta:      "23:59",
		CantidadMinima: 1,
		Activa:         true,
	}
	for _, a := range articulos {
		p.Articulos = append(p.Articulos, *a)
	}
	return p
}
