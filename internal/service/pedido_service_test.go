package service

import (
	"context"
	"testing"

	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/apierror"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/dto"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/infra"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pedidoFixture arma el grafo completo de servicios sobre stubs: un
// manufacturado con receta, un insumo vendible y el cliente/sucursal que
// todo pedido necesita.
type pedidoFixture struct {
	pan, queso, gaseosa *model.Articulo
	hamburguesa         *model.Articulo
	cliente             *model.Cliente
	sucursal            *model.Sucursal

	articulos *stubArticuloRepo
	pedidos   *stubPedidoRepo
	facturas  *stubFacturaRepo
	svc       PedidoService
}

func buildPedidoSvc(promos ...*model.Promocion) *pedidoFixture {
	f := &pedidoFixture{
		pan:     insumoFixture("Pan", 100, 200, 5, 0),
		queso:   insumoFixture("Queso", 100, 200, 8, 0),
		gaseosa: insumoFixture("Gaseosa", 50, 100, 100, 300),
		cliente: clienteDePrueba(),
		sucursal: &model.Sucursal{
			ID:        uuid.New(),
			Nombre:    "Centro",
			Domicilio: "Av. San Martin 1000",
			Activa:    true,
		},
	}
	f.hamburguesa = manufacturadoFixture("Hamburguesa completa", 1000,
		recetaLinea(f.pan, 1), recetaLinea(f.queso, 2))

	f.articulos = newStubArticuloRepo(f.pan, f.queso, f.gaseosa, f.hamburguesa)
	f.pedidos = newStubPedidoRepo(f.articulos)
	f.facturas = newStubFacturaRepo()

	stockSvc := NewStockService(f.articulos, &stubCompraRepo{}, &stubMovimientoRepo{}, infra.NewArticuloLocker(nil))
	promoSvc := NewPromocionService(newStubPromocionRepo(promos...), f.articulos)
	facturaSvc := NewFacturaService(f.facturas, politicaDePrueba())

	f.svc = NewPedidoService(
		f.pedidos, f.articulos,
		&stubClienteRepo{clientes: map[uuid.UUID]*model.Cliente{f.cliente.ID: f.cliente}},
		&stubSucursalRepo{sucursales: map[uuid.UUID]*model.Sucursal{f.sucursal.ID: f.sucursal}},
		stockSvc, promoSvc, facturaSvc,
		nil, nil, // sin dispatcher ni gateway de pagos en modo unitario
		politicaDePrueba(),
	)
	return f
}

func (f *pedidoFixture) registrar(t *testing.T, tipoEnvio string, detalles ...dto.DetallePedidoRequest) *dto.PedidoResponse {
	t.Helper()
	resp, err := f.svc.RegistrarPedido(context.Background(), dto.RegistrarPedidoRequest{
		ClienteID:  f.cliente.ID.String(),
		SucursalID: f.sucursal.ID.String(),
		TipoEnvio:  tipoEnvio,
		Detalles:   detalles,
	})
	require.NoError(t, err)
	return resp
}

func (f *pedidoFixture) pedidoDe(t *testing.T, resp *dto.PedidoResponse) *model.Pedido {
	t.Helper()
	id, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	p, ok := f.pedidos.pedidos[id]
	require.True(t, ok, "pedido no persistido")
	return p
}

func TestRegistrarPedidoTakeAway(t *testing.T) {
	f := buildPedidoSvc()

	resp := f.registrar(t, "take_away",
		dto.DetallePedidoRequest{ArticuloID: f.hamburguesa.ID.String(), Cantidad: 2},
		dto.DetallePedidoRequest{ArticuloID: f.gaseosa.ID.String(), Cantidad: 1},
	)

	assert.Equal(t, 1, resp.Numero)
	assert.Equal(t, string(model.PedidoPendiente), resp.Estado)
	assert.Equal(t, string(model.PagoPendiente), resp.EstadoPago)
	assert.Equal(t, f.sucursal.Domicilio, resp.DomicilioEntrega)
	require.Len(t, resp.Detalles, 2)
	assert.Equal(t, "Hamburguesa completa", resp.Detalles[0].Articulo)

	// 2300 − 10% take-away = 2070
	requireDecimal(t, "2070", resp.Total)
	requireDecimal(t, "0", resp.DescuentoPromociones)

	// El stock no se toca al registrar: se descuenta recien al confirmar.
	assert.Equal(t, 100, f.pan.StockActual)
	assert.Equal(t, 50, f.gaseosa.StockActual)

	// La factura sale en la misma transaccion que el pedido.
	require.Len(t, f.facturas.facturas, 1)
	for _, factura := range f.facturas.facturas {
		requireDecimal(t, "2070", factura.Total)
		assert.Equal(t, "Juana Perez", factura.ClienteNombre)
	}
}

func TestRegistrarPedidoDelivery(t *testing.T) {
	f := buildPedidoSvc()

	resp := f.registrar(t, "delivery",
		dto.DetallePedidoRequest{ArticuloID: f.hamburguesa.ID.String(), Cantidad: 2},
	)

	// 2000 + 500 de envio
	requireDecimal(t, "2500", resp.Total)
	assert.Equal(t, f.cliente.Domicilio, resp.DomicilioEntrega)
}

func TestRegistrarPedidoConPromocion(t *testing.T) {
	promo := promocionFixture("15% hamburguesas", model.DescuentoPorcentaje, 15)
	f := buildPedidoSvcConPromo(promo)

	promoID := promo.ID.String()
	resp := f.registrar(t, "delivery",
		dto.DetallePedidoRequest{ArticuloID: f.hamburguesa.ID.String(), Cantidad: 2, PromocionID: &promoID},
	)

	// 2000 − 300 de promo + 500 de envio
	requireDecimal(t, "300", resp.DescuentoPromociones)
	requireDecimal(t, "2200", resp.Total)
	require.Len(t, resp.Detalles, 1)
	requireDecimal(t, "300", resp.Detalles[0].Descuento)
	requireDecimal(t, "1700", resp.Detalles[0].Subtotal)
	assert.Contains(t, resp.Detalles[0].LeyendaPromocion, "15% hamburguesas")

	pedido := f.pedidoDe(t, resp)
	require.NotNil(t, pedido.Detalles[0].PromocionID)
	assert.Equal(t, promo.ID, *pedido.Detalles[0].PromocionID)
}

// buildPedidoSvcConPromo arma el fixture con la promocion apuntando a los
// articulos de ESTE fixture (los IDs se generan por instancia).
func buildPedidoSvcConPromo(promo *model.Promocion) *pedidoFixture {
	f := buildPedidoSvc()
	promo.Articulos = []model.Articulo{*f.hamburguesa}

	promoSvc := NewPromocionService(newStubPromocionRepo(promo), f.articulos)
	stockSvc := NewStockService(f.articulos, &stubCompraRepo{}, &stubMovimientoRepo{}, infra.NewArticuloLocker(nil))
	facturaSvc := NewFacturaService(f.facturas, politicaDePrueba())
	f.svc = NewPedidoService(
		f.pedidos, f.articulos,
		&stubClienteRepo{clientes: map[uuid.UUID]*model.Cliente{f.cliente.ID: f.cliente}},
		&stubSucursalRepo{sucursales: map[uuid.UUID]*model.Sucursal{f.sucursal.ID: f.sucursal}},
		stockSvc, promoSvc, facturaSvc,
		nil, nil,
		politicaDePrueba(),
	)
	return f
}

func TestRegistrarPedidoValidaciones(t *testing.T) {
	f := buildPedidoSvc()
	inactivo := insumoFixture("Fuera de carta", 10, 100, 5, 200)
	inactivo.Activo = false
	require.NoError(t, f.articulos.Create(context.Background(), inactivo))

	base := func() dto.RegistrarPedidoRequest {
		return dto.RegistrarPedidoRequest{
			ClienteID:  f.cliente.ID.String(),
			SucursalID: f.sucursal.ID.String(),
			TipoEnvio:  "take_away",
			Detalles: []dto.DetallePedidoRequest{
				{ArticuloID: f.hamburguesa.ID.String(), Cantidad: 1},
			},
		}
	}

	casos := []struct {
		nombre string
		mutar  func(*dto.RegistrarPedidoRequest)
		code   apierror.Code
	}{
		{"sin_detalles", func(r *dto.RegistrarPedidoRequest) { r.Detalles = nil }, apierror.CodeValidation},
		{"cantidad_cero", func(r *dto.RegistrarPedidoRequest) { r.Detalles[0].Cantidad = 0 }, apierror.CodeValidation},
		{"articulo_id_invalido", func(r *dto.RegistrarPedidoRequest) { r.Detalles[0].ArticuloID = "zzz" }, apierror.CodeValidation},
		{"articulo_inexistente", func(r *dto.RegistrarPedidoRequest) { r.Detalles[0].ArticuloID = uuid.NewString() }, apierror.CodeNotFound},
		{"articulo_inactivo", func(r *dto.RegistrarPedidoRequest) { r.Detalles[0].ArticuloID = inactivo.ID.String() }, apierror.CodeValidation},
		{"cliente_inexistente", func(r *dto.RegistrarPedidoRequest) { r.ClienteID = uuid.NewString() }, apierror.CodeNotFound},
		{"sucursal_inexistente", func(r *dto.RegistrarPedidoRequest) { r.SucursalID = uuid.NewString() }, apierror.CodeNotFound},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			req := base()
			c.mutar(&req)
			_, err := f.svc.RegistrarPedido(context.Background(), req)
			require.Error(t, err)
			assert.True(t, apierror.IsCode(err, c.code), "error: %v", err)
		})
	}
	assert.Empty(t, f.pedidos.pedidos)
	assert.Empty(t, f.facturas.facturas)
}

func TestRegistrarPedidoSinStock(t *testing.T) {
	f := buildPedidoSvc()
	f.queso.StockActual = 3 // alcanza para 1 hamburguesa, no para 2

	_, err := f.svc.RegistrarPedido(context.Background(), dto.RegistrarPedidoRequest{
		ClienteID:  f.cliente.ID.String(),
		SucursalID: f.sucursal.ID.String(),
		TipoEnvio:  "take_away",
		Detalles: []dto.DetallePedidoRequest{
			{ArticuloID: f.hamburguesa.ID.String(), Cantidad: 2},
		},
	})
	require.Error(t, err)
	assert.True(t, apierror.IsCode(err, apierror.CodeInsufficientStock))
	assert.Empty(t, f.pedidos.pedidos)
}

func TestTransicionarDescuentaStockUnaSolaVez(t *testing.T) {
	f := buildPedidoSvc()
	resp := f.registrar(t, "take_away",
		dto.DetallePedidoRequest{ArticuloID: f.hamburguesa.ID.String(), Cantidad: 2},
	)
	id := uuid.MustParse(resp.ID)

	// pendiente → en_preparacion: unico punto de descuento.
	out, err := f.svc.Transicionar(context.Background(), id, dto.TransicionRequest{Estado: "en_preparacion"})
	require.NoError(t, err)
	assert.Equal(t, string(model.PedidoEnPreparacion), out.Estado)
	assert.Equal(t, 98, f.pan.StockActual)
	assert.Equal(t, 96, f.queso.StockActual)

	// en_preparacion → listo → entregado: el stock no se vuelve a tocar.
	_, err = f.svc.Transicionar(context.Background(), id, dto.TransicionRequest{Estado: "listo"})
	require.NoError(t, err)
	out, err = f.svc.Transicionar(context.Background(), id, dto.TransicionRequest{Estado: "entregado"})
	require.NoError(t, err)
	assert.Equal(t, string(model.PedidoEntregado), out.Estado)
	assert.Equal(t, 98, f.pan.StockActual)
	assert.Equal(t, 96, f.queso.StockActual)

	// Un evento por transicion.
	require.Len(t, f.pedidos.eventos, 3)
	assert.Equal(t, model.PedidoPendiente, f.pedidos.eventos[0].EstadoAnterior)
	assert.Equal(t, model.PedidoEnPreparacion, f.pedidos.eventos[0].EstadoNuevo)
}

func TestTransicionInvalida(t *testing.T) {
	f := buildPedidoSvc()
	resp := f.registrar(t, "take_away",
		dto.DetallePedidoRequest{ArticuloID: f.gaseosa.ID.String(), Cantidad: 1},
	)
	id := uuid.MustParse(resp.ID)

	// pendiente no puede saltar a listo ni a entregado.
	for _, destino := range []string{"listo", "entregado"} {
		_, err := f.svc.Transicionar(context.Background(), id, dto.TransicionRequest{Estado: destino})
		require.Error(t, err)
		assert.True(t, apierror.IsCode(err, apierror.CodeInvalidTransition), "destino %s: %v", destino, err)
	}

	// cancelado no es un destino de Transicionar.
	_, err := f.svc.Transicionar(context.Background(), id, dto.TransicionRequest{Estado: "cancelado"})
	require.Error(t, err)
	assert.True(t, apierror.IsCode(err, apierror.CodeValidation))

	_, err = f.svc.Transicionar(context.Background(), uuid.New(), dto.TransicionRequest{Estado: "listo"})
	assert.True(t, apierror.IsCode(err, apierror.CodeNotFound))
}

func TestSaltarListoSoloParaTakeAway(t *testing.T) {
	f := buildPedidoSvc()

	// Take-away puede entregarse directo desde en_preparacion.
	resp := f.registrar(t, "take_away",
		dto.DetallePedidoRequest{ArticuloID: f.gaseosa.ID.String(), Cantidad: 1},
	)
	id := uuid.MustParse(resp.ID)
	_, err := f.svc.Transicionar(context.Background(), id, dto.TransicionRequest{Estado: "en_preparacion"})
	require.NoError(t, err)
	out, err := f.svc.Transicionar(context.Background(), id, dto.TransicionRequest{Estado: "entregado"})
	require.NoError(t, err)
	assert.Equal(t, string(model.PedidoEntregado), out.Estado)

	// Un delivery tiene que pasar por listo antes de entregarse.
	resp = f.registrar(t, "delivery",
		dto.DetallePedidoRequest{ArticuloID: f.gaseosa.ID.String(), Cantidad: 1},
	)
	id = uuid.MustParse(resp.ID)
	_, err = f.svc.Transicionar(context.Background(), id, dto.TransicionRequest{Estado: "en_preparacion"})
	require.NoError(t, err)
	_, err = f.svc.Transicionar(context.Background(), id, dto.TransicionRequest{Estado: "entregado"})
	require.Error(t, err)
	assert.True(t, apierror.IsCode(err, apierror.CodeInvalidTransition))

	_, err = f.svc.Transicionar(context.Background(), id, dto.TransicionRequest{Estado: "listo"})
	require.NoError(t, err)
	out, err = f.svc.Transicionar(context.Background(), id, dto.TransicionRequest{Estado: "entregado"})
	require.NoError(t, err)
	assert.Equal(t, string(model.PedidoEntregado), out.Estado)
}

func TestTransicionSinStockQuedaPendiente(t *testing.T) {
	f := buildPedidoSvc()
	resp := f.registrar(t, "take_away",
		dto.DetallePedidoRequest{ArticuloID: f.hamburguesa.ID.String(), Cantidad: 2},
	)
	id := uuid.MustParse(resp.ID)

	// Entre el registro y la confirmacion otro pedido se llevo el queso.
	f.queso.StockActual = 1

	_, err := f.svc.Transicionar(context.Background(), id, dto.TransicionRequest{Estado: "en_preparacion"})
	require.Error(t, err)
	assert.True(t, apierror.IsCode(err, apierror.CodeInsufficientStock))

	pedido := f.pedidoDe(t, resp)
	assert.Equal(t, model.PedidoPendiente, pedido.Estado)
	assert.Empty(t, f.pedidos.eventos)
}

func TestCancelarPendienteNoTocaStock(t *testing.T) {
	f := buildPedidoSvc()
	resp := f.registrar(t, "take_away",
		dto.DetallePedidoRequest{ArticuloID: f.hamburguesa.ID.String(), Cantidad: 2},
	)

	out, err := f.svc.Cancelar(context.Background(), uuid.MustParse(resp.ID), "cliente se arrepintio")
	require.NoError(t, err)
	assert.Equal(t, string(model.PedidoCancelado), out.Estado)
	assert.Equal(t, 100, f.pan.StockActual)

	require.Len(t, f.pedidos.eventos, 1)
	assert.Equal(t, "cliente se arrepintio", f.pedidos.eventos[0].Motivo)
}

func TestCancelarEnPreparacionRestauraStock(t *testing.T) {
	f := buildPedidoSvc()
	resp := f.registrar(t, "take_away",
		dto.DetallePedidoRequest{ArticuloID: f.hamburguesa.ID.String(), Cantidad: 2},
	)
	id := uuid.MustParse(resp.ID)

	_, err := f.svc.Transicionar(context.Background(), id, dto.TransicionRequest{Estado: "en_preparacion"})
	require.NoError(t, err)
	assert.Equal(t, 98, f.pan.StockActual)

	out, err := f.svc.Cancelar(context.Background(), id, "se quemo la plancha")
	require.NoError(t, err)
	assert.Equal(t, string(model.PedidoCancelado), out.Estado)
	assert.Equal(t, 100, f.pan.StockActual)
	assert.Equal(t, 100, f.queso.StockActual)
}

func TestCancelarEntregadoEsTerminal(t *testing.T) {
	f := buildPedidoSvc()
	resp := f.registrar(t, "take_away",
		dto.DetallePedidoRequest{ArticuloID: f.gaseosa.ID.String(), Cantidad: 1},
	)
	id := uuid.MustParse(resp.ID)

	for _, destino := range []string{"en_preparacion", "listo", "entregado"} {
		_, err := f.svc.Transicionar(context.Background(), id, dto.TransicionRequest{Estado: destino})
		require.NoError(t, err)
	}

	_, err := f.svc.Cancelar(context.Background(), id, "tarde")
	require.Error(t, err)
	assert.True(t, apierror.IsCode(err, apierror.CodeTerminalState))
}

func TestConfirmarPago(t *testing.T) {
	f := buildPedidoSvc()
	resp := f.registrar(t, "take_away",
		dto.DetallePedidoRequest{ArticuloID: f.gaseosa.ID.String(), Cantidad: 1},
	)

	err := f.svc.ConfirmarPago(context.Background(), dto.PagoWebhookRequest{
		PedidoID:      resp.ID,
		Estado:        "aprobado",
		PagoExternoID: "mp-7781",
	})
	require.NoError(t, err)

	pedido := f.pedidoDe(t, resp)
	assert.Equal(t, model.PagoAprobado, pedido.EstadoPago)
	require.NotNil(t, pedido.PagoExternoID)
	assert.Equal(t, "mp-7781", *pedido.PagoExternoID)

	err = f.svc.ConfirmarPago(context.Background(), dto.PagoWebhookRequest{
		PedidoID:      uuid.NewString(),
		Estado:        "aprobado",
		PagoExternoID: "mp-0000",
	})
	assert.True(t, apierror.IsCode(err, apierror.CodeNotFound))

	// Un estado que el gateway no emite se rechaza sin persistir nada.
	err = f.svc.ConfirmarPago(context.Background(), dto.PagoWebhookRequest{
		PedidoID:      resp.ID,
		Estado:        "reembolsado",
		PagoExternoID: "mp-9999",
	})
	require.Error(t, err)
	assert.True(t, apierror.IsCode(err, apierror.CodeValidation))
	pedido = f.pedidoDe(t, resp)
	assert.Equal(t, model.PagoAprobado, pedido.EstadoPago)
}

func TestObtenerYListarPedidos(t *testing.T) {
	f := buildPedidoSvc()
	resp := f.registrar(t, "delivery",
		dto.DetallePedidoRequest{ArticuloID: f.gaseosa.ID.String(), Cantidad: 2},
	)

	got, err := f.svc.ObtenerPorID(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.Equal(t, resp.Numero, got.Numero)
	assert.Equal(t, "Gaseosa", got.Detalles[0].Articulo)

	_, err = f.svc.ObtenerPorID(context.Background(), uuid.New())
	assert.True(t, apierror.IsCode(err, apierror.CodeNotFound))

	lista, err := f.svc.ListPedidos(context.Background(), dto.PedidoFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), lista.Total)
	assert.Equal(t, 1, lista.Page)   // defaults aplicados
	assert.Equal(t, 50, lista.Limit)
}
