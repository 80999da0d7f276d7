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
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type PedidoService interface {
	RegistrarPedido(ctx context.Context, req dto.RegistrarPedidoRequest) (*dto.PedidoResponse, error)
	Transicionar(ctx context.Context, id uuid.UUID, req dto.TransicionRequest) (*dto.PedidoResponse, error)
	Cancelar(ctx context.Context, id uuid.UUID, motivo string) (*dto.PedidoResponse, error)
	ConfirmarPago(ctx context.Context, req dto.PagoWebhookRequest) error
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.PedidoResponse, error)
	ListPedidos(ctx context.Context, filter dto.PedidoFilter) (*dto.PedidoListResponse, error)
}

type pedidoService struct {
	repo         repository.PedidoRepository
	articuloRepo repository.ArticuloRepository
	clienteRepo  repository.ClienteRepository
	sucursalRepo repository.SucursalRepository
	stock        StockService
	promociones  PromocionService
	facturas     FacturaService
	dispatcher   *worker.Dispatcher
	pagos        *infra.PagosClient
	politica     PoliticaPrecios
}

func NewPedidoService(
	repo repository.PedidoRepository,
	articuloRepo repository.ArticuloRepository,
	clienteRepo repository.ClienteRepository,
	sucursalRepo repository.SucursalRepository,
	stock StockService,
	promociones PromocionService,
	facturas FacturaService,
	dispatcher *worker.Dispatcher,
	pagos *infra.PagosClient,
	politica PoliticaPrecios,
) PedidoService {
	return &pedidoService{
		repo:         repo,
		articuloRepo: articuloRepo,
		clienteRepo:  clienteRepo,
		sucursalRepo: sucursalRepo,
		stock:        stock,
		promociones:  promociones,
		facturas:     facturas,
		dispatcher:   dispatcher,
		pagos:        pagos,
		politica:     politica,
	}
}

// ── RegistrarPedido ───────────────────────────────────────────────────────────
// Placement is one atomic unit:
//   1. Resolve cliente/sucursal/articulos (pre-flight, outside TX)
//   2. Evaluate promotions, run the pricing pipeline
//   3. Availability check only — stock is NOT debited until confirmation
//   4. BEGIN TX: nextval numero, create pedido (pendiente) + detalles,
//      emit factura with date-scoped comprobante number
//   5. COMMIT
//   6. (async, best-effort) PDF job, kitchen notification, payment preference

func (s *pedidoService) RegistrarPedido(ctx context.Context, req dto.RegistrarPedidoRequest) (*dto.PedidoResponse, error) {
	if len(req.Detalles) == 0 {
		return nil, apierror.Validation("el pedido no tiene detalles")
	}

	clienteID, err := uuid.Parse(req.ClienteID)
	if err != nil {
		return nil, apierror.Validation("cliente_id invalido: %s", req.ClienteID)
	}
	sucursalID, err := uuid.Parse(req.SucursalID)
	if err != nil {
		return nil, apierror.Validation("sucursal_id invalido: %s", req.SucursalID)
	}

	cliente, err := s.clienteRepo.FindByID(ctx, clienteID)
	if err != nil {
		return nil, apierror.NotFound("cliente %s no encontrado", req.ClienteID)
	}
	sucursal, err := s.sucursalRepo.FindByID(ctx, sucursalID)
	if err != nil {
		return nil, apierror.NotFound("sucursal %s no encontrada", req.SucursalID)
	}

	// Resolve articles and build the quote lines.
	articulos := make(map[uuid.UUID]*model.Articulo, len(req.Detalles))
	lineas := make([]LineaCotizada, 0, len(req.Detalles))
	for i, det := range req.Detalles {
		if det.Cantidad <= 0 {
			return nil, apierror.Validation("detalle %d: la cantidad debe ser mayor a cero", i+1)
		}
		articuloID, err := uuid.Parse(det.ArticuloID)
		if err != nil {
			return nil, apierror.Validation("detalle %d: articulo_id invalido", i+1)
		}
		a, ok := articulos[articuloID]
		if !ok {
			a, err = s.articuloRepo.FindByID(ctx, articuloID)
			if err != nil {
				return nil, apierror.NotFound("articulo %s no encontrado", det.ArticuloID)
			}
			articulos[articuloID] = a
		}
		if !a.Activo {
			return nil, apierror.Validation("el articulo %q no esta disponible", a.Denominacion)
		}

		linea := LineaCotizada{
			ArticuloID:     a.ID,
			Denominacion:   a.Denominacion,
			Cantidad:       det.Cantidad,
			PrecioUnitario: a.PrecioVenta,
			Nota:           det.Nota,
		}
		if det.PromocionID != nil {
			promoID, err := uuid.Parse(*det.PromocionID)
			if err != nil {
				return nil, apierror.Validation("detalle %d: promocion_id invalido", i+1)
			}
			linea.PromocionSolicitadaID = &promoID
		}
		lineas = append(lineas, linea)
	}

	var agrupadaID *uuid.UUID
	if req.PromocionAgrupadaID != nil {
		id, err := uuid.Parse(*req.PromocionAgrupadaID)
		if err != nil {
			return nil, apierror.Validation("promocion_agrupada_id invalido")
		}
		agrupadaID = &id
	}

	now := time.Now()
	lineas, err = s.promociones.AplicarPromociones(ctx, now, lineas, agrupadaID)
	if err != nil {
		return nil, err
	}

	tipoEnvio := model.TipoEnvio(req.TipoEnvio)
	cot := CalcularTotales(tipoEnvio, lineas, s.politica)

	// Availability check only — the debit happens on confirmation.
	if err := s.stock.VerificarDisponibilidadLineas(lineas, articulos); err != nil {
		return nil, err
	}
	costo := s.stock.CostoLineas(lineas, articulos)

	domicilio := sucursal.Domicilio
	if tipoEnvio == model.EnvioDelivery {
		domicilio = cliente.Domicilio
	}

	var pedido model.Pedido
	var factura *model.Factura
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		numero, err := s.repo.NextNumero(ctx, tx)
		if err != nil {
			return err
		}

		pedido = model.Pedido{
			Numero:               numero,
			ClienteID:            cliente.ID,
			SucursalID:           sucursal.ID,
			TipoEnvio:            tipoEnvio,
			Estado:               model.PedidoPendiente,
			DomicilioEntrega:     domicilio,
			Total:                cot.Total,
			TotalCosto:           costo,
			DescuentoPromociones: cot.DescuentoPromociones,
			EstadoPago:           model.PagoPendiente,
			FechaPedido:          now,
		}
		for i := range cot.Lineas {
			l := &cot.Lineas[i]
			pedido.Detalles = append(pedido.Detalles, model.PedidoDetalle{
				ArticuloID:       l.ArticuloID,
				Cantidad:         l.Cantidad,
				PrecioUnitario:   l.PrecioUnitario,
				Descuento:        l.Descuento,
				Subtotal:         l.Subtotal,
				PromocionID:      l.PromocionID,
				LeyendaPromocion: l.Leyenda,
				Nota:             l.Nota,
			})
		}
		if err := s.repo.Create(ctx, tx, &pedido); err != nil {
			return err
		}

		factura, err = s.facturas.EmitirTx(ctx, tx, &pedido, cliente)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	// Best-effort post-commit work — never rolls back the order.
	if s.dispatcher != nil {
		if err := s.dispatcher.EnqueueFacturaPDF(ctx, worker.FacturaPDFJobPayload{
			FacturaID:    factura.ID.String(),
			PedidoID:     pedido.ID.String(),
			ClienteEmail: cliente.Email,
		}); err != nil {
			log.Warn().Err(err).Str("pedido", pedido.ID.String()).Msg("no se pudo encolar el PDF de la factura")
		}
		s.publicar(ctx, worker.CanalCocina, "pedido_creado", &pedido)
	}
	if s.pagos != nil {
		go s.crearPreferenciaPago(&pedido, cliente)
	}

	resp := pedidoToResponse(&pedido)
	for i := range cot.Lineas {
		resp.Detalles[i].Articulo = cot.Lineas[i].Denominacion
	}
	return resp, nil
}

// crearPreferenciaPago is fire-and-forget: payment confirmation arrives later
// via webhook and only gets recorded, never awaited.
func (s *pedidoService) crearPreferenciaPago(pedido *model.Pedido, cliente *model.Cliente) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	pref, err := s.pagos.CrearPreferencia(ctx, infra.PreferenciaPago{
		PedidoID:     pedido.ID.String(),
		Monto:        pedido.Total.InexactFloat64(),
		Descripcion:  fmt.Sprintf("Pedido #%d", pedido.Numero),
		ClienteEmail: cliente.Email,
	})
	if err != nil {
		log.Warn().Err(err).Str("pedido", pedido.ID.String()).Msg("no se pudo crear la preferencia de pago")
		return
	}
	log.Info().Str("pedido", pedido.ID.String()).Str("preferencia", pref.PreferenciaID).Msg("preferencia de pago creada")
}

// ── Transicionar ──────────────────────────────────────────────────────────────
// The transition table is forward-only. The single stock debit pass runs on
// pendiente→en_preparacion inside the transaction; if availability was
// invalidated since placement the whole transition aborts and the order
// stays pendiente.

func (s *pedidoService) Transicionar(ctx context.Context, id uuid.UUID, req dto.TransicionRequest) (*dto.PedidoResponse, error) {
	destino := model.EstadoPedido(req.Estado)
	switch destino {
	case model.PedidoEnPreparacion, model.PedidoListo, model.PedidoEntregado:
	default:
		return nil, apierror.Validation("estado destino invalido: %s", req.Estado)
	}

	var actualizado *model.Pedido
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		pedido, err := s.repo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return apierror.NotFound("pedido %s no encontrado", id)
		}
		if !pedido.PuedeTransicionar(destino) {
			return apierror.InvalidTransition(string(pedido.Estado), string(destino))
		}

		if pedido.Estado == model.PedidoPendiente && destino == model.PedidoEnPreparacion {
			if err := s.stock.DescontarPedidoTx(ctx, tx, pedido); err != nil {
				return err
			}
		}

		evento := &model.PedidoEvento{
			PedidoID:       pedido.ID,
			EstadoAnterior: pedido.Estado,
			EstadoNuevo:    destino,
		}
		if err := s.repo.CreateEventoTx(tx, evento); err != nil {
			return err
		}
		if err := s.repo.UpdateEstadoTx(tx, pedido.ID, destino); err != nil {
			return err
		}
		pedido.Estado = destino
		actualizado = pedido
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.publicarTransicion(ctx, actualizado)
	return pedidoToResponse(actualizado), nil
}

func (s *pedidoService) publicarTransicion(ctx context.Context, pedido *model.Pedido) {
	if s.dispatcher == nil {
		return
	}
	canal := worker.CanalCocina
	switch pedido.Estado {
	case model.PedidoListo:
		canal = worker.CanalCaja
	case model.PedidoEntregado:
		canal = worker.CanalDelivery
	}
	s.publicar(ctx, canal, "pedido_"+string(pedido.Estado), pedido)
}

func (s *pedidoService) publicar(ctx context.Context, canal, tipo string, pedido *model.Pedido) {
	if err := s.dispatcher.PublicarEvento(ctx, canal, worker.EventoPedido{
		Tipo:     tipo,
		PedidoID: pedido.ID.String(),
		Numero:   pedido.Numero,
		Estado:   string(pedido.Estado),
	}); err != nil {
		log.Warn().Err(err).Str("canal", canal).Msg("no se pudo publicar el evento")
	}
}

// ── Cancelar ──────────────────────────────────────────────────────────────────

func (s *pedidoService) Cancelar(ctx context.Context, id uuid.UUID, motivo string) (*dto.PedidoResponse, error) {
	var actualizado *model.Pedido
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		pedido, err := s.repo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return apierror.NotFound("pedido %s no encontrado", id)
		}
		if pedido.Estado == model.PedidoEntregado {
			return apierror.TerminalState("no se puede cancelar el pedido #%d: ya fue entregado", pedido.Numero)
		}
		if !pedido.PuedeTransicionar(model.PedidoCancelado) {
			return apierror.InvalidTransition(string(pedido.Estado), string(model.PedidoCancelado))
		}

		// Stock was debited at confirmation; a pendiente order never touched it.
		if pedido.StockDescontado() {
			if err := s.stock.RestaurarPedidoTx(ctx, tx, pedido); err != nil {
				return err
			}
		}

		evento := &model.PedidoEvento{
			PedidoID:       pedido.ID,
			EstadoAnterior: pedido.Estado,
			EstadoNuevo:    model.PedidoCancelado,
			Motivo:         motivo,
		}
		if err := s.repo.CreateEventoTx(tx, evento); err != nil {
			return err
		}
		if err := s.repo.UpdateEstadoTx(tx, pedido.ID, model.PedidoCancelado); err != nil {
			return err
		}
		pedido.Estado = model.PedidoCancelado
		actualizado = pedido
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if s.dispatcher != nil {
		s.publicar(ctx, worker.CanalCocina, "pedido_cancelado", actualizado)
	}
	return pedidoToResponse(actualizado), nil
}

// ── ConfirmarPago ─────────────────────────────────────────────────────────────
// Records the externally confirmed payment state. The gateway is the source
// of truth for payment; this backend never blocks on it.

func (s *pedidoService) ConfirmarPago(ctx context.Context, req dto.PagoWebhookRequest) error {
	pedidoID, err := uuid.Parse(req.PedidoID)
	if err != nil {
		return apierror.Validation("pedido_id invalido: %s", req.PedidoID)
	}
	estado := model.EstadoPago(req.Estado)
	if !estado.Valido() {
		return apierror.Validation("estado de pago desconocido: %q", req.Estado)
	}
	pedido, err := s.repo.FindByID(ctx, pedidoID)
	if err != nil {
		return apierror.NotFound("pedido %s no encontrado", req.PedidoID)
	}
	if err := s.repo.UpdateEstadoPago(ctx, pedido.ID, estado, req.PagoExternoID); err != nil {
		return err
	}
	if s.dispatcher != nil {
		s.publicar(ctx, worker.CanalCaja, "pago_"+req.Estado, pedido)
	}
	return nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *pedidoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.PedidoResponse, error) {
	pedido, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("pedido %s no encontrado", id)
	}
	return pedidoToResponse(pedido), nil
}

func (s *pedidoService) ListPedidos(ctx context.Context, filter dto.PedidoFilter) (*dto.PedidoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	pedidos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.PedidoResponse, 0, len(pedidos))
	for i := range pedidos {
		data = append(data, *pedidoToResponse(&pedidos[i]))
	}
	return &dto.PedidoListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func pedidoToResponse(p *model.Pedido) *dto.PedidoResponse {
	detalles := make([]dto.DetallePedidoResponse, 0, len(p.Detalles))
	for _, det := range p.Detalles {
		nombre := ""
		if det.Articulo != nil {
			nombre = det.Articulo.Denominacion
		}
		detalles = append(detalles, dto.DetallePedidoResponse{
			Articulo:         nombre,
			Cantidad:         det.Cantidad,
			PrecioUnitario:   det.PrecioUnitario,
			Descuento:        det.Descuento,
			Subtotal:         det.Subtotal,
			LeyendaPromocion: det.LeyendaPromocion,
			Nota:             det.Nota,
		})
	}
	return &dto.PedidoResponse{
		ID:                   p.ID.String(),
		Numero:               p.Numero,
		ClienteID:            p.ClienteID.String(),
		SucursalID:           p.SucursalID.String(),
		TipoEnvio:            string(p.TipoEnvio),
		Estado:               string(p.Estado),
		EstadoPago:           string(p.EstadoPago),
		DomicilioEntrega:     p.DomicilioEntrega,
		Detalles:             detalles,
		DescuentoPromociones: p.DescuentoPromociones,
		Total:                p.Total,
		FechaPedido:          p.FechaPedido.Format(time.RFC3339),
	}
}
