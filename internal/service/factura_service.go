package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/apierror"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/dto"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/model"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FacturaService derives the immutable invoice from a placed order.
// One invoice per pedido: a second emission attempt is a DUPLICATE error,
// with the unique index on pedido_id as the database backstop.
type FacturaService interface {
	// EmitirTx synthesizes the invoice inside the placement transaction:
	// client/address snapshot, display decomposition, date-scoped number.
	EmitirTx(ctx context.Context, tx *gorm.DB, pedido *model.Pedido, cliente *model.Cliente) (*model.Factura, error)

	ObtenerPorPedido(ctx context.Context, pedidoID uuid.UUID) (*dto.FacturaResponse, error)
	ObtenerPDFPath(ctx context.Context, id uuid.UUID) (string, error)
}

type facturaService struct {
	repo     repository.FacturaRepository
	politica PoliticaPrecios
}

func NewFacturaService(repo repository.FacturaRepository, politica PoliticaPrecios) FacturaService {
	return &facturaService{repo: repo, politica: politica}
}

func (s *facturaService) EmitirTx(ctx context.Context, tx *gorm.DB, pedido *model.Pedido, cliente *model.Cliente) (*model.Factura, error) {
	existe, err := s.repo.ExistsForPedido(ctx, pedido.ID)
	if err != nil {
		return nil, err
	}
	if existe {
		return nil, apierror.Duplicate("el pedido #%d ya tiene factura emitida", pedido.Numero)
	}

	fecha := pedido.FechaPedido
	if fecha.IsZero() {
		fecha = time.Now()
	}
	secuencia, err := s.repo.NextSecuencia(tx, fecha)
	if err != nil {
		return nil, fmt.Errorf("secuencia de comprobante: %w", err)
	}

	desc := DescomponerTotal(pedido.TipoEnvio, pedido.Total, pedido.DescuentoPromociones, s.politica)

	factura := &model.Factura{
		PedidoID:          pedido.ID,
		NumeroComprobante: fmt.Sprintf("%s-%04d", fecha.Format("20060102"), secuencia),
		FechaComprobante:  fecha,
		Secuencia:         secuencia,
		Subtotal:          desc.Subtotal,
		Descuento:         desc.Descuento,
		GastosEnvio:       desc.GastosEnvio,
		Total:             pedido.Total,
		ClienteNombre:     cliente.NombreCompleto(),
		DomicilioEntrega:  pedido.DomicilioEntrega,
	}
	if err := s.repo.CreateTx(tx, factura); err != nil {
		// The unique index on pedido_id backstops the ExistsForPedido check
		// against a concurrent emission.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Duplicate("el pedido #%d ya tiene factura emitida", pedido.Numero)
		}
		return nil, fmt.Errorf("emitir factura: %w", err)
	}
	return factura, nil
}

func (s *facturaService) ObtenerPorPedido(ctx context.Context, pedidoID uuid.UUID) (*dto.FacturaResponse, error) {
	f, err := s.repo.FindByPedidoID(ctx, pedidoID)
	if err != nil {
		return nil, apierror.NotFound("factura no encontrada para el pedido %s", pedidoID)
	}
	return facturaToResponse(f), nil
}

func (s *facturaService) ObtenerPDFPath(ctx context.Context, id uuid.UUID) (string, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", apierror.NotFound("factura %s no encontrada", id)
	}
	if f.PDFPath == nil || *f.PDFPath == "" {
		return "", apierror.NotFound("PDF no disponible para la factura %s", f.NumeroComprobante)
	}
	return *f.PDFPath, nil
}

func facturaToResponse(f *model.Factura) *dto.FacturaResponse {
	resp := &dto.FacturaResponse{
		ID:                f.ID.String(),
		PedidoID:          f.PedidoID.String(),
		NumeroComprobante: f.NumeroComprobante,
		FechaComprobante:  f.FechaComprobante.Format("2006-01-02"),
		Subtotal:          f.Subtotal,
		Descuento:         f.Descuento,
		GastosEnvio:       f.GastosEnvio,
		Total:             f.Total,
		ClienteNombre:     f.ClienteNombre,
		DomicilioEntrega:  f.DomicilioEntrega,
		CreatedAt:         f.CreatedAt.Format(time.RFC3339),
	}
	if f.PDFPath != nil && *f.PDFPath != "" {
		u := "/v1/facturas/pdf/" + f.ID.String()
		resp.PDFUrl = &u
	}
	return resp
}
