package service

// promocion_service.go — promotion catalog and evaluation.
//
// Evaluation never fails an order: a missing, expired, inapplicable or
// under-minimum promotion degrades to "no discount" with a log line. The
// grouped (bundle) promotion is applied after per-line promotions as an
// additional layer, allocated proportionally over the eligible lines'
// ORIGINAL subtotals; the last eligible line absorbs the rounding remainder
// (floored at zero) so the allocation sums to the bundle's computed discount
// without ever turning a line's discount negative.

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
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PromocionService interface {
	Crear(ctx context.Context, req dto.CrearPromocionRequest) (*dto.PromocionResponse, error)
	Listar(ctx context.Context) ([]dto.PromocionResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error

	// AplicarPromociones evaluates per-line promotions and then the optional
	// grouped promotion over the given lines, filling Descuento, Subtotal,
	// PromocionID and Leyenda on each. It only errors on infrastructure
	// failures, never on inapplicable promotions.
	AplicarPromociones(ctx context.Context, now time.Time, lineas []LineaCotizada, agrupadaID *uuid.UUID) ([]LineaCotizada, error)
}

type promocionService struct {
	repo         repository.PromocionRepository
	articuloRepo repository.ArticuloRepository
}

func NewPromocionService(repo repository.PromocionRepository, articuloRepo repository.ArticuloRepository) PromocionService {
	return &promocionService{repo: repo, articuloRepo: articuloRepo}
}

// ── Evaluation ────────────────────────────────────────────────────────────────

// descuentoSobre computes the promotion's discount on a base amount:
// porcentaje = valor/100 × base; monto_fijo = min(valor, base).
// Never negative, never above the base.
func descuentoSobre(p *model.Promocion, base decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch p.Tipo {
	case model.DescuentoPorcentaje:
		d = redondear(base.Mul(p.Valor).Div(decimal.NewFromInt(100)))
	case model.DescuentoMontoFijo:
		d = p.Valor
	default:
		return decimal.Zero
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(base) {
		return base
	}
	return d
}

func (s *promocionService) AplicarPromociones(ctx context.Context, now time.Time, lineas []LineaCotizada, agrupadaID *uuid.UUID) ([]LineaCotizada, error) {
	// 1. Per-line promotions.
	for i := range lineas {
		l := &lineas[i]
		l.Descuento = decimal.Zero
		l.Leyenda = ""
		l.PromocionID = nil

		if l.PromocionSolicitadaID != nil {
			promo := s.buscarVigente(ctx, now, *l.PromocionSolicitadaID)
			switch {
			case promo == nil:
				// already logged by buscarVigente
			case !promo.AplicaA(l.ArticuloID):
				log.Debug().Str("promocion", promo.Denominacion).Str("articulo", l.Denominacion).
					Msg("promocion no aplica al articulo, se ignora")
			case l.Cantidad < promo.CantidadMinima:
				log.Debug().Str("promocion", promo.Denominacion).Int("cantidad", l.Cantidad).
					Int("minima", promo.CantidadMinima).
					Msg("cantidad por debajo del minimo de la promocion, se ignora")
			default:
				l.Descuento = descuentoSobre(promo, l.SubtotalOriginal())
				id := promo.ID
				l.PromocionID = &id
				l.Leyenda = fmt.Sprintf("%s (-$%s)", promo.Denominacion, l.Descuento.StringFixed(2))
			}
		}
		l.Subtotal = l.SubtotalOriginal().Sub(l.Descuento)
	}

	// 2. Grouped promotion layered on top.
	if agrupadaID != nil {
		s.aplicarAgrupada(ctx, now, lineas, *agrupadaID)
	}

	// 3. Finalize subtotals with the combined discount, clamped per line.
	for i := range lineas {
		l := &lineas[i]
		original := l.SubtotalOriginal()
		if l.Descuento.GreaterThan(original) {
			l.Descuento = original
		}
		l.Subtotal = original.Sub(l.Descuento)
	}
	return lineas, nil
}

// aplicarAgrupada distributes the bundle discount proportionally over the
// eligible lines. The minimum quantity is compared against the summed
// quantity of the eligible subset.
func (s *promocionService) aplicarAgrupada(ctx context.Context, now time.Time, lineas []LineaCotizada, agrupadaID uuid.UUID) {
	promo := s.buscarVigente(ctx, now, agrupadaID)
	if promo == nil {
		return
	}

	var elegibles []int
	baseElegible := decimal.Zero
	cantidadElegible := 0
	for i := range lineas {
		if promo.AplicaA(lineas[i].ArticuloID) {
			elegibles = append(elegibles, i)
			baseElegible = baseElegible.Add(lineas[i].SubtotalOriginal())
			cantidadElegible += lineas[i].Cantidad
		}
	}
	if len(elegibles) == 0 || baseElegible.IsZero() {
		log.Debug().Str("promocion", promo.Denominacion).
			Msg("promocion agrupada sin lineas elegibles, no aporta descuento")
		return
	}
	if cantidadElegible < promo.CantidadMinima {
		log.Debug().Str("promocion", promo.Denominacion).Int("cantidad", cantidadElegible).
			Int("minima", promo.CantidadMinima).
			Msg("promocion agrupada por debajo del minimo, se ignora")
		return
	}

	descuentoTotal := descuentoSobre(promo, baseElegible)
	asignado := decimal.Zero
	for n, i := range elegibles {
		l := &lineas[i]
		var parte decimal.Decimal
		if n == len(elegibles)-1 {
			// Last line absorbs the remainder so the parts add up to the
			// bundle total. Rounding half-up can over-allocate the earlier
			// shares; a negative remainder would turn into a surcharge, so
			// it floors at zero.
			parte = descuentoTotal.Sub(asignado)
			if parte.IsNegative() {
				parte = decimal.Zero
			}
		} else {
			parte = redondear(descuentoTotal.Mul(l.SubtotalOriginal()).DivRound(baseElegible, 6))
			asignado = asignado.Add(parte)
		}
		l.Descuento = l.Descuento.Add(parte)
		leyenda := fmt.Sprintf("%s (agrupada -$%s)", promo.Denominacion, parte.StringFixed(2))
		if l.Leyenda != "" {
			l.Leyenda = l.Leyenda + "; " + leyenda
		} else {
			l.Leyenda = leyenda
		}
		if l.PromocionID == nil {
			id := promo.ID
			l.PromocionID = &id
		}
	}
}

// buscarVigente resolves a promotion and checks vigency; nil (with a log
// line) on any miss — the caller treats that as "no promotion".
func (s *promocionService) buscarVigente(ctx context.Context, now time.Time, id uuid.UUID) *model.Promocion {
	promo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		log.Debug().Str("promocion_id", id.String()).Msg("promocion inexistente, se ignora")
		return nil
	}
	if !promo.Vigente(now) {
		log.Debug().Str("promocion", promo.Denominacion).Msg("promocion fuera de vigencia, se ignora")
		return nil
	}
	return promo
}

// ── Catalog ───────────────────────────────────────────────────────────────────

func (s *promocionService) Crear(ctx context.Context, req dto.CrearPromocionRequest) (*dto.PromocionResponse, error) {
	fechaDesde, err := time.Parse("2006-01-02", req.FechaDesde)
	if err != nil {
		return nil, apierror.Validation("fecha_desde invalida: %s", req.FechaDesde)
	}
	fechaHasta, err := time.Parse("2006-01-02", req.FechaHasta)
	if err != nil {
		return nil, apierror.Validation("fecha_hasta invalida: %s", req.FechaHasta)
	}
	if fechaHasta.Before(fechaDesde) {
		return nil, apierror.Validation("fecha_hasta anterior a fecha_desde")
	}
	if req.HoraHasta < req.HoraDesde {
		return nil, apierror.Validation("hora_hasta anterior a hora_desde")
	}
	if req.Tipo == string(model.DescuentoPorcentaje) &&
		req.Valor.GreaterThan(decimal.NewFromInt(100)) {
		return nil, apierror.Validation("un descuento porcentual no puede superar 100")
	}
	if req.Valor.IsNegative() {
		return nil, apierror.Validation("el valor del descuento no puede ser negativo")
	}

	articulos := make([]model.Articulo, 0, len(req.ArticuloIDs))
	for _, raw := range req.ArticuloIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, apierror.Validation("articulo_id invalido: %s", raw)
		}
		a, err := s.articuloRepo.FindByID(ctx, id)
		if err != nil {
			return nil, apierror.NotFound("articulo %s no encontrado", raw)
		}
		articulos = append(articulos, *a)
	}

	minima := req.CantidadMinima
	if minima < 1 {
		minima = 1
	}
	promo := &model.Promocion{
		Denominacion:   req.Denominacion,
		Tipo:           model.TipoDescuento(req.Tipo),
		Valor:          req.Valor,
		FechaDesde:     fechaDesde,
		FechaHasta:     fechaHasta,
		HoraDesde:      req.HoraDesde,
		HoraHasta:      req.HoraHasta,
		CantidadMinima: minima,
		Activa:         true,
		Articulos:      articulos,
	}
	if err := s.repo.Create(ctx, promo); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Duplicate("ya existe una promocion %q", req.Denominacion)
		}
		return nil, fmt.Errorf("crear promocion: %w", err)
	}
	return promocionToResponse(promo, time.Now()), nil
}

func (s *promocionService) Listar(ctx context.Context) ([]dto.PromocionResponse, error) {
	promos, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]dto.PromocionResponse, 0, len(promos))
	for i := range promos {
		out = append(out, *promocionToResponse(&promos[i], now))
	}
	return out, nil
}

func (s *promocionService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return apierror.NotFound("promocion %s no encontrada", id)
	}
	return s.repo.Desactivar(ctx, id)
}

func promocionToResponse(p *model.Promocion, now time.Time) *dto.PromocionResponse {
	ids := make([]string, 0, len(p.Articulos))
	for _, a := range p.Articulos {
		ids = append(ids, a.ID.String())
	}
	return &dto.PromocionResponse{
		ID:             p.ID.String(),
		Denominacion:   p.Denominacion,
		Tipo:           string(p.Tipo),
		Valor:          p.Valor,
		FechaDesde:     p.FechaDesde.Format("2006-01-02"),
		FechaHasta:     p.FechaHasta.Format("2006-01-02"),
		HoraDesde:      p.HoraDesde,
		HoraHasta:      p.HoraHasta,
		CantidadMinima: p.CantidadMinima,
		Activa:         p.Activa,
		Vigente:        p.Vigente(now),
		ArticuloIDs:    ids,
	}
}
